// Package transcript renders a forwarded chunk as a human-readable block,
// in one of four display modes, and fans formatted blocks out to one or
// more line-oriented sinks.
package transcript

import (
	"fmt"
	"strings"

	"github.com/relaytap/relaytap/internal/config"
)

// Direction tags which way a chunk travelled.
type Direction int

const (
	// Outbound is client -> upstream, rendered "--> ".
	Outbound Direction = iota
	// Inbound is upstream -> client, rendered "<-- ".
	Inbound
)

// Prefix returns the line prefix for the direction.
func (d Direction) Prefix() string {
	if d == Inbound {
		return "<-- "
	}
	return "--> "
}

const hexRowWidth = 16

// Format renders payload as one text block tagged with dir, per mode. The
// function is pure: identical inputs produce byte-identical output.
func Format(payload []byte, dir Direction, mode config.Mode, autoWidth int) string {
	prefix := dir.Prefix()

	switch mode {
	case config.ModeRaw:
		return formatRaw(prefix, payload)
	case config.ModeStrip:
		return formatStrip(prefix, payload)
	case config.ModeHex:
		return formatHex(prefix, payload)
	case config.ModeAuto:
		return formatAuto(prefix, payload, autoWidth)
	default:
		return ""
	}
}

func formatRaw(prefix string, payload []byte) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.Write(payload)
	b.WriteByte('\n')
	return b.String()
}

func formatStrip(prefix string, payload []byte) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, c := range payload {
		b.WriteByte(printableOr(c, '.'))
	}
	b.WriteByte('\n')
	return b.String()
}

// formatHex renders a canonical hex dump. Row offsets restart at zero per
// chunk, and the loop bound (off < n) means a chunk that ends exactly on a
// 16-byte boundary never emits a trailing empty continuation row.
func formatHex(prefix string, payload []byte) string {
	var b strings.Builder
	n := len(payload)

	for off := 0; off < n; off += hexRowWidth {
		end := off + hexRowWidth
		if end > n {
			end = n
		}
		row := payload[off:end]

		fmt.Fprintf(&b, "%s%08X  ", prefix, off)

		first := row
		if len(row) > 8 {
			first = row[:8]
		}
		writeHexGroup(&b, first)

		if len(row) > 8 {
			b.WriteString("  ")
			writeHexGroup(&b, row[8:])
		}

		b.WriteString("  |")
		for _, c := range row {
			b.WriteByte(printableOr(c, '.'))
		}
		b.WriteString("|\n")
	}

	return b.String()
}

func writeHexGroup(b *strings.Builder, bs []byte) {
	for i, c := range bs {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(b, "%02X", c)
	}
}

// formatAuto renders the escaped, auto-chunked form. A line break is
// inserted after every autoWidth input bytes, except when that byte is also
// the chunk's last byte — without that exception a chunk whose length is an
// exact multiple of autoWidth would produce one extra, empty labeled line.
func formatAuto(prefix string, payload []byte, autoWidth int) string {
	var b strings.Builder
	b.WriteString(prefix)

	last := len(payload) - 1
	for i, c := range payload {
		writeAutoByte(&b, c)
		if (i+1)%autoWidth == 0 && i != last {
			b.WriteByte('\n')
			b.WriteString(prefix)
		}
	}

	b.WriteByte('\n')
	return b.String()
}

func writeAutoByte(b *strings.Builder, c byte) {
	switch c {
	case '\\':
		b.WriteString(`\\`)
	case '\t':
		b.WriteString(`\t`)
	case '\n':
		b.WriteString(`\n`)
	case '\r':
		b.WriteString(`\r`)
	default:
		if c >= 0x20 && c <= 0x7F {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(b, `\%02X`, c)
		}
	}
}

func printableOr(c byte, fallback byte) byte {
	if c >= 0x20 && c <= 0x7E {
		return c
	}
	return fallback
}
