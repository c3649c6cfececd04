package relay

import (
	"bytes"

	"github.com/relaytap/relaytap/internal/config"
)

// expansionFactor sizes the initial capacity of substituteOne's output
// buffer: the input length plus this multiple of the replacement length, a
// generous pre-allocation
// guess for rules that grow their input; the buffer still grows past it if
// needed, it's never a hard cap.
const expansionFactor = 4

// Substitute applies rules in order to input, each rule operating on the
// complete output of the previous one. An empty-pattern rule terminates
// processing early. Matching is non-overlapping and left-to-right; a rule
// never rescans its own replacement text.
func Substitute(input []byte, rules []config.Rule) []byte {
	acc := input
	for _, r := range rules {
		if len(r.Pattern) == 0 {
			break
		}
		acc = substituteOne(acc, r.Pattern, r.Replacement)
	}
	return acc
}

// substituteOne scans left-to-right for non-overlapping occurrences of
// pattern in input, replacing each with replacement. Occurrences inside an
// already-inserted replacement are never rescanned.
func substituteOne(input, pattern, replacement []byte) []byte {
	if len(input) == 0 {
		return input
	}

	out := make([]byte, 0, len(input)+expansionFactor*len(replacement))
	rest := input
	for {
		idx := bytes.Index(rest, pattern)
		if idx < 0 {
			out = append(out, rest...)
			break
		}
		out = append(out, rest[:idx]...)
		out = append(out, replacement...)
		rest = rest[idx+len(pattern):]
	}
	return out
}
