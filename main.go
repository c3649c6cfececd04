// Command relaytap is a TCP port-forwarding and observation proxy. It
// listens on srcPort, forwards every accepted connection to server:dstPort,
// and can substitute byte patterns and print a transcript of the traffic
// while it forwards.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/relaytap/relaytap/internal/config"
	"github.com/relaytap/relaytap/internal/relay"
	"github.com/relaytap/relaytap/internal/transcript"
)

const usage = `relaytap - TCP port-forwarding and observation proxy

Usage:
  relaytap [options] srcPort server dstPort

Options:
  -w, --raw              Raw transcript (payload verbatim)
  -s, --strip            Transcript with non-printable bytes replaced by .
  -h, --hex              Canonical hex-dump transcript
  -a, --auto N           Escaped transcript, chunked every N input bytes
  -r, --replace PAT REP  Append a substitution rule (may repeat, max 50)
  --rules-file PATH      Load substitution rules from a YAML file
  --ws-addr ADDR         Also serve the transcript live over WebSocket on ADDR`

func main() {
	cfg, wsAddr, err := parseArgs(os.Args[1:])
	if err != nil {
		die(err.Error())
	}

	if err := cfg.Validate(); err != nil {
		die(err.Error())
	}

	sink := buildSink(wsAddr)

	acceptor, err := relay.Listen(cfg, sink)
	if err != nil {
		die(err.Error())
	}
	defer acceptor.Close()

	fmt.Println("relaytap 1.0")
	fmt.Printf("forwarding :%d -> %s:%d\n", cfg.SrcPort, cfg.Server, cfg.DstPort)

	if err := acceptor.Run(); err != nil {
		die(err.Error())
	}
}

// buildSink assembles the transcript sink: stdout always, plus a WebSocket
// broadcaster when --ws-addr is set.
func buildSink(wsAddr string) transcript.Sink {
	stdout := transcript.NewWriterSink(os.Stdout)
	if wsAddr == "" {
		return stdout
	}

	b := transcript.NewBroadcaster()
	go func() {
		if err := b.ListenAndServe(wsAddr); err != nil {
			fmt.Fprintf(os.Stderr, "warning: transcript viewer server stopped: %v\n", err)
		}
	}()
	return transcript.MultiSink{stdout, b}
}

// parseArgs walks os.Args by hand: no flag package, no cobra, just a switch
// over recognized tokens with positional arguments collected on the side.
func parseArgs(args []string) (*config.Config, string, error) {
	cfg := &config.Config{}
	var modesSelected int
	var positional []string
	var rulesFile string
	var wsAddr string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--raw", "-w":
			cfg.Mode = config.ModeRaw
			modesSelected++
		case "--strip", "-s":
			cfg.Mode = config.ModeStrip
			modesSelected++
		case "--hex", "-h":
			cfg.Mode = config.ModeHex
			modesSelected++
		case "--auto", "-a":
			if i+1 >= len(args) {
				return nil, "", fmt.Errorf("--auto requires a value")
			}
			i++
			n, err := config.ParsePositiveInt(args[i])
			if err != nil {
				return nil, "", fmt.Errorf("invalid --auto value %q", args[i])
			}
			cfg.Mode = config.ModeAuto
			cfg.AutoWidth = n
			modesSelected++
		case "--replace", "-r":
			if i+2 >= len(args) || strings.HasPrefix(args[i+2], "-") {
				return nil, "", fmt.Errorf("replace option usage: --replace [pattern] [replacement]")
			}
			if len(cfg.Rules) >= config.MaxRules {
				return nil, "", fmt.Errorf("too many --replace rules (max %d)", config.MaxRules)
			}
			pattern := args[i+1]
			replacement := args[i+2]
			i += 2
			cfg.Rules = append(cfg.Rules, config.Rule{
				Pattern:     []byte(pattern),
				Replacement: []byte(replacement),
			})
		case "--rules-file":
			if i+1 >= len(args) {
				return nil, "", fmt.Errorf("--rules-file requires a value")
			}
			i++
			rulesFile = args[i]
		case "--ws-addr":
			if i+1 >= len(args) {
				return nil, "", fmt.Errorf("--ws-addr requires a value")
			}
			i++
			wsAddr = args[i]
		default:
			positional = append(positional, args[i])
		}
	}

	if modesSelected > 1 {
		return nil, "", fmt.Errorf("you have selected too many transcript modes")
	}

	if len(positional) != 3 {
		return nil, "", fmt.Errorf("usage: relaytap [options] srcPort server dstPort")
	}

	srcPort, err := config.ParsePort(positional[0])
	if err != nil {
		return nil, "", fmt.Errorf("bad source port %q", positional[0])
	}
	dstPort, err := config.ParsePort(positional[2])
	if err != nil {
		return nil, "", fmt.Errorf("bad destination port %q", positional[2])
	}

	cfg.SrcPort = srcPort
	cfg.Server = positional[1]
	cfg.DstPort = dstPort

	if rulesFile != "" {
		fileRules, err := config.LoadRulesFile(rulesFile)
		if err != nil {
			return nil, "", err
		}
		cfg.Rules = append(cfg.Rules, fileRules...)
	}

	return cfg, wsAddr, nil
}

func die(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, usage)
	os.Exit(1)
}
