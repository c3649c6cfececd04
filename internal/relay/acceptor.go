package relay

import (
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/relaytap/relaytap/internal/config"
	"github.com/relaytap/relaytap/internal/transcript"
)

// Acceptor binds the listening port and hands each accepted client
// connection to a fresh Session.
type Acceptor struct {
	ln   net.Listener
	cfg  *config.Config
	sink transcript.Sink
}

// Listen binds cfg.SrcPort on every interface.
func Listen(cfg *config.Config, sink transcript.Sink) (*Acceptor, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.SrcPort))
	if err != nil {
		return nil, fmt.Errorf("could not bind listening socket: %w", err)
	}
	return &Acceptor{ln: ln, cfg: cfg, sink: sink}, nil
}

// Close stops accepting new connections. Sessions already spawned are
// unaffected and run to their own completion.
func (a *Acceptor) Close() error {
	return a.ln.Close()
}

// Run accepts connections until the listener is closed. A transient accept
// error is logged and the loop continues with the next iteration; only a
// closed listener (Close was called, or the OS tore it down) ends the loop.
// Each accepted connection is handed to its own Session goroutine; a
// failure in one session never reaches this loop.
func (a *Acceptor) Run() error {
	log.Printf("listening for connections...")
	for {
		conn, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("accept failed: %v", err)
			continue
		}
		log.Printf("accepted a new connection from %s", conn.RemoteAddr())
		go NewSession(a.cfg, conn, a.sink).Run()
	}
}
