// Package relay implements the per-connection data-plane engine: the
// bidirectional relay loop, substitution, and transcript emission that runs
// once per accepted client connection.
package relay

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relaytap/relaytap/internal/config"
	"github.com/relaytap/relaytap/internal/resolve"
	"github.com/relaytap/relaytap/internal/transcript"
)

// readBufferSize is the fixed upper bound on a single read.
const readBufferSize = 1024

// dialTimeout bounds the upstream connect.
const dialTimeout = 5 * time.Second

// Session is the per-connection state machine. It owns the client socket
// exclusively; the upstream socket is created and owned for the lifetime of
// Run. A Session is used once and discarded.
type Session struct {
	cfg    *config.Config
	client net.Conn
	sink   transcript.Sink
}

// NewSession builds a session for an already-accepted client connection. cfg
// is shared read-only across every concurrent session.
func NewSession(cfg *config.Config, client net.Conn, sink transcript.Sink) *Session {
	return &Session{cfg: cfg, client: client, sink: sink}
}

// Run drives the session to completion: Connecting -> Relaying -> Closing.
// It never returns an error to the caller; failures are logged and, for
// setup failures, reported back to the client as a short diagnostic line.
func (s *Session) Run() {
	defer s.client.Close()

	ip, err := resolve.Resolve(s.cfg.Server)
	if err != nil {
		s.failSetup(fmt.Errorf("destination server lookup failed: %w", err))
		return
	}

	dialAddr := net.JoinHostPort(ip.String(), strconv.Itoa(s.cfg.DstPort))
	upstream, err := net.DialTimeout("tcp", dialAddr, dialTimeout)
	if err != nil {
		s.failSetup(fmt.Errorf("could not reach destination server: %w", err))
		return
	}
	defer upstream.Close()

	log.Printf("connected to destination server %s", dialAddr)
	s.relay(upstream)
}

// failSetup is the Connecting -> Closing transition: a short diagnostic goes
// to the client, a log line goes to the operator, and the session ends
// without ever entering Relaying.
func (s *Session) failSetup(err error) {
	log.Printf("session setup failed: %v", err)
	fmt.Fprintf(s.client, "%v\n", err)
}

// relay is the Relaying state: two independent pumps, one per direction,
// run concurrently so that neither direction can starve the other the way a
// single poll-and-dispatch loop could. Closing either socket (from a read
// error, EOF, or a failed forward write) unblocks whichever pump is
// currently blocked on the other side and drives both to exit.
func (s *Session) relay(upstream net.Conn) {
	var closeOnce sync.Once
	shutdown := func() {
		closeOnce.Do(func() {
			upstream.Close()
			s.client.Close()
		})
	}

	var g errgroup.Group
	g.Go(func() error {
		defer shutdown()
		return s.pump(s.client, upstream, transcript.Outbound)
	})
	g.Go(func() error {
		defer shutdown()
		return s.pump(upstream, s.client, transcript.Inbound)
	})
	g.Wait()

	log.Printf("connection terminated")
}

// pump reads chunks from src, substitutes and forwards them to dst, then
// emits a transcript block for the chunk. It returns when src reaches EOF,
// a read fails, or a forward write returns a non-positive count.
func (s *Session) pump(src, dst net.Conn, dir transcript.Direction) error {
	buf := make([]byte, readBufferSize)
	for {
		n, readErr := s.readChunk(src, dir, buf)
		if n > 0 {
			chunk := Substitute(buf[:n], s.cfg.Rules)

			if _, err := dst.Write(chunk); err != nil {
				return err
			}

			s.sink.Emit(transcript.Format(chunk, dir, s.cfg.Mode, s.cfg.AutoWidth))
		}

		if readErr != nil {
			return ignoreEOF(readErr)
		}
	}
}

// readChunk performs a single read, applying the non-blocking guard only to
// reads from the client socket (the outbound direction).
func (s *Session) readChunk(src net.Conn, dir transcript.Direction, buf []byte) (int, error) {
	if dir == transcript.Outbound {
		return readWithNonblockGuard(src, buf)
	}
	return src.Read(buf)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
