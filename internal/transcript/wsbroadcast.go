package transcript

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Broadcaster is a Sink that live-tails transcript blocks to any number of
// connected WebSocket viewers. There is only one side per viewer: relaytap
// pushes, it never reads application data back.
type Broadcaster struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewBroadcaster creates an empty broadcaster. Register it as an
// http.Handler (via Handler) on whatever address the operator wants the
// live transcript served from.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handler upgrades incoming requests to WebSocket connections and
// registers them as transcript viewers until they disconnect.
func (b *Broadcaster) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("transcript viewer upgrade failed: %v", err)
			return
		}

		b.mu.Lock()
		b.clients[conn] = struct{}{}
		b.mu.Unlock()

		// Viewers never send application data; block here until the
		// connection closes so we notice disconnects and can drop them.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		b.mu.Lock()
		delete(b.clients, conn)
		b.mu.Unlock()
		conn.Close()
	})
}

// Emit pushes block to every connected viewer. A viewer whose write fails
// is dropped. Writes go to one viewer after another while the broadcaster's
// lock is held and carry no write deadline, so a viewer that stops reading
// holds up the other viewers and the session emitting the block.
func (b *Broadcaster) Emit(block string) {
	if block == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for conn := range b.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(block)); err != nil {
			conn.Close()
			delete(b.clients, conn)
		}
	}
}

// ListenAndServe runs the broadcaster's HTTP server in the foreground. It
// is meant to be launched in its own goroutine by main.
func (b *Broadcaster) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", b.Handler())
	log.Printf("transcript viewers can connect to ws://%s", addr)
	return http.ListenAndServe(addr, mux)
}
