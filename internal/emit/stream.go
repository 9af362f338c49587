package emit

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/shotframe/shotframe/internal/logger"
)

// Broadcaster fans emitted events out to websocket subscribers. It is
// attached to an Emitter via Handler and served under an HTTP route.
type Broadcaster struct {
	mu       sync.Mutex
	subs     map[*websocket.Conn]chan Event
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[*websocket.Conn]chan Event),
		upgrader: websocket.Upgrader{
			// The listener is a local unix socket; origin checks do not apply.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger.WithComponent("emit"),
	}
}

// Handler is the fan-out hook to register on an Emitter. Events for slow
// subscribers are dropped rather than blocking the capture path.
func (b *Broadcaster) Handler(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Warn().Str("remote", conn.RemoteAddr().String()).Msg("subscriber lagging, dropping event")
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client goes
// away or the broadcaster is closed.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := b.subscribe(conn)
	defer b.unsubscribe(conn)

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			b.log.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

// Close disconnects all subscribers.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn, ch := range b.subs {
		close(ch)
		conn.Close()
		delete(b.subs, conn)
	}
}

func (b *Broadcaster) subscribe(conn *websocket.Conn) chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subs[conn] = ch
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) unsubscribe(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[conn]; ok {
		close(ch)
		delete(b.subs, conn)
	}
}
