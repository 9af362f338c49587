// Package emit publishes structured lifecycle events as JSON lines. Scripts
// wrapping the tool read the stream from stderr; additional handlers (such as
// the websocket broadcaster) can be attached for live consumers.
package emit

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event types published over the lifetime of one invocation.
const (
	OperationStarted   = "operation.started"
	OperationCompleted = "operation.completed"
	ArtifactCreated    = "artifact.created"
	ErrorHandled       = "error.handled"
	ConfigResolved     = "config.resolved"
	Shutdown           = "shutdown"
)

// Event is one emitted record. Data carries event-specific fields and must
// be JSON-serializable.
type Event struct {
	Type      string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data,omitempty"`
}

// Handler receives every published event. Handlers must not block; slow
// consumers should buffer internally.
type Handler func(Event)

// Emitter serializes events to a writer and fans them out to handlers. All
// methods are safe for concurrent use.
type Emitter struct {
	mu       sync.Mutex
	source   string
	w        io.Writer
	handlers []Handler
	enc      *json.Encoder
}

// New creates an emitter. A nil writer disables the line output but handlers
// still fire.
func New(source string, w io.Writer) *Emitter {
	e := &Emitter{source: source, w: w}
	if w != nil {
		e.enc = json.NewEncoder(w)
	}
	return e
}

// AddHandler attaches a fan-out handler.
func (e *Emitter) AddHandler(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, h)
}

// Emit publishes one event. Write failures are swallowed: event output is
// best-effort and never fails an operation.
func (e *Emitter) Emit(eventType string, data map[string]any) {
	ev := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    e.source,
		Data:      data,
	}

	e.mu.Lock()
	if e.enc != nil {
		_ = e.enc.Encode(ev)
	}
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// EmitError publishes an error.handled event carrying the error text and the
// operation it interrupted.
func (e *Emitter) EmitError(op string, err error) {
	e.Emit(ErrorHandled, map[string]any{"operation": op, "error": err.Error()})
}

// Nop returns an emitter that discards everything. Useful as a default so
// callers never nil-check.
func Nop() *Emitter { return New("", nil) }
