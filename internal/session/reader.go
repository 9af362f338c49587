package session

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/shotframe/shotframe/internal/gesture"
	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/logger"
)

// wireEvent is the JSON-lines format the input frontend writes, one event
// per line:
//
//	{"type":"motion","x":120,"y":48,"time_ms":1724400000123}
//	{"type":"button","button":"left","down":true,"x":120,"y":48,"time_ms":...}
//	{"type":"key","key":"enter","time_ms":...}
type wireEvent struct {
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Button string `json:"button"`
	Down   bool   `json:"down"`
	Key    string `json:"key"`
	TimeMS int64  `json:"time_ms"`
}

// ReaderSource decodes input events from a stream, normally stdin, where
// the compositor-side input frontend writes them. The stream closing ends
// the session.
type ReaderSource struct {
	ch   chan Event
	done chan struct{}
	log  zerolog.Logger
}

// NewReaderSource starts decoding r in a background goroutine.
func NewReaderSource(r io.Reader) *ReaderSource {
	s := &ReaderSource{
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
		log:  logger.WithComponent("input"),
	}
	go s.decode(r)
	return s
}

func (s *ReaderSource) Events() <-chan Event { return s.ch }

// Close stops delivery. The decode goroutine exits on its next event, but
// may stay parked in scanner.Scan until the underlying reader yields a line
// or reaches EOF; for stdin that happens when the input frontend closes the
// pipe at session end.
func (s *ReaderSource) Close() error {
	close(s.done)
	return nil
}

func (s *ReaderSource) decode(r io.Reader) {
	defer close(s.ch)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var we wireEvent
		if err := json.Unmarshal(line, &we); err != nil {
			s.log.Debug().Err(err).Msg("malformed input event")
			continue
		}

		ev, ok := decodeEvent(we)
		if !ok {
			continue
		}

		select {
		case s.ch <- ev:
		case <-s.done:
			return
		}
	}
}

func decodeEvent(we wireEvent) (Event, bool) {
	at := time.Now()
	if we.TimeMS > 0 {
		at = time.UnixMilli(we.TimeMS)
	}

	switch we.Type {
	case "motion":
		return Event{Pointer: &gesture.PointerEvent{
			Point: geometry.Point{X: we.X, Y: we.Y},
			Time:  at,
		}}, true

	case "button":
		btn := gesture.ButtonNone
		switch we.Button {
		case "left":
			btn = gesture.ButtonLeft
		case "right":
			btn = gesture.ButtonRight
		default:
			return Event{}, false
		}
		return Event{Pointer: &gesture.PointerEvent{
			Point:  geometry.Point{X: we.X, Y: we.Y},
			Button: btn,
			Down:   we.Down,
			Time:   at,
		}}, true

	case "key":
		key := decodeKey(we.Key)
		if key == gesture.KeyNone {
			return Event{}, false
		}
		return Event{Key: &gesture.KeyEvent{Key: key, Time: at}}, true
	}
	return Event{}, false
}

func decodeKey(name string) gesture.Key {
	switch name {
	case "escape", "esc":
		return gesture.KeyEscape
	case "enter", "return":
		return gesture.KeyEnter
	case "space":
		return gesture.KeySpace
	case "print", "printscreen":
		return gesture.KeyPrintScreen
	case "left":
		return gesture.KeyLeft
	case "right":
		return gesture.KeyRight
	case "up":
		return gesture.KeyUp
	case "down":
		return gesture.KeyDown
	}
	return gesture.KeyNone
}
