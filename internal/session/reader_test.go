package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotframe/shotframe/internal/gesture"
	"github.com/shotframe/shotframe/internal/geometry"
)

func collect(t *testing.T, src *ReaderSource) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-src.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out draining event source")
		}
	}
}

func TestReaderSourceDecodesEvents(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"motion","x":10,"y":20,"time_ms":1724400000100}`,
		`{"type":"button","button":"left","down":true,"x":10,"y":20,"time_ms":1724400000150}`,
		`{"type":"key","key":"enter","time_ms":1724400000200}`,
	}, "\n")

	src := NewReaderSource(strings.NewReader(input))
	events := collect(t, src)
	require.Len(t, events, 3)

	require.NotNil(t, events[0].Pointer)
	assert.Equal(t, geometry.Point{X: 10, Y: 20}, events[0].Pointer.Point)
	assert.Equal(t, gesture.ButtonNone, events[0].Pointer.Button)
	assert.Equal(t, time.UnixMilli(1724400000100), events[0].Pointer.Time)

	require.NotNil(t, events[1].Pointer)
	assert.Equal(t, gesture.ButtonLeft, events[1].Pointer.Button)
	assert.True(t, events[1].Pointer.Down)

	require.NotNil(t, events[2].Key)
	assert.Equal(t, gesture.KeyEnter, events[2].Key.Key)
}

func TestReaderSourceSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`not json`,
		``,
		`{"type":"button","button":"middle","down":true}`,
		`{"type":"key","key":"f1"}`,
		`{"type":"key","key":"escape"}`,
	}, "\n")

	src := NewReaderSource(strings.NewReader(input))
	events := collect(t, src)
	require.Len(t, events, 1)
	assert.Equal(t, gesture.KeyEscape, events[0].Key.Key)
}

func TestReaderSourceChannelClosesAtEOF(t *testing.T) {
	src := NewReaderSource(strings.NewReader(""))
	events := collect(t, src)
	assert.Empty(t, events)
}

func TestDecodeKeyAliases(t *testing.T) {
	assert.Equal(t, gesture.KeyEscape, decodeKey("esc"))
	assert.Equal(t, gesture.KeyEnter, decodeKey("return"))
	assert.Equal(t, gesture.KeyPrintScreen, decodeKey("printscreen"))
	assert.Equal(t, gesture.KeyNone, decodeKey("tab"))
}
