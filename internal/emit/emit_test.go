package emit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	e := New("shotframe", &buf)

	e.Emit(OperationStarted, map[string]any{"mode": "region"})
	e.Emit(ArtifactCreated, map[string]any{"path": "/tmp/screenshot_1.png"})

	scanner := bufio.NewScanner(&buf)
	var events []Event
	for scanner.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.Len(t, events, 2)

	assert.Equal(t, OperationStarted, events[0].Type)
	assert.Equal(t, "shotframe", events[0].Source)
	assert.Equal(t, "region", events[0].Data["mode"])
	assert.False(t, events[0].Timestamp.IsZero())

	assert.Equal(t, ArtifactCreated, events[1].Type)
	assert.Equal(t, "/tmp/screenshot_1.png", events[1].Data["path"])
}

func TestEmitFansOutToHandlers(t *testing.T) {
	e := New("shotframe", nil)

	var got []Event
	e.AddHandler(func(ev Event) { got = append(got, ev) })

	e.EmitError("capture", errors.New("compositor gone"))

	require.Len(t, got, 1)
	assert.Equal(t, ErrorHandled, got[0].Type)
	assert.Equal(t, "capture", got[0].Data["operation"])
	assert.Equal(t, "compositor gone", got[0].Data["error"])
}

func TestNopEmitterIsSafe(t *testing.T) {
	e := Nop()
	e.Emit(Shutdown, nil)
	e.EmitError("x", errors.New("y"))
}

func TestBroadcasterWithoutSubscribers(t *testing.T) {
	// Handler with no subscribers must be a no-op.
	b := NewBroadcaster()
	b.Handler(Event{Type: Shutdown})
	b.Close()
}
