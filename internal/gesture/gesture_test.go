package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotframe/shotframe/internal/geometry"
)

var t0 = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func down(x, y, ms int) PointerEvent {
	return PointerEvent{Point: geometry.Point{X: x, Y: y}, Button: ButtonLeft, Down: true, Time: at(ms)}
}

func up(x, y, ms int) PointerEvent {
	return PointerEvent{Point: geometry.Point{X: x, Y: y}, Button: ButtonLeft, Down: false, Time: at(ms)}
}

func move(x, y, ms int) PointerEvent {
	return PointerEvent{Point: geometry.Point{X: x, Y: y}, Time: at(ms)}
}

func kinds(signals []Signal) []Kind {
	out := make([]Kind, len(signals))
	for i, s := range signals {
		out[i] = s.Kind
	}
	return out
}

func TestClick(t *testing.T) {
	d := NewDetector(DefaultOptions())

	assert.Empty(t, d.FeedPointer(down(100, 100, 0)))
	// Motion within the jitter threshold keeps it a click.
	assert.Empty(t, d.FeedPointer(move(102, 101, 20)))

	sigs := d.FeedPointer(up(102, 101, 50))
	require.Len(t, sigs, 1)
	assert.Equal(t, Click, sigs[0].Kind)
	assert.Equal(t, geometry.Point{X: 102, Y: 101}, sigs[0].Point)
}

func TestDragReclassification(t *testing.T) {
	d := NewDetector(DefaultOptions())

	d.FeedPointer(down(100, 100, 0))

	sigs := d.FeedPointer(move(120, 130, 30))
	require.Equal(t, []Kind{DragStart, DragUpdate}, kinds(sigs))
	assert.Equal(t, geometry.Point{X: 100, Y: 100}, sigs[0].Point, "drag starts at the press point")
	assert.Equal(t, geometry.Point{X: 120, Y: 130}, sigs[1].Point)

	sigs = d.FeedPointer(move(200, 250, 60))
	require.Equal(t, []Kind{DragUpdate}, kinds(sigs))

	sigs = d.FeedPointer(up(200, 250, 90))
	require.Equal(t, []Kind{DragEnd}, kinds(sigs))
}

func TestDoubleActivateTiming(t *testing.T) {
	tests := []struct {
		name     string
		secondMs int
		double   bool
	}{
		{"within window", 499, true},
		{"outside window", 501, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(DefaultOptions())

			d.FeedPointer(down(10, 10, 0))
			first := d.FeedPointer(up(10, 10, 30))
			require.Equal(t, []Kind{Click}, kinds(first))

			second := d.FeedPointer(down(10, 10, tt.secondMs))
			if tt.double {
				require.Equal(t, []Kind{DoubleActivate}, kinds(second))
				// The release of the second tap must not emit a Click.
				assert.Empty(t, d.FeedPointer(up(10, 10, tt.secondMs+20)))
			} else {
				assert.Empty(t, second)
				after := d.FeedPointer(up(10, 10, tt.secondMs+20))
				require.Equal(t, []Kind{Click}, kinds(after))
			}
		})
	}
}

func TestThirdTapReArms(t *testing.T) {
	d := NewDetector(DefaultOptions())

	d.FeedPointer(down(0, 0, 0))
	d.FeedPointer(up(0, 0, 10))
	require.Equal(t, []Kind{DoubleActivate}, kinds(d.FeedPointer(down(0, 0, 100))))
	d.FeedPointer(up(0, 0, 110))

	// Third tap shortly after the double: starts a fresh cycle rather than
	// firing another DoubleActivate.
	assert.Empty(t, d.FeedPointer(down(0, 0, 200)))
	require.Equal(t, []Kind{Click}, kinds(d.FeedPointer(up(0, 0, 220))))

	// Fourth tap within the window of the third completes a new double.
	require.Equal(t, []Kind{DoubleActivate}, kinds(d.FeedPointer(down(0, 0, 400))))
}

func TestCancelPrecedence(t *testing.T) {
	d := NewDetector(DefaultOptions())

	// Mid-drag right-click cancels.
	d.FeedPointer(down(0, 0, 0))
	d.FeedPointer(move(50, 50, 20))
	sigs := d.FeedPointer(PointerEvent{Point: geometry.Point{X: 50, Y: 50}, Button: ButtonRight, Down: true, Time: at(40)})
	require.Equal(t, []Kind{Cancel}, kinds(sigs))

	// The dangling left release after a cancel is absorbed.
	assert.Empty(t, d.FeedPointer(up(50, 50, 60)))
}

func TestEscapeCancelsMidDrag(t *testing.T) {
	d := NewDetector(DefaultOptions())
	d.FeedPointer(down(0, 0, 0))
	d.FeedPointer(move(80, 80, 20))

	sigs := d.FeedKey(KeyEvent{Key: KeyEscape, Time: at(40)})
	require.Equal(t, []Kind{Cancel}, kinds(sigs))
}

func TestKeySignals(t *testing.T) {
	d := NewDetector(DefaultOptions())

	assert.Equal(t, []Kind{Confirm}, kinds(d.FeedKey(KeyEvent{Key: KeyEnter, Time: at(0)})))
	assert.Equal(t, []Kind{FullScreen}, kinds(d.FeedKey(KeyEvent{Key: KeyPrintScreen, Time: at(10)})))

	sigs := d.FeedKey(KeyEvent{Key: KeyLeft, Time: at(20)})
	require.Equal(t, []Kind{Nudge}, kinds(sigs))
	assert.Equal(t, DirLeft, sigs[0].Direction)
}

func TestHotkeyDoubleActivate(t *testing.T) {
	d := NewDetector(DefaultOptions())

	assert.Equal(t, []Kind{FullScreen}, kinds(d.FeedKey(KeyEvent{Key: KeySpace, Time: at(0)})))
	assert.Equal(t, []Kind{DoubleActivate}, kinds(d.FeedKey(KeyEvent{Key: KeySpace, Time: at(300)})))
}

func TestMotionWithoutPressIsMove(t *testing.T) {
	d := NewDetector(DefaultOptions())
	sigs := d.FeedPointer(move(42, 7, 0))
	require.Equal(t, []Kind{Move}, kinds(sigs))
	assert.Equal(t, geometry.Point{X: 42, Y: 7}, sigs[0].Point)
}

func TestDragConsumesActivation(t *testing.T) {
	d := NewDetector(DefaultOptions())

	// A quick flick-drag: press, reclassify, release.
	assert.Empty(t, d.FeedPointer(down(10, 10, 0)))
	sigs := d.FeedPointer(move(120, 120, 100))
	require.Equal(t, []Kind{DragStart, DragUpdate}, kinds(sigs))
	sigs = d.FeedPointer(up(120, 120, 300))
	require.Equal(t, []Kind{DragEnd}, kinds(sigs))

	// A press shortly after the drag's press is a fresh click, never the
	// second half of a double activation.
	assert.Empty(t, d.FeedPointer(down(50, 50, 450)))
	sigs = d.FeedPointer(up(50, 50, 480))
	require.Equal(t, []Kind{Click}, kinds(sigs))
}
