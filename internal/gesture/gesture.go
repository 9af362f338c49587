// Package gesture classifies raw pointer and keyboard events into the
// interaction signals consumed by the selection state machine. The detector
// is a pure accumulator over a time-ordered event stream; timestamps travel
// on the events so classification is deterministic and testable.
package gesture

import (
	"time"

	"github.com/shotframe/shotframe/internal/geometry"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
)

// Key identifies the keyboard keys the overlay reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyPrintScreen
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Direction is a nudge direction from an arrow key.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// PointerEvent is a raw pointer event in global logical coordinates.
type PointerEvent struct {
	Point  geometry.Point
	Button Button // ButtonNone for pure motion
	Down   bool   // press vs release; ignored for motion
	Time   time.Time
}

// KeyEvent is a raw key press.
type KeyEvent struct {
	Key  Key
	Time time.Time
}

// Kind enumerates the classified signals.
type Kind int

const (
	// Move is pointer motion outside a drag; drives hover tracking.
	Move Kind = iota
	Click
	DragStart
	DragUpdate
	DragEnd
	// DoubleActivate fires when the same activation occurs twice within
	// the configured window; shortcut for instant full-screen capture.
	DoubleActivate
	Nudge
	Confirm
	Cancel
	// FullScreen is the direct full-screen hotkey (Space/PrintScreen).
	FullScreen
)

// Signal is one classified interaction signal.
type Signal struct {
	Kind      Kind
	Point     geometry.Point
	Direction Direction
}

// Options configure classification thresholds.
type Options struct {
	// JitterThreshold is the motion in logical pixels that turns a held
	// button into a drag instead of a click.
	JitterThreshold int
	// DoubleTapWindow is the maximum first-down to second-down interval
	// for a double activation.
	DoubleTapWindow time.Duration
}

// DefaultOptions mirror the shipped configuration defaults.
func DefaultOptions() Options {
	return Options{JitterThreshold: 5, DoubleTapWindow: 500 * time.Millisecond}
}

// Detector turns raw events into signals. Not safe for concurrent use; the
// session feeds it from a single goroutine.
type Detector struct {
	opts Options

	pressed    bool
	dragging   bool
	swallowUp  bool
	pressPoint geometry.Point
	lastPoint  geometry.Point

	// lastDown is the single retained activation timestamp. Zero means
	// detection is re-armed.
	lastDown time.Time
}

// NewDetector creates a detector with the given options.
func NewDetector(opts Options) *Detector {
	if opts.JitterThreshold <= 0 {
		opts.JitterThreshold = DefaultOptions().JitterThreshold
	}
	if opts.DoubleTapWindow <= 0 {
		opts.DoubleTapWindow = DefaultOptions().DoubleTapWindow
	}
	return &Detector{opts: opts}
}

// FeedPointer classifies one pointer event, returning zero or more signals
// in order.
func (d *Detector) FeedPointer(ev PointerEvent) []Signal {
	switch {
	case ev.Button == ButtonRight && ev.Down:
		// Cancel takes precedence over any in-progress gesture.
		d.reset()
		return []Signal{{Kind: Cancel, Point: ev.Point}}

	case ev.Button == ButtonLeft && ev.Down:
		return d.leftDown(ev)

	case ev.Button == ButtonLeft && !ev.Down:
		return d.leftUp(ev)

	case ev.Button == ButtonNone:
		return d.motion(ev)
	}
	return nil
}

func (d *Detector) leftDown(ev PointerEvent) []Signal {
	if !d.lastDown.IsZero() && ev.Time.Sub(d.lastDown) < d.opts.DoubleTapWindow {
		// Second activation within the window. Clear the timestamp so a
		// third tap re-arms rather than chaining, and swallow the
		// matching release.
		d.lastDown = time.Time{}
		d.pressed = false
		d.swallowUp = true
		return []Signal{{Kind: DoubleActivate, Point: ev.Point}}
	}

	d.lastDown = ev.Time
	d.pressed = true
	d.dragging = false
	d.pressPoint = ev.Point
	d.lastPoint = ev.Point
	return nil
}

func (d *Detector) leftUp(ev PointerEvent) []Signal {
	if d.swallowUp {
		d.swallowUp = false
		return nil
	}
	if !d.pressed {
		return nil
	}
	d.pressed = false

	if d.dragging {
		d.dragging = false
		return []Signal{{Kind: DragEnd, Point: ev.Point}}
	}
	return []Signal{{Kind: Click, Point: ev.Point}}
}

func (d *Detector) motion(ev PointerEvent) []Signal {
	d.lastPoint = ev.Point

	if !d.pressed {
		return []Signal{{Kind: Move, Point: ev.Point}}
	}

	if !d.dragging {
		if !d.beyondJitter(ev.Point) {
			return nil
		}
		// Held motion past the jitter threshold reclassifies the press
		// as a drag from the original press point. The drag consumes the
		// activation timestamp: a press shortly after a quick drag is a
		// click, not the second half of a double activation.
		d.dragging = true
		d.lastDown = time.Time{}
		return []Signal{
			{Kind: DragStart, Point: d.pressPoint},
			{Kind: DragUpdate, Point: ev.Point},
		}
	}
	return []Signal{{Kind: DragUpdate, Point: ev.Point}}
}

func (d *Detector) beyondJitter(p geometry.Point) bool {
	dx := p.X - d.pressPoint.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - d.pressPoint.Y
	if dy < 0 {
		dy = -dy
	}
	return dx >= d.opts.JitterThreshold || dy >= d.opts.JitterThreshold
}

// FeedKey classifies one key press.
func (d *Detector) FeedKey(ev KeyEvent) []Signal {
	switch ev.Key {
	case KeyEscape:
		d.reset()
		return []Signal{{Kind: Cancel}}
	case KeyEnter:
		return []Signal{{Kind: Confirm}}
	case KeySpace, KeyPrintScreen:
		if !d.lastDown.IsZero() && ev.Time.Sub(d.lastDown) < d.opts.DoubleTapWindow {
			d.lastDown = time.Time{}
			return []Signal{{Kind: DoubleActivate}}
		}
		d.lastDown = ev.Time
		return []Signal{{Kind: FullScreen}}
	case KeyLeft:
		return []Signal{{Kind: Nudge, Direction: DirLeft}}
	case KeyRight:
		return []Signal{{Kind: Nudge, Direction: DirRight}}
	case KeyUp:
		return []Signal{{Kind: Nudge, Direction: DirUp}}
	case KeyDown:
		return []Signal{{Kind: Nudge, Direction: DirDown}}
	}
	return nil
}

func (d *Detector) reset() {
	d.pressed = false
	d.dragging = false
	d.swallowUp = false
	d.lastDown = time.Time{}
}
