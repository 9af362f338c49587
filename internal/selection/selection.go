// Package selection implements the interactive capture state machine. The
// transition function is pure: it consumes classified gesture signals plus
// the session's static geometry (frozen layout, window snapshot) and
// produces the next session value, ending in an absorbing terminal state
// that carries either a committed rectangle or a cancellation.
package selection

import (
	"fmt"

	"github.com/shotframe/shotframe/internal/gesture"
	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/layout"
	"github.com/shotframe/shotframe/internal/window"
)

// State identifies the interaction state.
type State int

const (
	Idle State = iota
	HoveringWindow
	Dragging
	RegionConfirmable
	Terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case HoveringWindow:
		return "hovering"
	case Dragging:
		return "dragging"
	case RegionConfirmable:
		return "confirmable"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source records how a committed rectangle was chosen.
type Source string

const (
	SourceRegion     Source = "region"
	SourceWindow     Source = "window"
	SourceFullScreen Source = "fullscreen"
)

// Outcome is the result carried by the terminal state. Either Cancelled is
// true, or Rect holds a valid in-bounds logical rectangle with its
// per-output device translations.
type Outcome struct {
	Cancelled bool
	Rect      geometry.Rect
	// DeviceRects maps output name to the device rectangle to crop.
	DeviceRects map[string]geometry.Rect
	// Window is set for window-click commits.
	Window *window.Handle
	Source Source
}

// Options are the interaction thresholds, passed in at construction; there
// is no ambient configuration.
type Options struct {
	// MinArea is the minimum selection area in logical pixels; smaller
	// drag results fall back to hover instead of committing.
	MinArea int
	// NudgeStep is the per-keypress adjustment in logical pixels.
	NudgeStep int
}

// DefaultOptions mirror the shipped configuration defaults.
func DefaultOptions() Options {
	return Options{MinArea: 25, NudgeStep: 1}
}

// Session is the state machine value. It is copied through Transition;
// Layout and Index are immutable shared references scoped to the session.
type Session struct {
	Layout *layout.Layout
	Index  *window.Index
	Opts   Options

	State  State
	Cursor geometry.Point
	// Origin is the drag anchor while State == Dragging.
	Origin geometry.Point
	// Active is the in-progress or confirmable rectangle. Always
	// normalized and inside the output union.
	Active geometry.Rect
	// raw accumulates nudges without clamping so that nudging against an
	// edge and back is symmetric; Active is its clamped view.
	raw geometry.Rect
	// Hovered is valid while State == HoveringWindow.
	Hovered window.Handle

	Outcome *Outcome
}

// NewSession creates an idle session with the cursor at start, clamped into
// the output union. The initial hover state is resolved immediately.
func NewSession(l *layout.Layout, ix *window.Index, opts Options, start geometry.Point) Session {
	if opts.MinArea <= 0 {
		opts.MinArea = DefaultOptions().MinArea
	}
	if opts.NudgeStep <= 0 {
		opts.NudgeStep = DefaultOptions().NudgeStep
	}

	s := Session{Layout: l, Index: ix, Opts: opts, State: Idle}
	s.Cursor = l.ClampToNearest(start)
	return s.rehover()
}

// Done reports whether the session has reached its terminal state.
func (s Session) Done() bool { return s.State == Terminal }

// Transition applies one signal and returns the next session value. The
// terminal state is absorbing: all further signals are ignored.
func Transition(s Session, sig gesture.Signal) Session {
	if s.State == Terminal {
		return s
	}

	switch sig.Kind {
	case gesture.Cancel:
		return s.terminate(Outcome{Cancelled: true})

	case gesture.FullScreen, gesture.DoubleActivate:
		return s.commitRect(s.Layout.Union(), SourceFullScreen)

	case gesture.Move:
		return s.pointerMoved(sig.Point)

	case gesture.DragStart:
		return s.dragStart(sig.Point)

	case gesture.DragUpdate:
		return s.dragUpdate(sig.Point)

	case gesture.DragEnd:
		return s.dragEnd(sig.Point)

	case gesture.Click:
		return s.click(sig.Point)

	case gesture.Confirm:
		return s.confirm()

	case gesture.Nudge:
		return s.nudge(sig.Direction)
	}
	return s
}

func (s Session) pointerMoved(p geometry.Point) Session {
	s.Cursor = s.Layout.ClampToNearest(p)
	if s.State == Idle || s.State == HoveringWindow {
		return s.rehover()
	}
	return s
}

// rehover resolves Idle vs HoveringWindow from the current cursor.
func (s Session) rehover() Session {
	if h, ok := s.Index.HitTest(s.Cursor); ok {
		s.State = HoveringWindow
		s.Hovered = h
	} else {
		s.State = Idle
		s.Hovered = window.Handle{}
	}
	return s
}

func (s Session) dragStart(p geometry.Point) Session {
	// DragStart wins regardless of prior hover state.
	s.Origin = s.Layout.ClampToNearest(p)
	s.Cursor = s.Origin
	s.Active = geometry.Rect{X: s.Origin.X, Y: s.Origin.Y}
	s.State = Dragging
	s.Hovered = window.Handle{}
	return s
}

func (s Session) dragUpdate(p geometry.Point) Session {
	if s.State != Dragging {
		return s
	}
	s.Cursor = s.Layout.ClampToNearest(p)
	s.Active = geometry.FromCorners(s.Origin, s.Cursor).Clamp(s.Layout.Union())
	return s
}

func (s Session) dragEnd(p geometry.Point) Session {
	if s.State != Dragging {
		return s
	}
	s = s.dragUpdate(p)

	if s.Active.Area() >= s.Opts.MinArea {
		s.State = RegionConfirmable
		s.raw = s.Active
		return s
	}

	// Too small to be a deliberate region; treat like a click position and
	// fall back to hover state at that point.
	s.Active = geometry.Rect{}
	return s.rehover()
}

func (s Session) click(p geometry.Point) Session {
	switch s.State {
	case Idle, HoveringWindow:
		s.Cursor = s.Layout.ClampToNearest(p)
		s = s.rehover()
		if s.State == HoveringWindow {
			h := s.Hovered
			return s.commitWindow(h)
		}
		// Click over no window is absorbed.
		return s
	default:
		// Clicks while dragging cannot occur (the detector serializes
		// button state); a click in RegionConfirmable is absorbed to
		// protect the pending selection.
		return s
	}
}

func (s Session) confirm() Session {
	switch s.State {
	case RegionConfirmable:
		return s.commitRect(s.Active, SourceRegion)
	case Dragging:
		// Enter mid-drag commits the current rectangle when it is large
		// enough to be deliberate.
		if s.Active.Area() >= s.Opts.MinArea {
			return s.commitRect(s.Active, SourceRegion)
		}
	}
	return s
}

func (s Session) nudge(dir gesture.Direction) Session {
	dx, dy := 0, 0
	switch dir {
	case gesture.DirLeft:
		dx = -s.Opts.NudgeStep
	case gesture.DirRight:
		dx = s.Opts.NudgeStep
	case gesture.DirUp:
		dy = -s.Opts.NudgeStep
	case gesture.DirDown:
		dy = s.Opts.NudgeStep
	}

	union := s.Layout.Union()
	switch s.State {
	case Dragging:
		// Nudge moves the live corner, i.e. the cursor.
		s.Cursor = union.ClampPoint(s.Cursor.Add(dx, dy))
		s.Active = geometry.FromCorners(s.Origin, s.Cursor).Clamp(union)
	case RegionConfirmable:
		s.raw = s.raw.Translate(dx, dy)
		s.Active = s.raw.Clamp(union)
	}
	// No effect in Idle or HoveringWindow.
	return s
}

// commitRect finalizes a logical rectangle. The rectangle is clamped into
// the output union before the terminal state is constructed, so a committed
// capture can never reference out-of-frame pixels.
func (s Session) commitRect(r geometry.Rect, src Source) Session {
	r = r.Clamp(s.Layout.Union())
	if r.Empty() {
		// A degenerate rectangle is never committed.
		return s.terminate(Outcome{Cancelled: true})
	}
	return s.terminate(Outcome{
		Rect:        r,
		DeviceRects: s.Layout.DeviceRects(r),
		Source:      src,
	})
}

func (s Session) commitWindow(h window.Handle) Session {
	r := h.Rect.Clamp(s.Layout.Union())
	if r.Empty() {
		return s.terminate(Outcome{Cancelled: true})
	}
	return s.terminate(Outcome{
		Rect:        r,
		DeviceRects: s.Layout.DeviceRects(r),
		Window:      &h,
		Source:      SourceWindow,
	})
}

func (s Session) terminate(o Outcome) Session {
	s.State = Terminal
	s.Outcome = &o
	if o.Cancelled {
		// Cancellation is total: no partial selection state remains
		// observable.
		s.Active = geometry.Rect{}
		s.Hovered = window.Handle{}
	}
	return s
}

// CommitRegion is the non-interactive path for a literal region request. It
// produces the same outcome as interactively dragging the region and
// confirming it.
func CommitRegion(l *layout.Layout, r geometry.Rect) (Outcome, error) {
	if r.W <= 0 || r.H <= 0 {
		return Outcome{}, fmt.Errorf("region must have positive dimensions, got %s", r)
	}
	clamped := r.Clamp(l.Union())
	if clamped.Empty() {
		return Outcome{}, fmt.Errorf("region %s lies outside the output layout", r)
	}
	return Outcome{
		Rect:        clamped,
		DeviceRects: l.DeviceRects(clamped),
		Source:      SourceRegion,
	}, nil
}

// CommitWindow is the non-interactive path for an app-id lookup.
func CommitWindow(l *layout.Layout, ix *window.Index, appID string, first bool) (Outcome, error) {
	h, err := ix.LookupByAppID(appID, first)
	if err != nil {
		return Outcome{}, err
	}
	r := h.Rect.Clamp(l.Union())
	if r.Empty() {
		return Outcome{}, fmt.Errorf("window %q has no visible area", appID)
	}
	return Outcome{
		Rect:        r,
		DeviceRects: l.DeviceRects(r),
		Window:      &h,
		Source:      SourceWindow,
	}, nil
}

// CommitFullScreen is the non-interactive path for full-screen capture. An
// empty monitor name captures the union of all outputs.
func CommitFullScreen(l *layout.Layout, monitor string) (Outcome, error) {
	r := l.Union()
	if monitor != "" {
		o, ok := l.Lookup(monitor)
		if !ok {
			return Outcome{}, fmt.Errorf("unknown output %q", monitor)
		}
		r = o.LogicalRect()
	}
	return Outcome{
		Rect:        r,
		DeviceRects: l.DeviceRects(r),
		Source:      SourceFullScreen,
	}, nil
}
