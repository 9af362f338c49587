// Package capture defines the capture collaborator: the component that
// freezes per-output frame buffers before the overlay becomes interactive
// and performs the final pixel grab for a committed rectangle.
package capture

import (
	"context"
	"errors"
	"image"

	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/layout"
)

// ErrCaptureUnavailable is returned when the capture collaborator times out
// or fails. It is fatal to the session: no overlay is shown on top of a
// stale or partial frame.
var ErrCaptureUnavailable = errors.New("capture unavailable")

// FrameBuffer is an immutable pixel snapshot of one output taken at freeze
// time. Pixels are in device coordinates; Output carries the scale factor
// and logical offset needed to map them.
type FrameBuffer struct {
	Output layout.Output
	Pixels *image.RGBA
}

// DeviceRect returns the buffer's full extent in device coordinates.
func (fb *FrameBuffer) DeviceRect() geometry.Rect {
	return geometry.Rect{W: fb.Output.DeviceW, H: fb.Output.DeviceH}
}

// Request describes a final pixel grab for a committed rectangle,
// pre-translated to device coordinates per intersecting output.
type Request struct {
	// Rects maps output name to the device rectangle to grab.
	Rects map[string]geometry.Rect
}

// Capturer is the interface to a capture backend.
type Capturer interface {
	// ListOutputs enumerates the active outputs and their layout.
	ListOutputs(ctx context.Context) ([]layout.Output, error)

	// Freeze captures one frame buffer per output. Blocking is bounded by
	// ctx; exceeding it fails with ErrCaptureUnavailable.
	Freeze(ctx context.Context) ([]*FrameBuffer, error)

	// GrabRegion captures a single device rectangle from one output and
	// returns the encoded PNG bytes.
	GrabRegion(ctx context.Context, output string, rect geometry.Rect) ([]byte, error)

	// Name returns a human-readable backend name.
	Name() string

	// IsAvailable reports whether the backend can run in this environment.
	IsAvailable() bool
}

// Select returns the first available backend, preferring earlier entries.
func Select(backends ...Capturer) (Capturer, error) {
	for _, b := range backends {
		if b.IsAvailable() {
			return b, nil
		}
	}
	return nil, errors.New("no capture backend available")
}
