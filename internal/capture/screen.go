package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/kbinani/screenshot"

	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/layout"
	"github.com/shotframe/shotframe/internal/logger"
)

// ScreenBackend captures displays in-process via the screenshot library.
// It is the fallback when no wayland-capture binary is configured; display
// bounds are reported in pixels, so scale is always 1.
type ScreenBackend struct{}

// NewScreenBackend creates the in-process fallback backend.
func NewScreenBackend() *ScreenBackend { return &ScreenBackend{} }

// Name returns the backend name.
func (b *ScreenBackend) Name() string { return "screenshot" }

// IsAvailable reports whether any display is reachable.
func (b *ScreenBackend) IsAvailable() bool {
	return screenshot.NumActiveDisplays() > 0
}

// ListOutputs enumerates active displays as synthetic outputs.
func (b *ScreenBackend) ListOutputs(_ context.Context) ([]layout.Output, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("%w: no active displays", ErrCaptureUnavailable)
	}

	outputs := make([]layout.Output, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		outputs = append(outputs, layout.Output{
			Name:       fmt.Sprintf("display-%d", i),
			LogicalPos: geometry.Point{X: bounds.Min.X, Y: bounds.Min.Y},
			LogicalW:   bounds.Dx(),
			LogicalH:   bounds.Dy(),
			DeviceW:    bounds.Dx(),
			DeviceH:    bounds.Dy(),
			Scale:      1,
		})
	}
	return outputs, nil
}

// Freeze captures every display.
func (b *ScreenBackend) Freeze(ctx context.Context) ([]*FrameBuffer, error) {
	outputs, err := b.ListOutputs(ctx)
	if err != nil {
		return nil, err
	}

	frames := make([]*FrameBuffer, 0, len(outputs))
	for i, o := range outputs {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, ctx.Err())
		}
		img, err := screenshot.CaptureDisplay(i)
		if err != nil {
			return nil, fmt.Errorf("%w: display %d: %v", ErrCaptureUnavailable, i, err)
		}
		frames = append(frames, &FrameBuffer{Output: o, Pixels: img})
		clog := logger.WithComponent("capture")
		clog.Debug().Str("output", o.Name).Msg("Output frozen")
	}
	return frames, nil
}

// GrabRegion captures a device rectangle from one display.
func (b *ScreenBackend) GrabRegion(ctx context.Context, output string, rect geometry.Rect) ([]byte, error) {
	outputs, err := b.ListOutputs(ctx)
	if err != nil {
		return nil, err
	}

	for i, o := range outputs {
		if o.Name != output {
			continue
		}
		bounds := screenshot.GetDisplayBounds(i)
		abs := image.Rect(
			bounds.Min.X+rect.X,
			bounds.Min.Y+rect.Y,
			bounds.Min.X+rect.Right(),
			bounds.Min.Y+rect.Bottom(),
		)
		img, err := screenshot.CaptureRect(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode grab: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: unknown output %q", ErrCaptureUnavailable, output)
}
