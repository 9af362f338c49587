package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/layout"
	"github.com/shotframe/shotframe/internal/logger"
)

// defaultGrabTimeout bounds a single invocation of the capture binary.
const defaultGrabTimeout = 10 * time.Second

// Subprocess drives the external wayland-capture binary. The binary owns
// the compositor protocol; this backend only shells out and decodes the
// resulting PNG files.
type Subprocess struct {
	binary  string
	timeout time.Duration
}

// NewSubprocess creates a backend for the given binary path.
func NewSubprocess(binary string) *Subprocess {
	return &Subprocess{binary: binary, timeout: defaultGrabTimeout}
}

// Name returns the backend name.
func (s *Subprocess) Name() string { return "wayland-capture" }

// IsAvailable reports whether the capture binary can be found.
func (s *Subprocess) IsAvailable() bool {
	if s.binary == "" {
		return false
	}
	if _, err := exec.LookPath(s.binary); err == nil {
		return true
	}
	info, err := os.Stat(s.binary)
	return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
}

// outputListing mirrors the binary's --list --json schema.
type outputListing struct {
	Outputs []struct {
		Name   string  `json:"name"`
		X      int     `json:"x"`
		Y      int     `json:"y"`
		Width  int     `json:"width"`
		Height int     `json:"height"`
		Scale  float64 `json:"scale"`
	} `json:"outputs"`
}

// ListOutputs enumerates active outputs from the capture binary.
func (s *Subprocess) ListOutputs(ctx context.Context) ([]layout.Output, error) {
	stdout, err := s.run(ctx, "--list", "--json")
	if err != nil {
		return nil, err
	}
	return parseOutputListing(stdout)
}

func parseOutputListing(data []byte) ([]layout.Output, error) {
	var listing outputListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("%w: bad output listing: %v", ErrCaptureUnavailable, err)
	}
	if len(listing.Outputs) == 0 {
		return nil, fmt.Errorf("%w: no outputs reported", ErrCaptureUnavailable)
	}

	outputs := make([]layout.Output, 0, len(listing.Outputs))
	for _, o := range listing.Outputs {
		scale := o.Scale
		if scale <= 0 {
			scale = 1
		}
		outputs = append(outputs, layout.Output{
			Name:       o.Name,
			LogicalPos: geometry.Point{X: o.X, Y: o.Y},
			LogicalW:   o.Width,
			LogicalH:   o.Height,
			DeviceW:    int(float64(o.Width) * scale),
			DeviceH:    int(float64(o.Height) * scale),
			Scale:      scale,
		})
	}
	return outputs, nil
}

// Freeze captures every output to a temp PNG and decodes it into an
// immutable frame buffer.
func (s *Subprocess) Freeze(ctx context.Context) ([]*FrameBuffer, error) {
	outputs, err := s.ListOutputs(ctx)
	if err != nil {
		return nil, err
	}

	frames := make([]*FrameBuffer, 0, len(outputs))
	for _, o := range outputs {
		img, err := s.captureToImage(ctx, "--output", o.Name)
		if err != nil {
			return nil, err
		}

		b := img.Bounds()
		o.DeviceW, o.DeviceH = b.Dx(), b.Dy()
		frames = append(frames, &FrameBuffer{Output: o, Pixels: img})
		clog := logger.WithComponent("capture")
		clog.Debug().
			Str("output", o.Name).
			Int("width", b.Dx()).
			Int("height", b.Dy()).
			Msg("Output frozen")
	}
	return frames, nil
}

// GrabRegion captures a device rectangle from one output and returns PNG
// bytes.
func (s *Subprocess) GrabRegion(ctx context.Context, output string, rect geometry.Rect) ([]byte, error) {
	img, err := s.captureToImage(ctx,
		"--output", output,
		"--region", rect.String(),
	)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode grab: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Subprocess) captureToImage(ctx context.Context, args ...string) (*image.RGBA, error) {
	tmp, err := os.CreateTemp("", "shotframe-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if _, err := s.run(ctx, append(args, "--output-file", tmpPath)...); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Clean(tmpPath))
	if err != nil {
		return nil, fmt.Errorf("%w: capture produced no file: %v", ErrCaptureUnavailable, err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: bad capture image: %v", ErrCaptureUnavailable, err)
	}
	return toRGBA(decoded), nil
}

func (s *Subprocess) run(ctx context.Context, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, s.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() != nil {
		return nil, fmt.Errorf("%w: %s timed out", ErrCaptureUnavailable, s.binary)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrCaptureUnavailable, s.binary, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}
