package capture

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/layout"
)

func TestParseOutputListing(t *testing.T) {
	data := []byte(`{
		"outputs": [
			{"name": "eDP-1", "x": 0, "y": 0, "width": 1920, "height": 1080, "scale": 2.0},
			{"name": "HDMI-A-1", "x": 1920, "y": 0, "width": 1920, "height": 1080}
		]
	}`)

	outputs, err := parseOutputListing(data)
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	assert.Equal(t, "eDP-1", outputs[0].Name)
	assert.Equal(t, 2.0, outputs[0].Scale)
	assert.Equal(t, 3840, outputs[0].DeviceW)

	// Missing scale defaults to 1.
	assert.Equal(t, 1.0, outputs[1].Scale)
	assert.Equal(t, geometry.Point{X: 1920, Y: 0}, outputs[1].LogicalPos)
}

func TestParseOutputListingErrors(t *testing.T) {
	_, err := parseOutputListing([]byte(`not json`))
	assert.ErrorIs(t, err, ErrCaptureUnavailable)

	_, err = parseOutputListing([]byte(`{"outputs": []}`))
	assert.ErrorIs(t, err, ErrCaptureUnavailable)
}

func TestSubprocessTimeout(t *testing.T) {
	s := NewSubprocess("sleep")
	s.timeout = 50 * time.Millisecond

	_, err := s.run(context.Background(), "5")
	assert.ErrorIs(t, err, ErrCaptureUnavailable)
}

func TestSubprocessFailure(t *testing.T) {
	s := NewSubprocess("false")
	_, err := s.run(context.Background())
	assert.ErrorIs(t, err, ErrCaptureUnavailable)
}

func TestSubprocessAvailability(t *testing.T) {
	assert.False(t, NewSubprocess("").IsAvailable())
	assert.False(t, NewSubprocess("/no/such/binary").IsAvailable())
	assert.True(t, NewSubprocess("sh").IsAvailable())
}

func testFrame(name string, w, h int, fill color.RGBA) *FrameBuffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	return &FrameBuffer{
		Output: layout.Output{Name: name, LogicalW: w, LogicalH: h, DeviceW: w, DeviceH: h, Scale: 1},
		Pixels: img,
	}
}

func TestCropFrames(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	frames := []*FrameBuffer{testFrame("eDP-1", 100, 100, red)}

	crops, err := CropFrames(frames, map[string]geometry.Rect{
		"eDP-1": {X: 10, Y: 20, W: 30, H: 40},
	})
	require.NoError(t, err)
	require.Len(t, crops, 1)

	crop := crops[0]
	assert.Equal(t, 30, crop.Image.Bounds().Dx())
	assert.Equal(t, 40, crop.Image.Bounds().Dy())
	assert.Equal(t, red, crop.Image.RGBAAt(0, 0))

	data, err := crop.EncodePNG()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestCropFramesUnknownOutput(t *testing.T) {
	frames := []*FrameBuffer{testFrame("eDP-1", 100, 100, color.RGBA{A: 255})}
	_, err := CropFrames(frames, map[string]geometry.Rect{"HDMI-A-1": {W: 10, H: 10}})
	assert.Error(t, err)
}

func TestCropFramesOutOfBounds(t *testing.T) {
	frames := []*FrameBuffer{testFrame("eDP-1", 100, 100, color.RGBA{A: 255})}
	_, err := CropFrames(frames, map[string]geometry.Rect{"eDP-1": {X: 200, Y: 200, W: 10, H: 10}})
	assert.Error(t, err)
}
