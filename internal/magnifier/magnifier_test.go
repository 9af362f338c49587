package magnifier

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotframe/shotframe/internal/geometry"
)

func checkerFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func TestRenderSizeAndCenterPixel(t *testing.T) {
	r := New(10)
	assert.Equal(t, 90, r.Size())

	frame := checkerFrame(100, 100)
	out := r.Render(frame, geometry.Point{X: 50, Y: 50})
	require.Equal(t, 90, out.Bounds().Dx())
	require.Equal(t, 90, out.Bounds().Dy())

	// Center cell shows the focal pixel. Sample inside the cell, away
	// from grid lines and the focus box outline.
	want := frame.RGBAAt(50, 50)
	got := out.RGBAAt(4*10+5, 4*10+5)
	assert.Equal(t, want, got)

	// A neighbor cell shows the adjacent source pixel, not a blend.
	want = frame.RGBAAt(51, 50)
	got = out.RGBAAt(5*10+5, 4*10+5)
	assert.Equal(t, want, got)
}

func TestRenderEdgeUsesSentinel(t *testing.T) {
	r := New(10)
	frame := checkerFrame(100, 100)

	// Focal at the top-left corner: the upper-left samples fall outside
	// the frame and must use the sentinel color.
	out := r.Render(frame, geometry.Point{X: 0, Y: 0})
	got := out.RGBAAt(5, 5) // grid cell (0,0) = sample (-4,-4)
	assert.Equal(t, outOfFrame, got)

	// The focal pixel itself is real frame content.
	center := out.RGBAAt(4*10+5, 4*10+5)
	assert.Equal(t, frame.RGBAAt(0, 0), center)
}

func TestAnchorStaysOnScreen(t *testing.T) {
	screen := geometry.Rect{W: 1920, H: 1080}
	const size, margin = 216, 40

	tests := []struct {
		name   string
		cursor geometry.Point
	}{
		{"center", geometry.Point{X: 960, Y: 540}},
		{"top-left", geometry.Point{X: 0, Y: 0}},
		{"top-right", geometry.Point{X: 1919, Y: 0}},
		{"bottom-left", geometry.Point{X: 0, Y: 1079}},
		{"bottom-right", geometry.Point{X: 1919, Y: 1079}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := Anchor(tt.cursor, size, margin, screen)
			assert.GreaterOrEqual(t, pos.X, screen.X)
			assert.GreaterOrEqual(t, pos.Y, screen.Y)
			assert.LessOrEqual(t, pos.X+size, screen.Right())
			assert.LessOrEqual(t, pos.Y+size, screen.Bottom())
		})
	}
}

func TestAnchorPrefersAboveRight(t *testing.T) {
	pos := Anchor(geometry.Point{X: 500, Y: 500}, 216, 40, geometry.Rect{W: 1920, H: 1080})
	assert.Equal(t, geometry.Point{X: 540, Y: 244}, pos)
}
