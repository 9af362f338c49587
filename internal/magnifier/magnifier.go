// Package magnifier renders the zoomed pixel-grid preview used for
// pixel-accurate cursor placement. Sampling is nearest-neighbor only: the
// preview shows exact frame pixels, never blended ones.
package magnifier

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/shotframe/shotframe/internal/geometry"
)

const (
	// GridSize is the sampled pixel grid edge; odd so the focal pixel sits
	// exactly in the center.
	GridSize = 9
	// DefaultZoom is the on-screen size of one sampled pixel.
	DefaultZoom = 24
)

var (
	// outOfFrame is the sentinel color for samples past the buffer edge.
	outOfFrame = color.RGBA{R: 24, G: 24, B: 24, A: 255}
	gridLine   = color.RGBA{R: 77, G: 77, B: 77, A: 153}
	focusBox   = color.RGBA{R: 255, G: 51, B: 51, A: 255}
)

// Renderer produces magnifier previews at a fixed zoom factor.
type Renderer struct {
	zoom int
}

// New creates a renderer. Zoom values below 2 fall back to the default.
func New(zoom int) *Renderer {
	if zoom < 2 {
		zoom = DefaultZoom
	}
	return &Renderer{zoom: zoom}
}

// Size returns the rendered preview's edge length in pixels.
func (r *Renderer) Size() int { return GridSize * r.zoom }

// Render samples a GridSize×GridSize device-pixel window centered on the
// device pixel nearest to focal and upscales it by the zoom factor. Samples
// outside the frame are padded with the out-of-frame sentinel rather than
// wrapped or clamped, so edge positioning stays honest.
func (r *Renderer) Render(frame *image.RGBA, focal geometry.Point) *image.RGBA {
	size := r.Size()
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	bounds := frame.Bounds()
	half := GridSize / 2

	for gy := 0; gy < GridSize; gy++ {
		for gx := 0; gx < GridSize; gx++ {
			sx := focal.X - half + gx
			sy := focal.Y - half + gy

			var c color.RGBA
			if sx >= bounds.Min.X && sx < bounds.Max.X && sy >= bounds.Min.Y && sy < bounds.Max.Y {
				c = frame.RGBAAt(sx, sy)
				c.A = 255
			} else {
				c = outOfFrame
			}

			cell := image.Rect(gx*r.zoom, gy*r.zoom, (gx+1)*r.zoom, (gy+1)*r.zoom)
			draw.Draw(dst, cell, &image.Uniform{c}, image.Point{}, draw.Src)
		}
	}

	r.drawGrid(dst)
	r.drawFocusBox(dst)
	return dst
}

func (r *Renderer) drawGrid(dst *image.RGBA) {
	size := r.Size()
	for i := 0; i <= GridSize; i++ {
		pos := i * r.zoom
		if pos >= size {
			pos = size - 1
		}
		for p := 0; p < size; p++ {
			dst.SetRGBA(pos, p, gridLine)
			dst.SetRGBA(p, pos, gridLine)
		}
	}
}

// drawFocusBox outlines the center cell marking the exact target pixel.
func (r *Renderer) drawFocusBox(dst *image.RGBA) {
	half := GridSize / 2
	x0, y0 := half*r.zoom, half*r.zoom
	x1, y1 := x0+r.zoom, y0+r.zoom

	for x := x0; x <= x1; x++ {
		dst.SetRGBA(x, y0, focusBox)
		dst.SetRGBA(x, y1, focusBox)
	}
	for y := y0; y <= y1; y++ {
		dst.SetRGBA(x0, y, focusBox)
		dst.SetRGBA(x1, y, focusBox)
	}
}

// Anchor places a square preview of the given size near the cursor while
// keeping it fully on screen: above-right of the cursor by preference,
// flipping sides when it would run off an edge.
func Anchor(cursor geometry.Point, size, margin int, screen geometry.Rect) geometry.Point {
	pos := geometry.Point{X: cursor.X + margin, Y: cursor.Y - margin - size}

	if pos.X+size > screen.Right() {
		pos.X = cursor.X - margin - size
	}
	if pos.X < screen.X {
		pos.X = screen.X + margin
	}
	if pos.Y < screen.Y {
		pos.Y = cursor.Y + margin
	}
	if pos.Y+size > screen.Bottom() {
		pos.Y = screen.Bottom() - size - margin
	}
	return pos
}
