// Package render composes the interactive overlay frame for one output: the
// frozen screenshot underneath, a dim layer with the current highlight cut
// out, the selection outline and dimension label, the cursor crosshair, and
// the magnifier preview. Composition is stateless; it reads a session value
// and produces a fresh image every time.
package render

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/shotframe/shotframe/internal/capture"
	"github.com/shotframe/shotframe/internal/geometry"
	"github.com/shotframe/shotframe/internal/layout"
	"github.com/shotframe/shotframe/internal/magnifier"
	"github.com/shotframe/shotframe/internal/selection"
)

const (
	outlineThickness = 2
	crosshairSize    = 10
	magnifierMargin  = 40
	hintMargin       = 16
)

var hintLines = []string{
	"drag to select a region, click a window to capture it",
	"arrows nudge, enter confirms, double-click or space for full screen, esc cancels",
}

// Compositor renders overlay frames for a fixed set of frozen buffers.
type Compositor struct {
	frames    map[string]*capture.FrameBuffer
	mag       *magnifier.Renderer
	showHints bool
}

// New creates a compositor over the frozen frame buffers.
func New(frames []*capture.FrameBuffer, mag *magnifier.Renderer, showHints bool) *Compositor {
	byName := make(map[string]*capture.FrameBuffer, len(frames))
	for _, fb := range frames {
		byName[fb.Output.Name] = fb
	}
	return &Compositor{frames: byName, mag: mag, showHints: showHints}
}

// Compose renders the overlay for one output from the current session value.
// The returned image is in the output's device coordinates and is owned by
// the caller.
func (c *Compositor) Compose(s selection.Session, output string) (*image.RGBA, error) {
	fb, ok := c.frames[output]
	if !ok {
		return nil, fmt.Errorf("no frozen frame for output %q", output)
	}
	o := fb.Output

	dst := image.NewRGBA(fb.Pixels.Bounds())
	draw.Draw(dst, dst.Bounds(), fb.Pixels, fb.Pixels.Bounds().Min, draw.Src)

	switch s.State {
	case selection.Idle:
		dimOutside(dst, geometry.Rect{})

	case selection.HoveringWindow:
		hl := deviceRectOn(o, s.Hovered.Rect)
		dimOutside(dst, hl)
		c.redimFrontWindows(dst, o, s)
		fillOver(dst, hl, tintColor)
		strokeRect(dst, hl, outlineThickness, outlineColor)

	case selection.Dragging, selection.RegionConfirmable:
		hl := deviceRectOn(o, s.Active)
		dimOutside(dst, hl)
		strokeRect(dst, hl, outlineThickness, outlineColor)
		c.drawDimensions(dst, o, s)
	}

	if s.State != selection.Terminal {
		c.drawCursorChrome(dst, fb, s)
		if c.showHints {
			c.drawHints(dst)
		}
	}
	return dst, nil
}

// redimFrontWindows re-darkens the parts of the highlight covered by windows
// stacked in front of the hovered one, so the highlight reflects what a
// capture of that window would actually show.
func (c *Compositor) redimFrontWindows(dst *image.RGBA, o layout.Output, s selection.Session) {
	hl := s.Hovered.Rect
	for _, front := range s.Index.FrontWindowsOverlapping(s.Hovered) {
		covered := front.Rect.Intersect(hl)
		if covered.Empty() {
			continue
		}
		fillOver(dst, deviceRectOn(o, covered), dimColor)
	}
}

// drawDimensions places the "WxH" label just outside the selection's
// top-left corner, flipping inside when there is no room above.
func (c *Compositor) drawDimensions(dst *image.RGBA, o layout.Output, s selection.Session) {
	if s.Active.Empty() {
		return
	}
	dev := deviceRectOn(o, s.Active)
	if dev.Empty() {
		return
	}

	text := fmt.Sprintf("%dx%d", s.Active.W, s.Active.H)
	_, h := measureLabel(text)

	at := geometry.Point{X: dev.X, Y: dev.Y - h - outlineThickness}
	if at.Y < dst.Bounds().Min.Y {
		at.Y = dev.Y + outlineThickness
	}
	drawLabel(dst, text, at)
}

// drawCursorChrome renders the crosshair and the magnifier preview when the
// cursor is on this output.
func (c *Compositor) drawCursorChrome(dst *image.RGBA, fb *capture.FrameBuffer, s selection.Session) {
	o, local, err := s.Layout.GlobalToOutput(s.Cursor)
	if err != nil || o.Name != fb.Output.Name {
		return
	}
	focal := layout.ToDevice(o, local)

	drawCrosshair(dst, focal, crosshairSize)

	if c.mag == nil {
		return
	}
	preview := c.mag.Render(fb.Pixels, focal)
	size := c.mag.Size()
	screen := geometry.Rect{W: o.DeviceW, H: o.DeviceH}
	pos := magnifier.Anchor(focal, size, magnifierMargin, screen)
	area := image.Rect(pos.X, pos.Y, pos.X+size, pos.Y+size)
	draw.Draw(dst, area, preview, image.Point{}, draw.Over)
}

func (c *Compositor) drawHints(dst *image.RGBA) {
	b := dst.Bounds()
	_, h := measureLabel(hintLines[0])
	y := b.Max.Y - hintMargin - len(hintLines)*(h+labelPadding)
	for _, line := range hintLines {
		drawLabel(dst, line, geometry.Point{X: b.Min.X + hintMargin, Y: y})
		y += h + labelPadding
	}
}

// deviceRectOn translates a global logical rectangle into this output's
// device coordinates, clipped to the output.
func deviceRectOn(o layout.Output, r geometry.Rect) geometry.Rect {
	part := r.Intersect(o.LogicalRect())
	if part.Empty() {
		return geometry.Rect{}
	}
	local := part.Translate(-o.LogicalPos.X, -o.LogicalPos.Y)
	return local.Scale(o.Scale).Clamp(geometry.Rect{W: o.DeviceW, H: o.DeviceH})
}
