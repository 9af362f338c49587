package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/shotframe/shotframe/internal/geometry"
)

var (
	dimColor     = color.RGBA{A: 128}
	outlineColor = color.RGBA{R: 77, G: 153, B: 255, A: 255}
	tintColor    = color.RGBA{R: 77, G: 153, B: 255, A: 77}
	labelText    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	labelBg      = color.RGBA{A: 204}
	crossOutline = color.RGBA{A: 255}
	crossCenter  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// fillOver alpha-blends a uniform color over a rectangle of dst.
func fillOver(dst *image.RGBA, r geometry.Rect, c color.RGBA) {
	if r.Empty() {
		return
	}
	area := image.Rect(r.X, r.Y, r.Right(), r.Bottom())
	draw.Draw(dst, area, &image.Uniform{c}, image.Point{}, draw.Over)
}

// dimOutside darkens everything outside keep, in four strips like a frame.
func dimOutside(dst *image.RGBA, keep geometry.Rect) {
	b := dst.Bounds()
	full := geometry.Rect{X: b.Min.X, Y: b.Min.Y, W: b.Dx(), H: b.Dy()}
	keep = keep.Intersect(full)
	if keep.Empty() {
		fillOver(dst, full, dimColor)
		return
	}

	fillOver(dst, geometry.Rect{X: full.X, Y: full.Y, W: full.W, H: keep.Y - full.Y}, dimColor)
	fillOver(dst, geometry.Rect{X: full.X, Y: keep.Y, W: keep.X - full.X, H: keep.H}, dimColor)
	fillOver(dst, geometry.Rect{X: keep.Right(), Y: keep.Y, W: full.Right() - keep.Right(), H: keep.H}, dimColor)
	fillOver(dst, geometry.Rect{X: full.X, Y: keep.Bottom(), W: full.W, H: full.Bottom() - keep.Bottom()}, dimColor)
}

// strokeRect draws a rectangle outline of the given thickness.
func strokeRect(dst *image.RGBA, r geometry.Rect, thickness int, c color.RGBA) {
	if r.Empty() {
		return
	}
	fillOver(dst, geometry.Rect{X: r.X, Y: r.Y, W: r.W, H: thickness}, c)
	fillOver(dst, geometry.Rect{X: r.X, Y: r.Bottom() - thickness, W: r.W, H: thickness}, c)
	fillOver(dst, geometry.Rect{X: r.X, Y: r.Y, W: thickness, H: r.H}, c)
	fillOver(dst, geometry.Rect{X: r.Right() - thickness, Y: r.Y, W: thickness, H: r.H}, c)
}

// drawCrosshair marks the cursor with a black-outlined white cross.
func drawCrosshair(dst *image.RGBA, p geometry.Point, size int) {
	fillOver(dst, geometry.Rect{X: p.X - size, Y: p.Y - 1, W: 2*size + 1, H: 3}, crossOutline)
	fillOver(dst, geometry.Rect{X: p.X - 1, Y: p.Y - size, W: 3, H: 2*size + 1}, crossOutline)
	fillOver(dst, geometry.Rect{X: p.X - size, Y: p.Y, W: 2*size + 1, H: 1}, crossCenter)
	fillOver(dst, geometry.Rect{X: p.X, Y: p.Y - size, W: 1, H: 2*size + 1}, crossCenter)
}

const labelPadding = 4

// drawLabel renders one line of text with a translucent background. The
// returned rect is the label's footprint.
func drawLabel(dst *image.RGBA, text string, at geometry.Point) geometry.Rect {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(labelText), Face: face}

	textW := d.MeasureString(text).Ceil()
	box := geometry.Rect{
		X: at.X,
		Y: at.Y,
		W: textW + labelPadding*2,
		H: face.Height + labelPadding*2,
	}
	fillOver(dst, box, labelBg)

	d.Dot = fixed.P(at.X+labelPadding, at.Y+labelPadding+face.Ascent)
	d.DrawString(text)
	return box
}

// measureLabel returns the footprint drawLabel would use, for placement.
func measureLabel(text string) (w, h int) {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	return d.MeasureString(text).Ceil() + labelPadding*2, face.Height + labelPadding*2
}
