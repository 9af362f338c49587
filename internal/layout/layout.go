// Package layout maps between logical coordinates (as reported by input
// events and window geometry) and device-pixel coordinates (as captured),
// across a multi-output arrangement with per-output scale factors.
package layout

import (
	"errors"
	"fmt"

	"github.com/shotframe/shotframe/internal/geometry"
)

// ErrOutOfBounds is returned when a point lies outside every known output.
var ErrOutOfBounds = errors.New("point outside all outputs")

// Output describes one display in the global layout. LogicalPos is its
// offset in the tiled logical arrangement; DeviceW/DeviceH are the captured
// buffer dimensions; Scale converts logical to device pixels.
type Output struct {
	Name       string
	LogicalPos geometry.Point
	LogicalW   int
	LogicalH   int
	DeviceW    int
	DeviceH    int
	Scale      float64
}

// LogicalRect returns the output's region in global logical coordinates.
func (o Output) LogicalRect() geometry.Rect {
	return geometry.Rect{X: o.LogicalPos.X, Y: o.LogicalPos.Y, W: o.LogicalW, H: o.LogicalH}
}

// Layout is an immutable arrangement of outputs tiled edge-to-edge without
// overlap. It is built once per session.
type Layout struct {
	outputs []Output
	union   geometry.Rect
}

// New builds a layout from the given outputs. Outputs with a zero or
// negative scale are normalized to scale 1.
func New(outputs []Output) (*Layout, error) {
	if len(outputs) == 0 {
		return nil, errors.New("layout requires at least one output")
	}

	union := geometry.Rect{}
	for i := range outputs {
		if outputs[i].Scale <= 0 {
			outputs[i].Scale = 1
		}
		union = union.Union(outputs[i].LogicalRect())
	}

	return &Layout{outputs: outputs, union: union}, nil
}

// Outputs returns the outputs in layout order.
func (l *Layout) Outputs() []Output { return l.outputs }

// Union returns the bounding rectangle of all outputs in logical space.
func (l *Layout) Union() geometry.Rect { return l.union }

// Lookup returns the output with the given name.
func (l *Layout) Lookup(name string) (Output, bool) {
	for _, o := range l.outputs {
		if o.Name == name {
			return o, true
		}
	}
	return Output{}, false
}

// GlobalToOutput resolves a global logical point to the output containing
// it and the point local to that output's logical origin. Returns
// ErrOutOfBounds when no output contains the point.
func (l *Layout) GlobalToOutput(p geometry.Point) (Output, geometry.Point, error) {
	for _, o := range l.outputs {
		if p.In(o.LogicalRect()) {
			local := geometry.Point{X: p.X - o.LogicalPos.X, Y: p.Y - o.LogicalPos.Y}
			return o, local, nil
		}
	}
	return Output{}, geometry.Point{}, fmt.Errorf("%w: %d,%d", ErrOutOfBounds, p.X, p.Y)
}

// ClampToNearest returns p clamped into the output union. Used to recover
// from out-of-bounds pointer positions instead of surfacing an error.
func (l *Layout) ClampToNearest(p geometry.Point) geometry.Point {
	return l.union.ClampPoint(p)
}

// ToDevice converts an output-local logical point to device pixels.
func ToDevice(o Output, local geometry.Point) geometry.Point {
	x := int(float64(local.X) * o.Scale)
	y := int(float64(local.Y) * o.Scale)
	dev := geometry.Point{X: x, Y: y}
	return geometry.Rect{W: o.DeviceW, H: o.DeviceH}.ClampPoint(dev)
}

// ToLogical converts an output device-pixel point to output-local logical
// coordinates.
func ToLogical(o Output, device geometry.Point) geometry.Point {
	x := int(float64(device.X) / o.Scale)
	y := int(float64(device.Y) / o.Scale)
	p := geometry.Point{X: x, Y: y}
	return geometry.Rect{W: o.LogicalW, H: o.LogicalH}.ClampPoint(p)
}

// OutputsIntersecting returns the outputs whose logical region overlaps r.
func (l *Layout) OutputsIntersecting(r geometry.Rect) []Output {
	var hit []Output
	for _, o := range l.outputs {
		if r.Overlaps(o.LogicalRect()) {
			hit = append(hit, o)
		}
	}
	return hit
}

// DeviceRects translates a committed logical rectangle into per-output
// device rectangles, one entry per intersecting output. Every returned
// rectangle lies within its output's device buffer.
func (l *Layout) DeviceRects(r geometry.Rect) map[string]geometry.Rect {
	out := make(map[string]geometry.Rect)
	for _, o := range l.outputs {
		part := r.Intersect(o.LogicalRect())
		if part.Empty() {
			continue
		}
		local := part.Translate(-o.LogicalPos.X, -o.LogicalPos.Y)
		dev := local.Scale(o.Scale).Clamp(geometry.Rect{W: o.DeviceW, H: o.DeviceH})
		if !dev.Empty() {
			out[o.Name] = dev
		}
	}
	return out
}
