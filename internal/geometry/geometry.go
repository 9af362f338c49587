// Package geometry provides integer point and rectangle math in pixel
// coordinate spaces. All operations are pure; rectangles are never allowed
// to carry negative dimensions.
package geometry

import "fmt"

// Point is a position in a pixel coordinate space (logical or device).
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the point translated by dx, dy.
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// In reports whether the point lies inside r (right/bottom edges exclusive).
func (p Point) In(r Rect) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Rect is an axis-aligned rectangle with non-negative dimensions.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"width"`
	H int `json:"height"`
}

// FromCorners returns the normalized bounding box of two points, regardless
// of which quadrant the second point lies in relative to the first.
func FromCorners(a, b Point) Rect {
	x, w := minSpan(a.X, b.X)
	y, h := minSpan(a.Y, b.Y)
	return Rect{X: x, Y: y, W: w, H: h}
}

func minSpan(a, b int) (origin, span int) {
	if a <= b {
		return a, b - a
	}
	return b, a - b
}

// Area returns the rectangle's area in pixels.
func (r Rect) Area() int { return r.W * r.H }

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Translate returns the rectangle shifted by dx, dy.
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Intersect returns the overlap of r and other, or an empty rectangle when
// they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x1 := max(r.X, other.X)
	y1 := max(r.Y, other.Y)
	x2 := min(r.Right(), other.Right())
	y2 := min(r.Bottom(), other.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Overlaps reports whether r and other share any area.
func (r Rect) Overlaps(other Rect) bool {
	return !r.Intersect(other).Empty()
}

// Union returns the smallest rectangle containing both r and other. Empty
// rectangles are treated as absent.
func (r Rect) Union(other Rect) Rect {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	x1 := min(r.X, other.X)
	y1 := min(r.Y, other.Y)
	x2 := max(r.Right(), other.Right())
	y2 := max(r.Bottom(), other.Bottom())
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Clamp returns the rectangle moved and, if necessary, shrunk so that it
// lies entirely inside bounds. Dimensions never go negative.
func (r Rect) Clamp(bounds Rect) Rect {
	if r.W > bounds.W {
		r.W = bounds.W
	}
	if r.H > bounds.H {
		r.H = bounds.H
	}
	if r.X < bounds.X {
		r.X = bounds.X
	}
	if r.Y < bounds.Y {
		r.Y = bounds.Y
	}
	if r.Right() > bounds.Right() {
		r.X = bounds.Right() - r.W
	}
	if r.Bottom() > bounds.Bottom() {
		r.Y = bounds.Bottom() - r.H
	}
	return r
}

// ClampPoint returns the nearest point to p that lies inside r.
func (r Rect) ClampPoint(p Point) Point {
	if p.X < r.X {
		p.X = r.X
	}
	if p.X >= r.Right() {
		p.X = r.Right() - 1
	}
	if p.Y < r.Y {
		p.Y = r.Y
	}
	if p.Y >= r.Bottom() {
		p.Y = r.Bottom() - 1
	}
	return p
}

// Scale converts the rectangle by a scale factor, flooring the origin and
// ceiling the extent so the scaled rectangle always covers the source area.
func (r Rect) Scale(factor float64) Rect {
	x1 := floorScale(r.X, factor)
	y1 := floorScale(r.Y, factor)
	x2 := ceilScale(r.Right(), factor)
	y2 := ceilScale(r.Bottom(), factor)
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

func floorScale(v int, factor float64) int {
	f := float64(v) * factor
	i := int(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return i
}

func ceilScale(v int, factor float64) int {
	f := float64(v) * factor
	i := int(f)
	if f > 0 && float64(i) != f {
		i++
	}
	return i
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.W, r.H)
}
