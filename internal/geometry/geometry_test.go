package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromCornersAllQuadrants(t *testing.T) {
	origin := Point{X: 100, Y: 100}
	tests := []struct {
		name string
		to   Point
		want Rect
	}{
		{"down-right", Point{150, 180}, Rect{100, 100, 50, 80}},
		{"down-left", Point{40, 180}, Rect{40, 100, 60, 80}},
		{"up-right", Point{150, 30}, Rect{100, 30, 50, 70}},
		{"up-left", Point{40, 30}, Rect{40, 30, 60, 70}},
		{"same point", Point{100, 100}, Rect{100, 100, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromCorners(origin, tt.to)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.W, 0)
			assert.GreaterOrEqual(t, got.H, 0)
		})
	}
}

func TestClamp(t *testing.T) {
	bounds := Rect{0, 0, 1920, 1080}

	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside", Rect{10, 10, 100, 100}, Rect{10, 10, 100, 100}},
		{"past left", Rect{-5, 10, 100, 100}, Rect{0, 10, 100, 100}},
		{"past right", Rect{1900, 10, 100, 100}, Rect{1820, 10, 100, 100}},
		{"past bottom", Rect{10, 1050, 100, 100}, Rect{10, 980, 100, 100}},
		{"too wide", Rect{0, 0, 3000, 100}, Rect{0, 0, 1920, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp(bounds))
		})
	}
}

func TestIntersect(t *testing.T) {
	a := Rect{0, 0, 100, 100}
	assert.Equal(t, Rect{50, 50, 50, 50}, a.Intersect(Rect{50, 50, 200, 200}))
	assert.True(t, a.Intersect(Rect{100, 0, 50, 50}).Empty(), "edge-adjacent rects do not overlap")
	assert.True(t, a.Intersect(Rect{500, 500, 10, 10}).Empty())
}

func TestUnion(t *testing.T) {
	a := Rect{0, 0, 100, 100}
	b := Rect{200, 50, 100, 100}
	assert.Equal(t, Rect{0, 0, 300, 150}, a.Union(b))
	assert.Equal(t, a, a.Union(Rect{}))
	assert.Equal(t, b, Rect{}.Union(b))
}

func TestPointIn(t *testing.T) {
	r := Rect{10, 10, 20, 20}
	assert.True(t, Point{10, 10}.In(r))
	assert.True(t, Point{29, 29}.In(r))
	assert.False(t, Point{30, 30}.In(r), "right/bottom edges are exclusive")
	assert.False(t, Point{9, 10}.In(r))
}

func TestClampPoint(t *testing.T) {
	r := Rect{0, 0, 1920, 1080}
	assert.Equal(t, Point{0, 0}, r.ClampPoint(Point{-10, -10}))
	assert.Equal(t, Point{1919, 1079}, r.ClampPoint(Point{5000, 5000}))
	assert.Equal(t, Point{500, 500}, r.ClampPoint(Point{500, 500}))
}

func TestScaleCoversSource(t *testing.T) {
	// A fractional scale must never shrink the covered area.
	r := Rect{3, 3, 5, 5}
	scaled := r.Scale(1.5)
	assert.Equal(t, Rect{4, 4, 8, 8}, scaled)

	identity := r.Scale(1.0)
	assert.Equal(t, r, identity)

	doubled := r.Scale(2.0)
	assert.Equal(t, Rect{6, 6, 10, 10}, doubled)
}
