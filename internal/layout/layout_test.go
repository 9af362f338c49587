package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotframe/shotframe/internal/geometry"
)

func dualOutputLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := New([]Output{
		{
			Name:     "eDP-1",
			LogicalW: 1920, LogicalH: 1080,
			DeviceW: 3840, DeviceH: 2160,
			Scale: 2.0,
		},
		{
			Name:       "HDMI-A-1",
			LogicalPos: geometry.Point{X: 1920},
			LogicalW:   1920, LogicalH: 1080,
			DeviceW: 1920, DeviceH: 1080,
			Scale: 1.0,
		},
	})
	require.NoError(t, err)
	return l
}

func TestNewRequiresOutputs(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestUnion(t *testing.T) {
	l := dualOutputLayout(t)
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, W: 3840, H: 1080}, l.Union())
}

func TestGlobalToOutput(t *testing.T) {
	l := dualOutputLayout(t)

	o, local, err := l.GlobalToOutput(geometry.Point{X: 100, Y: 100})
	require.NoError(t, err)
	assert.Equal(t, "eDP-1", o.Name)
	assert.Equal(t, geometry.Point{X: 100, Y: 100}, local)

	o, local, err = l.GlobalToOutput(geometry.Point{X: 2000, Y: 500})
	require.NoError(t, err)
	assert.Equal(t, "HDMI-A-1", o.Name)
	assert.Equal(t, geometry.Point{X: 80, Y: 500}, local)

	_, _, err = l.GlobalToOutput(geometry.Point{X: 5000, Y: 5000})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestClampToNearest(t *testing.T) {
	l := dualOutputLayout(t)
	assert.Equal(t, geometry.Point{X: 0, Y: 0}, l.ClampToNearest(geometry.Point{X: -50, Y: -50}))
	assert.Equal(t, geometry.Point{X: 3839, Y: 1079}, l.ClampToNearest(geometry.Point{X: 9000, Y: 9000}))
}

func TestToDeviceToLogical(t *testing.T) {
	l := dualOutputLayout(t)
	hidpi, ok := l.Lookup("eDP-1")
	require.True(t, ok)

	dev := ToDevice(hidpi, geometry.Point{X: 100, Y: 50})
	assert.Equal(t, geometry.Point{X: 200, Y: 100}, dev)

	back := ToLogical(hidpi, dev)
	assert.Equal(t, geometry.Point{X: 100, Y: 50}, back)
}

func TestDeviceRectsSpanningOutputs(t *testing.T) {
	l := dualOutputLayout(t)

	// Rectangle straddling the seam between the two outputs.
	rects := l.DeviceRects(geometry.Rect{X: 1800, Y: 100, W: 300, H: 200})
	require.Len(t, rects, 2)

	// eDP-1 part: logical (1800,100,120,200) at scale 2.
	assert.Equal(t, geometry.Rect{X: 3600, Y: 200, W: 240, H: 400}, rects["eDP-1"])
	// HDMI part: logical (0,100,180,200) at scale 1.
	assert.Equal(t, geometry.Rect{X: 0, Y: 100, W: 180, H: 200}, rects["HDMI-A-1"])
}

func TestDeviceRectsStayInBuffer(t *testing.T) {
	l := dualOutputLayout(t)
	rects := l.DeviceRects(geometry.Rect{X: 0, Y: 0, W: 3840, H: 1080})
	for name, r := range rects {
		o, ok := l.Lookup(name)
		require.True(t, ok)
		buf := geometry.Rect{W: o.DeviceW, H: o.DeviceH}
		assert.Equal(t, r, r.Intersect(buf), "device rect for %s must lie in its buffer", name)
	}
}

func TestOutputsIntersecting(t *testing.T) {
	l := dualOutputLayout(t)
	assert.Len(t, l.OutputsIntersecting(geometry.Rect{X: 10, Y: 10, W: 50, H: 50}), 1)
	assert.Len(t, l.OutputsIntersecting(geometry.Rect{X: 1900, Y: 0, W: 100, H: 100}), 2)
	assert.Empty(t, l.OutputsIntersecting(geometry.Rect{X: 0, Y: 2000, W: 10, H: 10}))
}
