package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/shotframe/shotframe/internal/geometry"
)

// Crop is one committed device rectangle cut out of a frozen frame buffer.
type Crop struct {
	Output string
	Rect   geometry.Rect
	Image  *image.RGBA
}

// CropFrames cuts the committed per-output device rectangles out of the
// frozen frame buffers. The interactive path uses this instead of
// re-grabbing so the saved pixels are exactly what the user saw frozen.
func CropFrames(frames []*FrameBuffer, rects map[string]geometry.Rect) ([]Crop, error) {
	byOutput := make(map[string]*FrameBuffer, len(frames))
	for _, fb := range frames {
		byOutput[fb.Output.Name] = fb
	}

	crops := make([]Crop, 0, len(rects))
	for name, r := range rects {
		fb, ok := byOutput[name]
		if !ok {
			return nil, fmt.Errorf("no frozen frame for output %q", name)
		}

		bounded := r.Intersect(fb.DeviceRect())
		if bounded.Empty() {
			return nil, fmt.Errorf("crop %s outside frame for output %q", r, name)
		}

		dst := image.NewRGBA(image.Rect(0, 0, bounded.W, bounded.H))
		src := image.Rect(bounded.X, bounded.Y, bounded.Right(), bounded.Bottom())
		draw.Draw(dst, dst.Bounds(), fb.Pixels, src.Min, draw.Src)
		crops = append(crops, Crop{Output: name, Rect: bounded, Image: dst})
	}

	if len(crops) == 0 {
		return nil, fmt.Errorf("nothing to crop")
	}
	return crops, nil
}

// EncodePNG returns the crop's pixels as PNG bytes.
func (c Crop) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.Image); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
