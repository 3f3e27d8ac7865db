package geometry

import "math"

// Overlay is a bounding box mapped into view coordinates, together with the
// letterboxed area the frame itself occupies in that view.
type Overlay struct {
	// Scale is the uniform factor applied to frame coordinates.
	Scale float64
	// Frame is where the scaled frame is drawn inside the view.
	Frame BoundingBox
	// Box is the detection box in view coordinates.
	Box BoundingBox
}

// Fit maps box from a frameW x frameH image into a viewW x viewH area,
// preserving the frame's aspect ratio and centring it. The second return
// value is false when any dimension is not positive.
func Fit(box BoundingBox, frameW, frameH, viewW, viewH int) (Overlay, bool) {
	if frameW <= 0 || frameH <= 0 || viewW <= 0 || viewH <= 0 {
		return Overlay{}, false
	}

	scale := math.Min(float64(viewW)/float64(frameW), float64(viewH)/float64(frameH))

	scaledW := int(float64(frameW) * scale)
	scaledH := int(float64(frameH) * scale)
	offsetX := (viewW - scaledW) / 2
	offsetY := (viewH - scaledH) / 2

	return Overlay{
		Scale: scale,
		Frame: BoundingBox{X: offsetX, Y: offsetY, Width: scaledW, Height: scaledH},
		Box: BoundingBox{
			X:      offsetX + int(float64(box.X)*scale),
			Y:      offsetY + int(float64(box.Y)*scale),
			Width:  int(float64(box.Width) * scale),
			Height: int(float64(box.Height) * scale),
		},
	}, true
}
