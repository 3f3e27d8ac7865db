// Package geometry converts decoder locator points into the bounding box
// shown around a detected symbol, and maps that box into a display area.
package geometry

import "math"

// DefaultPadding is the margin added on every side of the located symbol.
const DefaultPadding = 10

// DefaultBox is returned when the symbol decoded but could not be localized.
var DefaultBox = BoundingBox{X: 0, Y: 0, Width: 100, Height: 100}

// Point is a locator point in image pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is an axis-aligned rectangle in image pixel coordinates.
// X and Y are never negative; Width and Height may extend past the image.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the box has no area.
func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Resolve computes the padded bounding rectangle of the usable points.
// Nil entries are skipped. With fewer than two usable points the
// DefaultBox is returned.
func Resolve(points []*Point, padding int) BoundingBox {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	usable := 0
	for _, p := range points {
		if p == nil || math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		usable++
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if usable < 2 {
		return DefaultBox
	}

	box := BoundingBox{
		X:      int(minX),
		Y:      int(minY),
		Width:  int(maxX - minX),
		Height: int(maxY - minY),
	}

	// Only the origin is clamped; the far edges keep their padding.
	box.X = max(0, box.X-padding)
	box.Y = max(0, box.Y-padding)
	box.Width += 2 * padding
	box.Height += 2 * padding

	return box
}
