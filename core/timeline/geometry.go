package timeline

// DefaultPixelsPerSecond is the zoom factor the editor opens with.
const DefaultPixelsPerSecond = 80.0

// Geometry converts between seconds on the timeline and horizontal pixels.
// One Geometry is shared by every gesture controller in a session so that
// drags and resizes agree on the mapping.
type Geometry struct {
	pixelsPerSecond float64
}

// NewGeometry returns a Geometry with the given zoom factor. Non-positive
// values fall back to DefaultPixelsPerSecond.
func NewGeometry(pixelsPerSecond float64) *Geometry {
	if pixelsPerSecond <= 0 {
		pixelsPerSecond = DefaultPixelsPerSecond
	}
	return &Geometry{pixelsPerSecond: pixelsPerSecond}
}

// PixelsPerSecond returns the active zoom factor.
func (g *Geometry) PixelsPerSecond() float64 {
	return g.pixelsPerSecond
}

// TimeToPixels converts seconds to a horizontal distance in pixels.
func (g *Geometry) TimeToPixels(seconds float64) float64 {
	return seconds * g.pixelsPerSecond
}

// PixelsToTime converts a horizontal distance in pixels to seconds.
func (g *Geometry) PixelsToTime(pixels float64) float64 {
	return pixels / g.pixelsPerSecond
}
