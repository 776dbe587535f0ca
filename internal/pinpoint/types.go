// Package pinpoint implements the multi-zoom on-path symbol placement
// engine: given a polyline in the 31-bit global projection and a block of
// symbols, it produces the pin points at which symbol instances should be
// anchored at each zoom level, preserving every pin point already placed
// at a lower zoom.
package pinpoint

// PathPoint is a vertex in the 31-bit global projection.
type PathPoint struct {
	X int32
	Y int32
}

// SymbolDesc is one symbol's footprint along the path, in pixels at the
// reference (base) zoom.
type SymbolDesc struct {
	LeftPad  float32
	Width    float32
	RightPad float32
}

func (s SymbolDesc) span() float64 {
	return float64(s.LeftPad) + float64(s.Width) + float64(s.RightPad)
}

// ComputedPinPoint is the anchor for one symbol instance.
type ComputedPinPoint struct {
	Point                              PathPoint
	BasePathPointIndex                 uint32
	OffsetFromBasePathPoint31          float64
	NormalizedOffsetFromBasePathPoint  float32
}
