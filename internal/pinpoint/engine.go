package pinpoint

import "math"

// ComputePinPoints places symbol instances along path for each zoom level
// in [minZoom, maxZoom], preserving every pin point placed at a lower
// zoom. The result is indexed from 0 (== minZoom) to maxZoom-minZoom
// (== maxZoom); a level with nothing placed has an empty, non-nil slice.
func ComputePinPoints(path []PathPoint, leftPadPx, rightPadPx float32, symbols []SymbolDesc, minZoom, maxZoom int, refTileSizePx float64) [][]ComputedPinPoint {
	levels := maxZoom - minZoom + 1
	result := make([][]ComputedPinPoint, levels)
	for i := range result {
		result[i] = []ComputedPinPoint{}
	}
	if len(path) < 2 || len(symbols) == 0 || levels <= 0 {
		return result
	}

	scale := refTileSizePx / float64(uint64(1)<<uint(31-minZoom))
	seg31 := make([]float64, len(path)-1)
	segPxBase := make([]float64, len(path)-1)
	total := 0.0
	for i := 0; i < len(path)-1; i++ {
		dx := float64(path[i+1].X) - float64(path[i].X)
		dy := float64(path[i+1].Y) - float64(path[i].Y)
		seg31[i] = math.Hypot(dx, dy)
		segPxBase[i] = seg31[i] * scale
		total += segPxBase[i]
	}

	usable := total - float64(leftPadPx) - float64(rightPadPx)
	if usable <= 0 {
		return result
	}

	blockWidth := 0.0
	for _, s := range symbols {
		blockWidth += s.span()
	}
	if blockWidth <= 0 {
		return result
	}

	const kNone = -1.0

	L := usable
	N := 0
	R := 0.0
	K := 0.0

	for z := minZoom; z <= maxZoom; z++ {
		zoomFactor := math.Pow(2, float64(z-minZoom))
		segPx := make([]float64, len(segPxBase))
		for i := range segPxBase {
			segPx[i] = segPxBase[i] * zoomFactor
		}
		baseOffsetPx := float64(leftPadPx) * zoomFactor

		// The base path point must be relocated against this zoom's own
		// (doubled) segment lengths: a scan state computed at one zoom's
		// pixel scale is meaningless against another's.
		baseSt := &scanState{}
		locateAt(path, segPx, seg31, baseSt, baseOffsetPx)

		var newBlocks int
		var levelPoints []ComputedPinPoint

		if N == 0 {
			f := L / blockWidth
			full := math.Floor(f)
			if full >= 1 {
				newBlocks = int(full)
				firstOffsetPx := (f - full) / 2 * blockWidth
				K = firstOffsetPx / blockWidth
				levelPoints = placeBlocks(path, segPx, seg31, symbols, *baseSt, baseOffsetPx, firstOffsetPx, blockWidth, newBlocks)
			} else {
				prefix, fittedSize := fitPrefix(symbols, L)
				firstOffsetPx := (L - fittedSize) / 2
				if len(prefix) > 0 {
					levelPoints = placeSymbolRun(path, segPx, seg31, prefix, *baseSt, baseOffsetPx+firstOffsetPx)
				}
				K = kNone
			}
		} else {
			newBlocks = (N - 1) + 2*int(math.Floor(R/blockWidth))
			if newBlocks < 0 {
				newBlocks = 0
			}
			// kPresent can legitimately exceed 1 (the next block may sit
			// beyond one blockWidth out); subtracting 1 once when it exceeds
			// 1 brings it back toward (0,1], and K carries forward whichever
			// of the corrected/raw values is smaller.
			kPresent := 0.5 + 2*K
			kNew := kPresent
			if kPresent > 1 {
				kNew = kPresent - 1
			}
			firstOffsetPx := kNew * blockWidth
			K = math.Min(kNew, kPresent)
			levelPoints = placeBlocks(path, segPx, seg31, symbols, *baseSt, baseOffsetPx, firstOffsetPx, blockWidth, newBlocks)
		}

		if levelPoints == nil {
			levelPoints = []ComputedPinPoint{}
		}
		result[z-minZoom] = levelPoints

		R = L - float64(newBlocks)*blockWidth
		L *= 2
		N += newBlocks
	}

	return result
}

// scanState is the forward-only cursor computePinPoint advances: the
// segment index it last resolved a position in, and the cumulative pixel
// length from the path start to the beginning of that segment.
type scanState struct {
	idx int
	cum float64
}

// placeBlocks instantiates count full blocks of symbols left to right,
// starting blockWidth apart at firstOffsetPx beyond baseOffsetPx.
func placeBlocks(path []PathPoint, segPx, seg31 []float64, symbols []SymbolDesc, st scanState, baseOffsetPx, firstOffsetPx, blockWidth float64, count int) []ComputedPinPoint {
	var out []ComputedPinPoint
	for b := 0; b < count; b++ {
		blockStart := baseOffsetPx + firstOffsetPx + float64(b)*blockWidth
		pins, nextSt, ok := placeBlockSymbols(path, segPx, seg31, symbols, st, blockStart)
		out = append(out, pins...)
		if !ok {
			break
		}
		st = nextSt
	}
	return out
}

// placeSymbolRun places one run of symbols (a full or partial block)
// starting at a fixed absolute offset.
func placeSymbolRun(path []PathPoint, segPx, seg31 []float64, symbols []SymbolDesc, st scanState, startPx float64) []ComputedPinPoint {
	pins, _, _ := placeBlockSymbols(path, segPx, seg31, symbols, st, startPx)
	return pins
}

func placeBlockSymbols(path []PathPoint, segPx, seg31 []float64, symbols []SymbolDesc, st scanState, blockStart float64) ([]ComputedPinPoint, scanState, bool) {
	pins := make([]ComputedPinPoint, 0, len(symbols))
	offset := blockStart
	for _, sym := range symbols {
		pin, nextSt, ok := computePinPoint(path, segPx, seg31, sym, st, offset)
		if !ok {
			return pins, st, false
		}
		pins = append(pins, pin)
		st = nextSt
		offset += sym.span()
	}
	return pins, st, true
}

// computePinPoint finds the anchor for one symbol instance whose block
// starts at offsetFromPathStartPx, and returns the scan state to resume
// from for the next symbol. Reports ok=false if the symbol's trailing edge
// falls beyond the path (does not fit).
func computePinPoint(path []PathPoint, segPx, seg31 []float64, symbol SymbolDesc, st scanState, offsetFromPathStartPx float64) (ComputedPinPoint, scanState, bool) {
	centerPx := offsetFromPathStartPx + float64(symbol.LeftPad) + float64(symbol.Width)/2
	trailingPx := offsetFromPathStartPx + float64(symbol.LeftPad) + float64(symbol.Width)

	point, baseIdx, offset31, normalized, ok := locateAt(path, segPx, seg31, &st, centerPx)
	if !ok {
		return ComputedPinPoint{}, st, false
	}

	pin := ComputedPinPoint{
		Point:                              point,
		BasePathPointIndex:                 baseIdx,
		OffsetFromBasePathPoint31:          offset31,
		NormalizedOffsetFromBasePathPoint: normalized,
	}

	trailSt := st
	if _, _, _, _, ok := locateAt(path, segPx, seg31, &trailSt, trailingPx); !ok {
		return ComputedPinPoint{}, st, false
	}

	return pin, trailSt, true
}

// locateAt advances st forward (never backward) to the segment containing
// targetPx pixels from the path start, and returns the interpolated point,
// the segment index, the offset into that segment in 31-bit projection
// units, and the normalized fraction across the segment, clamped to [0,1].
func locateAt(path []PathPoint, segPx, seg31 []float64, st *scanState, targetPx float64) (PathPoint, uint32, float64, float32, bool) {
	total := 0.0
	for _, l := range segPx {
		total += l
	}
	if targetPx < 0 || targetPx > total {
		return PathPoint{}, 0, 0, 0, false
	}

	for st.idx < len(segPx)-1 && st.cum+segPx[st.idx] <= targetPx {
		st.cum += segPx[st.idx]
		st.idx++
	}

	segLen := segPx[st.idx]
	var frac float64
	if segLen > 0 {
		frac = (targetPx - st.cum) / segLen
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	p0, p1 := path[st.idx], path[st.idx+1]
	x := float64(p0.X) + frac*(float64(p1.X)-float64(p0.X))
	y := float64(p0.Y) + frac*(float64(p1.Y)-float64(p0.Y))
	point := PathPoint{X: int32(x), Y: int32(y)}
	offset31 := frac * seg31[st.idx]

	return point, uint32(st.idx), offset31, float32(frac), true
}

// fitPrefix returns the longest ordered prefix of symbols whose combined
// span fits within budgetPx, and that combined span.
func fitPrefix(symbols []SymbolDesc, budgetPx float64) ([]SymbolDesc, float64) {
	size := 0.0
	for i, s := range symbols {
		if size+s.span() > budgetPx {
			return symbols[:i], size
		}
		size += s.span()
	}
	return symbols, size
}
