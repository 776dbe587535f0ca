package router

import "math"

// CalculateTurnTime is GeneralRouter::calculateTurnTime: the cost (in
// seconds) of moving from prev onto curr, in four steps run in order —
// penalty-transition diff, roundabout-entry bonus, heading-difference
// bucketing, else zero (§4.3).
func (r *Router) CalculateTurnTime(curr, prev RouteSegment, currParams, prevParams ParameterContext) float64 {
	if r.IsAttributeConfigured(PenaltyTransition) {
		currPenalty := r.evalPenaltyTransition(curr, currParams)
		prevPenalty := r.evalPenaltyTransition(prev, prevParams)
		if currPenalty != prevPenalty {
			diff := currPenalty - prevPenalty
			if diff < 0 {
				diff = -diff
			}
			return diff / 2
		}
	}

	if curr.Road.Roundabout() && !prev.Road.Roundabout() {
		return r.roundaboutTurn
	}

	a1 := curr.Road.DirectionRoute(curr.Start, curr.Start < curr.End)
	a2 := prev.Road.DirectionRoute(prev.End, prev.End < prev.Start)

	// a2 is oriented back along prev's incoming direction, so a straight
	// continuation has a1 and a2 differing by pi, not 0; subtract it out
	// before normalizing so "straight through" lands at diff == 0.
	diff := math.Abs(alignAngleDifference(a1 - a2 - math.Pi))

	switch {
	case diff > 2*math.Pi/3:
		return r.leftTurn
	case diff > math.Pi/2:
		return r.rightTurn
	default:
		return 0
	}
}

// alignAngleDifference wraps an angle difference into (-pi, pi].
func alignAngleDifference(x float64) float64 {
	for x > math.Pi {
		x -= 2 * math.Pi
	}
	for x <= -math.Pi {
		x += 2 * math.Pi
	}
	return x
}

func (r *Router) evalPenaltyTransition(seg RouteSegment, params ParameterContext) float64 {
	ctx := r.context(PenaltyTransition)
	if ctx == nil {
		return 0
	}
	types := r.encodeObject(seg.Road)
	return ctx.Eval(types, params, r, 0)
}
