package router

// AcceptLine reports whether a road may be routed onto at all: its
// ACCESS attribute must evaluate to a non-negative integer, and it must
// not be listed in the router's impassable-road set.
func (r *Router) AcceptLine(road Road, params ParameterContext) bool {
	r.mu.RLock()
	_, blocked := r.impassable[road.ID()]
	r.mu.RUnlock()
	if blocked {
		return false
	}

	access := r.evalInt(Access, road, params, 0)
	return access >= 0
}

// IsOneWay returns the ONEWAY attribute: +1 forward, -1 reverse, 0
// bidirectional.
func (r *Router) IsOneWay(road Road, params ParameterContext) int {
	return r.evalInt(Oneway, road, params, 0)
}

// DefineObstacle evaluates OBSTACLES over the tag bits of a single path
// point.
func (r *Router) DefineObstacle(road Road, point int, params ParameterContext) float64 {
	return r.evalPoint(Obstacles, road, point, params, 0)
}

// DefineRoutingObstacle evaluates ROUTING_OBSTACLES over the tag bits of
// a single path point.
func (r *Router) DefineRoutingObstacle(road Road, point int, params ParameterContext) float64 {
	return r.evalPoint(RoutingObstacles, road, point, params, 0)
}

// DefineVehicleSpeed evaluates ROAD_SPEED, defaulting to minDefaultSpeed
// when no rule matches.
func (r *Router) DefineVehicleSpeed(road Road, params ParameterContext) float64 {
	r.mu.RLock()
	def := r.minDefaultSpeed
	r.mu.RUnlock()
	return r.evalObject(RoadSpeed, road, params, def)
}

// DefineRoutingSpeed caps DefineVehicleSpeed at maxDefaultSpeed; there is
// no dedicated attribute kind for it.
func (r *Router) DefineRoutingSpeed(road Road, params ParameterContext) float64 {
	vehicle := r.DefineVehicleSpeed(road, params)
	r.mu.RLock()
	max := r.maxDefaultSpeed
	r.mu.RUnlock()
	if max > 0 && vehicle > max {
		return max
	}
	return vehicle
}

// DefineSpeedPriority evaluates ROAD_PRIORITIES, defaulting to 1.0 (no
// preference).
func (r *Router) DefineSpeedPriority(road Road, params ParameterContext) float64 {
	return r.evalObject(RoadPriorities, road, params, 1.0)
}

// DefinePenaltyTransition evaluates PENALTY_TRANSITION, defaulting to 0
// seconds.
func (r *Router) DefinePenaltyTransition(road Road, params ParameterContext) float64 {
	return r.evalObject(PenaltyTransition, road, params, 0)
}

func (r *Router) evalObject(kind AttributeKind, road Road, params ParameterContext, def float64) float64 {
	ctx := r.context(kind)
	if ctx == nil {
		return def
	}
	types := r.encodeObject(road)
	return ctx.Eval(types, params, r, def)
}

func (r *Router) evalInt(kind AttributeKind, road Road, params ParameterContext, def int) int {
	ctx := r.context(kind)
	if ctx == nil {
		return def
	}
	types := r.encodeObject(road)
	return ctx.EvalInt(types, params, r, def)
}

func (r *Router) evalPoint(kind AttributeKind, road Road, point int, params ParameterContext, def float64) float64 {
	ctx := r.context(kind)
	if ctx == nil {
		return def
	}
	types := r.encodePoint(road, point)
	return ctx.Eval(types, params, r, def)
}
