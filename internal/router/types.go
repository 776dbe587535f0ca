// Package router implements the rule evaluator and GeneralRouter facade: an
// interpreted decision machine, driven by bit-set tag encoding, that
// produces the numeric routing attributes a road object needs (access,
// oneway, obstacles, speed, priority, penalty transition, turn cost).
package router

import "github.com/mapgrid/routecore/internal/tagdict"

// AttributeKind names one of the per-kind attribute contexts a Router
// holds.
type AttributeKind string

const (
	Access            AttributeKind = "ACCESS"
	Oneway            AttributeKind = "ONEWAY"
	Obstacles         AttributeKind = "OBSTACLES"
	RoutingObstacles  AttributeKind = "ROUTING_OBSTACLES"
	RoadSpeed         AttributeKind = "ROAD_SPEED"
	RoadPriorities    AttributeKind = "ROAD_PRIORITIES"
	PenaltyTransition AttributeKind = "PENALTY_TRANSITION"
)

// ParameterContext holds user- or route-time settings (e.g. vehicle
// weight), immutable during a single evaluation.
type ParameterContext map[string]string

// Get returns the named parameter's raw text and whether it was present.
func (p ParameterContext) Get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Road is the evaluator's view of a road object: its own tags, per-point
// tags, and the geometry helpers the turn-cost calculation needs. The
// binary-format decoding that ultimately backs Resolve (and everything else
// about how a Road's geometry is stored) is an external collaborator, out
// of scope for this module (§1).
type Road interface {
	ID() uint64
	Region() tagdict.RegionId
	// Tags returns the road's own region-local tag ids.
	Tags() []uint32
	// PointTags returns, for each path point, its region-local tag ids.
	PointTags() [][]uint32
	// Resolve decodes a region-local tag id into its (tag,value) pair.
	Resolve(localID uint32) (tag, value string)
	// DirectionRoute returns the heading, in radians, of the road's
	// geometry at pointIndex, oriented forward if forward is true.
	DirectionRoute(pointIndex int, forward bool) float64
	Roundabout() bool
}

// RouteSegment is one road traversed between two of its path points, the
// unit the turn-cost calculation compares across a route junction.
type RouteSegment struct {
	Road  Road
	Start int
	End   int
}
