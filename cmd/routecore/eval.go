package main

import (
	"fmt"
	"strings"

	"github.com/mapgrid/routecore/internal/router"
	"github.com/mapgrid/routecore/internal/routecfg"
	"github.com/mapgrid/routecore/internal/tagdict"
)

type evalCmd struct {
	Args struct {
		Config string `positional-arg-name:"CONFIG" required:"true" description:"Router config file (yaml or json)"`
	} `positional-args:"true"`

	Tag       []string `short:"t" long:"tag" description:"Road tag, repeatable: tag=value"`
	Param     []string `long:"param" description:"Parameter, repeatable: name=value"`
	Attribute string   `short:"a" long:"attribute" default:"ACCESS" description:"Attribute kind to evaluate"`
}

// fakeRoad is a single-object in-memory Road, built from the command
// line's --tag flags, for exercising a router config outside the full
// tile-loading pipeline.
type fakeRoad struct {
	id      uint64
	tags    []uint32
	resolve func(uint32) (string, string)
}

func (r *fakeRoad) ID() uint64                             { return r.id }
func (r *fakeRoad) Region() tagdict.RegionId                { return tagdict.RegionId(0) }
func (r *fakeRoad) Tags() []uint32                          { return r.tags }
func (r *fakeRoad) PointTags() [][]uint32                   { return [][]uint32{r.tags} }
func (r *fakeRoad) Resolve(id uint32) (string, string)      { return r.resolve(id) }
func (r *fakeRoad) DirectionRoute(int, bool) float64        { return 0 }
func (r *fakeRoad) Roundabout() bool                        { return false }

// Execute loads the router config and evaluates one attribute against a
// road synthesized from --tag flags.
func (c *evalCmd) Execute(_ []string) error {
	rt, dict, err := routecfg.Load(c.Args.Config, nil)
	if err != nil {
		return err
	}

	pairs := make([][2]string, 0, len(c.Tag))
	for _, t := range c.Tag {
		k, v, ok := splitKV(t)
		if !ok {
			return fmt.Errorf("malformed --tag %q, want tag=value", t)
		}
		pairs = append(pairs, [2]string{k, v})
	}

	localIDs := make([]uint32, len(pairs))
	byLocal := make(map[uint32][2]string, len(pairs))
	for i, p := range pairs {
		localIDs[i] = uint32(i)
		byLocal[uint32(i)] = p
	}
	road := &fakeRoad{
		tags: localIDs,
		resolve: func(local uint32) (string, string) {
			p := byLocal[local]
			return p[0], p[1]
		},
	}

	params := router.ParameterContext{}
	for _, p := range c.Param {
		k, v, ok := splitKV(p)
		if !ok {
			return fmt.Errorf("malformed --param %q, want name=value", p)
		}
		params[k] = v
	}

	switch router.AttributeKind(strings.ToUpper(c.Attribute)) {
	case router.Access:
		fmt.Println(rt.AcceptLine(road, params))
	case router.Oneway:
		fmt.Println(rt.IsOneWay(road, params))
	case router.RoadSpeed:
		fmt.Println(rt.DefineVehicleSpeed(road, params))
	case router.RoadPriorities:
		fmt.Println(rt.DefineSpeedPriority(road, params))
	case router.PenaltyTransition:
		fmt.Println(rt.DefinePenaltyTransition(road, params))
	default:
		return fmt.Errorf("attribute %q is not a facade query; use ACCESS, ONEWAY, ROAD_SPEED, ROAD_PRIORITIES, or PENALTY_TRANSITION", c.Attribute)
	}

	_ = dict
	return nil
}

func splitKV(s string) (string, string, bool) {
	i := strings.IndexByte(s, '=')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
