package router

import (
	"math"
	"testing"

	"github.com/mapgrid/routecore/internal/tagdict"
)

// fakeRoad is a minimal in-memory Road for tests: tags are given directly
// as (tag,value) pairs and registered against the test's dictionary.
type fakeRoad struct {
	id         uint64
	region     tagdict.RegionId
	tags       []uint32
	pointTags  [][]uint32
	resolve    func(uint32) (string, string)
	heading    func(point int, forward bool) float64
	roundabout bool
}

func (f *fakeRoad) ID() uint64                  { return f.id }
func (f *fakeRoad) Region() tagdict.RegionId    { return f.region }
func (f *fakeRoad) Tags() []uint32              { return f.tags }
func (f *fakeRoad) PointTags() [][]uint32       { return f.pointTags }
func (f *fakeRoad) Resolve(id uint32) (string, string) { return f.resolve(id) }
func (f *fakeRoad) DirectionRoute(point int, forward bool) float64 {
	return f.heading(point, forward)
}
func (f *fakeRoad) Roundabout() bool { return f.roundabout }

// newTagRoad returns a road in a fixed region (1) whose Tags()/Resolve()
// reflect pairs under local ids 0..n-1. The pairs are registered with dict
// when the router first encodes the road; the router memoizes each
// region's local ids, so two such roads with different tags at the same
// position need distinct regions.
func newTagRoad(dict *tagdict.Dictionary, id uint64, pairs [][2]string) *fakeRoad {
	localIDs := make([]uint32, len(pairs))
	byLocal := make(map[uint32][2]string, len(pairs))
	for i, p := range pairs {
		localIDs[i] = uint32(i)
		byLocal[uint32(i)] = p
	}
	return &fakeRoad{
		id:     id,
		region: tagdict.RegionId(1),
		tags:   localIDs,
		resolve: func(local uint32) (string, string) {
			p := byLocal[local]
			return p[0], p[1]
		},
		heading: func(int, bool) float64 { return 0 },
	}
}

func TestRuleMatchesFilterTypesAndSelect(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)

	rule := NewRuleBuilder(dict).
		RequireTag("highway", "motorway").
		Select("-1", Plain).
		Build()
	r.SetAttributeContext(&AttributeContext{Kind: Oneway, Rules: []*Rule{rule}})

	road := newTagRoad(dict, 1, [][2]string{{"highway", "motorway"}})
	if got := r.IsOneWay(road, nil); got != -1 {
		t.Fatalf("IsOneWay = %d, want -1", got)
	}

	other := newTagRoad(dict, 2, [][2]string{{"highway", "residential"}})
	other.region = tagdict.RegionId(2)
	if got := r.IsOneWay(other, nil); got != 0 {
		t.Fatalf("IsOneWay(other) = %d, want default 0", got)
	}
}

func TestRuleFilterNotTypesExcludes(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)

	rule := NewRuleBuilder(dict).
		RequireTag("highway", "service").
		ForbidTag("access", "private").
		Select("-1", Plain).
		Build()
	r.SetAttributeContext(&AttributeContext{Kind: Access, Rules: []*Rule{rule}})

	// access=private forbids the rule from matching, so the default (0,
	// accepts) applies instead of the rule's -1.
	blocked := newTagRoad(dict, 1, [][2]string{{"highway", "service"}, {"access", "private"}})
	if !r.AcceptLine(blocked, nil) {
		t.Fatalf("AcceptLine(blocked) = false, want true (forbidden tag present, rule should not fire)")
	}

	open := newTagRoad(dict, 2, [][2]string{{"highway", "service"}})
	if r.AcceptLine(open, nil) {
		t.Fatalf("AcceptLine(open) = true, want false (rule fires, select value -1)")
	}
}

func TestRuleOnlyTagsAndOnlyNotTags(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)

	rule := NewRuleBuilder(dict).
		RequireTagPresence("maxspeed").
		ForbidTagPresence("hazard").
		Select("20", Speed).
		Build()
	r.SetAttributeContext(&AttributeContext{Kind: RoadSpeed, Rules: []*Rule{rule}})

	want := 20.0 / 3.6
	has := newTagRoad(dict, 1, [][2]string{{"maxspeed", "50"}})
	if got := r.DefineVehicleSpeed(has, nil); math.Abs(got-want) > 1e-9 {
		t.Fatalf("DefineVehicleSpeed = %v, want %v (the literal select value 20 km/h itself, not maxspeed's text)", got, want)
	}

	hazard := newTagRoad(dict, 2, [][2]string{{"maxspeed", "50"}, {"hazard", "yes"}})
	if got := r.DefineVehicleSpeed(hazard, nil); math.Abs(got-want) <= 1e-9 {
		t.Fatalf("DefineVehicleSpeed(hazard present) matched despite onlyNotTags guard")
	}

	absent := newTagRoad(dict, 3, nil)
	if got := r.DefineVehicleSpeed(absent, nil); math.Abs(got-want) <= 1e-9 {
		t.Fatalf("DefineVehicleSpeed(no maxspeed) matched despite onlyTags guard")
	}
}

func TestTagDereferenceSelectValue(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)

	rule := NewRuleBuilder(dict).
		RequireTagPresence("maxspeed").
		Select("$maxspeed", Speed).
		Build()
	r.SetAttributeContext(&AttributeContext{Kind: RoadSpeed, Rules: []*Rule{rule}})

	road := newTagRoad(dict, 1, [][2]string{{"maxspeed", "90"}})
	got := r.DefineVehicleSpeed(road, nil)
	want := 90.0 / 3.6
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("DefineVehicleSpeed = %v, want %v", got, want)
	}
}

func TestParamDereferenceSelectValue(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)

	rule := NewRuleBuilder(dict).
		RequireTag("highway", "track").
		WithParameters("weight").
		Select(":weight", Weight).
		AddExpression(LE, Weight, ":weight", "3.5").
		Build()
	r.SetAttributeContext(&AttributeContext{Kind: RoadPriorities, Rules: []*Rule{rule}})

	road := newTagRoad(dict, 1, [][2]string{{"highway", "track"}})

	light := ParameterContext{"weight": "2"}
	if got := r.DefineSpeedPriority(road, light); got != 2 {
		t.Fatalf("DefineSpeedPriority(light) = %v, want 2", got)
	}

	heavy := ParameterContext{"weight": "5"}
	if got := r.DefineSpeedPriority(road, heavy); got != 1.0 {
		t.Fatalf("DefineSpeedPriority(heavy) = %v, want default 1.0 (guard excludes >3.5t)", got)
	}
}

func TestFirstMatchWins(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)

	first := NewRuleBuilder(dict).RequireTag("highway", "motorway").Select("30", Speed).Build()
	second := NewRuleBuilder(dict).RequireTag("highway", "motorway").Select("10", Speed).Build()
	r.SetAttributeContext(&AttributeContext{Kind: RoadSpeed, Rules: []*Rule{first, second}})

	road := newTagRoad(dict, 1, [][2]string{{"highway", "motorway"}})
	got := r.DefineVehicleSpeed(road, nil)
	want := 30.0 / 3.6
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("DefineVehicleSpeed = %v, want first-matching rule's %v", got, want)
	}
}

func TestAcceptLineRejectsImpassableRoad(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)
	r.AddImpassableRoad(7)

	road := newTagRoad(dict, 7, nil)
	if r.AcceptLine(road, nil) {
		t.Fatalf("AcceptLine on impassable road id = true, want false")
	}
}

func TestDefineRoutingSpeedCapsAtMax(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)
	r.SetAttribute("maxDefaultSpeed", "36")

	rule := NewRuleBuilder(dict).RequireTag("highway", "motorway").Select("180", Speed).Build()
	r.SetAttributeContext(&AttributeContext{Kind: RoadSpeed, Rules: []*Rule{rule}})

	road := newTagRoad(dict, 1, [][2]string{{"highway", "motorway"}})
	got := r.DefineRoutingSpeed(road, nil)
	want := 36.0 / 3.6
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("DefineRoutingSpeed = %v, want capped %v", got, want)
	}
}

func TestCalculateTurnTimeHeadingBuckets(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)
	r.SetAttribute("leftTurn", "5")
	r.SetAttribute("rightTurn", "2")

	straight := newDirectionalRoad(0)
	uturn := newDirectionalRoad(math.Pi)
	rightish := newDirectionalRoad(math.Pi/2 + 0.1)

	curr := RouteSegment{Road: straight, Start: 0, End: 1}
	prevStraight := RouteSegment{Road: straight, Start: 0, End: 1}
	if got := r.CalculateTurnTime(curr, prevStraight, nil, nil); got != 0 {
		t.Fatalf("straight-through turn cost = %v, want 0", got)
	}

	currU := RouteSegment{Road: uturn, Start: 0, End: 1}
	prevU := RouteSegment{Road: straight, Start: 0, End: 1}
	if got := r.CalculateTurnTime(currU, prevU, nil, nil); got != 5 {
		t.Fatalf("U-turn cost = %v, want leftTurn=5", got)
	}

	currR := RouteSegment{Road: rightish, Start: 0, End: 1}
	prevR := RouteSegment{Road: straight, Start: 0, End: 1}
	if got := r.CalculateTurnTime(currR, prevR, nil, nil); got != 2 {
		t.Fatalf("right turn cost = %v, want rightTurn=2", got)
	}
}

// directionalRoad's heading genuinely depends on forward, the way a real
// road's geometry does: traveling forward reports baseAngle, traveling
// backward reports the opposite heading. A fakeRoad whose mock ignores
// forward cannot catch an orientation bug in CalculateTurnTime, since
// both DirectionRoute calls would return the identical constant either way.
type directionalRoad struct {
	fakeRoad
	baseAngle float64
}

func newDirectionalRoad(baseAngle float64) *directionalRoad {
	d := &directionalRoad{baseAngle: baseAngle}
	d.heading = func(_ int, forward bool) float64 {
		if forward {
			return d.baseAngle
		}
		return d.baseAngle + math.Pi
	}
	return d
}

func TestCalculateTurnTimeStraightThroughRespectsOrientation(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)
	r.SetAttribute("leftTurn", "5")
	r.SetAttribute("rightTurn", "2")

	road := newDirectionalRoad(0.7)

	curr := RouteSegment{Road: road, Start: 0, End: 1}
	prev := RouteSegment{Road: road, Start: 0, End: 1}
	if got := r.CalculateTurnTime(curr, prev, nil, nil); got != 0 {
		t.Fatalf("straight-through turn cost with direction-aware heading = %v, want 0", got)
	}
}

func TestCalculateTurnTimeRoundaboutEntry(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)
	r.SetAttribute("roundaboutTurn", "8")

	onRoundabout := &fakeRoad{heading: func(int, bool) float64 { return 0 }, roundabout: true}
	offRoundabout := &fakeRoad{heading: func(int, bool) float64 { return 0 }}

	curr := RouteSegment{Road: onRoundabout, Start: 0, End: 1}
	prev := RouteSegment{Road: offRoundabout, Start: 0, End: 1}
	if got := r.CalculateTurnTime(curr, prev, nil, nil); got != 8 {
		t.Fatalf("roundabout-entry cost = %v, want roundaboutTurn=8", got)
	}
}

func TestCalculateTurnTimePenaltyTransitionDiff(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)

	currRule := NewRuleBuilder(dict).RequireTag("barrier", "gate").Select("10", Plain).Build()
	r.SetAttributeContext(&AttributeContext{Kind: PenaltyTransition, Rules: []*Rule{currRule}})

	gated := newTagRoad(dict, 1, [][2]string{{"barrier", "gate"}})
	gated.heading = func(int, bool) float64 { return 0 }
	plain := newTagRoad(dict, 2, nil)
	plain.heading = func(int, bool) float64 { return 0 }

	curr := RouteSegment{Road: gated, Start: 0, End: 1}
	prev := RouteSegment{Road: plain, Start: 0, End: 1}
	if got := r.CalculateTurnTime(curr, prev, nil, nil); got != 5 {
		t.Fatalf("penalty-transition turn cost = %v, want |10-0|/2 = 5", got)
	}
}

func TestTagIndexFromTwoRegionsDoesNotCollide(t *testing.T) {
	t.Parallel()
	dict := tagdict.NewDictionary()
	r := New(dict, nil)

	rule := NewRuleBuilder(dict).RequireTag("highway", "motorway").Select("-1", Plain).Build()
	r.SetAttributeContext(&AttributeContext{Kind: Access, Rules: []*Rule{rule}})

	regionA := newTagRoad(dict, 1, [][2]string{{"highway", "motorway"}})
	regionA.region = tagdict.RegionId(10)
	regionB := newTagRoad(dict, 2, [][2]string{{"highway", "residential"}})
	regionB.region = tagdict.RegionId(20)

	if r.AcceptLine(regionA, nil) {
		t.Fatalf("AcceptLine(regionA) = true, want false (rule fires, select value -1)")
	}
	if got := r.AcceptLine(regionB, nil); !got {
		// ACCESS default (0) accepts when no rule matches; had regionB's
		// local id 0 resolved to regionA's motorway, the rule would fire
		t.Fatalf("AcceptLine(regionB) = %v, want default accept", got)
	}
}
