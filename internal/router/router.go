package router

import (
	"log/slog"
	"sync"

	"github.com/mapgrid/routecore/internal/tagdict"
)

type tagValueCacheState uint8

const (
	cacheUnresolved tagValueCacheState = iota
	cacheResolved
	cacheFailed
)

// tagValueCacheEntry is the per-TagValueId memoization slot behind
// Router.parseValueFromTag: cacheUnresolved ("not yet looked up"),
// cacheResolved (a legitimate parsed value), and cacheFailed ("looked up,
// parsing failed") are three distinguishable states, the Go-idiomatic
// equivalent of the two-sentinel (MISSING, MISSING-1) scheme in §9. An
// entry is reused only for the ValueKind it was parsed under.
type tagValueCacheEntry struct {
	state tagValueCacheState
	kind  ValueKind
	value float64
}

// Router is GeneralRouter: attribute contexts, router-wide attributes
// (with recognized side-effecting keys), the impassable-road set, and the
// caches that grow monotonically as evaluation proceeds. Built once at
// configuration time and then queried many times concurrently (§4.5, §5);
// safe for concurrent use.
type Router struct {
	dict    *tagdict.Dictionary
	regions *tagdict.RegionTable
	logger  *slog.Logger

	mu         sync.RWMutex
	attributes map[string]string
	contexts   map[AttributeKind]*AttributeContext
	ruleToValue []tagValueCacheEntry

	impassable map[uint64]struct{}

	restrictionsAware bool
	leftTurn          float64
	rightTurn         float64
	roundaboutTurn    float64
	minDefaultSpeed   float64
	maxDefaultSpeed   float64
}

// New returns an empty Router backed by dict. A nil logger defaults to
// slog.Default(), the same nil-guard other_examples/..._AleutianFOSS__...
// prefilter.go.go uses for its own rule engine's logger.
func New(dict *tagdict.Dictionary, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		dict:       dict,
		regions:    tagdict.NewRegionTable(dict),
		logger:     logger,
		attributes: make(map[string]string),
		contexts:   make(map[AttributeKind]*AttributeContext),
		impassable: make(map[uint64]struct{}),
	}
}

// Dictionary returns the router's backing tag dictionary.
func (r *Router) Dictionary() *tagdict.Dictionary { return r.dict }

// SetAttribute stores a router metadata key/value pair verbatim, then
// applies the side effect for the small set of recognized keys
// (restrictionsAware, leftTurn, rightTurn, roundaboutTurn, minDefaultSpeed,
// maxDefaultSpeed). Unconditional store first, side effects second,
// mirroring GeneralRouter::addAttribute (§12).
func (r *Router) SetAttribute(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attributes[key] = value
	switch key {
	case "restrictionsAware":
		r.restrictionsAware = ParseBool(value, r.restrictionsAware)
	case "leftTurn":
		r.leftTurn = parseFloatAttr(value, r.leftTurn)
	case "rightTurn":
		r.rightTurn = parseFloatAttr(value, r.rightTurn)
	case "roundaboutTurn":
		r.roundaboutTurn = parseFloatAttr(value, r.roundaboutTurn)
	case "minDefaultSpeed":
		r.minDefaultSpeed = parseFloatAttr(value, r.minDefaultSpeed*3.6) / 3.6
	case "maxDefaultSpeed":
		r.maxDefaultSpeed = parseFloatAttr(value, r.maxDefaultSpeed*3.6) / 3.6
	}
}

func parseFloatAttr(value string, def float64) float64 {
	v := ParseValue(value, Plain)
	if v.IsMissing() {
		return def
	}
	return v.Float()
}

// Attribute returns a previously-set router metadata value.
func (r *Router) Attribute(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.attributes[key]
	return v, ok
}

// AddImpassableRoad forces a road to be rejected by AcceptLine regardless
// of rules.
func (r *Router) AddImpassableRoad(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.impassable[id] = struct{}{}
}

// SetAttributeContext installs the rule list and default for an attribute
// kind. Calling it again for the same kind replaces the previous context.
func (r *Router) SetAttributeContext(ctx *AttributeContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[ctx.Kind] = ctx
}

// IsAttributeConfigured reports whether kind has a rule list configured at
// all, distinct from "configured with an empty rule list, default always
// applies" (§12).
func (r *Router) IsAttributeConfigured(kind AttributeKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.contexts[kind]
	return ok
}

func (r *Router) context(kind AttributeKind) *AttributeContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contexts[kind]
}

// parseValueFromTag parses the value text behind a TagValueId under kind,
// memoizing the result (or failure) so repeat dereferences of the same id
// under the same kind don't re-parse; a dereference under another kind
// re-parses and replaces the entry. The cache is grown lazily and is a
// function purely of immutable dictionary state and kind, so memoizing it
// never changes an observable result (§5).
func (r *Router) parseValueFromTag(id tagdict.TagValueId, kind ValueKind) Value {
	r.mu.Lock()
	defer r.mu.Unlock()

	for uint32(len(r.ruleToValue)) <= id {
		r.ruleToValue = append(r.ruleToValue, tagValueCacheEntry{})
	}

	if entry := r.ruleToValue[id]; entry.kind == kind {
		switch entry.state {
		case cacheResolved:
			return Of(entry.value)
		case cacheFailed:
			return Missing
		}
	}

	tv := r.dict.Get(id)
	parsed := ParseValue(tv.Value, kind)
	if parsed.IsMissing() {
		r.ruleToValue[id] = tagValueCacheEntry{state: cacheFailed, kind: kind}
		return Missing
	}
	r.ruleToValue[id] = tagValueCacheEntry{state: cacheResolved, kind: kind, value: parsed.Float()}
	return parsed
}

// encodeObject converts a road's own tags into a dictionary-indexed
// bit-set.
func (r *Router) encodeObject(road Road) *tagdict.BitSet {
	return r.regions.Encode(road.Region(), road.Tags(), road.Resolve)
}

// encodePoint converts one path point's tags into a dictionary-indexed
// bit-set.
func (r *Router) encodePoint(road Road, point int) *tagdict.BitSet {
	return r.regions.Encode(road.Region(), road.PointTags()[point], road.Resolve)
}
