package router

import (
	"math"

	"github.com/mapgrid/routecore/internal/tagdict"
)

// AttributeContext is an ordered list of rules plus an attribute kind.
// Evaluation returns the first non-MISSING result from the rules, or the
// caller-supplied default.
type AttributeContext struct {
	Kind  AttributeKind
	Rules []*Rule
}

// Eval walks the rules in order and returns the first non-MISSING select
// value, or def if no rule matches.
func (ctx *AttributeContext) Eval(types *tagdict.BitSet, params ParameterContext, router *Router, def float64) float64 {
	for _, rule := range ctx.Rules {
		v := rule.Eval(types, params, router)
		if !v.IsMissing() {
			return v.Float()
		}
	}
	return def
}

// EvalInt behaves like Eval but truncates the result to an integer, for
// integer-valued attributes (access, oneway).
func (ctx *AttributeContext) EvalInt(types *tagdict.BitSet, params ParameterContext, router *Router, def int) int {
	return int(math.Trunc(ctx.Eval(types, params, router, float64(def))))
}
