package router

import "github.com/mapgrid/routecore/internal/tagdict"

func isReference(operand string) bool {
	return len(operand) > 0 && (operand[0] == '$' || operand[0] == ':')
}

// evalOperand resolves a selector/expression operand against a live
// bit-set and parameter context:
//   - "$tagname" dereferences the numeric value of whichever present tag
//     matches tagname (lowest id wins);
//   - ":paramname" substitutes a parameter value;
//   - anything else is a literal, parsed under kind.
func evalOperand(router *Router, operand string, kind ValueKind, types *tagdict.BitSet, params ParameterContext) Value {
	if len(operand) == 0 {
		return Missing
	}
	switch operand[0] {
	case '$':
		return router.dereferenceTag(operand[1:], kind, types)
	case ':':
		return router.dereferenceParam(operand[1:], kind, params)
	default:
		return ParseValue(operand, kind)
	}
}

// dereferenceTag looks up the dictionary's per-tag bit-set, intersects it
// with types, and parses the value text of the lowest set intersection bit
// under kind. The per-id parse result is memoized in the router's
// tag-value cache.
func (r *Router) dereferenceTag(tagName string, kind ValueKind, types *tagdict.BitSet) Value {
	idx := r.dict.TagIndex(tagName)
	if idx == nil {
		return Missing
	}

	aligned := tagdict.Align(idx, types.Len())
	if !aligned.Intersects(types) {
		return Missing
	}

	id, ok := aligned.And(types).FindFirst()
	if !ok {
		return Missing
	}

	return r.parseValueFromTag(id, kind)
}

// dereferenceParam looks up name in the parameter context, returning
// MISSING if absent.
func (r *Router) dereferenceParam(name string, kind ValueKind, params ParameterContext) Value {
	text, ok := params.Get(name)
	if !ok {
		return Missing
	}
	return ParseValue(text, kind)
}
