package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mapgrid/routecore/internal/tagdict"
)

// Rule is a guard (must-have / must-not-have bit-set tests, must-have /
// must-not-have free-tag tests, numeric sub-expressions) plus a select
// value that contributes to an AttributeContext's result when the guard
// matches.
type Rule struct {
	FilterTypes    *tagdict.BitSet
	FilterNotTypes *tagdict.BitSet
	OnlyTags       map[string]struct{}
	OnlyNotTags    map[string]struct{}
	Expressions    []*Expression
	Parameters     []string

	SelectType     ValueKind
	SelectValueDef string

	// selectValue caches the parsed literal selector. It stays Missing
	// when SelectValueDef is a $tag or :param reference, which can only be
	// resolved against a live bit-set / parameter context.
	selectValue Value
}

// RuleBuilder constructs a Rule, registering its tag/value guard
// conditions against a Dictionary as it goes. The built Rule holds no
// back-pointer to the router or dictionary (§9): evaluation calls pass the
// Router explicitly.
type RuleBuilder struct {
	dict *tagdict.Dictionary
	rule *Rule
}

// NewRuleBuilder starts building a rule whose tag/value conditions
// register against dict.
func NewRuleBuilder(dict *tagdict.Dictionary) *RuleBuilder {
	return &RuleBuilder{
		dict: dict,
		rule: &Rule{
			OnlyTags:    make(map[string]struct{}),
			OnlyNotTags: make(map[string]struct{}),
		},
	}
}

// RequireTag adds a filterTypes condition: (tag,value) must be present.
func (b *RuleBuilder) RequireTag(tag, value string) *RuleBuilder {
	id := b.dict.Register(tag, value)
	if b.rule.FilterTypes == nil {
		b.rule.FilterTypes = tagdict.NewBitSet(id + 1)
	}
	b.rule.FilterTypes.Set(id)
	return b
}

// ForbidTag adds a filterNotTypes condition: (tag,value) must be absent.
func (b *RuleBuilder) ForbidTag(tag, value string) *RuleBuilder {
	id := b.dict.Register(tag, value)
	if b.rule.FilterNotTypes == nil {
		b.rule.FilterNotTypes = tagdict.NewBitSet(id + 1)
	}
	b.rule.FilterNotTypes.Set(id)
	return b
}

// RequireTagPresence adds an onlyTags condition: some value of tag must be
// present (the tag=* guard predicate).
func (b *RuleBuilder) RequireTagPresence(tag string) *RuleBuilder {
	b.rule.OnlyTags[tag] = struct{}{}
	return b
}

// ForbidTagPresence adds an onlyNotTags condition: no value of tag may be
// present (the !tag=* guard predicate).
func (b *RuleBuilder) ForbidTagPresence(tag string) *RuleBuilder {
	b.rule.OnlyNotTags[tag] = struct{}{}
	return b
}

// AddExpression adds a numeric LE/GE sub-expression to the guard.
func (b *RuleBuilder) AddExpression(op ExprOp, kind ValueKind, lhs, rhs string) *RuleBuilder {
	b.rule.Expressions = append(b.rule.Expressions, NewExpression(op, kind, lhs, rhs))
	return b
}

// WithParameters records informational metadata about parameters this rule
// references (mirrors the original's registerParamConditions; purely
// descriptive, used for diagnostics/String()).
func (b *RuleBuilder) WithParameters(names ...string) *RuleBuilder {
	b.rule.Parameters = append(b.rule.Parameters, names...)
	return b
}

// Select sets the rule's select value: a literal (parsed eagerly under
// kind), a $tag dereference, or a :param substitution (both resolved lazily
// at evaluation time).
func (b *RuleBuilder) Select(def string, kind ValueKind) *RuleBuilder {
	b.rule.SelectType = kind
	b.rule.SelectValueDef = def
	if isReference(def) {
		b.rule.selectValue = Missing
	} else {
		b.rule.selectValue = ParseValue(def, kind)
	}
	return b
}

// Build returns the constructed Rule.
func (b *RuleBuilder) Build() *Rule {
	return b.rule
}

// Matches evaluates the rule's guard against types and paramContext, in
// the fixed short-circuit order the spec requires: filterTypes,
// filterNotTypes, onlyTags, onlyNotTags, expressions.
func (rule *Rule) Matches(types *tagdict.BitSet, params ParameterContext, router *Router) bool {
	if rule.FilterTypes != nil && !rule.FilterTypes.IsSubsetOf(types) {
		return false
	}
	if rule.FilterNotTypes != nil && tagdict.Align(rule.FilterNotTypes, types.Len()).Intersects(types) {
		return false
	}
	for tag := range rule.OnlyTags {
		idx := router.dict.TagIndex(tag)
		if idx == nil || !tagdict.Align(idx, types.Len()).Intersects(types) {
			return false
		}
	}
	for tag := range rule.OnlyNotTags {
		idx := router.dict.TagIndex(tag)
		if idx != nil && tagdict.Align(idx, types.Len()).Intersects(types) {
			return false
		}
	}
	for _, expr := range rule.Expressions {
		if !expr.Matches(types, params, router) {
			return false
		}
	}
	return true
}

// CalcSelectValue resolves the rule's select value once the guard has
// matched.
func (rule *Rule) CalcSelectValue(types *tagdict.BitSet, params ParameterContext, router *Router) Value {
	if !rule.selectValue.IsMissing() {
		return rule.selectValue
	}
	return evalOperand(router, rule.SelectValueDef, rule.SelectType, types, params)
}

// Eval matches the guard and, if it matches, resolves the select value;
// MISSING otherwise.
func (rule *Rule) Eval(types *tagdict.BitSet, params ParameterContext, router *Router) Value {
	if !rule.Matches(types, params, router) {
		return Missing
	}
	return rule.CalcSelectValue(types, params, router)
}

// String renders a human-readable dump of the rule's selector, parameters,
// onlyTags/onlyNotTags guards and expression count, for debug output.
// FilterTypes and FilterNotTypes are not included.
func (rule *Rule) String() string {
	var s strings.Builder
	s.WriteString("select ")
	if rule.selectValue.IsMissing() {
		s.WriteString(rule.SelectValueDef)
	} else {
		fmt.Fprintf(&s, "%v", rule.selectValue.Float())
	}

	if len(rule.Parameters) > 0 {
		fmt.Fprintf(&s, " param=%s", strings.Join(rule.Parameters, ","))
	}
	if len(rule.OnlyTags) > 0 {
		fmt.Fprintf(&s, " match tag = %s", joinSortedKeys(rule.OnlyTags))
	}
	if len(rule.OnlyNotTags) > 0 {
		fmt.Fprintf(&s, " not match tag = %s", joinSortedKeys(rule.OnlyNotTags))
	}
	if len(rule.Expressions) > 0 {
		fmt.Fprintf(&s, " subexpressions %d", len(rule.Expressions))
	}
	return s.String()
}

func joinSortedKeys(m map[string]struct{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, ", ") + "]"
}
