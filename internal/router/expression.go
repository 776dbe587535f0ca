package router

import "github.com/mapgrid/routecore/internal/tagdict"

// ExprOp is a numeric comparison operator for an Expression.
type ExprOp int

const (
	LE ExprOp = iota + 1 // operand 0 <= operand 1
	GE                   // operand 0 >= operand 1
)

// Expression is a numeric sub-expression a rule's guard must satisfy:
// two operands (each a literal, a $tag dereference, or a :param
// substitution), compared with LE or GE under valueType's unit rules.
type Expression struct {
	Op        ExprOp
	ValueType ValueKind
	Operands  [2]string

	// cache holds pre-parsed literal operands (computed once at
	// construction); it stays Missing for $/: operands, which can only be
	// resolved against a live bit-set / parameter context.
	cache [2]Value
}

// NewExpression builds an Expression, pre-parsing any literal operand.
func NewExpression(op ExprOp, kind ValueKind, lhs, rhs string) *Expression {
	e := &Expression{Op: op, ValueType: kind, Operands: [2]string{lhs, rhs}}
	for i, operand := range e.Operands {
		if isReference(operand) {
			e.cache[i] = Missing
			continue
		}
		e.cache[i] = ParseValue(operand, kind)
	}
	return e
}

// Matches evaluates the expression against types and paramContext. A
// missing operand makes the expression false (never an error).
func (e *Expression) Matches(types *tagdict.BitSet, params ParameterContext, router *Router) bool {
	f1 := e.operandValue(0, types, params, router)
	f2 := e.operandValue(1, types, params, router)
	if f1.IsMissing() || f2.IsMissing() {
		return false
	}
	switch e.Op {
	case LE:
		return f1.LE(f2)
	case GE:
		return f1.GE(f2)
	default:
		return false
	}
}

func (e *Expression) operandValue(i int, types *tagdict.BitSet, params ParameterContext, router *Router) Value {
	if !e.cache[i].IsMissing() {
		return e.cache[i]
	}
	return evalOperand(router, e.Operands[i], e.ValueType, types, params)
}
