package thingtalk

// BooleanExpression is a filter predicate.
//
// This is a sealed interface - only types in this package implement it.
type BooleanExpression interface {
	booleanNode()
}

// TrueBooleanExpression always holds. The optimiser removes it from
// conjunctions and drops filters made only of it.
type TrueBooleanExpression struct{}

// FalseBooleanExpression never holds.
type FalseBooleanExpression struct{}

// AtomBooleanExpression compares a field with a constant: name op value.
type AtomBooleanExpression struct {
	Name     string
	Operator string
	Value    Value
}

// AndBooleanExpression holds when every operand holds.
type AndBooleanExpression struct {
	Operands []BooleanExpression
}

// OrBooleanExpression holds when some operand holds.
type OrBooleanExpression struct {
	Operands []BooleanExpression
}

// NotBooleanExpression negates its operand.
type NotBooleanExpression struct {
	Expression BooleanExpression
}

// ComputeBooleanExpression compares a computed left-hand side (a filter
// value, an array field or a computation) with a value.
type ComputeBooleanExpression struct {
	LHS      Value
	Operator string
	RHS      Value
}

// ComparisonSubqueryBooleanExpression compares a field with any result of a
// subquery: lhs op any(rhs).
type ComparisonSubqueryBooleanExpression struct {
	LHS      Value
	Operator string
	RHS      Expression
}

// PropertyPathBooleanExpression compares the end of a property path with a
// value.
type PropertyPathBooleanExpression struct {
	Path     PropertyPath
	Operator string
	Value    Value
}

func (*TrueBooleanExpression) booleanNode()               {}
func (*FalseBooleanExpression) booleanNode()              {}
func (*AtomBooleanExpression) booleanNode()               {}
func (*AndBooleanExpression) booleanNode()                {}
func (*OrBooleanExpression) booleanNode()                 {}
func (*NotBooleanExpression) booleanNode()                {}
func (*ComputeBooleanExpression) booleanNode()            {}
func (*ComparisonSubqueryBooleanExpression) booleanNode() {}
func (*PropertyPathBooleanExpression) booleanNode()       {}

// True and False are the shared constant predicates.
var (
	True  BooleanExpression = &TrueBooleanExpression{}
	False BooleanExpression = &FalseBooleanExpression{}
)

// NewAnd joins operands with &&. A single operand is returned unchanged.
func NewAnd(operands ...BooleanExpression) BooleanExpression {
	if len(operands) == 1 {
		return operands[0]
	}
	return &AndBooleanExpression{Operands: append([]BooleanExpression(nil), operands...)}
}

// NewOr joins operands with ||. A single operand is returned unchanged.
func NewOr(operands ...BooleanExpression) BooleanExpression {
	if len(operands) == 1 {
		return operands[0]
	}
	return &OrBooleanExpression{Operands: append([]BooleanExpression(nil), operands...)}
}

// NewNot negates e.
func NewNot(e BooleanExpression) BooleanExpression {
	return &NotBooleanExpression{Expression: e}
}

// Operators printed in call form rather than infix.
var callOperators = map[string]bool{
	"contains":    true,
	"contains~":   true,
	"in_array":    true,
	"in_array~":   true,
	"starts_with": true,
	"ends_with":   true,
}

// IsCallOperator reports whether op prints as op(lhs, rhs).
func IsCallOperator(op string) bool {
	return callOperators[op]
}
