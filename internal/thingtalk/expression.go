package thingtalk

// Expression is a query expression: a table, possibly filtered, projected,
// sorted, indexed or aggregated.
//
// This is a sealed interface - only types in this package implement it.
type Expression interface {
	expressionNode()
}

// Class is the device class of every Wikidata function.
const Class = "org.wikidata"

// InvocationExpression calls a domain function: @org.wikidata.country().
type InvocationExpression struct {
	Class    string
	Function string
}

// FilterExpression keeps rows of Expression satisfying Filter.
type FilterExpression struct {
	Expression Expression
	Filter     BooleanExpression
}

// ProjectionElement is one projected field with optional type hints.
// Value is a *VarRef, a PropertyPath, a *FilterValue or an *ArrayFieldValue.
type ProjectionElement struct {
	Value Value
	Types []Type
}

// ProjectionExpression keeps the listed fields of Expression.
type ProjectionExpression struct {
	Expression Expression
	Elements   []ProjectionElement
}

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// SortExpression orders Expression by Value.
type SortExpression struct {
	Expression Expression
	Value      Value
	Direction  SortDirection
}

// IndexExpression picks rows by 1-based position.
type IndexExpression struct {
	Expression Expression
	Indices    []Value
}

// SliceExpression keeps Limit rows starting at the 1-based Base.
type SliceExpression struct {
	Expression Expression
	Base       Value
	Limit      Value
}

// AggregationExpression aggregates Field of Expression with Operator. A
// Field of "*" counts rows.
type AggregationExpression struct {
	Expression Expression
	Field      string
	Operator   string
}

// BooleanQuestionExpression asks whether Expression satisfies Question.
type BooleanQuestionExpression struct {
	Expression Expression
	Question   BooleanExpression
}

// ChainExpression runs expressions in sequence. Programs produced by the
// converter hold a chain of exactly one expression.
type ChainExpression struct {
	Expressions []Expression
}

func (*InvocationExpression) expressionNode()      {}
func (*FilterExpression) expressionNode()          {}
func (*ProjectionExpression) expressionNode()      {}
func (*SortExpression) expressionNode()            {}
func (*IndexExpression) expressionNode()           {}
func (*SliceExpression) expressionNode()           {}
func (*AggregationExpression) expressionNode()     {}
func (*BooleanQuestionExpression) expressionNode() {}
func (*ChainExpression) expressionNode()           {}

// Statement is one top-level statement of a program.
type Statement struct {
	Expression *ChainExpression
}

// Program is a complete ThingTalk program.
type Program struct {
	Statements []Statement
}

// String returns the printed program.
func (p *Program) String() string {
	return Print(p)
}

// MakeProgram wraps a single expression into a one-statement program.
func MakeProgram(e Expression) *Program {
	return &Program{Statements: []Statement{{
		Expression: &ChainExpression{Expressions: []Expression{e}},
	}}}
}

// BaseQuery is the unfiltered invocation of a domain function.
func BaseQuery(domain string) *InvocationExpression {
	return &InvocationExpression{Class: Class, Function: domain}
}

// EntityTypeName qualifies a domain name as an entity type name.
func EntityTypeName(domain string) string {
	return Class + ":" + domain
}

// AddFilters filters base by the conjunction of filters. No filters returns
// base unchanged.
func AddFilters(base Expression, filters []BooleanExpression) Expression {
	if len(filters) == 0 {
		return base
	}
	return &FilterExpression{Expression: base, Filter: NewAnd(filters...)}
}
