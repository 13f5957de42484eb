package thingtalk

// Optimize simplifies every statement of p in place and returns p.
//
// Boolean rewrites: nested && and || are flattened, single-operand
// conjunctions and disjunctions collapse to their operand, true is dropped
// from && (false from ||), and !!x becomes x. Expression rewrites: a filter
// of true disappears and stacked filters merge into one conjunction.
func Optimize(p *Program) *Program {
	for i := range p.Statements {
		chain := p.Statements[i].Expression
		for j, e := range chain.Expressions {
			chain.Expressions[j] = OptimizeExpression(e)
		}
	}
	return p
}

// OptimizeExpression returns the simplified form of e.
func OptimizeExpression(e Expression) Expression {
	switch expr := e.(type) {
	case *FilterExpression:
		inner := OptimizeExpression(expr.Expression)
		filter := OptimizeBoolean(expr.Filter)
		if _, ok := filter.(*TrueBooleanExpression); ok {
			return inner
		}
		if nested, ok := inner.(*FilterExpression); ok {
			return &FilterExpression{
				Expression: nested.Expression,
				Filter:     OptimizeBoolean(NewAnd(nested.Filter, filter)),
			}
		}
		return &FilterExpression{Expression: inner, Filter: filter}
	case *ProjectionExpression:
		elements := make([]ProjectionElement, len(expr.Elements))
		for i, el := range expr.Elements {
			elements[i] = ProjectionElement{Value: optimizeValue(el.Value), Types: el.Types}
		}
		return &ProjectionExpression{Expression: OptimizeExpression(expr.Expression), Elements: elements}
	case *SortExpression:
		return &SortExpression{Expression: OptimizeExpression(expr.Expression), Value: expr.Value, Direction: expr.Direction}
	case *IndexExpression:
		return &IndexExpression{Expression: OptimizeExpression(expr.Expression), Indices: expr.Indices}
	case *SliceExpression:
		return &SliceExpression{Expression: OptimizeExpression(expr.Expression), Base: expr.Base, Limit: expr.Limit}
	case *AggregationExpression:
		return &AggregationExpression{Expression: OptimizeExpression(expr.Expression), Field: expr.Field, Operator: expr.Operator}
	case *BooleanQuestionExpression:
		return &BooleanQuestionExpression{Expression: OptimizeExpression(expr.Expression), Question: OptimizeBoolean(expr.Question)}
	case *ChainExpression:
		exprs := make([]Expression, len(expr.Expressions))
		for i, inner := range expr.Expressions {
			exprs[i] = OptimizeExpression(inner)
		}
		return &ChainExpression{Expressions: exprs}
	default:
		return e
	}
}

// OptimizeBoolean returns the simplified form of b.
func OptimizeBoolean(b BooleanExpression) BooleanExpression {
	switch expr := b.(type) {
	case *AndBooleanExpression:
		var operands []BooleanExpression
		for _, op := range expr.Operands {
			op = OptimizeBoolean(op)
			switch o := op.(type) {
			case *TrueBooleanExpression:
				continue
			case *FalseBooleanExpression:
				return False
			case *AndBooleanExpression:
				operands = append(operands, o.Operands...)
			default:
				operands = append(operands, op)
			}
		}
		switch len(operands) {
		case 0:
			return True
		case 1:
			return operands[0]
		}
		return &AndBooleanExpression{Operands: operands}
	case *OrBooleanExpression:
		var operands []BooleanExpression
		for _, op := range expr.Operands {
			op = OptimizeBoolean(op)
			switch o := op.(type) {
			case *FalseBooleanExpression:
				continue
			case *TrueBooleanExpression:
				return True
			case *OrBooleanExpression:
				operands = append(operands, o.Operands...)
			default:
				operands = append(operands, op)
			}
		}
		switch len(operands) {
		case 0:
			return False
		case 1:
			return operands[0]
		}
		return &OrBooleanExpression{Operands: operands}
	case *NotBooleanExpression:
		inner := OptimizeBoolean(expr.Expression)
		switch i := inner.(type) {
		case *NotBooleanExpression:
			return i.Expression
		case *TrueBooleanExpression:
			return False
		case *FalseBooleanExpression:
			return True
		}
		return &NotBooleanExpression{Expression: inner}
	case *ComputeBooleanExpression:
		return &ComputeBooleanExpression{LHS: optimizeValue(expr.LHS), Operator: expr.Operator, RHS: expr.RHS}
	case *ComparisonSubqueryBooleanExpression:
		return &ComparisonSubqueryBooleanExpression{LHS: expr.LHS, Operator: expr.Operator, RHS: OptimizeExpression(expr.RHS)}
	default:
		return b
	}
}

func optimizeValue(v Value) Value {
	switch val := v.(type) {
	case *FilterValue:
		filter := OptimizeBoolean(val.Filter)
		if _, ok := filter.(*TrueBooleanExpression); ok {
			return optimizeValue(val.Value)
		}
		return &FilterValue{Value: optimizeValue(val.Value), Filter: filter}
	case *ArrayFieldValue:
		return &ArrayFieldValue{Value: optimizeValue(val.Value), Field: val.Field}
	default:
		return v
	}
}
