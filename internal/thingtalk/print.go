package thingtalk

import (
	"fmt"
	"strconv"
	"strings"
)

// Print returns the surface form of a program, one statement per line, each
// terminated by a semicolon.
func Print(p *Program) string {
	var sb strings.Builder
	for i, stmt := range p.Statements {
		if i > 0 {
			sb.WriteByte('\n')
		}
		pr := printer{sb: &sb}
		pr.expression(stmt.Expression)
		sb.WriteByte(';')
	}
	return sb.String()
}

// ExpressionString returns the surface form of e.
func ExpressionString(e Expression) string {
	var sb strings.Builder
	pr := printer{sb: &sb}
	pr.expression(e)
	return sb.String()
}

// BooleanString returns the surface form of b.
func BooleanString(b BooleanExpression) string {
	var sb strings.Builder
	pr := printer{sb: &sb}
	pr.boolean(b)
	return sb.String()
}

// ValueString returns the surface form of v.
func ValueString(v Value) string {
	var sb strings.Builder
	pr := printer{sb: &sb}
	pr.value(v)
	return sb.String()
}

type printer struct {
	sb *strings.Builder
}

func (p printer) write(parts ...string) {
	for _, s := range parts {
		p.sb.WriteString(s)
	}
}

func (p printer) expression(e Expression) {
	switch expr := e.(type) {
	case *InvocationExpression:
		p.write("@", expr.Class, ".", expr.Function, "()")
	case *FilterExpression:
		p.operand(expr.Expression, isInvocation)
		p.write(" filter ")
		p.boolean(expr.Filter)
	case *ProjectionExpression:
		p.write("[")
		for i, el := range expr.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.value(el.Value)
			if len(el.Types) > 0 {
				p.write(" : ")
				for j, t := range el.Types {
					if j > 0 {
						p.write(", ")
					}
					p.write(t.String())
				}
			}
		}
		p.write("] of ")
		p.operand(expr.Expression, isNotQuestion)
	case *SortExpression:
		p.write("sort(")
		p.value(expr.Value)
		p.write(" ", string(expr.Direction), " of ")
		p.expression(expr.Expression)
		p.write(")")
	case *IndexExpression:
		p.operand(expr.Expression, isCallLike)
		p.write("[")
		for i, idx := range expr.Indices {
			if i > 0 {
				p.write(", ")
			}
			p.value(idx)
		}
		p.write("]")
	case *SliceExpression:
		p.operand(expr.Expression, isCallLike)
		p.write("[")
		p.value(expr.Base)
		p.write(" : ")
		p.value(expr.Limit)
		p.write("]")
	case *AggregationExpression:
		p.write(expr.Operator, "(")
		if expr.Field != "*" && expr.Field != "" {
			p.write(expr.Field, " of ")
		}
		p.expression(expr.Expression)
		p.write(")")
	case *BooleanQuestionExpression:
		p.write("[")
		p.boolean(expr.Question)
		p.write("] of ")
		p.operand(expr.Expression, isNotQuestion)
	case *ChainExpression:
		for i, inner := range expr.Expressions {
			if i > 0 {
				p.write(" => ")
			}
			p.expression(inner)
		}
	case nil:
		p.write("<nil>")
	default:
		p.write(fmt.Sprintf("<unsupported expression %T>", e))
	}
}

// operand prints e, bracketing it unless bare reports it safe to print
// without brackets in the current position.
func (p printer) operand(e Expression, bare func(Expression) bool) {
	if bare(e) {
		p.expression(e)
		return
	}
	p.write("(")
	p.expression(e)
	p.write(")")
}

func isInvocation(e Expression) bool {
	_, ok := e.(*InvocationExpression)
	return ok
}

func isCallLike(e Expression) bool {
	switch e.(type) {
	case *InvocationExpression, *SortExpression, *AggregationExpression:
		return true
	}
	return false
}

func isNotQuestion(e Expression) bool {
	switch e.(type) {
	case *ProjectionExpression, *BooleanQuestionExpression:
		return false
	}
	return true
}

func (p printer) boolean(b BooleanExpression) {
	switch expr := b.(type) {
	case *TrueBooleanExpression:
		p.write("true")
	case *FalseBooleanExpression:
		p.write("false")
	case *AtomBooleanExpression:
		p.comparison(func() { p.write(expr.Name) }, expr.Operator, func() { p.value(expr.Value) })
	case *AndBooleanExpression:
		for i, op := range expr.Operands {
			if i > 0 {
				p.write(" && ")
			}
			if _, isOr := op.(*OrBooleanExpression); isOr {
				p.write("(")
				p.boolean(op)
				p.write(")")
				continue
			}
			p.boolean(op)
		}
	case *OrBooleanExpression:
		for i, op := range expr.Operands {
			if i > 0 {
				p.write(" || ")
			}
			p.boolean(op)
		}
	case *NotBooleanExpression:
		p.write("!(")
		p.boolean(expr.Expression)
		p.write(")")
	case *ComputeBooleanExpression:
		p.comparison(func() { p.value(expr.LHS) }, expr.Operator, func() { p.value(expr.RHS) })
	case *ComparisonSubqueryBooleanExpression:
		p.comparison(func() { p.value(expr.LHS) }, expr.Operator, func() {
			p.write("any(")
			p.expression(expr.RHS)
			p.write(")")
		})
	case *PropertyPathBooleanExpression:
		p.comparison(func() { p.value(expr.Path) }, expr.Operator, func() { p.value(expr.Value) })
	case nil:
		p.write("<nil>")
	default:
		p.write(fmt.Sprintf("<unsupported filter %T>", b))
	}
}

func (p printer) comparison(lhs func(), op string, rhs func()) {
	if IsCallOperator(op) {
		p.write(op, "(")
		lhs()
		p.write(", ")
		rhs()
		p.write(")")
		return
	}
	lhs()
	p.write(" ", op, " ")
	rhs()
}

func (p printer) value(v Value) {
	switch val := v.(type) {
	case *EntityValue:
		p.write(strconv.Quote(val.ID), "^^", val.Type)
		if val.Display != "" {
			p.write("(", strconv.Quote(val.Display), ")")
		}
	case *NumberValue:
		p.write(formatNumber(val.Value))
	case *StringValue:
		p.write(strconv.Quote(val.Value))
	case *BooleanValue:
		p.write(strconv.FormatBool(val.Value))
	case *DateValue:
		switch {
		case val.Month == 0:
			p.write(fmt.Sprintf("new Date(%d)", val.Year))
		case val.Day == 0:
			p.write(fmt.Sprintf("new Date(%d, %d)", val.Year, val.Month))
		default:
			p.write(fmt.Sprintf("new Date(%d, %d, %d)", val.Year, val.Month, val.Day))
		}
	case *MeasureValue:
		p.write(formatNumber(val.Value), val.Unit)
	case *EnumValue:
		p.write("enum ", val.Value)
	case *NullValue:
		p.write("null")
	case *VarRef:
		p.write(val.Name)
	case *FilterValue:
		p.write("(")
		p.value(val.Value)
		p.write(" filter ")
		p.boolean(val.Filter)
		p.write(")")
	case *ArrayFieldValue:
		p.write(val.Field, " of ")
		p.value(val.Value)
	case *ComputationValue:
		p.write(val.Op, "(")
		for i, operand := range val.Operands {
			if i > 0 {
				p.write(", ")
			}
			p.value(operand)
		}
		p.write(")")
	case PropertyPath:
		p.write("<")
		for i, el := range val {
			if i > 0 {
				p.write("/")
			}
			p.write(el.Property, string(el.Quantifier))
		}
		p.write(">")
	case nil:
		p.write("<nil>")
	default:
		p.write(fmt.Sprintf("<unsupported value %T>", v))
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
