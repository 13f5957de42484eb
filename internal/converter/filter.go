package converter

import (
	"context"
	"strings"

	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

type matchKind int

const (
	matchBasic matchKind = iota
	matchPredicate
	matchQualifier
)

// filterMatch is what a filter variable refers to: a table projection, the
// value of a statement, or one of its qualifiers.
type filterMatch struct {
	kind      matchKind
	table     string
	property  thingtalk.Value
	predicate *Predicate
	qualifier string
}

type filterParser struct {
	c *conversion
}

func (p *filterParser) parse(ctx context.Context, f *sparql.Filter) (*subjectFilters, error) {
	return p.parseExpression(ctx, f.Expression, false)
}

func (p *filterParser) parseExpression(ctx context.Context, expr sparql.Expression, negate bool) (*subjectFilters, error) {
	op, ok := expr.(*sparql.Operation)
	if !ok {
		return nil, unsupportedf("filter expression of type %T", expr)
	}
	switch op.Operator {
	case "!":
		return p.parseExpression(ctx, op.Args[0], !negate)
	case "&&":
		if negate {
			return p.parseDisjunction(ctx, op.Args, true)
		}
		return p.parseConjunction(ctx, op.Args, false)
	case "||":
		if negate {
			return p.parseConjunction(ctx, op.Args, true)
		}
		return p.parseDisjunction(ctx, op.Args, false)
	case "lang", "langmatches":
		return newSubjectFilters(), nil
	}

	switch {
	case len(op.Args) == 1:
		return p.parseUnary(op, negate)
	case len(op.Args) == 2, op.Operator == "regex" && len(op.Args) == 3:
		return p.parseBinary(ctx, op, negate)
	}
	return nil, unsupportedf("filter %s with %d arguments", op.Operator, len(op.Args))
}

func (p *filterParser) parseConjunction(ctx context.Context, args []sparql.Expression, negate bool) (*subjectFilters, error) {
	out := newSubjectFilters()
	for _, arg := range args {
		fs, err := p.parseExpression(ctx, arg, negate)
		if err != nil {
			return nil, err
		}
		out.merge(fs)
	}
	return out, nil
}

// parseDisjunction joins the operands with ||. Every operand must filter the
// same single table.
func (p *filterParser) parseDisjunction(ctx context.Context, args []sparql.Expression, negate bool) (*subjectFilters, error) {
	subject := ""
	var operands []thingtalk.BooleanExpression
	for _, arg := range args {
		fs, err := p.parseExpression(ctx, arg, negate)
		if err != nil {
			return nil, err
		}
		var filters []thingtalk.BooleanExpression
		for _, s := range fs.subjects() {
			if len(fs.get(s)) == 0 {
				continue
			}
			if subject != "" && s != subject {
				return nil, unsupportedf("disjunction over several tables")
			}
			subject = s
			filters = fs.get(s)
		}
		if len(filters) == 0 {
			return nil, unsupportedf("disjunction operand without a table filter")
		}
		operands = append(operands, thingtalk.NewAnd(filters...))
	}
	out := newSubjectFilters()
	out.add(subject, thingtalk.NewOr(operands...))
	return out, nil
}

// findProperty resolves a filter variable: table projections first, then
// statement values, then qualifiers.
func (p *filterParser) findProperty(variable string) (filterMatch, bool) {
	if t, proj, ok := p.c.reg.owner(variable); ok {
		return filterMatch{kind: matchBasic, table: t.Subject, property: proj.Property}, true
	}
	if pred, ok := p.c.predicates.findValue(variable); ok {
		return filterMatch{kind: matchPredicate, table: pred.Table, property: thingtalk.NewVarRef(pred.Property), predicate: pred}, true
	}
	if pred, q, ok := p.c.predicates.findQualifier(variable); ok {
		return filterMatch{
			kind:      matchQualifier,
			table:     pred.Table,
			property:  thingtalk.NewVarRef(pred.Property + "." + q.Property),
			predicate: pred,
			qualifier: q.Property,
		}, true
	}
	return filterMatch{}, false
}

func (p *filterParser) parseUnary(op *sparql.Operation, negate bool) (*subjectFilters, error) {
	if op.Operator != "bound" {
		return nil, unsupportedf("filter operator %s", op.Operator)
	}
	v, ok := op.Args[0].(sparql.Variable)
	if !ok {
		return nil, unsupportedf("bound over a non-variable")
	}
	match, ok := p.findProperty(v.Name)
	if !ok {
		return nil, unsupportedf("cannot find projection ?%s", v.Name)
	}
	if match.kind != matchBasic {
		return nil, unsupportedf("bound over statement variable ?%s", v.Name)
	}

	// A label is bound exactly when the labelled field is.
	property := match.property
	if ref, ok := property.(*thingtalk.VarRef); ok && strings.HasSuffix(ref.Name, labelSuffix) {
		base := strings.TrimSuffix(ref.Name, labelSuffix)
		if base == thingtalk.IDField {
			return nil, unsupportedf("bound over the label of ?%s", match.table)
		}
		property = thingtalk.NewVarRef(base)
	}

	f := p.nullCheck(property)
	if negate {
		f = thingtalk.NewNot(f)
	}
	out := newSubjectFilters()
	out.add(match.table, f)
	return out, nil
}

// nullCheck is the filter holding when property has no value.
func (p *filterParser) nullCheck(property thingtalk.Value) thingtalk.BooleanExpression {
	null := &thingtalk.NullValue{}
	switch prop := property.(type) {
	case *thingtalk.VarRef:
		if typ, ok := p.c.schema.PropertyType(prop.Name); ok && thingtalk.IsArray(typ) {
			return &thingtalk.ComputeBooleanExpression{
				LHS:      &thingtalk.ComputationValue{Op: "count", Operands: []thingtalk.Value{prop}},
				Operator: "==",
				RHS:      thingtalk.NewNumber(0),
			}
		}
		return &thingtalk.AtomBooleanExpression{Name: prop.Name, Operator: "==", Value: null}
	case thingtalk.PropertyPath:
		return &thingtalk.PropertyPathBooleanExpression{Path: prop, Operator: "==", Value: null}
	default:
		return &thingtalk.ComputeBooleanExpression{LHS: property, Operator: "==", RHS: null}
	}
}

func (p *filterParser) parseBinary(ctx context.Context, op *sparql.Operation, negate bool) (*subjectFilters, error) {
	out := newSubjectFilters()
	lhs, rhs := op.Args[0], op.Args[1]
	operator := op.Operator

	if call, ok := lhs.(*sparql.Operation); ok && call.Operator == "lang" {
		return out, nil
	}
	if _, ok := lhs.(sparql.Variable); !ok {
		if _, ok := rhs.(sparql.Variable); ok && operator != "regex" {
			lhs, rhs = rhs, lhs
			operator = flip(operator)
		}
	}
	left, ok := lhs.(sparql.Variable)
	if !ok {
		return nil, unsupportedf("filter %s without a variable operand", operator)
	}

	tt, neg, ok := relational(operator)
	if !ok {
		return nil, unsupportedf("filter operator %s", operator)
	}
	negated := negate != neg

	if right, ok := rhs.(sparql.Variable); ok {
		if negated || tt == opMatch {
			return nil, unsupportedf("comparison %s between variables", operator)
		}
		p.c.reg.addComparison(Comparison{LHS: left.Name, Operator: tt, RHS: right.Name})
		return out, nil
	}

	var raw string
	switch term := rhs.(type) {
	case sparql.Literal:
		raw = term.Value
	case sparql.IRI:
		raw = term.Value
	default:
		return nil, unsupportedf("filter %s against %T", operator, rhs)
	}

	match, ok := p.findProperty(left.Name)
	if !ok {
		return nil, unsupportedf("cannot find projection ?%s", left.Name)
	}
	ref, ok := match.property.(*thingtalk.VarRef)
	if !ok {
		return nil, unsupportedf("filter on computed projection ?%s", left.Name)
	}

	switch match.kind {
	case matchPredicate:
		if negated {
			return nil, unsupportedf("negated filter on statement value ?%s", left.Name)
		}
		isVar := false
		p.c.predicates.addOrUpdate(Predicate{
			Table:      match.table,
			Property:   match.predicate.Property,
			Op:         tt,
			Value:      raw,
			IsVariable: &isVar,
		})
		return out, nil
	case matchQualifier:
		if negated {
			return nil, unsupportedf("negated filter on qualifier ?%s", left.Name)
		}
		p.c.predicates.addOrUpdate(Predicate{
			Table:      match.table,
			Property:   match.predicate.Property,
			Qualifiers: []Qualifier{{Property: match.qualifier, Op: tt, Value: raw}},
		})
		return out, nil
	}

	var f thingtalk.BooleanExpression
	if strings.HasSuffix(ref.Name, labelSuffix) {
		if tt != opMatch && tt != "==" {
			return nil, unsupportedf("filter %s on label ?%s", operator, left.Name)
		}
		base := strings.TrimSuffix(ref.Name, labelSuffix)
		typ, err := p.c.propertyType(base)
		if err != nil {
			return nil, err
		}
		matchOp := "=~"
		if thingtalk.IsArray(typ) {
			matchOp = "contains~"
		}
		f = &thingtalk.AtomBooleanExpression{Name: base, Operator: matchOp, Value: &thingtalk.StringValue{Value: raw}}
	} else {
		typ, err := p.c.propertyType(ref.Name)
		if err != nil {
			return nil, err
		}
		var valueType thingtalk.Type
		if tt == opMatch {
			valueType = thingtalk.StringType{}
		}
		f, err = p.c.atomOf(ctx, ref.Name, typ, raw, tt, valueType)
		if err != nil {
			return nil, err
		}
	}
	if negated {
		f = thingtalk.NewNot(f)
	}
	out.add(match.table, f)
	return out, nil
}
