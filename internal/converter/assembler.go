package converter

import (
	"context"
	"strings"

	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

// assemble builds the program for the parsed registry.
func (c *conversion) assemble(ctx context.Context) (*thingtalk.Program, error) {
	var (
		expr thingtalk.Expression
		err  error
	)
	if c.query.IsAsk() {
		expr, err = c.assembleVerification(ctx)
	} else {
		expr, err = c.assembleSelection(ctx)
	}
	if err != nil {
		return nil, err
	}
	return thingtalk.Optimize(thingtalk.MakeProgram(expr)), nil
}

// rootFilters returns the root's filters followed by one subquery per other
// table.
func (c *conversion) rootFilters(root *Table) ([]thingtalk.BooleanExpression, error) {
	filters := append([]thingtalk.BooleanExpression(nil), root.Filters...)
	for _, t := range c.reg.all() {
		if t.Subject == root.Subject {
			continue
		}
		f, err := c.subquery(root, t)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func (c *conversion) root() (*Table, error) {
	subject, err := c.mainSubject()
	if err != nil {
		return nil, err
	}
	t, _ := c.reg.get(subject)
	return t, nil
}

func (c *conversion) assembleSelection(ctx context.Context) (thingtalk.Expression, error) {
	sel, err := c.parseVariables()
	if err != nil {
		return nil, err
	}
	if err := c.preprocess(ctx, sel); err != nil {
		return nil, err
	}
	root, err := c.root()
	if err != nil {
		return nil, err
	}
	filters, err := c.rootFilters(root)
	if err != nil {
		return nil, err
	}

	expr := thingtalk.AddFilters(thingtalk.BaseQuery(root.Name), filters)
	if expr, err = c.addOrdering(expr, root); err != nil {
		return nil, err
	}
	if expr, err = c.addLimit(expr); err != nil {
		return nil, err
	}
	return addOutputs(expr, sel.get(root.Subject))
}

func (c *conversion) addOrdering(expr thingtalk.Expression, root *Table) (thingtalk.Expression, error) {
	switch len(c.query.OrderBy) {
	case 0:
		return expr, nil
	case 1:
	default:
		return nil, unsupportedf("ordering on multiple variables")
	}
	order := c.query.OrderBy[0]
	v, ok := order.Expression.(sparql.Variable)
	if !ok {
		return nil, unsupportedf("ordering on an expression")
	}
	proj, ok := root.projection(v.Name)
	if !ok {
		return nil, unsupportedf("Failed to find the variable for sorting ?%s", v.Name)
	}
	field, ok := proj.Field()
	if !ok {
		return nil, unsupportedf("sort on property path")
	}
	direction := thingtalk.SortAscending
	if order.Descending {
		direction = thingtalk.SortDescending
	}
	return &thingtalk.SortExpression{
		Expression: expr,
		Value:      thingtalk.NewVarRef(strings.TrimSuffix(field, labelSuffix)),
		Direction:  direction,
	}, nil
}

// addLimit maps LIMIT 1 to an index and any other window to a slice.
func (c *conversion) addLimit(expr thingtalk.Expression) (thingtalk.Expression, error) {
	limit, offset := c.query.Limit, c.query.Offset
	switch {
	case limit == 0 && offset == 0:
		return expr, nil
	case limit == 0:
		return nil, unsupportedf("OFFSET without LIMIT")
	case limit == 1 && offset == 0:
		return &thingtalk.IndexExpression{Expression: expr, Indices: []thingtalk.Value{thingtalk.NewNumber(1)}}, nil
	}
	return &thingtalk.SliceExpression{
		Expression: expr,
		Base:       thingtalk.NewNumber(float64(offset + 1)),
		Limit:      thingtalk.NewNumber(float64(limit)),
	}, nil
}

// addOutputs projects the selected fields of the root and applies its
// aggregation, if any.
func addOutputs(expr thingtalk.Expression, outs []*output) (thingtalk.Expression, error) {
	var (
		elements []thingtalk.ProjectionElement
		seen     = make(map[string]bool)
		agg      *output
	)
	for _, o := range outs {
		if o.isAggregation() {
			if agg != nil {
				return nil, unsupportedf("more than one aggregation")
			}
			agg = o
			continue
		}
		value := o.Property
		if o.isLabel() {
			field, _ := o.Field()
			value = thingtalk.NewVarRef(strings.TrimSuffix(field, labelSuffix))
		}
		key := thingtalk.ValueString(value)
		if seen[key] {
			continue
		}
		seen[key] = true
		el := thingtalk.ProjectionElement{Value: value}
		if o.Type != "" {
			el.Types = []thingtalk.Type{&thingtalk.EntityType{Name: thingtalk.EntityTypeName(o.Type)}}
		}
		elements = append(elements, el)
	}

	if len(elements) > 0 && !onlyID(elements) {
		expr = &thingtalk.ProjectionExpression{Expression: expr, Elements: elements}
	}
	if agg != nil {
		expr = &thingtalk.AggregationExpression{Expression: expr, Field: agg.AggField, Operator: agg.Op}
	}
	return expr, nil
}

func onlyID(elements []thingtalk.ProjectionElement) bool {
	if len(elements) != 1 || len(elements[0].Types) > 0 {
		return false
	}
	ref, ok := elements[0].Value.(*thingtalk.VarRef)
	return ok && ref.Name == thingtalk.IDField
}

// assembleVerification turns an ASK query into a boolean question. With an
// id filter it asks about that entity; without one it asks whether any row
// matches.
func (c *conversion) assembleVerification(ctx context.Context) (thingtalk.Expression, error) {
	if err := c.preprocess(ctx, nil); err != nil {
		return nil, err
	}
	root, err := c.root()
	if err != nil {
		return nil, err
	}
	filters, err := c.rootFilters(root)
	if err != nil {
		return nil, err
	}

	var idFilter thingtalk.BooleanExpression
	var operands []thingtalk.BooleanExpression
	for _, f := range filters {
		if idFilter == nil && thingtalk.IsIDFilter(f) {
			idFilter = f
			continue
		}
		operands = append(operands, f)
	}
	for _, p := range root.Projections {
		if c.skipNullCheck(p, operands) {
			continue
		}
		operands = append(operands, thingtalk.NewNot(c.filters.nullCheck(p.Property)))
	}

	base := thingtalk.BaseQuery(root.Name)
	if idFilter != nil {
		question := thingtalk.True
		if len(operands) > 0 {
			question = thingtalk.NewAnd(operands...)
		}
		return &thingtalk.BooleanQuestionExpression{
			Expression: &thingtalk.FilterExpression{Expression: base, Filter: idFilter},
			Question:   question,
		}, nil
	}
	return &thingtalk.BooleanQuestionExpression{
		Expression: &thingtalk.AggregationExpression{
			Expression: thingtalk.AddFilters(base, operands),
			Field:      "*",
			Operator:   "count",
		},
		Question: &thingtalk.AtomBooleanExpression{Name: "count", Operator: ">=", Value: thingtalk.NewNumber(1)},
	}, nil
}

// skipNullCheck reports whether a projection needs no "has a value" check:
// labels, variables that are tables of their own, and fields a filter
// already constrains.
func (c *conversion) skipNullCheck(p Projection, operands []thingtalk.BooleanExpression) bool {
	field, ok := p.Field()
	if !ok {
		return false
	}
	if p.isLabel() || c.reg.has(p.Variable) {
		return true
	}
	for _, f := range operands {
		if thingtalk.ReferencesField(f, field) {
			return true
		}
	}
	return false
}
