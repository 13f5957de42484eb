package converter

import (
	"sort"

	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

// mainSubject picks the table that becomes the root invocation. The other
// tables turn into subqueries.
func (c *conversion) mainSubject() (string, error) {
	tables := c.reg.all()
	switch len(tables) {
	case 0:
		return "", unsupportedf("query has no table")
	case 1:
		return tables[0].Subject, nil
	}

	q := c.query
	if q.IsSelect() {
		if len(q.OrderBy) == 1 {
			if v, ok := q.OrderBy[0].Expression.(sparql.Variable); ok {
				if t, _, ok := c.reg.owner(v.Name); ok {
					return t.Subject, nil
				}
			}
		}
		for _, item := range q.Variables {
			if item.Expression != nil {
				continue
			}
			if t, _, ok := c.reg.owner(item.Variable.Name); ok {
				return t.Subject, nil
			}
			if c.reg.has(item.Variable.Name) {
				return item.Variable.Name, nil
			}
		}
	}

	var candidates []*Table
	for _, t := range tables {
		if len(t.Projections) == 0 {
			continue
		}
		if q.IsAsk() && !t.hasIDFilter() {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return "", unsupportedf("Failed to find the main subject")
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return complexity(candidates[i]) > complexity(candidates[j])
	})
	return candidates[0].Subject, nil
}

func complexity(t *Table) int {
	return len(t.Filters) + len(t.Projections)
}

// subquery relates the sub table to the main table: through a registered
// variable comparison, or through a projection linking one table's
// subject to the other.
func (c *conversion) subquery(main, sub *Table) (thingtalk.BooleanExpression, error) {
	subExpr := thingtalk.AddFilters(thingtalk.BaseQuery(sub.Name), sub.Filters)
	project := func(field string) thingtalk.Expression {
		return &thingtalk.ProjectionExpression{
			Expression: subExpr,
			Elements:   []thingtalk.ProjectionElement{{Value: thingtalk.NewVarRef(field)}},
		}
	}

	if len(c.reg.comparisons) == 1 {
		comp := c.reg.comparisons[0]
		mainField, mainSide, ok := comparisonField(main, comp)
		if !ok {
			return nil, unsupportedf("comparison ?%s %s ?%s does not involve the root", comp.LHS, comp.Operator, comp.RHS)
		}
		subField, _, ok := comparisonField(sub, comp)
		if !ok {
			return nil, unsupportedf("comparison ?%s %s ?%s does not involve ?%s", comp.LHS, comp.Operator, comp.RHS, sub.Subject)
		}
		op := comp.Operator
		if mainSide == comp.RHS {
			op = flip(op)
		}
		return &thingtalk.ComparisonSubqueryBooleanExpression{
			LHS:      thingtalk.NewVarRef(mainField),
			Operator: op,
			RHS:      project(subField),
		}, nil
	}

	if proj, ok := main.projection(sub.Subject); ok {
		field, ok := proj.Field()
		if !ok {
			return nil, unsupportedf("Subquery on property path not supported")
		}
		op := "=="
		if c.isArrayField(field) {
			op = "contains"
		}
		return &thingtalk.ComparisonSubqueryBooleanExpression{
			LHS:      thingtalk.NewVarRef(field),
			Operator: op,
			RHS:      project(thingtalk.IDField),
		}, nil
	}

	if proj, ok := sub.projection(main.Subject); ok {
		field, ok := proj.Field()
		if !ok {
			return nil, unsupportedf("Subquery on property path not supported")
		}
		op := "=="
		if c.isArrayField(field) {
			op = "in_array"
		}
		return &thingtalk.ComparisonSubqueryBooleanExpression{
			LHS:      thingtalk.NewVarRef(thingtalk.IDField),
			Operator: op,
			RHS:      project(field),
		}, nil
	}
	return nil, unsupportedf("Failed to generate subquery for ?%s", sub.Subject)
}

// comparisonField returns the field t projects for either side of comp and
// which variable it matched.
func comparisonField(t *Table, comp Comparison) (string, string, bool) {
	for _, p := range t.Projections {
		if p.Variable != comp.LHS && p.Variable != comp.RHS {
			continue
		}
		field, ok := p.Field()
		if !ok {
			return "", "", false
		}
		return field, p.Variable, true
	}
	return "", "", false
}

func (c *conversion) isArrayField(field string) bool {
	typ, ok := c.schema.PropertyType(field)
	return ok && thingtalk.IsArray(typ)
}
