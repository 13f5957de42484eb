package converter

import (
	"strconv"

	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

type groupParser struct {
	c *conversion
}

// parse converts GROUP BY ?g HAVING(count(?v) op n) into a count filter on
// the table owning ?g.
func (p *groupParser) parse(q *sparql.Query) error {
	if len(q.GroupBy) == 0 {
		if len(q.Having) > 0 {
			return unsupportedf("HAVING without GROUP BY")
		}
		return nil
	}
	if len(q.GroupBy) > 1 {
		return unsupportedf("grouping by %d keys", len(q.GroupBy))
	}
	group, ok := q.GroupBy[0].(sparql.Variable)
	if !ok {
		return unsupportedf("grouping by an expression")
	}
	table, ok := p.c.reg.get(group.Name)
	if !ok {
		return unsupportedf("group variable ?%s has no table", group.Name)
	}

	for _, having := range q.Having {
		f, err := p.parseHaving(table, having)
		if err != nil {
			return err
		}
		p.c.reg.addFilter(table.Subject, f)
	}
	return nil
}

func (p *groupParser) parseHaving(table *Table, expr sparql.Expression) (thingtalk.BooleanExpression, error) {
	op, ok := expr.(*sparql.Operation)
	if !ok || len(op.Args) != 2 {
		return nil, unsupportedf("HAVING condition %T", expr)
	}
	tt, negated, ok := relational(op.Operator)
	if !ok || negated || tt == opMatch {
		return nil, unsupportedf("HAVING operator %s", op.Operator)
	}

	agg, ok := op.Args[0].(*sparql.Aggregate)
	if !ok || agg.Name != "count" || agg.Star {
		return nil, unsupportedf("HAVING over anything but count(?v)")
	}
	v, ok := agg.Expression.(sparql.Variable)
	if !ok {
		return nil, unsupportedf("count over an expression")
	}
	proj, ok := table.projection(v.Name)
	if !ok {
		return nil, unsupportedf("?%s is not projected by the grouped table", v.Name)
	}
	field, ok := proj.Field()
	if !ok {
		return nil, unsupportedf("count over computed projection ?%s", v.Name)
	}

	lit, ok := op.Args[1].(sparql.Literal)
	if !ok {
		return nil, unsupportedf("HAVING against a non-number")
	}
	n, err := strconv.ParseFloat(lit.Value, 64)
	if err != nil {
		return nil, unsupportedf("HAVING against %q", lit.Value)
	}
	return &thingtalk.ComputeBooleanExpression{
		LHS:      &thingtalk.ComputationValue{Op: "count", Operands: []thingtalk.Value{thingtalk.NewVarRef(field)}},
		Operator: tt,
		RHS:      thingtalk.NewNumber(n),
	}, nil
}
