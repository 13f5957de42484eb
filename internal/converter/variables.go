package converter

import (
	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

var aggregateOps = map[string]bool{"count": true, "sum": true, "avg": true, "min": true, "max": true}

// output is one thing a SELECT clause returns from a table: a projection,
// or an aggregation when Op is set.
type output struct {
	Projection
	Op       string
	AggField string
}

func (o *output) isAggregation() bool {
	return o.Op != ""
}

// outputs groups the SELECT clause per table subject, in first-seen order.
type outputs struct {
	order []string
	items map[string][]*output
}

func newOutputs() *outputs {
	return &outputs{items: make(map[string][]*output)}
}

func (o *outputs) add(subject string, out *output) {
	if _, ok := o.items[subject]; !ok {
		o.order = append(o.order, subject)
	}
	o.items[subject] = append(o.items[subject], out)
}

func (o *outputs) get(subject string) []*output {
	return o.items[subject]
}

func (o *outputs) len() int {
	return len(o.order)
}

// parseVariables matches every SELECT item against the registry: ?v
// selects the id of table v and every projection bound to ?v.
func (c *conversion) parseVariables() (*outputs, error) {
	if c.query.Star {
		return nil, unsupportedf("SELECT *")
	}
	out := newOutputs()
	for _, item := range c.query.Variables {
		if item.Expression == nil {
			c.selectVariable(out, item.Variable.Name)
			continue
		}
		agg, ok := item.Expression.(*sparql.Aggregate)
		if !ok {
			return nil, unsupportedf("computed SELECT item ?%s", item.Variable.Name)
		}
		if err := c.selectAggregate(out, agg); err != nil {
			return nil, err
		}
	}
	if out.len() == 0 {
		return nil, unsupportedf("No variable found in SPARQL")
	}
	return out, nil
}

func (c *conversion) selectVariable(out *outputs, variable string) {
	for _, t := range c.reg.all() {
		if t.Subject == variable {
			out.add(t.Subject, &output{Projection: Projection{Property: thingtalk.NewVarRef(thingtalk.IDField), Variable: variable}})
		}
		for _, p := range t.Projections {
			if p.Variable == variable {
				out.add(t.Subject, &output{Projection: p})
			}
		}
	}
}

func (c *conversion) selectAggregate(out *outputs, agg *sparql.Aggregate) error {
	if !aggregateOps[agg.Name] {
		return unsupportedf("aggregate %s", agg.Name)
	}
	if agg.Star {
		return unsupportedf("%s(*)", agg.Name)
	}
	v, ok := agg.Expression.(sparql.Variable)
	if !ok {
		return unsupportedf("%s over an expression", agg.Name)
	}
	for _, t := range c.reg.all() {
		if t.Subject == v.Name {
			out.add(t.Subject, &output{Op: agg.Name, AggField: "*", Projection: Projection{Variable: v.Name}})
		}
		for _, p := range t.Projections {
			if p.Variable != v.Name {
				continue
			}
			field, ok := p.Field()
			if !ok {
				return unsupportedf("%s over computed projection ?%s", agg.Name, v.Name)
			}
			out.add(t.Subject, &output{Op: agg.Name, AggField: field, Projection: Projection{Variable: v.Name}})
		}
	}
	return nil
}
