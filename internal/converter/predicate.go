package converter

import (
	"context"
	"strings"

	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

// Qualifier is one pq: constraint on a statement.
type Qualifier struct {
	Property   string
	Op         string
	Value      string
	IsVariable bool
}

// Predicate gathers the p:, ps: and pq: triples describing one statement
// node. Fields fill in as the triples are parsed.
type Predicate struct {
	Table             string
	Property          string
	PredicateVariable string
	Value             string
	Op                string
	IsVariable        *bool
	Qualifiers        []Qualifier
}

func (p *Predicate) matches(update Predicate) bool {
	return (p.Property != "" && p.Property == update.Property) ||
		(p.PredicateVariable != "" && p.PredicateVariable == update.PredicateVariable)
}

// merge folds update into p. Scalars are overwritten only when set.
func (p *Predicate) merge(update Predicate) {
	p.Qualifiers = append(p.Qualifiers, update.Qualifiers...)
	if update.Property != "" {
		p.Property = update.Property
	}
	if update.Table != "" {
		p.Table = update.Table
	}
	if update.Value != "" {
		p.Value = update.Value
	}
	if update.PredicateVariable != "" {
		p.PredicateVariable = update.PredicateVariable
	}
	if update.Op != "" {
		p.Op = update.Op
	}
	if update.IsVariable != nil {
		p.IsVariable = update.IsVariable
	}
}

type predicateParser struct {
	c          *conversion
	predicates []*Predicate
}

func (p *predicateParser) find(update Predicate) (*Predicate, bool) {
	for _, pred := range p.predicates {
		if pred.matches(update) {
			return pred, true
		}
	}
	return nil, false
}

func (p *predicateParser) addOrUpdate(update Predicate) {
	if match, ok := p.find(update); ok {
		match.merge(update)
		return
	}
	pred := update
	p.predicates = append(p.predicates, &pred)
}

func (p *predicateParser) parse(t sparql.Triple) error {
	iri := t.Predicate.(sparql.IRI)
	pid := sparql.StatementPropertyID(iri)
	name, ok := p.c.schema.Property(pid)
	if !ok {
		return resolutionf("property %s is not in the schema", pid)
	}
	subject, object := sparql.Value(t.Subject), sparql.Value(t.Object)
	isVar := isVariable(t.Object)

	switch sparql.ClassifyStatement(iri) {
	case sparql.StatementEdge:
		p.addOrUpdate(Predicate{Table: subject, Property: name, PredicateVariable: object})
	case sparql.StatementQualifier:
		p.addOrUpdate(Predicate{
			PredicateVariable: subject,
			Qualifiers:        []Qualifier{{Property: name, Op: "==", Value: object, IsVariable: isVar}},
		})
	case sparql.StatementValue:
		p.addOrUpdate(Predicate{Property: name, PredicateVariable: subject, Value: object, IsVariable: &isVar})
	default:
		invariantf("predicate parser given non-statement triple %s", t)
	}
	return nil
}

// convert turns every pending statement into projections and filters.
func (p *predicateParser) convert(ctx context.Context) (*subjectFilters, error) {
	out := newSubjectFilters()
	for _, pred := range p.predicates {
		fs, err := p.convertOne(ctx, pred)
		if err != nil {
			return nil, err
		}
		out.merge(fs)
	}
	return out, nil
}

// qualifierAtom compares property.qualifier with a constant. The filter is
// named after the bare qualifier when it sits inside a FilterValue.
func (p *predicateParser) qualifierAtom(ctx context.Context, property string, q Qualifier, nested bool) (thingtalk.BooleanExpression, error) {
	dotted := property + "." + q.Property
	typ, ok := p.c.schema.PropertyType(dotted)
	if !ok {
		if typ, ok = p.c.schema.PropertyType(q.Property); !ok {
			return nil, resolutionf("qualifier %s has no type", dotted)
		}
	}
	name := dotted
	if nested {
		name = q.Property
	}
	return p.c.atomOf(ctx, name, typ, q.Value, q.Op, nil)
}

func (p *predicateParser) convertOne(ctx context.Context, pred *Predicate) (*subjectFilters, error) {
	if pred.Table == "" || pred.Property == "" || len(pred.Qualifiers) == 0 {
		invariantf("incomplete statement %+v", *pred)
	}
	out := newSubjectFilters()
	reg := p.c.reg
	prefix := pred.Property + "."

	if pred.Value == "" {
		for _, q := range pred.Qualifiers {
			if q.IsVariable {
				reg.addProjection(pred.Table, Projection{Property: thingtalk.NewVarRef(prefix + q.Property), Variable: q.Value})
				continue
			}
			f, err := p.qualifierAtom(ctx, pred.Property, q, false)
			if err != nil {
				return nil, err
			}
			out.add(pred.Table, f)
		}
		return out, nil
	}

	existing, hasExisting := p.dottedProjection(pred.Table, prefix)

	var filters []thingtalk.BooleanExpression
	for _, q := range pred.Qualifiers {
		if q.IsVariable {
			reg.addProjection(pred.Table, Projection{Property: thingtalk.NewVarRef(prefix + q.Property), Variable: q.Value})
			continue
		}
		f, err := p.qualifierAtom(ctx, pred.Property, q, true)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	typ, err := p.c.propertyType(pred.Property)
	if err != nil {
		return nil, err
	}
	isVar := pred.IsVariable != nil && *pred.IsVariable

	switch {
	case isVar:
		var property thingtalk.Value = thingtalk.NewVarRef(pred.Property)
		if len(filters) > 0 {
			property = &thingtalk.FilterValue{Value: property, Filter: thingtalk.NewAnd(filters...)}
		}
		reg.addProjection(pred.Table, Projection{Property: property, Variable: pred.Value})

	case hasExisting:
		field, _ := existing.Field()
		value, err := p.c.values.toValue(ctx, pred.Value, thingtalk.ValueType(typ))
		if err != nil {
			return nil, err
		}
		filters = append(filters, &thingtalk.AtomBooleanExpression{
			Name:     thingtalk.CompoundValueField,
			Operator: "==",
			Value:    value,
		})
		reg.removeProjection(pred.Table, existing.Variable)
		reg.addProjection(pred.Table, Projection{
			Property: &thingtalk.ArrayFieldValue{
				Value: &thingtalk.FilterValue{Value: thingtalk.NewVarRef(pred.Property), Filter: thingtalk.NewAnd(filters...)},
				Field: strings.TrimPrefix(field, prefix),
			},
			Variable: existing.Variable,
		})

	case len(filters) > 0:
		op := pred.Op
		if op == "" {
			op = "=="
		}
		value, err := p.c.values.toValue(ctx, pred.Value, thingtalk.ValueType(typ))
		if err != nil {
			return nil, err
		}
		out.add(pred.Table, &thingtalk.ComputeBooleanExpression{
			LHS:      &thingtalk.FilterValue{Value: thingtalk.NewVarRef(pred.Property), Filter: thingtalk.NewAnd(filters...)},
			Operator: inclusive(op),
			RHS:      value,
		})

	default:
		f, err := p.c.atomOf(ctx, pred.Property, typ, pred.Value, pred.Op, nil)
		if err != nil {
			return nil, err
		}
		out.add(pred.Table, f)
	}
	return out, nil
}

// dottedProjection returns the first property.qualifier projection of table.
func (p *predicateParser) dottedProjection(table, prefix string) (Projection, bool) {
	t, ok := p.c.reg.get(table)
	if !ok {
		return Projection{}, false
	}
	for _, proj := range t.Projections {
		if field, ok := proj.Field(); ok && strings.HasPrefix(field, prefix) {
			return proj, true
		}
	}
	return Projection{}, false
}

// findValue returns the statement whose ps: value is variable.
func (p *predicateParser) findValue(variable string) (*Predicate, bool) {
	for _, pred := range p.predicates {
		if pred.Value == variable && pred.IsVariable != nil && *pred.IsVariable {
			return pred, true
		}
	}
	return nil, false
}

// findQualifier returns the statement and qualifier bound to variable.
func (p *predicateParser) findQualifier(variable string) (*Predicate, Qualifier, bool) {
	for _, pred := range p.predicates {
		for _, q := range pred.Qualifiers {
			if q.IsVariable && q.Value == variable {
				return pred, q, true
			}
		}
	}
	return nil, Qualifier{}, false
}
