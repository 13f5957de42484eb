package converter

import (
	"context"
	"strings"

	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

// tripleParser turns the triples of a basic graph pattern into table
// domains, projections and filters.
type tripleParser struct {
	c *conversion
}

func (p *tripleParser) parse(ctx context.Context, bgp *sparql.BGP) (*subjectFilters, error) {
	out := newSubjectFilters()
	for _, t := range bgp.Triples {
		t.Predicate = sparql.NormalizePath(t.Predicate, p.c.schema.AbstractProperty)
		fs, err := p.parseTriple(ctx, t)
		if err != nil {
			return nil, err
		}
		out.merge(fs)
	}
	return out, nil
}

func (p *tripleParser) parseTriple(ctx context.Context, t sparql.Triple) (*subjectFilters, error) {
	switch pred := t.Predicate.(type) {
	case sparql.IRI:
		return p.parseBasic(ctx, t)
	case *sparql.Path:
		if pred.Type == sparql.PathAlternative {
			return p.parseAlternative(ctx, t, pred)
		}
		return p.parsePath(ctx, t, pred)
	default:
		return nil, unsupportedf("variable predicate in %s", t)
	}
}

// entitySubject registers an entity subject on first reference.
func (p *tripleParser) entitySubject(ctx context.Context, t sparql.Triple, out *subjectFilters) error {
	if !sparql.IsEntity(t.Subject) {
		return nil
	}
	subject := sparql.Value(t.Subject)
	if p.c.reg.has(subject) {
		return nil
	}
	f, err := p.c.registerEntity(ctx, subject)
	if err != nil {
		return err
	}
	out.add(subject, f)
	return nil
}

func (p *tripleParser) parseBasic(ctx context.Context, t sparql.Triple) (*subjectFilters, error) {
	out := newSubjectFilters()
	pred := t.Predicate.(sparql.IRI)
	subject, object := sparql.Value(t.Subject), sparql.Value(t.Object)
	if subject == "" || pred.Value == "" || object == "" {
		return nil, unsupportedf("incomplete triple %s", t)
	}

	if err := p.entitySubject(ctx, t, out); err != nil {
		return nil, err
	}

	switch {
	case sparql.ClassifyStatement(pred) != sparql.NotStatement:
		if err := p.c.predicates.parse(t); err != nil {
			return nil, err
		}

	case isVariable(t.Subject) && (isLiteral(t.Object) || sparql.IsEntity(t.Object)):
		if sparql.IsProperty(pred, sparql.InstanceOf) {
			p.c.reg.setDomain(subject, sparql.EntityID(object))
			return out, nil
		}
		if sparql.IsLabel(pred) {
			out.add(subject, &thingtalk.AtomBooleanExpression{
				Name:     thingtalk.IDField,
				Operator: "=~",
				Value:    &thingtalk.StringValue{Value: object},
			})
			break
		}
		var valueType thingtalk.Type
		if plainString(t.Object) {
			valueType = thingtalk.StringType{}
		}
		f, err := p.c.atom(ctx, pred.Value, object, "", valueType)
		if err != nil {
			return nil, err
		}
		out.add(subject, f)

	case isVariable(t.Object):
		if sparql.IsLabel(pred) {
			return out, p.projectLabel(subject, object)
		}
		if !sparql.IsProperty(pred) {
			return nil, unsupportedf("predicate %s", pred)
		}
		name, err := p.c.resolveProperty(pred.Value)
		if err != nil {
			return nil, err
		}
		p.c.reg.addProjection(subject, Projection{Property: thingtalk.NewVarRef(name), Variable: object})

	case isNamed(t.Subject) && isNamed(t.Object):
		f, err := p.c.atom(ctx, pred.Value, object, "", nil)
		if err != nil {
			return nil, err
		}
		out.add(subject, f)

	default:
		return nil, unsupportedf("triple %s", t)
	}
	return out, nil
}

// projectLabel handles "?v rdfs:label ?vLabel": the table projecting ?v
// also projects the label of that field. A table subject projects the label
// of its own id.
func (p *tripleParser) projectLabel(subject, variable string) error {
	if owner, proj, ok := p.c.reg.owner(subject); ok {
		field, ok := proj.Field()
		if !ok {
			return unsupportedf("label of a computed projection ?%s", subject)
		}
		p.c.reg.addProjection(owner.Subject, Projection{
			Property: thingtalk.NewVarRef(field + labelSuffix),
			Variable: variable,
		})
		return nil
	}
	if p.c.reg.has(subject) {
		p.c.reg.addProjection(subject, Projection{
			Property: thingtalk.NewVarRef(thingtalk.IDField + labelSuffix),
			Variable: variable,
		})
		return nil
	}
	return unsupportedf("label of unbound variable ?%s", subject)
}

// parseAlternative parses each member of a|b as its own triple. Filters on
// one subject are joined with ||.
func (p *tripleParser) parseAlternative(ctx context.Context, t sparql.Triple, path *sparql.Path) (*subjectFilters, error) {
	results := newSubjectFilters()
	var operands []thingtalk.BooleanExpression
	subject := ""
	for _, item := range path.Items {
		iri, ok := item.(sparql.IRI)
		if !ok {
			return nil, unsupportedf("nested path in alternative %s", path)
		}
		fs, err := p.parseBasic(ctx, sparql.Triple{Subject: t.Subject, Predicate: iri, Object: t.Object})
		if err != nil {
			return nil, err
		}
		for _, s := range fs.subjects() {
			filters := fs.get(s)
			if len(filters) == 0 {
				continue
			}
			if isEntitySubject(s) && thingtalk.IsIDFilter(filters[0]) {
				results.add(s, filters[0])
				filters = filters[1:]
			}
			if len(filters) == 0 {
				continue
			}
			if subject != "" && s != subject {
				return nil, unsupportedf("alternative path over several subjects")
			}
			subject = s
			operands = append(operands, thingtalk.NewAnd(filters...))
		}
	}
	if len(operands) > 0 {
		results.add(subject, thingtalk.NewOr(operands...))
	}
	return results, nil
}

// parsePath handles unary paths (P*, P+) and two-hop sequences.
func (p *tripleParser) parsePath(ctx context.Context, t sparql.Triple, path *sparql.Path) (*subjectFilters, error) {
	out := newSubjectFilters()
	subject, object := sparql.Value(t.Subject), sparql.Value(t.Object)
	if subject == "" || object == "" {
		return nil, unsupportedf("incomplete triple %s", t)
	}
	if !isVariable(t.Subject) && !sparql.IsEntity(t.Subject) {
		return nil, unsupportedf("path triple with subject %s", t.Subject)
	}
	if err := p.entitySubject(ctx, t, out); err != nil {
		return nil, err
	}

	var seq thingtalk.PropertyPath
	switch path.Type {
	case sparql.PathZeroOrMore, sparql.PathOneOrMore:
		el, err := p.pathElement(path)
		if err != nil {
			return nil, err
		}
		seq = append(seq, el)
	case sparql.PathSequence:
		if len(path.Items) > 2 {
			return nil, unsupportedf("property path with %d hops", len(path.Items))
		}
		for _, item := range path.Items {
			el, err := p.pathElement(item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, el)
		}
	default:
		return nil, unsupportedf("property path %s", path)
	}

	lastType, err := p.c.propertyType(seq.LastProperty())
	if err != nil {
		return nil, err
	}
	if isVariable(t.Object) {
		p.c.reg.addProjection(subject, Projection{Property: seq, Variable: object})
		return out, nil
	}

	value, err := p.c.values.toValue(ctx, object, thingtalk.ValueType(lastType))
	if err != nil {
		return nil, err
	}
	op := "=="
	if thingtalk.IsArray(lastType) {
		op = "contains"
	}
	out.add(subject, &thingtalk.PropertyPathBooleanExpression{Path: seq, Operator: op, Value: value})
	return out, nil
}

// pathElement converts one hop: a direct property, optionally with * or +.
func (p *tripleParser) pathElement(pred sparql.Predicate) (thingtalk.PathElement, error) {
	quantifier := thingtalk.QuantifierNone
	if path, ok := pred.(*sparql.Path); ok {
		switch {
		case sparql.IsUnaryPath(path, sparql.PathZeroOrMore):
			quantifier = thingtalk.QuantifierZeroOrMore
		case sparql.IsUnaryPath(path, sparql.PathOneOrMore):
			quantifier = thingtalk.QuantifierOneOrMore
		default:
			return thingtalk.PathElement{}, unsupportedf("property path element %s", path)
		}
		pred = path.Items[0]
	}
	iri, ok := pred.(sparql.IRI)
	if !ok || !strings.HasPrefix(iri.Value, sparql.PropertyPrefix) {
		return thingtalk.PathElement{}, unsupportedf("property path element %s", pred)
	}
	name, err := p.c.resolveProperty(iri.Value)
	if err != nil {
		return thingtalk.PathElement{}, err
	}
	return thingtalk.PathElement{Property: name, Quantifier: quantifier}, nil
}

// parseUnion converts a UNION. Special unions collapse to one triple;
// otherwise every branch must constrain the same single subject and the
// branches are joined with ||.
func (c *conversion) parseUnion(ctx context.Context, u *sparql.Union) (*subjectFilters, error) {
	if t, ok := sparql.SpecialUnion(u); ok {
		return c.triples.parse(ctx, &sparql.BGP{Triples: []sparql.Triple{t}})
	}

	out := newSubjectFilters()
	subject := ""
	var operands []thingtalk.BooleanExpression
	for _, pattern := range u.Patterns {
		bgp, ok := pattern.(*sparql.BGP)
		if !ok {
			return nil, unsupportedf("union branch of type %T", pattern)
		}
		fs, err := c.triples.parse(ctx, bgp)
		if err != nil {
			return nil, err
		}

		branch := ""
		for _, s := range fs.subjects() {
			if len(fs.get(s)) == 0 {
				continue
			}
			if branch != "" {
				return nil, unsupportedf("multiple subjects in a union")
			}
			branch = s
		}
		switch {
		case branch == "":
			return nil, unsupportedf("union branch without a filter")
		case subject != "" && branch != subject:
			return nil, unsupportedf("multiple subjects in a union")
		}
		subject = branch
		operands = append(operands, thingtalk.NewAnd(fs.get(branch)...))
	}
	out.add(subject, thingtalk.NewOr(operands...))
	return out, nil
}
