package converter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/roach88/sparqltt/internal/schema"
	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

// conversion is the state of one Convert call. Every parser holds a
// pointer to it; nothing outlives the call.
type conversion struct {
	schema SchemaIndex
	kb     KnowledgeBase
	logger *slog.Logger

	query  *sparql.Query
	reg    *registry
	values *valueConverter

	triples    *tripleParser
	predicates *predicateParser
	filters    *filterParser
	groups     *groupParser
}

func newConversion(s SchemaIndex, k KnowledgeBase, values *valueConverter, logger *slog.Logger, q *sparql.Query) *conversion {
	c := &conversion{
		schema: s,
		kb:     k,
		logger: logger,
		query:  q,
		reg:    newRegistry(s),
		values: values,
	}
	c.triples = &tripleParser{c: c}
	c.predicates = &predicateParser{c: c}
	c.filters = &filterParser{c: c}
	c.groups = &groupParser{c: c}
	return c
}

// inclusive makes strict range operators inclusive.
func inclusive(op string) string {
	switch op {
	case ">":
		return ">="
	case "<":
		return "<="
	}
	return op
}

// flip mirrors a comparison so its operands can be swapped.
func flip(op string) string {
	switch op {
	case ">=":
		return "<="
	case "<=":
		return ">="
	case ">":
		return "<"
	case "<":
		return ">"
	}
	return op
}

// opMatch marks a regular-expression comparison until the property type
// picks =~ or contains~.
const opMatch = "=~"

// relational maps a SPARQL comparison to a ThingTalk operator. negated is
// set for !=.
func relational(op string) (tt string, negated bool, ok bool) {
	switch op {
	case "=":
		return "==", false, true
	case "!=":
		return "==", true, true
	case ">", "<", ">=", "<=":
		return inclusive(op), false, true
	case "regex", "contains":
		return opMatch, false, true
	}
	return "", false, false
}

// resolveProperty maps a direct-claim IRI to its ThingTalk name. Names are
// returned unchanged.
func (c *conversion) resolveProperty(property string) (string, error) {
	if !strings.HasPrefix(property, sparql.PropertyPrefix) {
		return property, nil
	}
	pid := sparql.PropertyID(property)
	if pid == sparql.InstanceOf {
		return thingtalk.InstanceOfField, nil
	}
	name, ok := c.schema.Property(pid)
	if !ok {
		return "", resolutionf("property %s is not in the schema", pid)
	}
	return name, nil
}

func (c *conversion) propertyType(name string) (thingtalk.Type, error) {
	t, ok := c.schema.PropertyType(name)
	if !ok {
		return nil, resolutionf("property %s has no type", name)
	}
	return t, nil
}

// atom builds "property op raw" where property is a ThingTalk name or a
// direct-claim IRI. An empty op compares with == (contains for arrays); a
// String valueType turns the comparison into a regular-expression match.
func (c *conversion) atom(ctx context.Context, property, raw, op string, valueType thingtalk.Type) (thingtalk.BooleanExpression, error) {
	name, err := c.resolveProperty(property)
	if err != nil {
		return nil, err
	}
	typ, err := c.propertyType(name)
	if err != nil {
		return nil, err
	}
	return c.atomOf(ctx, name, typ, raw, op, valueType)
}

func (c *conversion) atomOf(ctx context.Context, name string, typ thingtalk.Type, raw, op string, valueType thingtalk.Type) (thingtalk.BooleanExpression, error) {
	array := thingtalk.IsArray(typ)
	op = inclusive(op)

	if _, ok := valueType.(thingtalk.StringType); ok || op == opMatch {
		valueType = thingtalk.StringType{}
		op = "=~"
		if array {
			op = "contains~"
		}
	}
	if op == "" || (op == "==" && array) {
		op = "=="
		if array {
			op = "contains"
		}
	}
	if valueType == nil {
		valueType = thingtalk.ValueType(typ)
	}

	value, err := c.values.toValue(ctx, raw, valueType)
	if err != nil {
		return nil, err
	}
	return &thingtalk.AtomBooleanExpression{Name: name, Operator: op, Value: value}, nil
}

// registerEntity creates the table of an entity subject: its domain comes
// from the KB and its only filter pins the id.
func (c *conversion) registerEntity(ctx context.Context, iri string) (thingtalk.BooleanExpression, error) {
	qid := sparql.EntityID(iri)
	domain, ok, err := c.kb.Domain(ctx, qid)
	if err != nil {
		return nil, lookupError("domain of "+qid, err)
	}
	if !ok {
		domain = sparql.GenericItem
	}
	table, ok := c.schema.Table(domain)
	if !ok {
		return nil, &ConvertError{
			Code:    ErrCodeResolution,
			Message: "no schema domain for class " + domain,
			Subject: qid,
		}
	}

	value, err := c.values.toValue(ctx, iri, &thingtalk.EntityType{Name: thingtalk.EntityTypeName(table)})
	if err != nil {
		return nil, err
	}
	c.reg.setDomain(iri, domain)
	return &thingtalk.AtomBooleanExpression{Name: thingtalk.IDField, Operator: "==", Value: value}, nil
}

// instanceOf is the class-membership filter prepended to tables whose
// domain is narrower than their function.
func instanceOf(qid, domain, display string) thingtalk.BooleanExpression {
	return &thingtalk.AtomBooleanExpression{
		Name:     thingtalk.InstanceOfField,
		Operator: "==",
		Value: &thingtalk.EntityValue{
			ID:      qid,
			Type:    thingtalk.EntityTypeName(domain + "_subdomain"),
			Display: display,
		},
	}
}

func isVariable(t sparql.Term) bool {
	_, ok := t.(sparql.Variable)
	return ok
}

func isLiteral(t sparql.Term) bool {
	_, ok := t.(sparql.Literal)
	return ok
}

func isNamed(t sparql.Term) bool {
	_, ok := t.(sparql.IRI)
	return ok
}

// plainString reports whether a literal is an untyped string, compared by
// regular expression rather than converted to the property's type.
func plainString(t sparql.Term) bool {
	lit, ok := t.(sparql.Literal)
	return ok && lit.Datatype == ""
}

func isEntitySubject(subject string) bool {
	return strings.HasPrefix(subject, sparql.EntityPrefix)
}

// genericTable reports whether name is the catch-all domain.
func genericTable(name string) bool {
	return name == schema.GenericDomain
}
