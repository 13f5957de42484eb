package sparql

import (
	"regexp"
	"strings"
)

// Wikidata and RDF vocabulary IRIs.
const (
	EntityPrefix    = "http://www.wikidata.org/entity/"
	PropertyPrefix  = "http://www.wikidata.org/prop/direct/"
	PredicatePrefix = "http://www.wikidata.org/prop/"
	StatementPrefix = "http://www.wikidata.org/prop/statement/"
	QualifierPrefix = "http://www.wikidata.org/prop/qualifier/"

	RDFSPrefix = "http://www.w3.org/2000/01/rdf-schema#"
	RDFPrefix  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XSDPrefix  = "http://www.w3.org/2001/XMLSchema#"

	LabelIRI = RDFSPrefix + "label"
	TypeIRI  = RDFPrefix + "type"

	XSDInteger  = XSDPrefix + "integer"
	XSDDecimal  = XSDPrefix + "decimal"
	XSDDouble   = XSDPrefix + "double"
	XSDBoolean  = XSDPrefix + "boolean"
	XSDDateTime = XSDPrefix + "dateTime"
)

// Well-known Wikidata ids the normalisation rules refer to.
const (
	InstanceOf  = "P31"
	SubclassOf  = "P279"
	Country     = "P17"
	LocatedIn   = "P131"
	GenericItem = "Q35120"
)

// DefaultPrefixes are in scope for every query without a PREFIX
// declaration. Explicit declarations override them.
var DefaultPrefixes = map[string]string{
	"wd":       EntityPrefix,
	"wdt":      PropertyPrefix,
	"p":        PredicatePrefix,
	"ps":       StatementPrefix,
	"pq":       QualifierPrefix,
	"rdfs":     RDFSPrefix,
	"rdf":      RDFPrefix,
	"xsd":      XSDPrefix,
	"wikibase": "http://wikiba.se/ontology#",
	"bd":       "http://www.bigdata.com/rdf#",
	"schema":   "http://schema.org/",
}

var entityIDPattern = regexp.MustCompile(`^Q[0-9]+$`)

// IsEntityID reports whether s is a bare item id such as Q30.
func IsEntityID(s string) bool {
	return entityIDPattern.MatchString(s)
}

// StatementKind classifies predicates that address a statement node.
type StatementKind int

const (
	// NotStatement is any predicate outside the p:/ps:/pq: namespaces.
	NotStatement StatementKind = iota
	// StatementEdge is p:Pn, linking an item to a statement node.
	StatementEdge
	// StatementValue is ps:Pn, linking a statement node to its main value.
	StatementValue
	// StatementQualifier is pq:Pn, linking a statement node to a qualifier.
	StatementQualifier
)

// ClassifyStatement returns the statement role of a predicate.
func ClassifyStatement(p Predicate) StatementKind {
	iri, ok := p.(IRI)
	if !ok {
		return NotStatement
	}
	switch {
	case strings.HasPrefix(iri.Value, PropertyPrefix):
		return NotStatement
	case strings.HasPrefix(iri.Value, StatementPrefix):
		return StatementValue
	case strings.HasPrefix(iri.Value, QualifierPrefix):
		return StatementQualifier
	case strings.HasPrefix(iri.Value, PredicatePrefix):
		return StatementEdge
	default:
		return NotStatement
	}
}

// StatementPropertyID strips the statement namespace of a p:, ps: or pq:
// predicate, returning the bare property id.
func StatementPropertyID(iri IRI) string {
	for _, prefix := range []string{StatementPrefix, QualifierPrefix, PredicatePrefix} {
		if strings.HasPrefix(iri.Value, prefix) {
			return iri.Value[len(prefix):]
		}
	}
	return iri.Value
}

// IsEntity reports whether t is a Wikidata item IRI, optionally one of ids.
func IsEntity(t Term, ids ...string) bool {
	iri, ok := t.(IRI)
	if !ok || !strings.HasPrefix(iri.Value, EntityPrefix) {
		return false
	}
	return matchesID(iri.Value[len(EntityPrefix):], ids)
}

// IsProperty reports whether p is a direct-claim property IRI (wdt:Pn),
// optionally one of ids.
func IsProperty(p Predicate, ids ...string) bool {
	iri, ok := p.(IRI)
	if !ok || !strings.HasPrefix(iri.Value, PropertyPrefix) {
		return false
	}
	return matchesID(iri.Value[len(PropertyPrefix):], ids)
}

// IsLabel reports whether p is rdfs:label.
func IsLabel(p Predicate) bool {
	iri, ok := p.(IRI)
	return ok && iri.Value == LabelIRI
}

// EntityID returns the item id of an entity IRI value, or the value
// unchanged if it is not in the entity namespace.
func EntityID(value string) string {
	return strings.TrimPrefix(value, EntityPrefix)
}

// PropertyID returns the property id of a direct-claim IRI value, or the
// value unchanged.
func PropertyID(value string) string {
	return strings.TrimPrefix(value, PropertyPrefix)
}

// IsUnaryPath reports whether p is a one-item path of the given type.
func IsUnaryPath(p Predicate, t PathType) bool {
	path, ok := p.(*Path)
	return ok && path.Type == t && len(path.Items) == 1
}

// IsSequencePath reports whether p is a sequence path.
func IsSequencePath(p Predicate) bool {
	path, ok := p.(*Path)
	return ok && path.Type == PathSequence
}

// IsAlternativePath reports whether p is an alternative path.
func IsAlternativePath(p Predicate) bool {
	path, ok := p.(*Path)
	return ok && path.Type == PathAlternative
}

func matchesID(id string, ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, want := range ids {
		if id == want {
			return true
		}
	}
	return false
}
