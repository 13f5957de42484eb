package sparql

import "strings"

// Well-known items of the US state union.
const (
	usState           = "Q35657"
	usStateOrDistrict = "Q107390"
	federalDistrict   = "Q475050"
)

// AbstractResolver maps a set of property ids to the abstract property that
// covers all of them.
type AbstractResolver func(pids []string) (string, bool)

// NormalizePath rewrites property paths whose meaning in a question is the
// same as a simpler predicate:
//
//	P31/P279*   -> P31
//	P131+       -> P131
//	Pa|Pb|...   -> Pabstract when one abstract property covers every member
//
// Sequence items are normalised recursively. The input is not modified.
func NormalizePath(p Predicate, abstract AbstractResolver) Predicate {
	path, ok := p.(*Path)
	if !ok {
		return p
	}

	switch path.Type {
	case PathSequence:
		if len(path.Items) == 2 && IsProperty(path.Items[0], InstanceOf) && isSubclassClosure(path.Items[1]) {
			return path.Items[0]
		}
		items := make([]Predicate, len(path.Items))
		for i, item := range path.Items {
			items[i] = NormalizePath(item, abstract)
		}
		return &Path{Type: PathSequence, Items: items}
	case PathOneOrMore:
		if IsProperty(path.Items[0], LocatedIn) {
			return path.Items[0]
		}
	case PathAlternative:
		if abstract == nil {
			return p
		}
		if iri, ok := abstractAlternative(path, abstract); ok {
			return iri
		}
	}
	return p
}

// abstractAlternative collapses an alternative of IRIs sharing one Wikidata
// namespace into the abstract property covering all of them.
func abstractAlternative(path *Path, abstract AbstractResolver) (IRI, bool) {
	namespace := ""
	pids := make([]string, 0, len(path.Items))
	for _, item := range path.Items {
		iri, ok := item.(IRI)
		if !ok {
			return IRI{}, false
		}
		ns, pid, ok := splitPropertyIRI(iri.Value)
		if !ok || (namespace != "" && ns != namespace) {
			return IRI{}, false
		}
		namespace = ns
		pids = append(pids, pid)
	}
	name, ok := abstract(pids)
	if !ok {
		return IRI{}, false
	}
	return IRI{Value: namespace + name}, true
}

func splitPropertyIRI(value string) (namespace, pid string, ok bool) {
	// Longest namespaces first: prop/direct/ and prop/statement/ share the
	// prop/ prefix.
	for _, ns := range []string{PropertyPrefix, StatementPrefix, QualifierPrefix, PredicatePrefix} {
		if strings.HasPrefix(value, ns) {
			return ns, value[len(ns):], true
		}
	}
	return "", "", false
}

func isSubclassClosure(p Predicate) bool {
	return IsUnaryPath(p, PathZeroOrMore) && IsProperty(p.(*Path).Items[0], SubclassOf)
}

// IsInstanceOf reports whether the triple states class membership, either
// directly (P31) or through the subclass closure (P31/P279*).
func IsInstanceOf(t Triple) bool {
	if IsProperty(t.Predicate, InstanceOf) {
		return true
	}
	path, ok := t.Predicate.(*Path)
	if !ok || path.Type != PathSequence || len(path.Items) != 2 {
		return false
	}
	return IsProperty(path.Items[0], InstanceOf) && isSubclassClosure(path.Items[1])
}

// SpecialUnion collapses the unions that Wikidata datasets use to widen a
// single constraint:
//
//	{ ?s P31/P279* Q107390 } UNION { ?s P31/P279* Q475050 }  -> ?s P31 Q35657
//	{ ?s p ?o } UNION { ?s p/P17 ?o }                        -> ?s p ?o
//	{ ?s P31 ?o } UNION { ?s P31/P279* ?o }                  -> ?s P31 ?o
//
// It returns false when the union is not one of these shapes.
func SpecialUnion(u *Union) (Triple, bool) {
	if len(u.Patterns) != 2 {
		return Triple{}, false
	}
	first, ok := singleTriple(u.Patterns[0])
	if !ok {
		return Triple{}, false
	}
	second, ok := singleTriple(u.Patterns[1])
	if !ok {
		return Triple{}, false
	}

	if t, ok := usStateUnion(first, second); ok {
		return t, true
	}

	if Value(first.Subject) == "" || Value(first.Subject) != Value(second.Subject) {
		return Triple{}, false
	}
	if Value(first.Object) == "" || Value(first.Object) != Value(second.Object) {
		return Triple{}, false
	}
	head, ok := first.Predicate.(IRI)
	if !ok {
		return Triple{}, false
	}
	path, ok := second.Predicate.(*Path)
	if !ok || path.Type != PathSequence || len(path.Items) != 2 {
		return Triple{}, false
	}
	if lead, ok := path.Items[0].(IRI); !ok || lead != head {
		return Triple{}, false
	}
	if IsProperty(path.Items[1], Country) || isSubclassClosure(path.Items[1]) {
		return first, true
	}
	return Triple{}, false
}

func usStateUnion(first, second Triple) (Triple, bool) {
	var state, district *Triple
	for _, t := range []Triple{first, second} {
		t := t
		if !IsInstanceOf(t) {
			continue
		}
		switch {
		case IsEntity(t.Object, usStateOrDistrict):
			state = &t
		case IsEntity(t.Object, federalDistrict):
			district = &t
		}
	}
	if state == nil || district == nil || Value(state.Subject) != Value(district.Subject) {
		return Triple{}, false
	}
	return Triple{
		Subject:   state.Subject,
		Predicate: IRI{Value: PropertyPrefix + InstanceOf},
		Object:    IRI{Value: EntityPrefix + usState},
	}, true
}

func singleTriple(p Pattern) (Triple, bool) {
	bgp, ok := p.(*BGP)
	if !ok || len(bgp.Triples) != 1 {
		return Triple{}, false
	}
	return bgp.Triples[0], true
}
