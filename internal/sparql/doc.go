// Package sparql parses the subset of SPARQL 1.1 used by Wikidata question
// answering datasets into a tagged syntax tree.
//
// TAGGED VARIANTS:
//
// Every syntactic category is a sealed interface implemented by a closed set
// of node types in this package:
//
//	Term       IRI, Variable, Literal, BlankNode
//	Predicate  IRI, Variable, *Path
//	Pattern    *BGP, *Filter, *Union, *Group, *Optional, *Minus, *Service, *Bind
//	Expression IRI, Variable, Literal, *Operation, *Aggregate, *Exists
//
// Consumers dispatch with exhaustive type switches instead of probing for
// fields, e.g.
//
//	switch t := triple.Object.(type) {
//	case Variable:
//	    // projection
//	case IRI, Literal:
//	    // constant
//	}
//
// SHAPE:
//
// The tree mirrors the shape produced by sparqljs, which the datasets were
// authored against: consecutive triple blocks of a group merge into one BGP,
// filters stay separate patterns in source order, a union branch holding a
// single pattern is that pattern, and binary operators nest to the left.
// Prefixed names are expanded to full IRIs while parsing; the Wikidata
// prefixes (wd, wdt, p, ps, pq) and a few common vocabularies are predeclared.
//
// SUPPORTED FORMS:
//
//   - SELECT [DISTINCT|REDUCED] with variables, (aggregate AS ?v) or *
//   - ASK
//   - group graph patterns with triples, ; and , shorthands, FILTER,
//     UNION, OPTIONAL, MINUS, SERVICE and BIND
//   - property paths: sequence, alternative, inverse, *, + and ?
//   - GROUP BY, HAVING, ORDER BY, LIMIT, OFFSET
//
// Forms outside this list (VALUES, GRAPH, FROM, sub-selects, property sets)
// are reported as *SyntaxError.
package sparql
