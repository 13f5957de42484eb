// Package kb looks up Wikidata entities: labels, aliases, class membership
// and property values.
//
// Two implementations share one method set:
//   - Wikidata talks to the public SPARQL endpoint and the Wikibase API,
//     through an optional SQLite cache
//   - Fixture answers from a YAML file, for tests and offline runs
package kb

import (
	"errors"
	"regexp"
)

// ErrUnavailable reports a request that still failed after its retry.
var ErrUnavailable = errors.New("knowledge base unavailable")

var (
	entityPattern = regexp.MustCompile(`^Q[0-9]+$`)
	idPattern     = regexp.MustCompile(`^[PQ][0-9]+$`)
)

// IsEntity reports whether id is a Wikidata item id ("Q30").
func IsEntity(id string) bool {
	return entityPattern.MatchString(id)
}

// isLabelled reports whether id can carry a label: an item or a property.
func isLabelled(id string) bool {
	return idPattern.MatchString(id)
}

// Classes whose instance counts time out on the public endpoint; an
// entity that is an instance of one of them takes that class as domain.
const (
	human            = "Q5"
	taxon            = "Q16521"
	scholarlyArticle = "Q13442814"
)

// pickDomain chooses among the classes an entity is an instance of without
// asking the endpoint. ok is false when the choice needs instance counts.
func pickDomain(classes []string) (domain string, ok bool) {
	if len(classes) == 0 {
		return "", true
	}
	for _, c := range classes {
		if c == human {
			return human, true
		}
	}
	if len(classes) == 1 {
		return classes[0], true
	}
	for _, special := range []string{taxon, scholarlyArticle} {
		for _, c := range classes {
			if c == special {
				return special, true
			}
		}
	}
	return "", false
}
