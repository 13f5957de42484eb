package converter

import (
	"context"

	"github.com/roach88/sparqltt/internal/thingtalk"
	"github.com/roach88/sparqltt/internal/tokenizer"
)

// SchemaIndex resolves Wikidata ids to ThingTalk names and types.
// *schema.Index implements it.
type SchemaIndex interface {
	// Table returns the domain whose Wikidata class is qid.
	Table(qid string) (string, bool)
	// Property returns the ThingTalk name of a property or qualifier id.
	Property(pid string) (string, bool)
	// PropertyType returns the type of a property or a dotted
	// property.qualifier field.
	PropertyType(name string) (thingtalk.Type, bool)
	// HasProperty reports whether domain declares the property.
	HasProperty(domain, name string) bool
	// DomainSubject returns the Wikidata class of a domain.
	DomainSubject(domain string) (string, bool)
	// AbstractProperty returns the id of a property covering every pid.
	AbstractProperty(pids []string) (string, bool)
}

// KnowledgeBase answers entity lookups. *kb.Wikidata and *kb.Fixture
// implement it. Every method is safe for concurrent use.
type KnowledgeBase interface {
	IsEntity(id string) bool
	Domain(ctx context.Context, qid string) (string, bool, error)
	Label(ctx context.Context, id string) (string, bool, error)
	Labels(ctx context.Context, ids []string) (map[string]string, error)
	AltLabels(ctx context.Context, id string) ([]string, error)
	EntityByName(ctx context.Context, name string) (string, bool, error)
	PropertyValues(ctx context.Context, qid, pid string) ([]string, error)
}

// Tokenizer splits utterances into tokens. *tokenizer.Tokenizer
// implements it.
type Tokenizer interface {
	Tokenize(text string) tokenizer.Result
}
