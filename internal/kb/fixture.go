package kb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sparqltt/internal/sparql"
)

// FixtureEntity is one item or property of a fixture file.
type FixtureEntity struct {
	Label   string              `yaml:"label"`
	Aliases []string            `yaml:"aliases"`
	Domain  string              `yaml:"domain"`
	Claims  map[string][]string `yaml:"claims"`
}

// Fixture is an in-memory knowledge base read from YAML:
//
//	entities:
//	  Q30:
//	    label: United States of America
//	    aliases: [USA, America]
//	    claims:
//	      P31: [Q6256]
//
// An entity with several P31 classes needs an explicit domain unless one of
// them is human. Read-only after loading; safe for concurrent use.
type Fixture struct {
	Entities map[string]*FixtureEntity `yaml:"entities"`

	ids []string
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture parses fixture YAML.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for id, e := range f.Entities {
		if !isLabelled(id) {
			return nil, fmt.Errorf("parse fixture: %q is not a Wikidata id", id)
		}
		if e == nil {
			f.Entities[id] = &FixtureEntity{}
		}
		f.ids = append(f.ids, id)
	}
	sort.Strings(f.ids)
	return &f, nil
}

func (f *Fixture) IsEntity(id string) bool {
	return IsEntity(id)
}

func (f *Fixture) Domain(ctx context.Context, qid string) (string, bool, error) {
	e, ok := f.Entities[qid]
	if !ok {
		return "", false, nil
	}
	if e.Domain != "" {
		return e.Domain, true, nil
	}
	domain, ok := pickDomain(e.Claims[sparql.InstanceOf])
	if !ok {
		return "", false, fmt.Errorf("fixture entity %s has several classes and no domain", qid)
	}
	return domain, domain != "", nil
}

func (f *Fixture) Label(ctx context.Context, id string) (string, bool, error) {
	e, ok := f.Entities[id]
	if !ok || e.Label == "" {
		return "", false, nil
	}
	return e.Label, true, nil
}

func (f *Fixture) Labels(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if label, ok, _ := f.Label(ctx, id); ok {
			out[id] = label
		}
	}
	return out, nil
}

func (f *Fixture) AltLabels(ctx context.Context, id string) ([]string, error) {
	if e, ok := f.Entities[id]; ok {
		return e.Aliases, nil
	}
	return nil, nil
}

// EntityByName matches labels first, then aliases, case-insensitively.
func (f *Fixture) EntityByName(ctx context.Context, name string) (string, bool, error) {
	for _, id := range f.ids {
		if strings.EqualFold(f.Entities[id].Label, name) {
			return id, true, nil
		}
	}
	for _, id := range f.ids {
		for _, alias := range f.Entities[id].Aliases {
			if strings.EqualFold(alias, name) {
				return id, true, nil
			}
		}
	}
	return "", false, nil
}

func (f *Fixture) PropertyValues(ctx context.Context, qid, pid string) ([]string, error) {
	if e, ok := f.Entities[qid]; ok {
		return e.Claims[pid], nil
	}
	return nil, nil
}
