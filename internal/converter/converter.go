// Package converter translates SPARQL queries over Wikidata into ThingTalk
// programs.
//
// A conversion collects one table per query subject (a domain, projections
// and filters), turns statement and qualifier triples into compound
// filters, picks a root table and folds the others into subqueries. Values
// are resolved through a knowledge base and get display strings taken from
// the utterance the query answers.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/textutil"
	"github.com/roach88/sparqltt/internal/thingtalk"
	"github.com/roach88/sparqltt/internal/tokenizer"
)

// Options configures a Converter. Schema and KB are required.
type Options struct {
	Schema    SchemaIndex
	KB        KnowledgeBase
	Tokenizer Tokenizer

	// ExcludeEntityDisplay leaves entity values without a display string.
	ExcludeEntityDisplay bool

	// Similarity picks the string similarity used to match labels against
	// utterance spans. Empty means F1.
	Similarity textutil.Algorithm

	Logger *slog.Logger
}

// Converter converts SPARQL queries. Calls on one Converter are serialized;
// use one Converter per goroutine for parallel conversion.
type Converter struct {
	mu     sync.Mutex
	opts   Options
	values *valueConverter
}

// New returns a Converter.
func New(opts Options) (*Converter, error) {
	if opts.Schema == nil {
		return nil, errors.New("converter: schema is required")
	}
	if opts.KB == nil {
		return nil, errors.New("converter: knowledge base is required")
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = tokenizer.New()
	}
	if opts.Similarity == "" {
		opts.Similarity = textutil.F1
	}
	if _, ok := textutil.ParseAlgorithm(string(opts.Similarity)); !ok {
		return nil, fmt.Errorf("converter: unknown similarity %q", opts.Similarity)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Converter{
		opts: opts,
		values: &valueConverter{
			kb:             opts.KB,
			algorithm:      opts.Similarity,
			excludeDisplay: opts.ExcludeEntityDisplay,
		},
	}, nil
}

// Explanation is a converted program together with the tables it was built
// from.
type Explanation struct {
	Program *thingtalk.Program `json:"-"`
	Tables  []TableView        `json:"tables"`
}

// TableView is the printable state of one table after conversion.
type TableView struct {
	Subject     string   `json:"subject"`
	Domain      string   `json:"domain"`
	Projections []string `json:"projections,omitempty"`
	Filters     []string `json:"filters,omitempty"`
}

// Convert translates query, the SPARQL for utterance, into a ThingTalk
// program. Errors are *ConvertError.
func (cv *Converter) Convert(ctx context.Context, query, utterance string) (*thingtalk.Program, error) {
	exp, err := cv.Explain(ctx, query, utterance)
	if err != nil {
		return nil, err
	}
	return exp.Program, nil
}

// Explain is Convert, also returning the final tables.
func (cv *Converter) Explain(ctx context.Context, query, utterance string) (exp *Explanation, err error) {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	logger := cv.opts.Logger
	logger.Debug("converting", "utterance", utterance)

	defer func() {
		if r := recover(); r != nil {
			inv, ok := r.(invariantError)
			if !ok {
				panic(r)
			}
			exp, err = nil, &ConvertError{Code: ErrCodeInvariant, Message: inv.msg}
		}
		if err != nil {
			logger.Debug("conversion failed", "code", CodeOf(err), "error", err)
		}
	}()

	q, err := sparql.Parse(query)
	if err != nil {
		return nil, classify(err)
	}

	cv.values.reset(cv.opts.Tokenizer, utterance)
	c := newConversion(cv.opts.Schema, cv.opts.KB, cv.values, logger, q)
	program, err := c.run(ctx)
	if err != nil {
		return nil, classify(err)
	}

	logger.Debug("converted", "program", program.String())
	return &Explanation{Program: program, Tables: c.views()}, nil
}

// run parses the WHERE clause, the statements and the grouping, then
// assembles the program.
func (c *conversion) run(ctx context.Context) (*thingtalk.Program, error) {
	patterns := flatten(c.query.Where)
	if err := c.values.prefetch(ctx, entityIDs(patterns)); err != nil {
		return nil, err
	}
	if err := c.parseWhere(ctx, patterns); err != nil {
		return nil, err
	}
	fs, err := c.predicates.convert(ctx)
	if err != nil {
		return nil, err
	}
	fs.apply(c.reg)
	if err := c.groups.parse(c.query); err != nil {
		return nil, err
	}
	return c.assemble(ctx)
}

// parseWhere parses graph patterns before filters, so filters can refer to
// every projection, then adds the collected filters to their tables.
func (c *conversion) parseWhere(ctx context.Context, patterns []sparql.Pattern) error {
	out := newSubjectFilters()
	var filters []*sparql.Filter
	for _, pattern := range patterns {
		var (
			fs  *subjectFilters
			err error
		)
		switch pat := pattern.(type) {
		case *sparql.BGP:
			fs, err = c.triples.parse(ctx, pat)
		case *sparql.Union:
			fs, err = c.parseUnion(ctx, pat)
		case *sparql.Filter:
			filters = append(filters, pat)
			continue
		case *sparql.Service:
			// The label service only selects the label language.
			continue
		default:
			return unsupportedf("where clause of type %T", pattern)
		}
		if err != nil {
			return err
		}
		out.merge(fs)
	}
	for _, f := range filters {
		fs, err := c.filters.parse(ctx, f)
		if err != nil {
			return err
		}
		out.merge(fs)
	}
	out.apply(c.reg)
	return nil
}

// flatten inlines nested groups.
func flatten(patterns []sparql.Pattern) []sparql.Pattern {
	var out []sparql.Pattern
	for _, p := range patterns {
		if g, ok := p.(*sparql.Group); ok {
			out = append(out, flatten(g.Patterns)...)
			continue
		}
		out = append(out, p)
	}
	return out
}

// entityIDs lists the items mentioned by the triples of patterns.
func entityIDs(patterns []sparql.Pattern) []string {
	seen := make(map[string]bool)
	var ids []string
	addTerm := func(t sparql.Term) {
		if !sparql.IsEntity(t) {
			return
		}
		id := sparql.EntityID(sparql.Value(t))
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	var walk func([]sparql.Pattern)
	walk = func(patterns []sparql.Pattern) {
		for _, p := range patterns {
			switch pat := p.(type) {
			case *sparql.BGP:
				for _, t := range pat.Triples {
					addTerm(t.Subject)
					addTerm(t.Object)
				}
			case *sparql.Union:
				walk(pat.Patterns)
			case *sparql.Group:
				walk(pat.Patterns)
			}
		}
	}
	walk(patterns)
	return ids
}

func (c *conversion) views() []TableView {
	var views []TableView
	for _, t := range c.reg.all() {
		v := TableView{Subject: t.Subject, Domain: t.Name}
		for _, p := range t.Projections {
			v.Projections = append(v.Projections, projectionString(p))
		}
		for _, f := range t.Filters {
			v.Filters = append(v.Filters, thingtalk.BooleanString(f))
		}
		views = append(views, v)
	}
	return views
}

func projectionString(p Projection) string {
	var b strings.Builder
	b.WriteString(thingtalk.ValueString(p.Property))
	b.WriteString(" -> ?")
	b.WriteString(p.Variable)
	if p.Type != "" {
		b.WriteString(" : ")
		b.WriteString(p.Type)
	}
	return b.String()
}
