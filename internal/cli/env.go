package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/sparqltt/internal/converter"
	"github.com/roach88/sparqltt/internal/kb"
	"github.com/roach88/sparqltt/internal/schema"
	"github.com/roach88/sparqltt/internal/store"
)

// env holds what the commands share: the schema, the knowledge base and
// the cache behind it.
type env struct {
	opts   *RootOptions
	schema *schema.Index
	kb     converter.KnowledgeBase
	store  *store.Store
}

// setupError carries the CLI error code of a failed setup step.
type setupError struct {
	code string
	msg  string
	err  error
}

func (e *setupError) Error() string {
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *setupError) Unwrap() error {
	return e.err
}

// openEnv loads the configured schema and opens the knowledge base. A
// fixture replaces the live services; otherwise Wikidata is used through
// the SQLite cache when one is configured.
func openEnv(opts *RootOptions, withSchema bool) (*env, error) {
	cfg := opts.Config
	e := &env{opts: opts}

	if withSchema {
		ix, err := schema.Load(cfg.Schema)
		if err != nil {
			code := ErrCodeSchema
			if errors.Is(err, os.ErrNotExist) {
				code = ErrCodeNotFound
			}
			return nil, &setupError{code: code, msg: "failed to load schema", err: err}
		}
		e.schema = ix
		opts.Logger.Debug("schema loaded", "path", cfg.Schema, "domains", len(ix.Domains()))
	}

	if cfg.KB.Fixture != "" {
		f, err := kb.LoadFixture(cfg.KB.Fixture)
		if err != nil {
			return nil, &setupError{code: ErrCodeKB, msg: "failed to load knowledge base fixture", err: err}
		}
		e.kb = f
		opts.Logger.Debug("using knowledge base fixture", "path", cfg.KB.Fixture)
		return e, nil
	}

	var cache kb.Cache
	if cfg.Cache != "" {
		st, err := store.Open(cfg.Cache)
		if err != nil {
			return nil, &setupError{code: ErrCodeKB, msg: "failed to open cache", err: err}
		}
		e.store = st
		cache = st
	}
	e.kb = kb.NewWikidata(kb.Options{
		Endpoint:  cfg.KB.Endpoint,
		API:       cfg.KB.API,
		Timeout:   cfg.KB.Timeout,
		BatchWait: cfg.KB.BatchWait,
		Cache:     cache,
		Logger:    opts.Logger,
	})
	return e, nil
}

// converter builds a converter. Each goroutine needs its own.
func (e *env) converter() (*converter.Converter, error) {
	return converter.New(converter.Options{
		Schema:               e.schema,
		KB:                   e.kb,
		ExcludeEntityDisplay: e.opts.Config.Converter.ExcludeEntityDisplay,
		Similarity:           e.opts.Config.Similarity(),
		Logger:               e.opts.Logger,
	})
}

func (e *env) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// failSetup reports an openEnv error through f.
func failSetup(f *OutputFormatter, err error) error {
	var se *setupError
	if errors.As(err, &se) {
		return f.Fail(se.code, se.msg, se.err)
	}
	return f.Fail(ErrCodeGeneric, "setup failed", err)
}
