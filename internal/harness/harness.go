package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sparqltt/internal/converter"
	"github.com/roach88/sparqltt/internal/kb"
	"github.com/roach88/sparqltt/internal/schema"
)

// Options adjust how scenarios run.
type Options struct {
	// Logger receives converter logs. Nil discards them.
	Logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// The schema and fixture named by the scenario are loaded fresh for each
// run. Cases run in order on one converter. An error is returned only when
// the scenario cannot run at all; failed expectations land in
// Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	cv, err := newConverter(scenario, opts)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		outcome := convert(ctx, cv, c)
		result.Outcomes = append(result.Outcomes, outcome)
		if msg, ok := checkExpect(c, outcome); !ok {
			result.AddError(msg)
		}
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

func newConverter(scenario *Scenario, opts Options) (*converter.Converter, error) {
	ix, err := schema.Load(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	fixture, err := kb.LoadFixture(scenario.KB)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cv, err := converter.New(converter.Options{
		Schema:               ix,
		KB:                   fixture,
		ExcludeEntityDisplay: scenario.ExcludeEntityDisplay,
		Logger:               logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create converter: %w", err)
	}
	return cv, nil
}

func convert(ctx context.Context, cv *converter.Converter, c Case) Outcome {
	program, err := cv.Convert(ctx, c.SPARQL, c.Utterance)
	if err != nil {
		return Outcome{
			Case:    c.ID,
			Error:   string(converter.CodeOf(err)),
			Message: err.Error(),
		}
	}
	return Outcome{Case: c.ID, Program: program.String()}
}

func checkExpect(c Case, o Outcome) (string, bool) {
	if c.Expect == nil {
		return "", true
	}
	switch {
	case c.Expect.Error != "":
		if o.Error != c.Expect.Error {
			return fmt.Sprintf("case %s: expected error %s, got %s", c.ID, c.Expect.Error, describe(o)), false
		}
	case o.Failed():
		return fmt.Sprintf("case %s: expected program, got %s", c.ID, describe(o)), false
	case o.Program != c.Expect.Program:
		return fmt.Sprintf("case %s: program mismatch\n  expected: %s\n  actual:   %s", c.ID, c.Expect.Program, o.Program), false
	}
	return "", true
}

func describe(o Outcome) string {
	if o.Failed() {
		return fmt.Sprintf("error %s (%s)", o.Error, o.Message)
	}
	return fmt.Sprintf("program %s", o.Program)
}
