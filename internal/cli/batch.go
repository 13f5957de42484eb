package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sparqltt/internal/converter"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Output string
	Jobs   int
}

// Example is one input of a batch file.
type Example struct {
	ID        string `yaml:"id"`
	Utterance string `yaml:"utterance"`
	SPARQL    string `yaml:"sparql"`
}

type exampleFile struct {
	Examples []Example `yaml:"examples"`
}

// BatchEntry is the outcome of one example.
type BatchEntry struct {
	ID      string `json:"id"`
	Program string `json:"program,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	RunID     string         `json:"run_id"`
	Total     int            `json:"total"`
	Converted int            `json:"converted"`
	Failed    int            `json:"failed"`
	ByCode    map[string]int `json:"by_code,omitempty"`
	Results   []BatchEntry   `json:"results"`

	// inline prints the TSV lines with the text summary.
	inline bool
}

// Text renders the summary, preceded by the TSV lines when no output file
// was given.
func (r BatchResult) Text() string {
	var b strings.Builder
	if r.inline {
		writeTSV(&b, r.Results)
	}
	fmt.Fprintf(&b, "run %s: %d examples, %d converted, %d failed\n", r.RunID, r.Total, r.Converted, r.Failed)

	codes := make([]string, 0, len(r.ByCode))
	for code := range r.ByCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(&b, "  %s: %d\n", code, r.ByCode[code])
	}
	return b.String()
}

// writeTSV writes an id<TAB>program line per converted example.
func writeTSV(b *strings.Builder, entries []BatchEntry) {
	for _, e := range entries {
		if e.Error != "" {
			continue
		}
		fmt.Fprintf(b, "%s\t%s\n", e.ID, e.Program)
	}
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <examples.yaml>",
		Short: "Convert a file of examples",
		Long: `Convert every example of a YAML file:

  examples:
    - id: q1
      utterance: What is the capital of France?
      sparql: SELECT ?c WHERE { wd:Q142 wdt:P36 ?c }

Converted examples are written as id<TAB>program lines, to --output or
after the summary. Failed examples are logged and counted by error code;
they do not change the exit code.

Examples:
  sparqltt batch dev.yaml --output dev.tsv
  sparqltt batch dev.yaml --jobs 4 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write id<TAB>program lines to this file")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 1, "number of parallel converters")

	return cmd
}

func runBatch(opts *BatchOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.Logger

	if opts.Jobs < 1 {
		return formatter.Fail(ErrCodeGeneric, fmt.Sprintf("--jobs must be at least 1, got %d", opts.Jobs), nil)
	}

	examples, err := loadExamples(path)
	if err != nil {
		code := ErrCodeGeneric
		if os.IsNotExist(err) {
			code = ErrCodeNotFound
		}
		return formatter.Fail(code, "failed to load examples", err)
	}

	e, err := openEnv(opts.RootOptions, true)
	if err != nil {
		return failSetup(formatter, err)
	}
	defer e.Close()

	runID := opts.runIDs().Generate()
	logger = logger.With("run_id", runID)
	logger.Info("batch started", "examples", len(examples), "jobs", opts.Jobs)

	entries, err := convertAll(cmd.Context(), e, examples, opts.Jobs)
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, "batch interrupted", err)
	}

	result := BatchResult{
		RunID:   runID,
		Total:   len(entries),
		ByCode:  make(map[string]int),
		Results: entries,
		inline:  opts.Output == "",
	}
	for _, entry := range entries {
		if entry.Error == "" {
			result.Converted++
			continue
		}
		result.Failed++
		result.ByCode[entry.Error]++
		logger.Warn("conversion failed", "id", entry.ID, "code", entry.Error, "error", entry.Message)
	}

	if opts.Output != "" {
		var b strings.Builder
		writeTSV(&b, entries)
		if err := os.WriteFile(opts.Output, []byte(b.String()), 0644); err != nil {
			return formatter.Fail(ErrCodeWriteFailed, "failed to write output", err)
		}
	}

	logger.Info("batch finished", "converted", result.Converted, "failed", result.Failed)
	return formatter.SuccessWithTrace(result, runID)
}

func loadExamples(path string) ([]Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file exampleFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Examples))
	for i, ex := range file.Examples {
		if ex.ID == "" {
			return nil, fmt.Errorf("examples[%d]: id is required", i)
		}
		if seen[ex.ID] {
			return nil, fmt.Errorf("examples[%d]: duplicate id %q", i, ex.ID)
		}
		seen[ex.ID] = true
		if ex.SPARQL == "" {
			return nil, fmt.Errorf("examples[%d] (%s): sparql is required", i, ex.ID)
		}
	}
	return file.Examples, nil
}

// convertAll converts examples on jobs converters. Entries keep the input
// order.
func convertAll(ctx context.Context, e *env, examples []Example, jobs int) ([]BatchEntry, error) {
	converters := make([]*converter.Converter, jobs)
	for w := range converters {
		cv, err := e.converter()
		if err != nil {
			return nil, err
		}
		converters[w] = cv
	}

	entries := make([]BatchEntry, len(examples))
	g, ctx := errgroup.WithContext(ctx)

	next := make(chan int)
	g.Go(func() error {
		defer close(next)
		for i := range examples {
			select {
			case next <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for _, cv := range converters {
		g.Go(func() error {
			for i := range next {
				entries[i] = convertExample(ctx, cv, examples[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func convertExample(ctx context.Context, cv *converter.Converter, ex Example) BatchEntry {
	program, err := cv.Convert(ctx, ex.SPARQL, ex.Utterance)
	if err != nil {
		return BatchEntry{ID: ex.ID, Error: string(converter.CodeOf(err)), Message: err.Error()}
	}
	return BatchEntry{ID: ex.ID, Program: program.String()}
}
