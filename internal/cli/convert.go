package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqltt/internal/converter"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Utterance string
	Query     string
	File      string
	Explain   bool
}

// ConvertResult is the payload of a successful conversion.
type ConvertResult struct {
	Program string                `json:"program"`
	Tables  []converter.TableView `json:"tables,omitempty"`
}

// Text renders the program, then the tables when there are any.
func (r ConvertResult) Text() string {
	var b strings.Builder
	b.WriteString(r.Program)
	b.WriteByte('\n')
	for _, t := range r.Tables {
		fmt.Fprintf(&b, "\n%s : %s\n", subjectString(t.Subject), t.Domain)
		for _, p := range t.Projections {
			fmt.Fprintf(&b, "  project %s\n", p)
		}
		for _, f := range t.Filters {
			fmt.Fprintf(&b, "  filter  %s\n", f)
		}
	}
	return b.String()
}

// subjectString prints variables as ?x and entity subjects as <iri>.
func subjectString(subject string) string {
	if strings.Contains(subject, "://") {
		return "<" + subject + ">"
	}
	return "?" + subject
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert [query]",
		Short: "Convert one SPARQL query",
		Long: `Convert one SPARQL query into a ThingTalk program.

The query comes from the argument, --query or --file. The utterance is the
question the query answers; entity display strings are taken from it.

Exit codes:
  0 - Converted
  1 - The query could not be converted
  2 - Command error (missing input, bad schema, etc.)

Examples:
  sparqltt convert -u "What is the capital of France?" 'SELECT ?c WHERE { wd:Q142 wdt:P36 ?c }'
  sparqltt convert -u "Is Paris in France?" --file ask.rq --explain
  sparqltt convert --format json -u "..." --query '...'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if opts.Query != "" {
					return NewExitError(ExitCommandError, "query given both as argument and --query")
				}
				opts.Query = args[0]
			}
			return runConvert(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Utterance, "utterance", "u", "", "utterance the query answers")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "SPARQL query text")
	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "file holding the SPARQL query")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "also print the final tables")
	cmd.MarkFlagsMutuallyExclusive("query", "file")

	return cmd
}

func runConvert(opts *ConvertOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	query, fail := readQuery(opts)
	if fail != nil {
		return fail.report(formatter)
	}

	e, err := openEnv(opts.RootOptions, true)
	if err != nil {
		return failSetup(formatter, err)
	}
	defer e.Close()

	cv, err := e.converter()
	if err != nil {
		return formatter.Fail(ErrCodeConfig, "invalid converter options", err)
	}

	exp, err := cv.Explain(cmd.Context(), query, opts.Utterance)
	if err != nil {
		return formatter.ConversionError(err)
	}

	result := ConvertResult{Program: exp.Program.String()}
	if opts.Explain {
		result.Tables = exp.Tables
	}
	return formatter.Success(result)
}

// cliFailure is an input error not yet reported to the user.
type cliFailure struct {
	code string
	msg  string
	err  error
}

func (c *cliFailure) report(f *OutputFormatter) error {
	return f.Fail(c.code, c.msg, c.err)
}

func readQuery(opts *ConvertOptions) (string, *cliFailure) {
	switch {
	case opts.Query != "":
		return opts.Query, nil
	case opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			code := ErrCodeGeneric
			if os.IsNotExist(err) {
				code = ErrCodeNotFound
			}
			return "", &cliFailure{code: code, msg: "failed to read query file", err: err}
		}
		return string(data), nil
	default:
		return "", &cliFailure{code: ErrCodeGeneric, msg: "no query: pass it as argument, --query or --file"}
	}
}
