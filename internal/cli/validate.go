package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqltt/internal/schema"
)

// ValidationResult describes a schema that compiled.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Path       string   `json:"path"`
	Class      string   `json:"class"`
	Domains    []string `json:"domains"`
	Properties int      `json:"properties"`
}

func (r ValidationResult) Text() string {
	return fmt.Sprintf("✓ %s: %d domains, %d properties\n", r.Path, len(r.Domains), r.Properties)
}

// SchemaErrorDetails locates a schema error.
type SchemaErrorDetails struct {
	Field  string `json:"field,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [schema]",
		Short: "Check a CUE schema",
		Long: `Compile a CUE schema and report its domains. Without an argument the
configured schema is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config.Schema
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	ix, err := schema.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return formatter.Fail(ErrCodeNotFound, "schema not found", err)
		}
		var details *SchemaErrorDetails
		var ce *schema.CompileError
		if errors.As(err, &ce) {
			details = &SchemaErrorDetails{Field: ce.Field}
			if ce.Pos.IsValid() {
				details.Line = ce.Pos.Line()
				details.Column = ce.Pos.Column()
			}
		}
		if outErr := formatter.Error(ErrCodeSchema, err.Error(), details); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "schema invalid", err)
	}

	result := ValidationResult{Valid: true, Path: path, Class: ix.Class()}
	for _, d := range ix.Domains() {
		result.Domains = append(result.Domains, d.Name)
		result.Properties += len(d.Properties)
		formatter.VerboseLog("domain %s (%s): %d properties", d.Name, d.Subject, len(d.Properties))
	}
	return formatter.Success(result)
}
