package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqltt/internal/kb"
)

// LabelResult lists the labels of the requested ids. Ids without a label
// map to the empty string.
type LabelResult struct {
	Labels []IDLabel `json:"labels"`
}

// IDLabel is one id with its label.
type IDLabel struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (r LabelResult) Text() string {
	var b strings.Builder
	for _, l := range r.Labels {
		label := l.Label
		if label == "" {
			label = "(no label)"
		}
		fmt.Fprintf(&b, "%s\t%s\n", l.ID, label)
	}
	return b.String()
}

// SearchResult is the entity found for a name.
type SearchResult struct {
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"`
	Found bool   `json:"found"`
}

func (r SearchResult) Text() string {
	if !r.Found {
		return fmt.Sprintf("no entity named %q\n", r.Name)
	}
	return r.ID + "\n"
}

// DomainResult is the class of an entity and the schema domain it maps to.
type DomainResult struct {
	ID     string `json:"id"`
	Class  string `json:"class,omitempty"`
	Domain string `json:"domain,omitempty"`
}

func (r DomainResult) Text() string {
	if r.Class == "" {
		return fmt.Sprintf("%s: no domain\n", r.ID)
	}
	if r.Domain == "" {
		return fmt.Sprintf("%s: %s (not in schema)\n", r.ID, r.Class)
	}
	return fmt.Sprintf("%s: %s (%s)\n", r.ID, r.Class, r.Domain)
}

// NewKBCommand creates the kb command and its lookups.
func NewKBCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Look up Wikidata entities",
		Long: `Look up entities the way the converter does, through the configured
cache or fixture.

Examples:
  sparqltt kb label Q30 P17
  sparqltt kb search "United States of America"
  sparqltt kb domain Q90`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "label <id>...",
		Short: "Print the English labels of items and properties",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKBLabel(rootOpts, args, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "search <name>",
		Short: "Find the item with a label or alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKBSearch(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "domain <qid>",
		Short: "Print the class an item belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKBDomain(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func runKBLabel(opts *RootOptions, ids []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	e, err := openEnv(opts, false)
	if err != nil {
		return failSetup(formatter, err)
	}
	defer e.Close()

	labels, err := e.kb.Labels(cmd.Context(), ids)
	if err != nil {
		return formatter.Fail(ErrCodeKB, "label lookup failed", err)
	}

	result := LabelResult{Labels: make([]IDLabel, 0, len(ids))}
	for _, id := range ids {
		result.Labels = append(result.Labels, IDLabel{ID: id, Label: labels[id]})
	}
	return formatter.Success(result)
}

func runKBSearch(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	e, err := openEnv(opts, false)
	if err != nil {
		return failSetup(formatter, err)
	}
	defer e.Close()

	id, found, err := e.kb.EntityByName(cmd.Context(), name)
	if err != nil {
		return formatter.Fail(ErrCodeKB, "search failed", err)
	}
	return formatter.Success(SearchResult{Name: name, ID: id, Found: found})
}

func runKBDomain(opts *RootOptions, qid string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if !kb.IsEntity(qid) {
		return formatter.Fail(ErrCodeGeneric, fmt.Sprintf("%q is not an item id", qid), nil)
	}

	e, err := openEnv(opts, true)
	if err != nil {
		return failSetup(formatter, err)
	}
	defer e.Close()

	class, ok, err := e.kb.Domain(cmd.Context(), qid)
	if err != nil {
		return formatter.Fail(ErrCodeKB, "domain lookup failed", err)
	}
	result := DomainResult{ID: qid}
	if ok {
		result.Class = class
		result.Domain, _ = e.schema.Table(class)
	}
	return formatter.Success(result)
}
