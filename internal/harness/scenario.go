package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sparqltt/internal/converter"
)

// Scenario is a set of conversions run against one schema and knowledge
// base.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description"`

	// Schema is the CUE schema file. Relative paths are resolved against
	// the scenario file's directory.
	Schema string `yaml:"schema"`

	// KB is the knowledge-base fixture, resolved like Schema.
	KB string `yaml:"kb"`

	// ExcludeEntityDisplay converts without entity display strings.
	ExcludeEntityDisplay bool `yaml:"exclude_entity_display,omitempty"`

	Cases []Case `yaml:"cases"`

	// Assertions check properties across cases.
	// Supported types: program_contains, program_excludes, error_count,
	// same_program.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// RunID is recorded in golden snapshots. Empty means
	// "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Case is one query with the utterance it answers.
type Case struct {
	ID        string `yaml:"id"`
	Utterance string `yaml:"utterance"`
	SPARQL    string `yaml:"sparql"`

	// Expect is optional; a case without it only feeds assertions and
	// golden files.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause gives the expected outcome of a case: either a program or
// an error code, never both.
type ExpectClause struct {
	Program string `yaml:"program,omitempty"`
	Error   string `yaml:"error,omitempty"`
}

// Assertion checks the outcomes of a scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "program_contains": the program of Case contains Text
	// - "program_excludes": the program of Case does not contain Text
	// - "error_count": exactly Count cases failed with Code
	//   (any code when Code is empty)
	// - "same_program": all Cases produced the same program
	Type string `yaml:"type"`

	Case  string   `yaml:"case,omitempty"`
	Text  string   `yaml:"text,omitempty"`
	Code  string   `yaml:"code,omitempty"`
	Count int      `yaml:"count,omitempty"`
	Cases []string `yaml:"cases,omitempty"`
}

// Assertion type constants.
const (
	AssertProgramContains = "program_contains"
	AssertProgramExcludes = "program_excludes"
	AssertErrorCount      = "error_count"
	AssertSameProgram     = "same_program"
)

var errorCodes = map[string]bool{
	string(converter.ErrCodeUnsupported): true,
	string(converter.ErrCodeResolution):  true,
	string(converter.ErrCodeTransient):   true,
	string(converter.ErrCodeInvariant):   true,
	string(converter.ErrCodeSyntax):      true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	scenario.Schema = resolve(dir, scenario.Schema)
	scenario.KB = resolve(dir, scenario.KB)
	return scenario, nil
}

// ParseScenario decodes a scenario without resolving its paths.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file directly inside dir, in
// file name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	seen := make(map[string]string)
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", name, s.Name, prev)
		}
		seen[s.Name] = name
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if s.KB == "" {
		return fmt.Errorf("kb is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases must contain at least one case")
	}

	ids := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.ID == "" {
			return fmt.Errorf("cases[%d]: id is required", i)
		}
		if ids[c.ID] {
			return fmt.Errorf("cases[%d]: duplicate id %q", i, c.ID)
		}
		ids[c.ID] = true
		if c.SPARQL == "" {
			return fmt.Errorf("cases[%d] (%s): sparql is required", i, c.ID)
		}
		if c.Expect == nil {
			continue
		}
		if (c.Expect.Program == "") == (c.Expect.Error == "") {
			return fmt.Errorf("cases[%d] (%s): expect needs exactly one of program or error", i, c.ID)
		}
		if c.Expect.Error != "" && !errorCodes[c.Expect.Error] {
			return fmt.Errorf("cases[%d] (%s): unknown error code %q", i, c.ID, c.Expect.Error)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, ids); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion, ids map[string]bool) error {
	switch a.Type {
	case AssertProgramContains, AssertProgramExcludes:
		if !ids[a.Case] {
			return fmt.Errorf("%s: unknown case %q", a.Type, a.Case)
		}
		if a.Text == "" {
			return fmt.Errorf("%s: text is required", a.Type)
		}
	case AssertErrorCount:
		if a.Count < 0 {
			return fmt.Errorf("%s: count must not be negative", a.Type)
		}
		if a.Code != "" && !errorCodes[a.Code] {
			return fmt.Errorf("%s: unknown error code %q", a.Type, a.Code)
		}
	case AssertSameProgram:
		if len(a.Cases) < 2 {
			return fmt.Errorf("%s: needs at least two cases", a.Type)
		}
		for _, id := range a.Cases {
			if !ids[id] {
				return fmt.Errorf("%s: unknown case %q", a.Type, id)
			}
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
