package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sparqltt/internal/testutil"
)

// Snapshot is the golden form of a scenario run. Messages are left out so
// that error wording can change without touching golden files.
type Snapshot struct {
	ScenarioName string          `json:"scenario_name"`
	RunID        string          `json:"run_id"`
	Outcomes     []SnapshotEntry `json:"outcomes"`
}

// SnapshotEntry is one case of a Snapshot.
type SnapshotEntry struct {
	Case    string `json:"case"`
	Program string `json:"program,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSnapshot builds the snapshot of result.
func NewSnapshot(scenario *Scenario, result *Result) Snapshot {
	s := Snapshot{
		ScenarioName: scenario.Name,
		RunID:        testutil.NewFixedRunIDGenerator(scenario.RunID).Generate(),
		Outcomes:     make([]SnapshotEntry, 0, len(result.Outcomes)),
	}
	for _, o := range result.Outcomes {
		s.Outcomes = append(s.Outcomes, SnapshotEntry{Case: o.Case, Program: o.Program, Error: o.Error})
	}
	return s
}

// Marshal encodes the snapshot as indented JSON with a trailing newline.
// Programs are written as is: "<", ">" and "&" are not escaped.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its outcomes against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run. Test failure (via goldie)
// occurs if the outcomes don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, Options{})
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenario, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
