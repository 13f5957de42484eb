package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// To regenerate golden files:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Marshal(t *testing.T) {
	s := &Scenario{Name: "snap"}
	r := NewResult()
	r.Outcomes = []Outcome{
		{Case: "a", Program: `@org.wikidata.city() filter population >= 5 && id == "Q90"^^org.wikidata:city("Paris");`},
		{Case: "b", Error: "SYNTAX_ERROR", Message: "dropped from snapshots"},
	}

	data, err := NewSnapshot(s, r).Marshal()
	require.NoError(t, err)

	want := `{
  "scenario_name": "snap",
  "run_id": "test-run-default",
  "outcomes": [
    {
      "case": "a",
      "program": "@org.wikidata.city() filter population >= 5 && id == \"Q90\"^^org.wikidata:city(\"Paris\");"
    },
    {
      "case": "b",
      "error": "SYNTAX_ERROR"
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}
