package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureScenario(cases ...Case) *Scenario {
	return &Scenario{
		Name:   "inline",
		Schema: filepath.Join("..", "..", "testdata", "schema", "wikidata.cue"),
		KB:     filepath.Join("..", "..", "testdata", "kb.yaml"),
		Cases:  cases,
	}
}

func TestRun_Scenarios(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(context.Background(), s, Options{})
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Outcomes, len(s.Cases))
		})
	}
}

func TestRun_ProgramMismatch(t *testing.T) {
	s := fixtureScenario(Case{
		ID:        "cities",
		Utterance: "Which cities are in France?",
		SPARQL:    `SELECT ?x WHERE { ?x wdt:P31 wd:Q515 ; wdt:P17 wd:Q142 }`,
		Expect:    &ExpectClause{Program: `@org.wikidata.city();`},
	})

	result, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "case cities: program mismatch")
	assert.Contains(t, result.Errors[0], `filter country == "Q142"^^org.wikidata:country("France")`)
}

func TestRun_UnexpectedError(t *testing.T) {
	s := fixtureScenario(Case{
		ID:     "star",
		SPARQL: `SELECT * WHERE { ?x wdt:P31 wd:Q515 }`,
		Expect: &ExpectClause{Program: `@org.wikidata.city();`},
	})

	result, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected program, got error UNSUPPORTED_CONSTRUCT")

	o, ok := result.Outcome("star")
	require.True(t, ok)
	assert.True(t, o.Failed())
	assert.Empty(t, o.Program)
	assert.NotEmpty(t, o.Message)
}

func TestRun_WrongErrorCode(t *testing.T) {
	s := fixtureScenario(Case{
		ID:     "truncated",
		SPARQL: `SELECT ?x WHERE { ?x wdt:P31 `,
		Expect: &ExpectClause{Error: "UNSUPPORTED_CONSTRUCT"},
	})

	result, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected error UNSUPPORTED_CONSTRUCT, got error SYNTAX_ERROR")
}

func TestRun_ExcludeEntityDisplay(t *testing.T) {
	s := fixtureScenario(Case{
		ID:        "us",
		Utterance: "Which cities are in the United States?",
		SPARQL:    `SELECT ?x WHERE { ?x wdt:P31 wd:Q515 ; wdt:P17 wd:Q30 . }`,
		Expect:    &ExpectClause{Program: `@org.wikidata.city() filter country == "Q30"^^org.wikidata:country;`},
	})
	s.ExcludeEntityDisplay = true

	result, err := Run(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_MissingFixtures(t *testing.T) {
	s := fixtureScenario(Case{ID: "a", SPARQL: "ASK {}"})
	s.Schema = filepath.Join(t.TempDir(), "missing.cue")
	_, err := Run(context.Background(), s, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema")

	s = fixtureScenario(Case{ID: "a", SPARQL: "ASK {}"})
	s.KB = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = Run(context.Background(), s, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load knowledge base")
}
