// Package testutil holds the fixtures shared by package tests: the test
// schema, the knowledge-base fixture and a converter wired to both.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqltt/internal/converter"
	"github.com/roach88/sparqltt/internal/kb"
	"github.com/roach88/sparqltt/internal/schema"
)

// ModuleRoot returns the directory holding go.mod, searching upwards from
// the working directory of the test.
func ModuleRoot(t testing.TB) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found")
		dir = parent
	}
}

// Testdata returns the path of a file under the module's testdata
// directory.
func Testdata(t testing.TB, elem ...string) string {
	t.Helper()
	return filepath.Join(append([]string{ModuleRoot(t), "testdata"}, elem...)...)
}

// SchemaPath is the path of the test schema.
func SchemaPath(t testing.TB) string {
	return Testdata(t, "schema", "wikidata.cue")
}

// KBPath is the path of the knowledge-base fixture.
func KBPath(t testing.TB) string {
	return Testdata(t, "kb.yaml")
}

// Schema loads the test schema.
func Schema(t testing.TB) *schema.Index {
	t.Helper()
	ix, err := schema.Load(SchemaPath(t))
	require.NoError(t, err)
	return ix
}

// KB loads the knowledge-base fixture.
func KB(t testing.TB) *kb.Fixture {
	t.Helper()
	f, err := kb.LoadFixture(KBPath(t))
	require.NoError(t, err)
	return f
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Converter returns a converter over the test schema and KB fixture. opts
// may adjust the options before the converter is built.
func Converter(t testing.TB, opts ...func(*converter.Options)) *converter.Converter {
	t.Helper()
	o := converter.Options{
		Schema: Schema(t),
		KB:     KB(t),
		Logger: Logger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	cv, err := converter.New(o)
	require.NoError(t, err)
	return cv
}
