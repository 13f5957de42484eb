package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqltt/internal/testutil"
)

const testRunID = "run-test"

// writeConfig writes a config file pointing at the test schema and the
// knowledge-base fixture.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	content := "schema: " + testutil.SchemaPath(t) + "\n" +
		"kb:\n  fixture: " + testutil.KBPath(t) + "\n" + extra
	path := filepath.Join(t.TempDir(), "sparqltt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the CLI with the test config and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeWithConfig(t, writeConfig(t, ""), args...)
}

func executeWithConfig(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	opts := &RootOptions{RunIDs: testutil.NewFixedRunIDGenerator(testRunID)}
	cmd := newRootCommand(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
