package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqltt/internal/kb"
	"github.com/roach88/sparqltt/internal/textutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sparqltt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Schema, cfg.Schema)
	assert.Equal(t, kb.DefaultEndpoint, cfg.KB.Endpoint)
	assert.Equal(t, kb.DefaultTimeout, cfg.KB.Timeout)
	assert.Equal(t, textutil.F1, cfg.Similarity())
	assert.Empty(t, cfg.File)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
schema: schemas/wikidata.cue
cache: ""
kb:
  fixture: testdata/kb.yaml
  timeout: 5s
  batch_wait: 20ms
converter:
  exclude_entity_display: true
  similarity: jaccard
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "schemas/wikidata.cue", cfg.Schema)
	assert.Empty(t, cfg.Cache)
	assert.Equal(t, "testdata/kb.yaml", cfg.KB.Fixture)
	assert.Equal(t, 5*time.Second, cfg.KB.Timeout)
	assert.Equal(t, 20*time.Millisecond, cfg.KB.BatchWait)
	assert.Equal(t, kb.DefaultAPI, cfg.KB.API)
	assert.True(t, cfg.Converter.ExcludeEntityDisplay)
	assert.Equal(t, textutil.Jaccard, cfg.Similarity())
	assert.Equal(t, path, cfg.File)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sparqltt.yaml"), []byte("schema: local.cue\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local.cue", cfg.Schema)
	assert.NotEmpty(t, cfg.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "kb:\n  timeout: 5s\n")
	t.Setenv("SPARQLTT_KB_TIMEOUT", "1m")
	t.Setenv("SPARQLTT_CONVERTER_SIMILARITY", "jaccard")
	t.Setenv("SPARQLTT_KB_FIXTURE", "fixture.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.KB.Timeout)
	assert.Equal(t, textutil.Jaccard, cfg.Similarity())
	assert.Equal(t, "fixture.yaml", cfg.KB.Fixture)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad similarity", "converter:\n  similarity: cosine\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"empty schema", "schema: \"\"\n"},
		{"invalid yaml", "kb: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
