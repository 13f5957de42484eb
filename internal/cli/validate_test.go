package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqltt/internal/testutil"
)

func TestValidate_ConfiguredSchema(t *testing.T) {
	stdout, _, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+testutil.SchemaPath(t)+": 7 domains")
}

func TestValidate_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "validate", testutil.SchemaPath(t))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "org.wikidata", resp.Data.Class)
	assert.Equal(t, []string{
		"entity", "country", "city", "administrative_territorial_entity", "human", "mountain", "film",
	}, resp.Data.Domains)
	assert.Positive(t, resp.Data.Properties)
}

func TestValidate_Invalid(t *testing.T) {
	path := writeFile(t, "bad.cue", "class: \"org.example\"\ndomains: {\n\tplace: {wikidata_subject: 42}\n}\n")

	stdout, _, err := execute(t, "--format", "json", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string             `json:"code"`
			Details SchemaErrorDetails `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeSchema, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Details.Field)
}

func TestValidate_NotFound(t *testing.T) {
	stdout, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E005]")
}
