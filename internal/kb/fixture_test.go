package kb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
entities:
  Q30:
    label: United States of America
    aliases: [USA, America]
    domain: Q6256
    claims:
      P31: [Q6256, Q3624078]
  Q76:
    label: Barack Obama
    claims:
      P31: [Q5, Q82955x]
  Q515:
    label: city
  Q5:
    label: human
  Q999: {}
  P1082:
    label: population
`

func TestFixture(t *testing.T) {
	f, err := ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("label", func(t *testing.T) {
		label, ok, err := f.Label(ctx, "Q30")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "United States of America", label)

		_, ok, _ = f.Label(ctx, "Q999")
		assert.False(t, ok)
		_, ok, _ = f.Label(ctx, "Q404")
		assert.False(t, ok)
	})

	t.Run("labels", func(t *testing.T) {
		labels, err := f.Labels(ctx, []string{"Q30", "P1082", "Q999"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Q30": "United States of America", "P1082": "population"}, labels)
	})

	t.Run("domain", func(t *testing.T) {
		domain, ok, err := f.Domain(ctx, "Q30")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Q6256", domain)

		domain, ok, err = f.Domain(ctx, "Q76")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Q5", domain)

		_, ok, err = f.Domain(ctx, "Q515")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("entity by name", func(t *testing.T) {
		id, ok, err := f.EntityByName(ctx, "barack obama")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Q76", id)

		id, ok, _ = f.EntityByName(ctx, "USA")
		assert.True(t, ok)
		assert.Equal(t, "Q30", id)

		_, ok, _ = f.EntityByName(ctx, "Atlantis")
		assert.False(t, ok)
	})

	t.Run("values and aliases", func(t *testing.T) {
		values, err := f.PropertyValues(ctx, "Q30", "P31")
		require.NoError(t, err)
		assert.Equal(t, []string{"Q6256", "Q3624078"}, values)

		aliases, err := f.AltLabels(ctx, "Q30")
		require.NoError(t, err)
		assert.Equal(t, []string{"USA", "America"}, aliases)
	})
}

func TestFixture_AmbiguousDomain(t *testing.T) {
	f, err := ParseFixture([]byte(`
entities:
  Q1:
    claims:
      P31: [Q2, Q3]
`))
	require.NoError(t, err)
	_, _, err = f.Domain(context.Background(), "Q1")
	assert.Error(t, err)
}

func TestParseFixture_Errors(t *testing.T) {
	_, err := ParseFixture([]byte("entities: [1, 2"))
	assert.Error(t, err)

	_, err = ParseFixture([]byte("entities:\n  USA:\n    label: x\n"))
	assert.Error(t, err)
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o644))

	f, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Len(t, f.Entities, 6)

	_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
