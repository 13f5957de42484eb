package schema

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparqltt/internal/thingtalk"
)

func loadTestSchema(t *testing.T) *Index {
	t.Helper()
	ix, err := Load(filepath.Join("..", "..", "testdata", "schema", "wikidata.cue"))
	require.NoError(t, err)
	return ix
}

func TestLoad_Domains(t *testing.T) {
	ix := loadTestSchema(t)

	assert.Equal(t, "org.wikidata", ix.Class())
	require.NotEmpty(t, ix.Domains())
	_, ok := ix.Domain("entity")
	assert.True(t, ok)

	for qid, want := range map[string]string{"Q6256": "country", "Q5": "human", "Q35120": "entity"} {
		got, ok := ix.Table(qid)
		assert.True(t, ok, qid)
		assert.Equal(t, want, got, qid)
	}
	_, ok = ix.Table("Q999999")
	assert.False(t, ok)

	subject, ok := ix.DomainSubject("city")
	assert.True(t, ok)
	assert.Equal(t, "Q515", subject)
}

func TestLoad_Properties(t *testing.T) {
	ix := loadTestSchema(t)

	name, ok := ix.Property("P1082")
	assert.True(t, ok)
	assert.Equal(t, "population", name)

	name, ok = ix.Property("P580")
	assert.True(t, ok)
	assert.Equal(t, "start_time", name)

	_, ok = ix.Property("P999999")
	assert.False(t, ok)
}

func TestLoad_PropertyTypes(t *testing.T) {
	ix := loadTestSchema(t)

	tests := []struct {
		name string
		want string
	}{
		{"population", "Number"},
		{"capital", "Entity(org.wikidata:city)"},
		{"area", "Measure(m2)"},
		{"sex_or_gender", "Enum(male,female)"},
		{"member_of", "Array(Compound)"},
		{"member_of.start_time", "Date"},
		{"position_held.electoral_district", "Entity(org.wikidata:entity)"},
		{"id", "Entity(org.wikidata:entity)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, ok := ix.PropertyType(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, typ.String())
		})
	}

	memberOf, _ := ix.PropertyType("member_of")
	compound, ok := thingtalk.ElemType(memberOf).(*thingtalk.CompoundType)
	require.True(t, ok)
	assert.Equal(t, &thingtalk.EntityType{Name: "org.wikidata:entity"}, compound.Fields["value"])
	assert.Equal(t, &thingtalk.EntityType{Name: "org.wikidata:entity"}, thingtalk.ValueType(memberOf))

	_, ok = ix.PropertyType("no_such_property")
	assert.False(t, ok)
}

func TestHasProperty(t *testing.T) {
	ix := loadTestSchema(t)

	assert.True(t, ix.HasProperty("country", "population"))
	assert.True(t, ix.HasProperty("country", "member_of.start_time"))
	assert.True(t, ix.HasProperty("country", "id"))
	assert.True(t, ix.HasProperty("country", "instance_of"))
	assert.False(t, ix.HasProperty("country", "place_of_birth"))
	assert.True(t, ix.HasProperty("entity", "place_of_birth"))
	assert.False(t, ix.HasProperty("entity", "no_such_property"))
	assert.False(t, ix.HasProperty("no_such_domain", "population"))
}

func TestAbstractProperty(t *testing.T) {
	ix := loadTestSchema(t)

	pid, ok := ix.AbstractProperty([]string{"P22", "P25"})
	assert.True(t, ok)
	assert.Equal(t, "P8810", pid)

	_, ok = ix.AbstractProperty([]string{"P22", "P40"})
	assert.False(t, ok)
	_, ok = ix.AbstractProperty(nil)
	assert.False(t, ok)
}

func TestCompileString_DefaultClass(t *testing.T) {
	ix, err := CompileString(`
		domains: entity: wikidata_subject: "Q35120"
	`)
	require.NoError(t, err)
	assert.Equal(t, "org.wikidata", ix.Class())
}

func TestCompileString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{
			name:    "missing generic domain",
			src:     `domains: country: wikidata_subject: "Q6256"`,
			message: "generic",
		},
		{
			name: "bad property type",
			src: `domains: entity: {
				wikidata_subject: "Q35120"
				properties: population: {wikidata_id: "P1082", type: "Integer"}
			}`,
			message: "unknown type",
		},
		{
			name: "bad property id",
			src: `domains: entity: {
				wikidata_subject: "Q35120"
				properties: population: {wikidata_id: "Q1082", type: "Number"}
			}`,
		},
		{
			name: "unknown key",
			src: `domains: entity: {
				wikidata_subject: "Q35120"
				label: "thing"
			}`,
		},
		{
			name: "explicit value field",
			src: `domains: entity: {
				wikidata_subject: "Q35120"
				properties: member_of: {
					wikidata_id: "P463"
					type:        "Entity(org.wikidata:entity)"
					fields: value: {type: "Date"}
				}
			}`,
			message: "implicit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileString(tt.src)
			require.Error(t, err)
			var compileErr *CompileError
			assert.True(t, errors.As(err, &compileErr), "want *CompileError, got %T: %v", err, err)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "does-not-exist.cue"))
	assert.Error(t, err)
}
