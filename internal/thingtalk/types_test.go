package thingtalk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  Type
	}{
		{"Number", NumberType{}},
		{"String", StringType{}},
		{"Date", DateType{}},
		{"Boolean", BooleanType{}},
		{"Entity(org.wikidata:country)", &EntityType{Name: "org.wikidata:country"}},
		{"Measure(m)", &MeasureType{Unit: "m"}},
		{"Enum(male, female)", &EnumType{Values: []string{"male", "female"}}},
		{"Array(Entity(org.wikidata:city))", &ArrayType{Elem: &EntityType{Name: "org.wikidata:city"}}},
		{" Array(String) ", &ArrayType{Elem: StringType{}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseType_Errors(t *testing.T) {
	for _, input := range []string{"", "Integer", "Entity()", "Measure()", "Array(Bogus)", "Array(String"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseType(input)
			assert.Error(t, err)
		})
	}
}

func TestTypeString(t *testing.T) {
	typ, err := ParseType("Array(Entity(org.wikidata:city))")
	require.NoError(t, err)
	assert.Equal(t, "Array(Entity(org.wikidata:city))", typ.String())
	assert.Equal(t, "Enum(a,b)", (&EnumType{Values: []string{"a", "b"}}).String())
}

func TestElemAndValueType(t *testing.T) {
	city := &EntityType{Name: "org.wikidata:city"}
	compound := &CompoundType{Fields: map[string]Type{
		CompoundValueField: city,
		"start_time":       DateType{},
	}}

	assert.Equal(t, city, ElemType(&ArrayType{Elem: city}))
	assert.Equal(t, NumberType{}, ElemType(NumberType{}))
	assert.Equal(t, city, ValueType(&ArrayType{Elem: compound}))
	assert.True(t, IsArray(&ArrayType{Elem: city}))
	assert.False(t, IsArray(city))
}

func TestBaseUnit(t *testing.T) {
	assert.Equal(t, "m", BaseUnit("km"))
	assert.Equal(t, "kg", BaseUnit("lb"))
	assert.Equal(t, "C", BaseUnit("F"))
	assert.Equal(t, "", BaseUnit("furlong"))
}
