package thingtalk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func country(qid, display string) *EntityValue {
	return &EntityValue{ID: qid, Type: EntityTypeName("country"), Display: display}
}

func TestPrint_Values(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"entity with display", country("Q30", "united states"), `"Q30"^^org.wikidata:country("united states")`},
		{"entity without display", country("Q30", ""), `"Q30"^^org.wikidata:country`},
		{"integer", NewNumber(1000000), "1000000"},
		{"fraction", NewNumber(2.5), "2.5"},
		{"string", &StringValue{Value: `say "hi"`}, `"say \"hi\""`},
		{"boolean", &BooleanValue{Value: true}, "true"},
		{"year", &DateValue{Year: 2003}, "new Date(2003)"},
		{"full date", &DateValue{Year: 2020, Month: 1, Day: 31}, "new Date(2020, 1, 31)"},
		{"measure", &MeasureValue{Value: 5, Unit: "m"}, "5m"},
		{"enum", &EnumValue{Value: "male"}, "enum male"},
		{"null", &NullValue{}, "null"},
		{"var ref", NewVarRef("member_of.start_time"), "member_of.start_time"},
		{
			"filter value",
			&FilterValue{Value: NewVarRef("position_held"), Filter: &AtomBooleanExpression{Name: "value", Operator: "==", Value: country("Q11696", "")}},
			`(position_held filter value == "Q11696"^^org.wikidata:country)`,
		},
		{
			"array field",
			&ArrayFieldValue{
				Value: &FilterValue{Value: NewVarRef("position_held"), Filter: &AtomBooleanExpression{Name: "value", Operator: "==", Value: NewNumber(1)}},
				Field: "start_time",
			},
			"start_time of (position_held filter value == 1)",
		},
		{"computation", &ComputationValue{Op: "count", Operands: []Value{NewVarRef("award_received")}}, "count(award_received)"},
		{
			"property path",
			PropertyPath{{Property: "located_in"}, {Property: "country", Quantifier: QuantifierZeroOrMore}},
			"<located_in/country*>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueString(tt.value))
		})
	}
}

func TestPrint_Booleans(t *testing.T) {
	pop := &AtomBooleanExpression{Name: "population", Operator: ">=", Value: NewNumber(5)}
	lang := &AtomBooleanExpression{Name: "official_language", Operator: "contains", Value: NewNumber(1)}

	tests := []struct {
		name string
		expr BooleanExpression
		want string
	}{
		{"infix atom", pop, "population >= 5"},
		{"call atom", lang, "contains(official_language, 1)"},
		{"and", NewAnd(pop, lang), "population >= 5 && contains(official_language, 1)"},
		{"or inside and", NewAnd(pop, NewOr(lang, pop)), "population >= 5 && (contains(official_language, 1) || population >= 5)"},
		{"not", NewNot(pop), "!(population >= 5)"},
		{"true", True, "true"},
		{
			"compute",
			&ComputeBooleanExpression{LHS: &ComputationValue{Op: "count", Operands: []Value{NewVarRef("award")}}, Operator: ">=", RHS: NewNumber(2)},
			"count(award) >= 2",
		},
		{
			"subquery",
			&ComparisonSubqueryBooleanExpression{
				LHS:      NewVarRef("id"),
				Operator: "in_array",
				RHS: &ProjectionExpression{
					Expression: &FilterExpression{Expression: BaseQuery("country"), Filter: pop},
					Elements:   []ProjectionElement{{Value: NewVarRef("capital")}},
				},
			},
			"in_array(id, any([capital] of @org.wikidata.country() filter population >= 5))",
		},
		{
			"property path",
			&PropertyPathBooleanExpression{Path: PropertyPath{{Property: "place_of_birth"}, {Property: "country"}}, Operator: "==", Value: country("Q30", "")},
			`<place_of_birth/country> == "Q30"^^org.wikidata:country`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BooleanString(tt.expr))
		})
	}
}

func TestPrint_Expressions(t *testing.T) {
	base := BaseQuery("country")
	pop := &AtomBooleanExpression{Name: "population", Operator: ">=", Value: NewNumber(1000000)}
	filtered := &FilterExpression{Expression: base, Filter: pop}
	sorted := &SortExpression{Expression: base, Value: NewVarRef("population"), Direction: SortDescending}

	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{"invocation", base, "@org.wikidata.country()"},
		{"filter", filtered, "@org.wikidata.country() filter population >= 1000000"},
		{
			"projection with type",
			&ProjectionExpression{Expression: filtered, Elements: []ProjectionElement{{
				Value: NewVarRef("residence"),
				Types: []Type{&EntityType{Name: "org.wikidata:federated_state"}},
			}}},
			"[residence : Entity(org.wikidata:federated_state)] of @org.wikidata.country() filter population >= 1000000",
		},
		{"sort", sorted, "sort(population desc of @org.wikidata.country())"},
		{
			"index of sort",
			&IndexExpression{Expression: sorted, Indices: []Value{NewNumber(1)}},
			"sort(population desc of @org.wikidata.country())[1]",
		},
		{
			"index of filter",
			&IndexExpression{Expression: filtered, Indices: []Value{NewNumber(1)}},
			"(@org.wikidata.country() filter population >= 1000000)[1]",
		},
		{
			"slice",
			&SliceExpression{Expression: sorted, Base: NewNumber(2), Limit: NewNumber(3)},
			"sort(population desc of @org.wikidata.country())[2 : 3]",
		},
		{"count rows", &AggregationExpression{Expression: filtered, Field: "*", Operator: "count"}, "count(@org.wikidata.country() filter population >= 1000000)"},
		{"max field", &AggregationExpression{Expression: base, Field: "population", Operator: "max"}, "max(population of @org.wikidata.country())"},
		{
			"boolean question",
			&BooleanQuestionExpression{
				Expression: &AggregationExpression{Expression: filtered, Field: "*", Operator: "count"},
				Question:   &AtomBooleanExpression{Name: "count", Operator: ">=", Value: NewNumber(1)},
			},
			"[count >= 1] of count(@org.wikidata.country() filter population >= 1000000)",
		},
		{
			"filter over sort",
			&FilterExpression{Expression: sorted, Filter: pop},
			"(sort(population desc of @org.wikidata.country())) filter population >= 1000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpressionString(tt.expr))
		})
	}
}

func TestPrint_Program(t *testing.T) {
	program := MakeProgram(&ProjectionExpression{
		Expression: BaseQuery("country"),
		Elements:   []ProjectionElement{{Value: NewVarRef("capital")}},
	})
	assert.Equal(t, "[capital] of @org.wikidata.country();", Print(program))
	assert.Equal(t, Print(program), program.String())
}
