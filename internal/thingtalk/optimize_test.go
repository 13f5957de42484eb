package thingtalk

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func atom(name string, n float64) *AtomBooleanExpression {
	return &AtomBooleanExpression{Name: name, Operator: "==", Value: NewNumber(n)}
}

func TestOptimizeBoolean(t *testing.T) {
	a, b, c := atom("a", 1), atom("b", 2), atom("c", 3)

	tests := []struct {
		name  string
		input BooleanExpression
		want  BooleanExpression
	}{
		{"flatten and", NewAnd(a, NewAnd(b, c)), &AndBooleanExpression{Operands: []BooleanExpression{a, b, c}}},
		{"flatten or", NewOr(NewOr(a, b), c), &OrBooleanExpression{Operands: []BooleanExpression{a, b, c}}},
		{"single operand", &AndBooleanExpression{Operands: []BooleanExpression{a}}, a},
		{"drop true", NewAnd(True, a), a},
		{"only true", NewAnd(True, True), True},
		{"false absorbs and", NewAnd(a, False), False},
		{"true absorbs or", NewOr(a, True), True},
		{"drop false from or", NewOr(False, a, b), &OrBooleanExpression{Operands: []BooleanExpression{a, b}}},
		{"double negation", NewNot(NewNot(a)), a},
		{"not true", NewNot(True), False},
		{"nested in not", NewNot(NewAnd(a, True)), NewNot(a)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OptimizeBoolean(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("optimised mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptimizeExpression(t *testing.T) {
	base := BaseQuery("country")
	a, b := atom("a", 1), atom("b", 2)

	t.Run("true filter removed", func(t *testing.T) {
		got := OptimizeExpression(&FilterExpression{Expression: base, Filter: NewAnd(True, True)})
		assert.Equal(t, base, got)
	})

	t.Run("stacked filters merged", func(t *testing.T) {
		got := OptimizeExpression(&FilterExpression{
			Expression: &FilterExpression{Expression: base, Filter: a},
			Filter:     b,
		})
		want := &FilterExpression{Expression: base, Filter: &AndBooleanExpression{Operands: []BooleanExpression{a, b}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("subquery optimised", func(t *testing.T) {
		got := OptimizeExpression(&FilterExpression{
			Expression: base,
			Filter: &ComparisonSubqueryBooleanExpression{
				LHS:      NewVarRef("capital"),
				Operator: "==",
				RHS:      &FilterExpression{Expression: BaseQuery("city"), Filter: NewAnd(a, True)},
			},
		})
		assert.Equal(t,
			"@org.wikidata.country() filter capital == any(@org.wikidata.city() filter a == 1)",
			ExpressionString(got))
	})

	t.Run("filter value without constraints collapses", func(t *testing.T) {
		got := OptimizeExpression(&ProjectionExpression{
			Expression: base,
			Elements: []ProjectionElement{{Value: &ArrayFieldValue{
				Value: &FilterValue{Value: NewVarRef("member_of"), Filter: True},
				Field: "start_time",
			}}},
		})
		assert.Equal(t, "[start_time of member_of] of @org.wikidata.country()", ExpressionString(got))
	})
}

func TestOptimize_Program(t *testing.T) {
	program := MakeProgram(&ProjectionExpression{
		Expression: &FilterExpression{Expression: BaseQuery("country"), Filter: NewAnd(NewNot(NewNot(atom("a", 1))))},
		Elements:   []ProjectionElement{{Value: NewVarRef("capital")}},
	})
	Optimize(program)
	assert.Equal(t, "[capital] of @org.wikidata.country() filter a == 1;", Print(program))
}
