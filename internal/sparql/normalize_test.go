package sparql

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parentResolver(pids []string) (string, bool) {
	covered := map[string]bool{"P22": true, "P25": true}
	for _, pid := range pids {
		if !covered[pid] {
			return "", false
		}
	}
	return "P8810", true
}

func firstPredicate(t *testing.T, query string) Predicate {
	t.Helper()
	q, err := Parse(query)
	require.NoError(t, err)
	return q.Where[0].(*BGP).Triples[0].Predicate
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Predicate
	}{
		{
			name:  "instance of subclass closure",
			query: `ASK { ?x wdt:P31/wdt:P279* wd:Q515 }`,
			want:  wdt("P31"),
		},
		{
			name:  "located in closure",
			query: `ASK { ?x wdt:P131+ wd:Q30 }`,
			want:  wdt("P131"),
		},
		{
			name:  "abstract alternative",
			query: `ASK { wd:Q76 wdt:P22|wdt:P25 ?x }`,
			want:  wdt("P8810"),
		},
		{
			name:  "abstract alternative keeps namespace",
			query: `ASK { wd:Q76 p:P22|p:P25 ?x }`,
			want:  IRI{Value: PredicatePrefix + "P8810"},
		},
		{
			name:  "uncovered alternative unchanged",
			query: `ASK { wd:Q76 wdt:P22|wdt:P40 ?x }`,
			want:  &Path{Type: PathAlternative, Items: []Predicate{wdt("P22"), wdt("P40")}},
		},
		{
			name:  "sequence items normalised",
			query: `ASK { ?x wdt:P19/wdt:P131+ wd:Q30 }`,
			want:  &Path{Type: PathSequence, Items: []Predicate{wdt("P19"), wdt("P131")}},
		},
		{
			name:  "plain iri unchanged",
			query: `ASK { ?x wdt:P36 ?y }`,
			want:  wdt("P36"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePath(firstPredicate(t, tt.query), parentResolver)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("normalised path mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizePath_DoesNotMutateInput(t *testing.T) {
	original := firstPredicate(t, `ASK { ?x wdt:P19/wdt:P131+ wd:Q30 }`)
	NormalizePath(original, nil)

	path := original.(*Path)
	assert.Equal(t, PathOneOrMore, path.Items[1].(*Path).Type)
}

func TestSpecialUnion(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Triple
		ok    bool
	}{
		{
			name: "us states with district",
			query: `ASK { { ?x wdt:P31/wdt:P279* wd:Q107390 } UNION
			             { ?x wdt:P31/wdt:P279* wd:Q475050 } }`,
			want: Triple{Subject: v("x"), Predicate: wdt("P31"), Object: wd("Q35657")},
			ok:   true,
		},
		{
			name:  "country widening",
			query: `ASK { { ?x wdt:P27 wd:Q30 } UNION { ?x wdt:P27/wdt:P17 wd:Q30 } }`,
			want:  Triple{Subject: v("x"), Predicate: wdt("P27"), Object: wd("Q30")},
			ok:    true,
		},
		{
			name:  "instance of widening",
			query: `ASK { { ?x wdt:P31 ?c } UNION { ?x wdt:P31/wdt:P279* ?c } }`,
			want:  Triple{Subject: v("x"), Predicate: wdt("P31"), Object: v("c")},
			ok:    true,
		},
		{
			name:  "different subjects",
			query: `ASK { { ?x wdt:P27 wd:Q30 } UNION { ?y wdt:P27/wdt:P17 wd:Q30 } }`,
		},
		{
			name:  "ordinary union",
			query: `ASK { { ?x wdt:P31 wd:Q5 } UNION { ?x wdt:P31 wd:Q515 } }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.query)
			require.NoError(t, err)
			union, ok := q.Where[0].(*Union)
			require.True(t, ok)

			got, ok := SpecialUnion(union)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("triple mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestIsInstanceOf(t *testing.T) {
	assert.True(t, IsInstanceOf(Triple{Subject: v("x"), Predicate: wdt("P31"), Object: wd("Q5")}))
	assert.True(t, IsInstanceOf(Triple{
		Subject: v("x"),
		Predicate: &Path{Type: PathSequence, Items: []Predicate{
			wdt("P31"),
			&Path{Type: PathZeroOrMore, Items: []Predicate{wdt("P279")}},
		}},
		Object: wd("Q5"),
	}))
	assert.False(t, IsInstanceOf(Triple{Subject: v("x"), Predicate: wdt("P279"), Object: wd("Q5")}))
}
