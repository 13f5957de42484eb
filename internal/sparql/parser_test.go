package sparql

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wdt(pid string) IRI { return IRI{Value: PropertyPrefix + pid} }
func wd(qid string) IRI  { return IRI{Value: EntityPrefix + qid} }
func v(name string) Variable {
	return Variable{Name: name}
}
func integer(n string) Literal { return Literal{Value: n, Datatype: XSDInteger} }

func TestParse_SelectWithFilterOrderLimit(t *testing.T) {
	query, err := Parse(`
		SELECT DISTINCT ?x WHERE {
			?x wdt:P31 wd:Q6256 ;
			   wdt:P1082 ?p .
			FILTER(?p > 1000000)
		} ORDER BY DESC(?p) LIMIT 1`)
	require.NoError(t, err)

	assert.True(t, query.IsSelect())
	assert.True(t, query.Distinct)
	assert.Equal(t, []SelectItem{{Variable: v("x")}}, query.Variables)
	assert.Equal(t, 1, query.Limit)

	want := []Pattern{
		&BGP{Triples: []Triple{
			{Subject: v("x"), Predicate: wdt("P31"), Object: wd("Q6256")},
			{Subject: v("x"), Predicate: wdt("P1082"), Object: v("p")},
		}},
		&Filter{Expression: &Operation{Operator: ">", Args: []Expression{v("p"), integer("1000000")}}},
	}
	if diff := cmp.Diff(want, query.Where); diff != "" {
		t.Errorf("where mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Ordering{{Expression: v("p"), Descending: true}}, query.OrderBy)
}

func TestParse_Ask(t *testing.T) {
	query, err := Parse(`ASK WHERE { wd:Q30 wdt:P36 wd:Q61 }`)
	require.NoError(t, err)

	assert.True(t, query.IsAsk())
	require.Len(t, query.Where, 1)
	bgp, ok := query.Where[0].(*BGP)
	require.True(t, ok)
	assert.Equal(t, []Triple{{Subject: wd("Q30"), Predicate: wdt("P36"), Object: wd("Q61")}}, bgp.Triples)
}

func TestParse_PrefixDeclarations(t *testing.T) {
	query, err := Parse(`
		PREFIX ex: <http://example.org/>
		BASE <http://base.org/>
		SELECT ?x WHERE { ?x ex:knows <bob> . }`)
	require.NoError(t, err)

	bgp := query.Where[0].(*BGP)
	assert.Equal(t, IRI{Value: "http://example.org/knows"}, bgp.Triples[0].Predicate)
	assert.Equal(t, IRI{Value: "http://base.org/bob"}, bgp.Triples[0].Object)
	assert.Equal(t, "http://example.org/", query.Prefixes["ex"])
	assert.Equal(t, EntityPrefix, query.Prefixes["wd"])
}

func TestParse_ObjectListAndTrailingDot(t *testing.T) {
	query, err := Parse(`SELECT ?x WHERE { ?x wdt:P31 wd:Q5, wd:Q515. }`)
	require.NoError(t, err)

	bgp := query.Where[0].(*BGP)
	assert.Equal(t, []Triple{
		{Subject: v("x"), Predicate: wdt("P31"), Object: wd("Q5")},
		{Subject: v("x"), Predicate: wdt("P31"), Object: wd("Q515")},
	}, bgp.Triples)
}

func TestParse_PropertyPaths(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Predicate
	}{
		{
			name:  "sequence with closure",
			query: `SELECT ?x WHERE { ?x wdt:P31/wdt:P279* wd:Q515 }`,
			want: &Path{Type: PathSequence, Items: []Predicate{
				wdt("P31"),
				&Path{Type: PathZeroOrMore, Items: []Predicate{wdt("P279")}},
			}},
		},
		{
			name:  "alternative",
			query: `SELECT ?x WHERE { wd:Q76 wdt:P22|wdt:P25 ?x }`,
			want:  &Path{Type: PathAlternative, Items: []Predicate{wdt("P22"), wdt("P25")}},
		},
		{
			name:  "one or more",
			query: `SELECT ?x WHERE { ?x wdt:P131+ wd:Q30 }`,
			want:  &Path{Type: PathOneOrMore, Items: []Predicate{wdt("P131")}},
		},
		{
			name:  "inverse",
			query: `SELECT ?x WHERE { ?x ^wdt:P36 wd:Q142 }`,
			want:  &Path{Type: PathInverse, Items: []Predicate{wdt("P36")}},
		},
		{
			name:  "grouped",
			query: `SELECT ?x WHERE { ?x ((wdt:P31*)/(wdt:P279*)) wd:Q294414 }`,
			want: &Path{Type: PathSequence, Items: []Predicate{
				&Path{Type: PathZeroOrMore, Items: []Predicate{wdt("P31")}},
				&Path{Type: PathZeroOrMore, Items: []Predicate{wdt("P279")}},
			}},
		},
		{
			name:  "rdf type shorthand",
			query: `SELECT ?x WHERE { ?x a wd:Q5 }`,
			want:  IRI{Value: TypeIRI},
		},
		{
			name:  "variable verb",
			query: `SELECT ?x WHERE { wd:Q30 ?p ?x }`,
			want:  v("p"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := Parse(tt.query)
			require.NoError(t, err)
			bgp := query.Where[0].(*BGP)
			if diff := cmp.Diff(tt.want, bgp.Triples[0].Predicate); diff != "" {
				t.Errorf("predicate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Union(t *testing.T) {
	query, err := Parse(`
		SELECT ?x WHERE {
			{ ?x wdt:P31 wd:Q5 }
			UNION
			{ ?x wdt:P31 wd:Q515 . ?x wdt:P17 wd:Q30 }
		}`)
	require.NoError(t, err)
	require.Len(t, query.Where, 1)

	union, ok := query.Where[0].(*Union)
	require.True(t, ok)
	require.Len(t, union.Patterns, 2)
	first := union.Patterns[0].(*BGP)
	second := union.Patterns[1].(*BGP)
	assert.Len(t, first.Triples, 1)
	assert.Len(t, second.Triples, 2)
}

func TestParse_StatementNodes(t *testing.T) {
	query, err := Parse(`
		SELECT ?x WHERE {
			wd:Q76 p:P39 ?s .
			?s ps:P39 wd:Q11696 ;
			   pq:P580 ?x .
		}`)
	require.NoError(t, err)

	triples := query.Where[0].(*BGP).Triples
	require.Len(t, triples, 3)
	assert.Equal(t, StatementEdge, ClassifyStatement(triples[0].Predicate))
	assert.Equal(t, StatementValue, ClassifyStatement(triples[1].Predicate))
	assert.Equal(t, StatementQualifier, ClassifyStatement(triples[2].Predicate))
	assert.Equal(t, NotStatement, ClassifyStatement(wdt("P39")))
	assert.Equal(t, "P580", StatementPropertyID(triples[2].Predicate.(IRI)))
}

func TestParse_Aggregates(t *testing.T) {
	query, err := Parse(`
		SELECT (COUNT(DISTINCT ?x) AS ?count) WHERE { ?x wdt:P31 wd:Q6256 }`)
	require.NoError(t, err)

	want := []SelectItem{{
		Variable:   v("count"),
		Expression: &Aggregate{Name: "count", Distinct: true, Expression: v("x")},
	}}
	if diff := cmp.Diff(want, query.Variables); diff != "" {
		t.Errorf("select mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_GroupByHaving(t *testing.T) {
	query, err := Parse(`
		SELECT ?x WHERE { ?x wdt:P166 ?award }
		GROUP BY ?x
		HAVING (COUNT(?award) > 2)`)
	require.NoError(t, err)

	assert.Equal(t, []Expression{v("x")}, query.GroupBy)
	want := []Expression{&Operation{Operator: ">", Args: []Expression{
		&Aggregate{Name: "count", Expression: v("award")},
		integer("2"),
	}}}
	if diff := cmp.Diff(want, query.Having); diff != "" {
		t.Errorf("having mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_OrderByPlainVariableAndOffset(t *testing.T) {
	query, err := Parse(`SELECT ?x WHERE { ?x wdt:P2046 ?y } ORDER BY ?y OFFSET 1 LIMIT 1`)
	require.NoError(t, err)

	assert.Equal(t, []Ordering{{Expression: v("y")}}, query.OrderBy)
	assert.Equal(t, 1, query.Offset)
	assert.Equal(t, 1, query.Limit)
}

func TestParse_FilterExpressions(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   Expression
	}{
		{
			name:   "precedence",
			filter: `FILTER(?a > 1 && ?a < 5 || ?b = wd:Q1)`,
			want: &Operation{Operator: "||", Args: []Expression{
				&Operation{Operator: "&&", Args: []Expression{
					&Operation{Operator: ">", Args: []Expression{v("a"), integer("1")}},
					&Operation{Operator: "<", Args: []Expression{v("a"), integer("5")}},
				}},
				&Operation{Operator: "=", Args: []Expression{v("b"), wd("Q1")}},
			}},
		},
		{
			name:   "negated bound",
			filter: `FILTER(!BOUND(?d))`,
			want: &Operation{Operator: "!", Args: []Expression{
				&Operation{Operator: "bound", Args: []Expression{v("d")}},
			}},
		},
		{
			name:   "nested builtins",
			filter: `FILTER(CONTAINS(LCASE(?l), "paris"))`,
			want: &Operation{Operator: "contains", Args: []Expression{
				&Operation{Operator: "lcase", Args: []Expression{v("l")}},
				Literal{Value: "paris"},
			}},
		},
		{
			name:   "builtin without brackets",
			filter: `FILTER regex(?l, "^Par", "i")`,
			want: &Operation{Operator: "regex", Args: []Expression{
				v("l"), Literal{Value: "^Par"}, Literal{Value: "i"},
			}},
		},
		{
			name:   "language tag",
			filter: `FILTER(LANG(?l) = "en")`,
			want: &Operation{Operator: "=", Args: []Expression{
				&Operation{Operator: "lang", Args: []Expression{v("l")}},
				Literal{Value: "en"},
			}},
		},
		{
			name:   "typed date",
			filter: `FILTER(?y >= "2002-01-01T00:00:00Z"^^xsd:dateTime)`,
			want: &Operation{Operator: ">=", Args: []Expression{
				v("y"), Literal{Value: "2002-01-01T00:00:00Z", Datatype: XSDDateTime},
			}},
		},
		{
			name:   "not equal to language string",
			filter: `FILTER(?l != "Paris"@fr)`,
			want: &Operation{Operator: "!=", Args: []Expression{
				v("l"), Literal{Value: "Paris", Language: "fr"},
			}},
		},
		{
			name:   "in list",
			filter: `FILTER(?x IN (wd:Q1, wd:Q2))`,
			want: &Operation{Operator: "in", Args: []Expression{
				v("x"), wd("Q1"), wd("Q2"),
			}},
		},
		{
			name:   "not exists",
			filter: `FILTER NOT EXISTS { ?s pq:P582 ?end }`,
			want: &Exists{Negated: true, Patterns: []Pattern{
				&BGP{Triples: []Triple{{
					Subject:   v("s"),
					Predicate: IRI{Value: QualifierPrefix + "P582"},
					Object:    v("end"),
				}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := Parse(`SELECT ?x WHERE { ?x wdt:P31 wd:Q5 . ` + tt.filter + ` }`)
			require.NoError(t, err)
			require.Len(t, query.Where, 2)
			filter, ok := query.Where[1].(*Filter)
			require.True(t, ok)
			if diff := cmp.Diff(tt.want, filter.Expression); diff != "" {
				t.Errorf("expression mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_ServiceAndOptional(t *testing.T) {
	query, err := Parse(`
		SELECT ?x ?xLabel WHERE {
			?x wdt:P31 wd:Q5 .
			OPTIONAL { ?x wdt:P569 ?dob }
			SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
		}`)
	require.NoError(t, err)
	require.Len(t, query.Where, 3)

	_, ok := query.Where[1].(*Optional)
	assert.True(t, ok)
	service, ok := query.Where[2].(*Service)
	require.True(t, ok)
	assert.Equal(t, IRI{Value: "http://wikiba.se/ontology#label"}, service.Name)
	assert.Len(t, query.Variables, 2)
}

func TestParse_Comments(t *testing.T) {
	query, err := Parse(`
		# countries
		SELECT ?x WHERE {
			?x wdt:P31 wd:Q6256 . # instance of country
		}`)
	require.NoError(t, err)
	assert.Len(t, query.Where, 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing object", `SELECT ?x WHERE { ?x wdt:P31 }`},
		{"unterminated group", `SELECT ?x WHERE { ?x wdt:P31 wd:Q5`},
		{"construct", `CONSTRUCT { ?x ?p ?o } WHERE { ?x ?p ?o }`},
		{"values block", `SELECT ?x WHERE { VALUES ?x { wd:Q1 } }`},
		{"undefined prefix", `SELECT ?x WHERE { ?x foo:bar wd:Q5 }`},
		{"negated property set", `SELECT ?x WHERE { ?x !wdt:P31 wd:Q5 }`},
		{"no projection", `SELECT WHERE { ?x wdt:P31 wd:Q5 }`},
		{"trailing input", `ASK { wd:Q30 wdt:P36 wd:Q61 } garbage`},
		{"unterminated string", `SELECT ?x WHERE { ?x rdfs:label "Paris }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr), "want *SyntaxError, got %T", err)
		})
	}
}

func TestIsEntityID(t *testing.T) {
	assert.True(t, IsEntityID("Q30"))
	assert.False(t, IsEntityID("P31"))
	assert.False(t, IsEntityID("Q"))
	assert.False(t, IsEntityID("country"))
}
