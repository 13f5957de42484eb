package sparql

import (
	"fmt"
	"strings"
)

// Term is a node that can appear in the subject or object of a triple.
//
// This is a sealed interface. Implementations: IRI, Variable, Literal,
// BlankNode.
type Term interface {
	term()
	String() string
}

// Predicate is the verb of a triple: an IRI, a variable or a property path.
type Predicate interface {
	predicate()
	String() string
}

// Pattern is one element of a group graph pattern.
type Pattern interface {
	pattern()
}

// Expression is a node of a FILTER, HAVING, ORDER BY or projection
// expression.
type Expression interface {
	expression()
}

// IRI is an absolute IRI. Prefixed names are expanded by the parser.
type IRI struct {
	Value string
}

func (IRI) term()       {}
func (IRI) predicate()  {}
func (IRI) expression() {}

func (i IRI) String() string { return "<" + i.Value + ">" }

// Variable is a query variable. Name excludes the leading ? or $.
type Variable struct {
	Name string
}

func (Variable) term()       {}
func (Variable) predicate()  {}
func (Variable) expression() {}

func (v Variable) String() string { return "?" + v.Name }

// Literal is an RDF literal. Numeric and boolean literals carry their XSD
// datatype; plain strings have neither Language nor Datatype.
type Literal struct {
	Value    string
	Language string
	Datatype string
}

func (Literal) term()       {}
func (Literal) expression() {}

func (l Literal) String() string {
	switch {
	case l.Language != "":
		return fmt.Sprintf("%q@%s", l.Value, l.Language)
	case l.Datatype != "":
		return fmt.Sprintf("%q^^<%s>", l.Value, l.Datatype)
	default:
		return fmt.Sprintf("%q", l.Value)
	}
}

// BlankNode is a labelled blank node (_:b0).
type BlankNode struct {
	Label string
}

func (BlankNode) term() {}

func (b BlankNode) String() string { return "_:" + b.Label }

// PathType is the operator of a property path node.
type PathType string

const (
	PathSequence    PathType = "/"
	PathAlternative PathType = "|"
	PathInverse     PathType = "^"
	PathZeroOrMore  PathType = "*"
	PathOneOrMore   PathType = "+"
	PathZeroOrOne   PathType = "?"
)

// Path is a property path. Sequence and alternative paths hold two or more
// items; unary paths (inverse, *, +, ?) hold exactly one.
type Path struct {
	Type  PathType
	Items []Predicate
}

func (*Path) predicate() {}

func (p *Path) String() string {
	switch p.Type {
	case PathSequence, PathAlternative:
		parts := make([]string, len(p.Items))
		for i, item := range p.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, string(p.Type)) + ")"
	case PathInverse:
		return "^" + p.Items[0].String()
	default:
		return p.Items[0].String() + string(p.Type)
	}
}

// Triple is one subject-predicate-object clause.
type Triple struct {
	Subject   Term
	Predicate Predicate
	Object    Term
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s", t.Subject, t.Predicate, t.Object)
}

// BGP is a basic graph pattern: a conjunction of triples.
type BGP struct {
	Triples []Triple
}

// Filter is a FILTER constraint.
type Filter struct {
	Expression Expression
}

// Union holds the branches of a UNION. A branch that held a single pattern
// is that pattern; longer branches are *Group.
type Union struct {
	Patterns []Pattern
}

// Group is a nested group graph pattern.
type Group struct {
	Patterns []Pattern
}

// Optional is an OPTIONAL block.
type Optional struct {
	Patterns []Pattern
}

// Minus is a MINUS block.
type Minus struct {
	Patterns []Pattern
}

// Service is a SERVICE block, typically the Wikidata label service.
type Service struct {
	Name     Term
	Silent   bool
	Patterns []Pattern
}

// Bind is BIND(expression AS ?variable).
type Bind struct {
	Expression Expression
	Variable   Variable
}

func (*BGP) pattern()      {}
func (*Filter) pattern()   {}
func (*Union) pattern()    {}
func (*Group) pattern()    {}
func (*Optional) pattern() {}
func (*Minus) pattern()    {}
func (*Service) pattern()  {}
func (*Bind) pattern()     {}

// Operation is an operator or built-in call. Infix and prefix operators keep
// their symbol ("=", "<", "&&", "!"); built-in functions use their lower-case
// name ("bound", "regex", "lang").
type Operation struct {
	Operator string
	Args     []Expression
}

// Aggregate is an aggregate call such as COUNT(DISTINCT ?x). Star is set for
// COUNT(*), in which case Expression is nil.
type Aggregate struct {
	Name       string
	Distinct   bool
	Star       bool
	Expression Expression
	Separator  string
}

// Exists is [NOT] EXISTS { ... }.
type Exists struct {
	Negated  bool
	Patterns []Pattern
}

func (*Operation) expression() {}
func (*Aggregate) expression() {}
func (*Exists) expression()    {}

// QueryType distinguishes selection from verification queries.
type QueryType string

const (
	QuerySelect QueryType = "SELECT"
	QueryAsk    QueryType = "ASK"
)

// SelectItem is one entry of the SELECT clause: either a plain variable
// (Expression nil) or (Expression AS ?Variable).
type SelectItem struct {
	Variable   Variable
	Expression Expression
}

// Ordering is one ORDER BY key.
type Ordering struct {
	Expression Expression
	Descending bool
}

// Query is a parsed SELECT or ASK query.
type Query struct {
	Type     QueryType
	Prefixes map[string]string
	Base     string

	Distinct  bool
	Reduced   bool
	Star      bool
	Variables []SelectItem

	Where   []Pattern
	GroupBy []Expression
	Having  []Expression
	OrderBy []Ordering

	// Limit is 0 when the query has no LIMIT.
	Limit  int
	Offset int
}

// IsSelect reports whether q is a SELECT query.
func (q *Query) IsSelect() bool { return q.Type == QuerySelect }

// IsAsk reports whether q is an ASK query.
func (q *Query) IsAsk() bool { return q.Type == QueryAsk }

// Value returns the lexical value of a term: the IRI, the variable name, the
// literal text or the blank node label.
func Value(t Term) string {
	switch v := t.(type) {
	case IRI:
		return v.Value
	case Variable:
		return v.Name
	case Literal:
		return v.Value
	case BlankNode:
		return v.Label
	default:
		return ""
	}
}
