package converter

import (
	"strings"

	"github.com/roach88/sparqltt/internal/schema"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

// labelSuffix marks a projection of the English label of a field.
const labelSuffix = "Label"

// Projection maps a query variable to what it reads from a table. Property
// is a *thingtalk.VarRef (a field, possibly dotted or with the Label
// suffix), a thingtalk.PropertyPath, a *thingtalk.FilterValue or a
// *thingtalk.ArrayFieldValue. Type is an optional domain hint.
type Projection struct {
	Property thingtalk.Value
	Variable string
	Type     string
}

// Field returns the field name of a plain projection.
func (p Projection) Field() (string, bool) {
	ref, ok := p.Property.(*thingtalk.VarRef)
	if !ok {
		return "", false
	}
	return ref.Name, true
}

// isLabel reports whether p projects the label of a field.
func (p Projection) isLabel() bool {
	field, ok := p.Field()
	return ok && strings.HasSuffix(field, labelSuffix)
}

// Table accumulates what the query says about one subject.
type Table struct {
	Subject     string
	Name        string
	Projections []Projection
	Filters     []thingtalk.BooleanExpression
}

func (t *Table) projection(variable string) (Projection, bool) {
	for _, p := range t.Projections {
		if p.Variable == variable {
			return p, true
		}
	}
	return Projection{}, false
}

func (t *Table) projects(variable string) bool {
	_, ok := t.projection(variable)
	return ok
}

func (t *Table) hasIDFilter() bool {
	for _, f := range t.Filters {
		if thingtalk.IsIDFilter(f) {
			return true
		}
	}
	return false
}

// Comparison is a constraint between variables of two tables, resolved into
// a subquery when the query is assembled.
type Comparison struct {
	LHS      string
	Operator string
	RHS      string
}

// registry holds the tables of one conversion in insertion order.
type registry struct {
	schema      SchemaIndex
	order       []string
	tables      map[string]*Table
	comparisons []Comparison
}

func newRegistry(s SchemaIndex) *registry {
	return &registry{schema: s, tables: make(map[string]*Table)}
}

// table returns the table of subject, creating it on first reference.
func (r *registry) table(subject string) *Table {
	if t, ok := r.tables[subject]; ok {
		return t
	}
	t := &Table{Subject: subject, Name: schema.GenericDomain}
	r.tables[subject] = t
	r.order = append(r.order, subject)
	return t
}

func (r *registry) get(subject string) (*Table, bool) {
	t, ok := r.tables[subject]
	return t, ok
}

func (r *registry) has(subject string) bool {
	_, ok := r.tables[subject]
	return ok
}

// setDomain narrows subject to the domain of class qid. A class the schema
// has no domain for is kept as a QID and resolved during preprocessing.
func (r *registry) setDomain(subject, qid string) {
	t := r.table(subject)
	if name, ok := r.schema.Table(qid); ok {
		t.Name = name
		return
	}
	t.Name = qid
}

func (r *registry) addFilter(subject string, filters ...thingtalk.BooleanExpression) {
	t := r.table(subject)
	t.Filters = append(t.Filters, filters...)
}

func (r *registry) addProjection(subject string, p Projection) {
	t := r.table(subject)
	t.Projections = append(t.Projections, p)
}

func (r *registry) remove(subject string) {
	if _, ok := r.tables[subject]; !ok {
		return
	}
	delete(r.tables, subject)
	for i, s := range r.order {
		if s == subject {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// removeProjection removes the first projection of variable from subject.
func (r *registry) removeProjection(subject, variable string) {
	t, ok := r.tables[subject]
	if !ok {
		return
	}
	for i, p := range t.Projections {
		if p.Variable == variable {
			t.Projections = append(t.Projections[:i], t.Projections[i+1:]...)
			return
		}
	}
}

// all returns the tables in insertion order.
func (r *registry) all() []*Table {
	out := make([]*Table, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, r.tables[s])
	}
	return out
}

func (r *registry) len() int {
	return len(r.order)
}

// owner returns the first table projecting variable.
func (r *registry) owner(variable string) (*Table, Projection, bool) {
	for _, t := range r.all() {
		if p, ok := t.projection(variable); ok {
			return t, p, true
		}
	}
	return nil, Projection{}, false
}

func (r *registry) addComparison(c Comparison) {
	r.comparisons = append(r.comparisons, c)
}

// subjectFilters collects filters per subject, keeping first-seen subject
// order. Filters are applied to the registry once a clause group is parsed.
type subjectFilters struct {
	order   []string
	filters map[string][]thingtalk.BooleanExpression
}

func newSubjectFilters() *subjectFilters {
	return &subjectFilters{filters: make(map[string][]thingtalk.BooleanExpression)}
}

func (s *subjectFilters) add(subject string, filters ...thingtalk.BooleanExpression) {
	if _, ok := s.filters[subject]; !ok {
		s.order = append(s.order, subject)
		s.filters[subject] = nil
	}
	s.filters[subject] = append(s.filters[subject], filters...)
}

func (s *subjectFilters) merge(other *subjectFilters) {
	for _, subject := range other.order {
		s.add(subject, other.filters[subject]...)
	}
}

func (s *subjectFilters) subjects() []string {
	return s.order
}

func (s *subjectFilters) get(subject string) []thingtalk.BooleanExpression {
	return s.filters[subject]
}

// apply adds every collected filter to its table.
func (s *subjectFilters) apply(r *registry) {
	for _, subject := range s.order {
		if fs := s.filters[subject]; len(fs) > 0 {
			r.addFilter(subject, fs...)
		}
	}
}
