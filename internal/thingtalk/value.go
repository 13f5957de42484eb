package thingtalk

// Value is a constant or a reference appearing in a filter, a projection or
// a computation.
//
// This is a sealed interface - only types in this package implement it.
type Value interface {
	valueNode()
}

// EntityValue is a knowledge-base entity. Type is the qualified entity type
// (org.wikidata:country); Display is empty when no display was resolved.
type EntityValue struct {
	ID      string
	Type    string
	Display string
}

// NumberValue is a plain number.
type NumberValue struct {
	Value float64
}

// StringValue is a free-text string.
type StringValue struct {
	Value string
}

// BooleanValue is true or false.
type BooleanValue struct {
	Value bool
}

// DateValue is a calendar date. Month and Day are zero when only the year is
// known.
type DateValue struct {
	Year  int
	Month int
	Day   int
}

// MeasureValue is a number with a unit, e.g. 5m.
type MeasureValue struct {
	Value float64
	Unit  string
}

// EnumValue is a member of an enum type.
type EnumValue struct {
	Value string
}

// NullValue is the absent value, used in "is null" checks.
type NullValue struct{}

// VarRef names a field of the enclosing table, including dotted
// property.qualifier fields.
type VarRef struct {
	Name string
}

// FilterValue is the statements of an array property restricted by a
// filter over their qualifiers: (member_of filter start_time >= ...).
type FilterValue struct {
	Value  Value
	Filter BooleanExpression
}

// ArrayFieldValue selects one qualifier field of each element of an array
// value: start_time of (position_held filter ...).
type ArrayFieldValue struct {
	Value Value
	Field string
}

// ComputationValue applies an operator such as count or max to operands.
type ComputationValue struct {
	Op       string
	Operands []Value
}

// PathQuantifier is the repetition modifier of a property path element.
type PathQuantifier string

const (
	QuantifierNone       PathQuantifier = ""
	QuantifierZeroOrMore PathQuantifier = "*"
	QuantifierOneOrMore  PathQuantifier = "+"
)

// PathElement is one hop of a property path.
type PathElement struct {
	Property   string
	Quantifier PathQuantifier
}

// PropertyPath is a sequence of property hops such as <located_in/country>.
type PropertyPath []PathElement

func (*EntityValue) valueNode()      {}
func (*NumberValue) valueNode()      {}
func (*StringValue) valueNode()      {}
func (*BooleanValue) valueNode()     {}
func (*DateValue) valueNode()        {}
func (*MeasureValue) valueNode()     {}
func (*EnumValue) valueNode()        {}
func (*NullValue) valueNode()        {}
func (*VarRef) valueNode()           {}
func (*FilterValue) valueNode()      {}
func (*ArrayFieldValue) valueNode()  {}
func (*ComputationValue) valueNode() {}
func (PropertyPath) valueNode()      {}

// NewVarRef returns a reference to the named field.
func NewVarRef(name string) *VarRef {
	return &VarRef{Name: name}
}

// NewNumber returns a number value.
func NewNumber(n float64) *NumberValue {
	return &NumberValue{Value: n}
}

// LastProperty returns the property of the final hop.
func (p PropertyPath) LastProperty() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1].Property
}
