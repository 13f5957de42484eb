package thingtalk

import (
	"fmt"
	"strings"
)

// Type is the declared type of a property or value.
//
// This is a sealed interface - only types in this package implement it.
type Type interface {
	typeNode()
	String() string
}

// EntityType is Entity(<name>), e.g. Entity(org.wikidata:country).
type EntityType struct {
	Name string
}

// EnumType is Enum(a,b,...). An empty value list accepts any enum.
type EnumType struct {
	Values []string
}

// MeasureType is Measure(<unit>) with the base unit of its dimension.
type MeasureType struct {
	Unit string
}

// NumberType is Number.
type NumberType struct{}

// StringType is String.
type StringType struct{}

// DateType is Date.
type DateType struct{}

// BooleanType is Boolean.
type BooleanType struct{}

// ArrayType is Array(<elem>).
type ArrayType struct {
	Elem Type
}

// CompoundType is a statement with qualifiers. The main value of the
// statement lives in the "value" field.
type CompoundType struct {
	Fields map[string]Type
}

func (*EntityType) typeNode()   {}
func (*EnumType) typeNode()     {}
func (*MeasureType) typeNode()  {}
func (NumberType) typeNode()    {}
func (StringType) typeNode()    {}
func (DateType) typeNode()      {}
func (BooleanType) typeNode()   {}
func (*ArrayType) typeNode()    {}
func (*CompoundType) typeNode() {}

func (t *EntityType) String() string { return "Entity(" + t.Name + ")" }
func (t *EnumType) String() string   { return "Enum(" + strings.Join(t.Values, ",") + ")" }
func (t *MeasureType) String() string {
	return "Measure(" + t.Unit + ")"
}
func (NumberType) String() string    { return "Number" }
func (StringType) String() string    { return "String" }
func (DateType) String() string      { return "Date" }
func (BooleanType) String() string   { return "Boolean" }
func (t *ArrayType) String() string  { return "Array(" + t.Elem.String() + ")" }
func (t *CompoundType) String() string {
	return "Compound"
}

// CompoundValueField is the field of a compound type holding the statement
// value.
const CompoundValueField = "value"

// ParseType parses the textual form of a non-compound type.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "Number":
		return NumberType{}, nil
	case "String":
		return StringType{}, nil
	case "Date":
		return DateType{}, nil
	case "Boolean":
		return BooleanType{}, nil
	}

	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("unknown type %q", s)
	}
	head, arg := s[:open], strings.TrimSpace(s[open+1:len(s)-1])

	switch head {
	case "Entity":
		if arg == "" {
			return nil, fmt.Errorf("entity type %q has no name", s)
		}
		return &EntityType{Name: arg}, nil
	case "Enum":
		var values []string
		for _, v := range strings.Split(arg, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		return &EnumType{Values: values}, nil
	case "Measure":
		if arg == "" {
			return nil, fmt.Errorf("measure type %q has no unit", s)
		}
		return &MeasureType{Unit: arg}, nil
	case "Array":
		elem, err := ParseType(arg)
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		return &ArrayType{Elem: elem}, nil
	default:
		return nil, fmt.Errorf("unknown type %q", s)
	}
}

// IsArray reports whether t is an array type.
func IsArray(t Type) bool {
	_, ok := t.(*ArrayType)
	return ok
}

// ElemType returns the element type of an array, or t itself.
func ElemType(t Type) Type {
	if arr, ok := t.(*ArrayType); ok {
		return arr.Elem
	}
	return t
}

// ValueType returns the type a constant compared against t must have: the
// element of an array, the "value" field of a compound.
func ValueType(t Type) Type {
	t = ElemType(t)
	if compound, ok := t.(*CompoundType); ok {
		if v, ok := compound.Fields[CompoundValueField]; ok {
			return ValueType(v)
		}
	}
	return t
}
