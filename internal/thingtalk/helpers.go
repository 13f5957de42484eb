package thingtalk

// IDField is the identity field of every table.
const IDField = "id"

// InstanceOfField is the class-membership field of every table.
const InstanceOfField = "instance_of"

// IsIDFilter reports whether b pins the table to one entity: id == <entity>.
func IsIDFilter(b BooleanExpression) bool {
	atom, ok := b.(*AtomBooleanExpression)
	if !ok || atom.Name != IDField || atom.Operator != "==" {
		return false
	}
	_, isEntity := atom.Value.(*EntityValue)
	return isEntity
}

// PropertiesInFilter lists the fields b constrains directly: atom names, the
// first hop of property paths and the left side of subquery comparisons.
// Computed comparisons are not included.
func PropertiesInFilter(b BooleanExpression) []string {
	var names []string
	var walk func(BooleanExpression)
	walk = func(b BooleanExpression) {
		switch expr := b.(type) {
		case *AtomBooleanExpression:
			names = append(names, expr.Name)
		case *AndBooleanExpression:
			for _, op := range expr.Operands {
				walk(op)
			}
		case *OrBooleanExpression:
			for _, op := range expr.Operands {
				walk(op)
			}
		case *NotBooleanExpression:
			walk(expr.Expression)
		case *PropertyPathBooleanExpression:
			if len(expr.Path) > 0 {
				names = append(names, expr.Path[0].Property)
			}
		case *ComparisonSubqueryBooleanExpression:
			if ref, ok := expr.LHS.(*VarRef); ok {
				names = append(names, ref.Name)
			}
		}
	}
	walk(b)
	return names
}

// InstanceOfFilter returns the instance_of atom of filters, if any.
func InstanceOfFilter(filters []BooleanExpression) (*AtomBooleanExpression, bool) {
	for _, f := range filters {
		if atom, ok := f.(*AtomBooleanExpression); ok && atom.Name == InstanceOfField {
			return atom, true
		}
	}
	return nil, false
}

// ReferencesField reports whether b compares field directly, as an atom, a
// computation over it or a subquery comparison.
func ReferencesField(b BooleanExpression, field string) bool {
	switch expr := b.(type) {
	case *AtomBooleanExpression:
		return expr.Name == field
	case *ComputeBooleanExpression:
		ref, ok := expr.LHS.(*VarRef)
		return ok && ref.Name == field
	case *ComparisonSubqueryBooleanExpression:
		ref, ok := expr.LHS.(*VarRef)
		return ok && ref.Name == field
	}
	return false
}
