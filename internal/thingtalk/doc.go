// Package thingtalk defines the ThingTalk query tree produced by the
// converter, together with its printer and a tree-level optimiser.
//
// The tree is plain data. Nothing here executes a query; the printed form is
// what a virtual-assistant runtime would parse.
//
// SEALED INTERFACES:
//
// Type, Value, BooleanExpression and Expression are sealed with marker
// methods so that the printer, the optimiser and the helpers can dispatch with
// exhaustive type switches:
//
//	Type               *EntityType, *EnumType, *MeasureType, NumberType,
//	                   StringType, DateType, BooleanType, *ArrayType,
//	                   *CompoundType
//	Value              *EntityValue, *NumberValue, *StringValue,
//	                   *BooleanValue, *DateValue, *MeasureValue, *EnumValue,
//	                   *NullValue, *VarRef, *FilterValue, *ArrayFieldValue,
//	                   *ComputationValue, PropertyPath
//	BooleanExpression  *TrueBooleanExpression, *FalseBooleanExpression,
//	                   *AtomBooleanExpression, *AndBooleanExpression,
//	                   *OrBooleanExpression, *NotBooleanExpression,
//	                   *ComputeBooleanExpression,
//	                   *ComparisonSubqueryBooleanExpression,
//	                   *PropertyPathBooleanExpression
//	Expression         *InvocationExpression, *FilterExpression,
//	                   *ProjectionExpression, *SortExpression,
//	                   *IndexExpression, *SliceExpression,
//	                   *AggregationExpression, *BooleanQuestionExpression,
//	                   *ChainExpression
//
// PRINTED FORM:
//
//	[population] of sort(area desc of @org.wikidata.country()
//	    filter contains(official_language, "Q1860"^^org.wikidata:language("english")))[1];
//
// Entity values print as "<id>"^^<type>("<display>"), dates as
// new Date(y, m, d), measures as <number><unit>. Infix operators are
// ==, >=, <=, =~ and !=; contains, contains~, in_array and in_array~
// print in call form.
package thingtalk
