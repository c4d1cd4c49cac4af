// Package constraint implements value-comparison predicates and parameter
// binding for the query IR.
//
// A Constraint is attached to a property node and compares the property's
// value against zero, one or more operands. Operators fall into four
// non-overlapping arity classes:
//
//	NoValue      empty, notEmpty, distinct
//	SingleValue  eq, ne, gt, ge, lt, le, contains, ... like
//	MultiValue   inSet, notInSet, likeAny   (one or more operands)
//	TwoValue     inRange, notInRange, within (exactly two operands)
//
// The partition is authoritative: a Literal can only be built through New,
// which rejects an operand count outside the operator's class.
//
// SEALED INTERFACES:
//
// Constraint is sealed with a marker method. The variants are:
//   - Literal: operator plus inline operands
//   - Parameterized: operand supplied later through a NamedParameter
//   - JoinParameterized: Parameterized plus a join kind
//   - OptionalUnary: default operator plus the operators a caller may swap in
//   - InnerQuery: operand is a whole nested query graph
//   - WhereBy: operand is a tagged field of another node in the same graph
//
// Count operators (CountOp) are a smaller parallel set used for cardinality
// predicates; CountOp.ToOp maps each onto exactly one general operator.
package constraint
