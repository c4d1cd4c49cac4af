package constraint

import (
	"fmt"
	"strings"

	"github.com/roach88/ontoql/internal/ir"
)

// Constraint is a predicate attached to a property node.
//
// This is a sealed interface - only types in this package implement it.
type Constraint interface {
	Operator() Op
	constraintNode()
}

// Subquery is the nested graph an InnerQuery compares against.
// The query IR's finalized graph type satisfies it.
type Subquery interface {
	QueryName() string
}

// Literal is an operator with inline operand values.
type Literal struct {
	Op       Op
	Operands []ir.IRValue
}

func (Literal) constraintNode() {}

// Operator implements Constraint.
func (l Literal) Operator() Op { return l.Op }

// New builds a Literal after checking the operand count against op's arity.
func New(op Op, operands ...ir.IRValue) (Literal, error) {
	if err := CheckArity(op, len(operands)); err != nil {
		return Literal{}, err
	}
	return Literal{Op: op, Operands: operands}, nil
}

// MustNew is like New but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustNew(op Op, operands ...ir.IRValue) Literal {
	l, err := New(op, operands...)
	if err != nil {
		panic(err)
	}
	return l
}

// FromExpression builds a Literal from a single expression value. An IRArray
// expression supplies one operand per element; a nil expression supplies
// none.
func FromExpression(op Op, expr ir.IRValue) (Literal, error) {
	return New(op, Operands(expr)...)
}

// Operands flattens an expression into an operand list.
func Operands(expr ir.IRValue) []ir.IRValue {
	switch v := expr.(type) {
	case nil:
		return nil
	case ir.IRArray:
		return []ir.IRValue(v)
	default:
		return []ir.IRValue{v}
	}
}

// CheckArity returns an *ArityError when n operands do not fit op.
func CheckArity(op Op, n int) error {
	arity := op.Arity()
	if arity == ArityUnknown {
		return &ArityError{Op: op, Got: n, Message: fmt.Sprintf("unknown operator %q", string(op))}
	}
	if !arity.Accepts(n) {
		return &ArityError{Op: op, Arity: arity, Got: n}
	}
	return nil
}

// ArityError reports an operand count outside the operator's class.
type ArityError struct {
	Op      Op
	Arity   Arity
	Got     int
	Message string
}

func (e *ArityError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("operator %q is %s but got %d operand(s)", string(e.Op), e.Arity, e.Got)
}

// InnerQuery compares against a value projected from a nested query graph.
type InnerQuery struct {
	Op             Op
	Query          Subquery
	TagEntity      string
	ProjectedField string
	Join           JoinType
}

func (InnerQuery) constraintNode() {}

// Operator implements Constraint.
func (q InnerQuery) Operator() Op { return q.Op }

// NewInnerQuery builds an InnerQuery with the operator's default join kind.
func NewInnerQuery(op Op, query Subquery, tagEntity, projectedField string) InnerQuery {
	return InnerQuery{Op: op, Query: query, TagEntity: tagEntity, ProjectedField: projectedField, Join: DefaultJoin(op)}
}

// WhereBy compares against a tagged field of another node in the same graph.
type WhereBy struct {
	Op             Op
	TagEntity      string
	ProjectedField string
	Join           JoinType
}

func (WhereBy) constraintNode() {}

// Operator implements Constraint.
func (w WhereBy) Operator() Op { return w.Op }

// NewWhereBy builds a WhereBy with the operator's default join kind.
func NewWhereBy(op Op, tagEntity, projectedField string) WhereBy {
	return WhereBy{Op: op, TagEntity: tagEntity, ProjectedField: projectedField, Join: DefaultJoin(op)}
}

// Clone deep-copies a constraint. Nested subqueries are immutable graphs and
// are shared.
func Clone(c Constraint) Constraint {
	switch v := c.(type) {
	case nil:
		return nil
	case Literal:
		return cloneLiteral(v)
	case *Literal:
		l := cloneLiteral(*v)
		return &l
	case Parameterized:
		return v.clone()
	case *Parameterized:
		p := v.clone()
		return &p
	case JoinParameterized:
		return JoinParameterized{Parameterized: v.Parameterized.clone(), Join: v.Join}
	case *JoinParameterized:
		return &JoinParameterized{Parameterized: v.Parameterized.clone(), Join: v.Join}
	case OptionalUnary:
		return v.clone()
	case *OptionalUnary:
		o := v.clone()
		return &o
	case InnerQuery:
		return v
	case *InnerQuery:
		q := *v
		return &q
	case WhereBy:
		return v
	case *WhereBy:
		w := *v
		return &w
	default:
		return c
	}
}

func cloneLiteral(l Literal) Literal {
	if l.Operands == nil {
		return Literal{Op: l.Op}
	}
	ops := make([]ir.IRValue, len(l.Operands))
	for i, v := range l.Operands {
		ops[i] = ir.CloneValue(v)
	}
	return Literal{Op: l.Op, Operands: ops}
}

// Describe renders a constraint as "op,operand" the way query descriptors
// print it. A nil constraint is a projection and renders as "-".
func Describe(c Constraint) string {
	switch v := c.(type) {
	case nil:
		return "-"
	case Literal:
		return describeLiteral(v)
	case *Literal:
		return describeLiteral(*v)
	case Parameterized:
		return fmt.Sprintf("%s,%s", v.Op, v.Param.Name)
	case *Parameterized:
		return fmt.Sprintf("%s,%s", v.Op, v.Param.Name)
	case JoinParameterized:
		return fmt.Sprintf("%s,%s,%s", v.Op, v.Param.Name, v.Join)
	case *JoinParameterized:
		return fmt.Sprintf("%s,%s,%s", v.Op, v.Param.Name, v.Join)
	case OptionalUnary:
		return fmt.Sprintf("%s,%s", v.Operator(), v.Param.Name)
	case *OptionalUnary:
		return fmt.Sprintf("%s,%s", v.Operator(), v.Param.Name)
	case InnerQuery:
		return fmt.Sprintf("%s,query(%s).%s.%s,%s", v.Op, queryName(v.Query), v.TagEntity, v.ProjectedField, v.Join)
	case *InnerQuery:
		return fmt.Sprintf("%s,query(%s).%s.%s,%s", v.Op, queryName(v.Query), v.TagEntity, v.ProjectedField, v.Join)
	case WhereBy:
		return fmt.Sprintf("%s,%s.%s,%s", v.Op, v.TagEntity, v.ProjectedField, v.Join)
	case *WhereBy:
		return fmt.Sprintf("%s,%s.%s,%s", v.Op, v.TagEntity, v.ProjectedField, v.Join)
	default:
		return fmt.Sprintf("%v", c)
	}
}

func describeLiteral(l Literal) string {
	switch len(l.Operands) {
	case 0:
		return string(l.Op) + ","
	case 1:
		if l.Op.Arity() != MultiValue {
			return string(l.Op) + "," + ir.Format(l.Operands[0])
		}
	}
	parts := make([]string, len(l.Operands))
	for i, v := range l.Operands {
		parts[i] = ir.Format(v)
	}
	return string(l.Op) + ",[" + strings.Join(parts, ", ") + "]"
}

func queryName(q Subquery) string {
	if q == nil {
		return ""
	}
	return q.QueryName()
}

// Validate re-checks a constraint's structural invariants after the fact.
// Literals must satisfy their arity; optional-unary defaults must be allowed.
func Validate(c Constraint) error {
	switch v := c.(type) {
	case nil:
		return nil
	case Literal:
		return CheckArity(v.Op, len(v.Operands))
	case *Literal:
		return CheckArity(v.Op, len(v.Operands))
	case OptionalUnary:
		return v.validate()
	case *OptionalUnary:
		return v.validate()
	case InnerQuery:
		return checkKnown(v.Op)
	case *InnerQuery:
		return checkKnown(v.Op)
	case WhereBy:
		return checkKnown(v.Op)
	case *WhereBy:
		return checkKnown(v.Op)
	case Parameterized:
		return checkKnown(v.Op)
	case *Parameterized:
		return checkKnown(v.Op)
	case JoinParameterized:
		return checkKnown(v.Op)
	case *JoinParameterized:
		return checkKnown(v.Op)
	}
	return nil
}

func checkKnown(op Op) error {
	if op.Arity() == ArityUnknown {
		return &ArityError{Op: op, Message: fmt.Sprintf("unknown operator %q", string(op))}
	}
	return nil
}
