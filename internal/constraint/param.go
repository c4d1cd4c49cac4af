package constraint

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/ontoql/internal/ir"
)

// DefaultParamName is the conventional name of a single-value parameter.
const DefaultParamName = "$val"

// NamedParameter is an operand supplied at bind time rather than inlined in
// the query text. Value, when set, is the default used if the caller binds
// nothing under Name.
type NamedParameter struct {
	Name  string
	Value ir.IRValue
}

// Resolve looks the parameter up in values, falling back to its default.
func (p NamedParameter) Resolve(values map[string]ir.IRValue) (ir.IRValue, error) {
	if v, ok := values[p.Name]; ok && v != nil {
		return v, nil
	}
	if p.Value != nil {
		return p.Value, nil
	}
	return nil, &UnboundError{Name: p.Name}
}

// UnboundError reports a parameter with neither a bound value nor a default.
type UnboundError struct {
	Name string
}

func (e *UnboundError) Error() string {
	return fmt.Sprintf("parameter %q is unbound and has no default", e.Name)
}

// IsUnbound reports whether err is (or wraps) an *UnboundError.
func IsUnbound(err error) bool {
	var ue *UnboundError
	return errors.As(err, &ue)
}

// IsArity reports whether err is (or wraps) an *ArityError.
func IsArity(err error) bool {
	var ae *ArityError
	return errors.As(err, &ae)
}

// Parameterized is a constraint whose operand is a named parameter.
type Parameterized struct {
	Op    Op
	Param NamedParameter
}

func (Parameterized) constraintNode() {}

// Operator implements Constraint.
func (p Parameterized) Operator() Op { return p.Op }

// Bind resolves the parameter and returns the arity-checked Literal.
func (p Parameterized) Bind(values map[string]ir.IRValue) (Literal, error) {
	v, err := p.Param.Resolve(values)
	if err != nil {
		return Literal{}, err
	}
	return FromExpression(p.Op, v)
}

func (p Parameterized) clone() Parameterized {
	return Parameterized{Op: p.Op, Param: NamedParameter{Name: p.Param.Name, Value: ir.CloneValue(p.Param.Value)}}
}

// JoinParameterized adds join semantics to a parameterized constraint.
type JoinParameterized struct {
	Parameterized
	Join JoinType
}

func (JoinParameterized) constraintNode() {}

// OptionalUnary is a parameterized constraint whose operator may be swapped
// for one of Allowed at bind time.
type OptionalUnary struct {
	Default Op
	Allowed []Op
	Param   NamedParameter

	selected Op
}

func (OptionalUnary) constraintNode() {}

// Operator returns the selected operator, or Default when none was chosen.
func (o OptionalUnary) Operator() Op {
	if o.selected != "" {
		return o.selected
	}
	return o.Default
}

// WithOp returns a copy using op, which must be Default or in Allowed.
func (o OptionalUnary) WithOp(op Op) (OptionalUnary, error) {
	if op != o.Default && !slices.Contains(o.Allowed, op) {
		return OptionalUnary{}, fmt.Errorf("operator %q is not allowed here (allowed: %v)", string(op), o.Allowed)
	}
	out := o.clone()
	out.selected = op
	return out, nil
}

// Bind resolves the parameter under the selected operator.
func (o OptionalUnary) Bind(values map[string]ir.IRValue) (Literal, error) {
	return Parameterized{Op: o.Operator(), Param: o.Param}.Bind(values)
}

func (o OptionalUnary) validate() error {
	if err := checkKnown(o.Default); err != nil {
		return err
	}
	for _, op := range o.Allowed {
		if err := checkKnown(op); err != nil {
			return err
		}
	}
	return nil
}

func (o OptionalUnary) clone() OptionalUnary {
	return OptionalUnary{
		Default:  o.Default,
		Allowed:  slices.Clone(o.Allowed),
		Param:    NamedParameter{Name: o.Param.Name, Value: ir.CloneValue(o.Param.Value)},
		selected: o.selected,
	}
}

// Binder is implemented by constraints that resolve against parameter values.
type Binder interface {
	Constraint
	Bind(values map[string]ir.IRValue) (Literal, error)
}

// Bind resolves any parameterized constraint into a Literal. Literals are
// returned unchanged; constraints that compare against other graph nodes
// cannot be bound and are returned as is.
func Bind(c Constraint, values map[string]ir.IRValue) (Constraint, error) {
	switch v := c.(type) {
	case JoinParameterized:
		return v.Parameterized.Bind(values)
	case *JoinParameterized:
		return v.Parameterized.Bind(values)
	case Binder:
		return v.Bind(values)
	default:
		return c, nil
	}
}
