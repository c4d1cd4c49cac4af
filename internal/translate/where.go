package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql/language/ast"

	"github.com/roach88/ontoql/internal/constraint"
	"github.com/roach88/ontoql/internal/ir"
	"github.com/roach88/ontoql/internal/queryir"
	"github.com/roach88/ontoql/internal/surface"
)

// AttachWhere turns the where argument of the current field into a property
// group on the entity with id. Every operand must be a property of entity.
// Without a where argument nothing is added.
func (c *Context) AttachWhere(entity string, id int) error {
	var where *ast.ObjectValue
	for _, arg := range c.Field.AST.Arguments {
		if arg.Name.Value == surface.WhereArg {
			v, err := c.requireValue(arg.Value, "a where clause")
			if err != nil {
				return err
			}
			where, _ = v.(*ast.ObjectValue)
		}
	}
	if where == nil {
		return nil
	}

	kind := queryir.QuantAll
	var items []ast.Value
	for _, f := range where.Fields {
		v, err := c.requireValue(f.Value, "the "+f.Name.Value+" of a where clause")
		if err != nil {
			return err
		}
		switch f.Name.Value {
		case surface.OperatorField:
			if ev, ok := v.(*ast.EnumValue); ok && ev.Value == surface.WhereOr {
				kind = queryir.QuantSome
			}
		case surface.ConstraintsField:
			if list, ok := v.(*ast.ListValue); ok {
				items = list.Values
			} else if v != nil {
				items = []ast.Value{v}
			}
		}
	}

	props := make([]queryir.Prop, 0, len(items))
	var missing []string
	for _, item := range items {
		v, err := c.requireValue(item, "a constraint")
		if err != nil {
			return err
		}
		obj, ok := v.(*ast.ObjectValue)
		if !ok {
			continue
		}
		p, err := c.whereProp(obj)
		if err != nil {
			return err
		}
		if !c.Accessor.HasProperty(entity, p.Name) {
			missing = append(missing, p.Name)
			continue
		}
		if decl, err := c.Accessor.Property(p.Name); err == nil {
			p.Schematic = decl.Schematic
		}
		props = append(props, p)
	}
	if len(missing) > 0 {
		return NewSchemaError("Fields [%s] are not a part of the queried entity %s", strings.Join(missing, " "), entity)
	}
	if len(props) == 0 {
		return nil
	}

	b := c.Builder
	b.SetCurrentIndex(c.EntityQuant(id)).EPropGroup(kind, props...)
	c.logger.Debug("where clause attached",
		"path", c.Field.Path,
		"entity", entity,
		"quant", kind,
		"constraints", len(props),
	)
	return b.Err()
}

// whereProp builds the constrained prop of one Constraint input object.
func (c *Context) whereProp(obj *ast.ObjectValue) (queryir.Prop, error) {
	var (
		operand  string
		operator constraint.Op
		expr     ast.Value
	)
	for _, f := range obj.Fields {
		switch f.Name.Value {
		case surface.OperandField:
			v, err := c.requireValue(f.Value, "a constraint operand")
			if err != nil {
				return queryir.Prop{}, err
			}
			if sv, ok := v.(*ast.StringValue); ok {
				operand = sv.Value
			}
		case surface.OperatorField:
			v, err := c.requireValue(f.Value, "a constraint operator")
			if err != nil {
				return queryir.Prop{}, err
			}
			if ev, ok := v.(*ast.EnumValue); ok {
				operator = constraint.Op(ev.Value)
			}
		case surface.ExpressionField:
			expr = f.Value
		}
	}
	if operand == "" || operator == "" {
		return queryir.Prop{}, NewDocumentError("constraint needs an operand and an operator")
	}

	if v, ok := expr.(*ast.Variable); ok {
		name := v.Name.Value
		var def ir.IRValue
		if vd, ok := c.variables[name]; ok && vd.DefaultValue != nil {
			var err error
			if def, err = literal(vd.DefaultValue); err != nil {
				return queryir.Prop{}, err
			}
		}
		param := constraint.Parameterized{Op: operator, Param: constraint.NamedParameter{Name: name, Value: def}}
		if def != nil {
			if _, err := param.Bind(nil); err != nil {
				return queryir.Prop{}, err
			}
		}
		return queryir.PC(operand, param), nil
	}

	var value ir.IRValue
	if expr != nil {
		var err error
		if value, err = literal(expr); err != nil {
			return queryir.Prop{}, err
		}
	}
	lit, err := constraint.FromExpression(operator, value)
	if err != nil {
		return queryir.Prop{}, fmt.Errorf("constraint on %q: %w", operand, err)
	}
	return queryir.PC(operand, lit), nil
}

// resolveVariable replaces a variable standing for a whole input value with
// its default. Variables without a default resolve to nil.
func (c *Context) resolveVariable(v ast.Value) (ast.Value, error) {
	variable, ok := v.(*ast.Variable)
	if !ok {
		return v, nil
	}
	vd, ok := c.variables[variable.Name.Value]
	if !ok {
		return nil, NewDocumentError("variable $" + variable.Name.Value + " is not defined")
	}
	return vd.DefaultValue, nil
}

// requireValue resolves v like resolveVariable but rejects a variable without
// a default. Only constraint expressions may stay open, as named parameters.
func (c *Context) requireValue(v ast.Value, what string) (ast.Value, error) {
	resolved, err := c.resolveVariable(v)
	if err != nil {
		return nil, err
	}
	if variable, ok := v.(*ast.Variable); ok && resolved == nil {
		return nil, NewDocumentError(fmt.Sprintf("variable $%s has no default; %s must be a literal or a variable with a default", variable.Name.Value, what))
	}
	return resolved, nil
}

// literal converts a where-clause expression to an IR value. Floats keep
// their source text as decimals; enum values become strings.
func literal(v ast.Value) (ir.IRValue, error) {
	switch v := v.(type) {
	case *ast.StringValue:
		return ir.IRString(v.Value), nil
	case *ast.IntValue:
		if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
			return ir.IRInt(n), nil
		}
		return ir.NewIRDecimal(v.Value)
	case *ast.FloatValue:
		return ir.NewIRDecimal(v.Value)
	case *ast.BooleanValue:
		return ir.IRBool(v.Value), nil
	case *ast.EnumValue:
		return ir.IRString(v.Value), nil
	case *ast.ListValue:
		out := make(ir.IRArray, 0, len(v.Values))
		for _, item := range v.Values {
			if _, isVar := item.(*ast.Variable); isVar {
				return nil, NewDocumentError("variables must stand for a whole expression, not a list element")
			}
			lv, err := literal(item)
			if err != nil {
				return nil, err
			}
			out = append(out, lv)
		}
		return out, nil
	}
	return nil, NewDocumentError(fmt.Sprintf("expression of kind %s cannot be an operand", v.GetKind()))
}
