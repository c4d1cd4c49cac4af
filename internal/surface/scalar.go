package surface

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// valueScalar carries where-clause operands: any scalar literal, enum value,
// variable or list of those.
var valueScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:         ValueType,
	Description:  "A constraint operand: a scalar, an enum value or a list of them.",
	Serialize:    identity,
	ParseValue:   identity,
	ParseLiteral: parseLiteral,
})

// aliasScalar names a primitive the built-in scalars do not cover. Literals
// are accepted in their source form.
func aliasScalar(name string) *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:       name,
		Serialize:  identity,
		ParseValue: identity,
		ParseLiteral: func(v ast.Value) interface{} {
			switch v := v.(type) {
			case *ast.StringValue:
				return v.Value
			case *ast.IntValue:
				return v.Value
			case *ast.FloatValue:
				return v.Value
			}
			return nil
		},
	})
}

func identity(v interface{}) interface{} { return v }

// parseLiteral returns nil for shapes a Value cannot hold, which fails
// document validation.
func parseLiteral(v ast.Value) interface{} {
	switch v := v.(type) {
	case *ast.StringValue:
		return v.Value
	case *ast.IntValue:
		return v.Value
	case *ast.FloatValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	case *ast.Variable:
		return "$" + v.Name.Value
	case *ast.ListValue:
		out := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			parsed := parseLiteral(item)
			if parsed == nil {
				return nil
			}
			out = append(out, parsed)
		}
		return out
	}
	return nil
}
