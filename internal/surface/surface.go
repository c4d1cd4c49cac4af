// Package surface derives the traversal surface, a GraphQL schema, from an
// ontology. Queries are parsed and validated against it; the schema is never
// executed.
//
// Abstract entity types become interfaces, concrete ones objects. Every
// entity type gets a root field named after it with a lowercase first letter,
// returning a list of that type. Entity-shaped fields (root fields,
// relations and links) accept a where argument of type WhereClause.
package surface

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/graphql-go/graphql"

	"github.com/roach88/ontoql/internal/constraint"
	"github.com/roach88/ontoql/internal/ontology"
)

// Names of the where-clause input types and their fields.
const (
	WhereArg               = "where"
	WhereClauseType        = "WhereClause"
	WhereOperatorType      = "WhereOperator"
	ConstraintType         = "Constraint"
	ConstraintOperatorType = "ConstraintOperator"
	ValueType              = "Value"

	OperatorField    = "operator"
	ConstraintsField = "constraints"
	OperandField     = "operand"
	ExpressionField  = "expression"

	WhereAnd = "AND"
	WhereOr  = "OR"
)

// Surface is a schema built from one ontology generation. It is immutable
// after New and safe for concurrent reads.
type Surface struct {
	schema     graphql.Schema
	accessor   *ontology.Accessor
	objects    map[string]*graphql.Object
	interfaces map[string]*graphql.Interface
	enums      map[string]*graphql.Enum
	roots      map[string]string
	whereArgs  graphql.FieldConfigArgument
}

// New builds the surface for a.
func New(a *ontology.Accessor) (*Surface, error) {
	s := &Surface{
		accessor:   a,
		objects:    make(map[string]*graphql.Object),
		interfaces: make(map[string]*graphql.Interface),
		enums:      make(map[string]*graphql.Enum),
		roots:      make(map[string]string),
	}
	s.whereArgs = graphql.FieldConfigArgument{
		WhereArg: &graphql.ArgumentConfig{Type: whereClause},
	}

	o := a.Ontology()
	for _, e := range o.Enums {
		values := make(graphql.EnumValueConfigMap, len(e.Values))
		for _, v := range e.Values {
			values[v] = &graphql.EnumValueConfig{Value: v}
		}
		s.enums[e.Name] = graphql.NewEnum(graphql.EnumConfig{Name: e.Name, Values: values})
	}

	for _, e := range o.Entities {
		if !e.Abstract {
			continue
		}
		name := e.Name
		s.interfaces[name] = graphql.NewInterface(graphql.InterfaceConfig{
			Name:   name,
			Fields: graphql.FieldsThunk(func() graphql.Fields { return s.fields(name) }),
			ResolveType: func(graphql.ResolveTypeParams) *graphql.Object {
				impls := s.accessor.Implementers(name)
				if len(impls) == 0 {
					return nil
				}
				return s.objects[impls[0].Name]
			},
		})
	}

	var types []graphql.Type
	for _, e := range o.Entities {
		if e.Abstract {
			continue
		}
		var ifaces []*graphql.Interface
		for _, anc := range a.Ancestors(e.Name) {
			if iface, ok := s.interfaces[anc]; ok {
				ifaces = append(ifaces, iface)
			}
		}
		name := e.Name
		obj := graphql.NewObject(graphql.ObjectConfig{
			Name:       name,
			Interfaces: ifaces,
			Fields:     graphql.FieldsThunk(func() graphql.Fields { return s.fields(name) }),
		})
		s.objects[name] = obj
		types = append(types, obj)
	}

	rootFields := graphql.Fields{}
	for _, e := range o.Entities {
		field := RootField(e.Name)
		if prev, ok := s.roots[field]; ok {
			return nil, fmt.Errorf("build surface: root field %q is claimed by %s and %s", field, prev, e.Name)
		}
		s.roots[field] = e.Name
		rootFields[field] = &graphql.Field{
			Type: graphql.NewList(graphql.NewNonNull(s.entityType(e.Name))),
			Args: s.whereArgs,
		}
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: rootFields}),
		Types: types,
	})
	if err != nil {
		return nil, fmt.Errorf("build surface for ontology %q: %w", a.Name(), err)
	}
	s.schema = schema
	return s, nil
}

// fields builds the field set of an entity type: its properties (declared
// and inherited) followed by the relations that may leave it.
func (s *Surface) fields(entity string) graphql.Fields {
	fields := graphql.Fields{}
	for _, name := range s.accessor.PropertiesOf(entity) {
		p, err := s.accessor.Property(name)
		if err != nil {
			continue
		}
		f := &graphql.Field{Type: s.propertyType(p)}
		if _, ok := s.accessor.Entity(p.Type); ok {
			f.Args = s.whereArgs
		}
		fields[name] = f
	}
	for _, r := range s.accessor.RelationsFrom(entity) {
		target, _ := s.accessor.Target(r.Name, entity)
		fields[r.Name] = &graphql.Field{
			Type: graphql.NewList(graphql.NewNonNull(s.entityType(target))),
			Args: s.whereArgs,
		}
	}
	return fields
}

func (s *Surface) entityType(name string) graphql.Output {
	if iface, ok := s.interfaces[name]; ok {
		return iface
	}
	return s.objects[name]
}

func (s *Surface) propertyType(p ontology.Property) graphql.Output {
	var t graphql.Output
	if prim, ok := primitives[p.Type]; ok {
		t = prim
	} else if enum, ok := s.enums[p.Type]; ok {
		t = enum
	} else {
		t = s.entityType(p.Type)
	}
	if p.Array {
		t = graphql.NewList(t)
	}
	return t
}

// Schema returns the GraphQL schema.
func (s *Surface) Schema() *graphql.Schema { return &s.schema }

// Accessor returns the ontology the surface was built from.
func (s *Surface) Accessor() *ontology.Accessor { return s.accessor }

// RootEntity returns the entity type behind a root field.
func (s *Surface) RootEntity(field string) (string, bool) {
	e, ok := s.roots[field]
	return e, ok
}

// Field looks up a field on a named object, interface or the root type.
func (s *Surface) Field(typeName, field string) (*graphql.FieldDefinition, bool) {
	var fields graphql.FieldDefinitionMap
	switch t := s.schema.Type(typeName).(type) {
	case *graphql.Object:
		fields = t.Fields()
	case *graphql.Interface:
		fields = t.Fields()
	default:
		return nil, false
	}
	fd, ok := fields[field]
	return fd, ok
}

// Unwrap strips list and non-null wrappers down to the named type.
func Unwrap(t graphql.Type) graphql.Type {
	for {
		switch w := t.(type) {
		case *graphql.List:
			t = w.OfType
		case *graphql.NonNull:
			t = w.OfType
		default:
			return t
		}
	}
}

// RootField returns the root field name of an entity type.
func RootField(entity string) string {
	r, size := utf8.DecodeRuneInString(entity)
	if r == utf8.RuneError {
		return entity
	}
	return string(unicode.ToLower(r)) + entity[size:]
}

var primitives = map[string]graphql.Output{
	ontology.TypeID:       graphql.ID,
	ontology.TypeBoolean:  graphql.Boolean,
	ontology.TypeInt:      graphql.Int,
	ontology.TypeLong:     aliasScalar("Long"),
	ontology.TypeString:   graphql.String,
	ontology.TypeText:     graphql.String,
	ontology.TypeFloat:    graphql.Float,
	ontology.TypeTime:     aliasScalar("Time"),
	ontology.TypeDate:     aliasScalar("Date"),
	ontology.TypeDatetime: aliasScalar("DateTime"),
	ontology.TypeIP:       graphql.String,
	ontology.TypeGeopoint: aliasScalar("GeoPoint"),
	ontology.TypeJSON:     aliasScalar("JSON"),
}

var (
	whereOperator = graphql.NewEnum(graphql.EnumConfig{
		Name: WhereOperatorType,
		Values: graphql.EnumValueConfigMap{
			WhereAnd: &graphql.EnumValueConfig{Value: WhereAnd},
			WhereOr:  &graphql.EnumValueConfig{Value: WhereOr},
		},
	})

	constraintOperator = func() *graphql.Enum {
		values := graphql.EnumValueConfigMap{}
		for _, op := range constraint.AllOps() {
			values[string(op)] = &graphql.EnumValueConfig{Value: string(op)}
		}
		return graphql.NewEnum(graphql.EnumConfig{Name: ConstraintOperatorType, Values: values})
	}()

	constraintInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: ConstraintType,
		Fields: graphql.InputObjectConfigFieldMap{
			OperandField:    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			OperatorField:   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(constraintOperator)},
			ExpressionField: &graphql.InputObjectFieldConfig{Type: valueScalar},
		},
	})

	whereClause = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: WhereClauseType,
		Fields: graphql.InputObjectConfigFieldMap{
			OperatorField:    &graphql.InputObjectFieldConfig{Type: whereOperator},
			ConstraintsField: &graphql.InputObjectFieldConfig{Type: graphql.NewList(constraintInput)},
		},
	})
)
