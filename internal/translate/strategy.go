package translate

import (
	"github.com/graphql-go/graphql"

	"github.com/roach88/ontoql/internal/queryir"
)

// Fragment is what a strategy produced for one field.
type Fragment struct {
	// Node is the id of the node the field produced.
	Node int

	// Entity is set when Node opens an entity scope; the field's selection
	// set is walked beneath it.
	Entity bool
}

// Strategy translates fields of the types it accepts.
//
// Translate returns ok=false to decline a type; the next strategy is tried.
// A field no strategy accepts produces nothing and is not descended. Errors
// are fatal to the translation.
type Strategy interface {
	Name() string
	Translate(c *Context, t graphql.Type) (frag Fragment, ok bool, err error)
}

// ObjectStrategy translates fields typed as concrete entity types.
type ObjectStrategy struct{}

// Name implements Strategy.
func (ObjectStrategy) Name() string { return "object" }

// Translate adds a typed entity for the field, reached through a relation
// step unless the field is a root field, and attaches its where clause.
func (ObjectStrategy) Translate(c *Context, t graphql.Type) (Fragment, bool, error) {
	obj, ok := t.(*graphql.Object)
	if !ok {
		return Fragment{}, false, nil
	}
	entity, ok := c.Accessor.Entity(obj.Name())
	if !ok {
		return Fragment{}, true, NewSchemaError("type %q is not an entity of ontology %q", obj.Name(), c.Accessor.Name())
	}

	id, err := c.OpenEntity(entity.Name)
	if err != nil {
		return Fragment{}, true, err
	}
	if err := c.AttachWhere(entity.Name, id); err != nil {
		return Fragment{}, true, err
	}
	return Fragment{Node: id, Entity: true}, true, nil
}

// InterfaceStrategy translates fields typed as abstract entity types. The
// first implementer in declaration order stands in for the interface; the
// interface is recorded as its parent type.
type InterfaceStrategy struct{}

// Name implements Strategy.
func (InterfaceStrategy) Name() string { return "interface" }

// Translate implements Strategy.
func (InterfaceStrategy) Translate(c *Context, t graphql.Type) (Fragment, bool, error) {
	iface, ok := t.(*graphql.Interface)
	if !ok {
		return Fragment{}, false, nil
	}
	impls := c.Accessor.Implementers(iface.Name())
	if len(impls) == 0 {
		return Fragment{}, true, NewSchemaError("interface %q has no implementing entity", iface.Name())
	}
	impl := impls[0].Name

	id, err := c.OpenEntity(impl, iface.Name())
	if err != nil {
		return Fragment{}, true, err
	}
	if err := c.AttachWhere(impl, id); err != nil {
		return Fragment{}, true, err
	}
	c.logger.Debug("interface resolved", "path", c.Field.Path, "interface", iface.Name(), "implementer", impl)
	return Fragment{Node: id, Entity: true}, true, nil
}

// ValueStrategy translates scalar and enumeration fields into property reads
// on the enclosing entity.
type ValueStrategy struct{}

// Name implements Strategy.
func (ValueStrategy) Name() string { return "value" }

// Translate implements Strategy.
func (ValueStrategy) Translate(c *Context, t graphql.Type) (Fragment, bool, error) {
	switch v := t.(type) {
	case *graphql.Scalar:
	case *graphql.Enum:
		enum, ok := c.Accessor.Enum(v.Name())
		if !ok || len(enum.Values) == 0 {
			return Fragment{}, true, NewSchemaError("enumeration %q does not resolve to any value", v.Name())
		}
	default:
		return Fragment{}, false, nil
	}
	if c.Field.Root() {
		return Fragment{}, false, nil
	}

	parent, err := c.ParentNode()
	if err != nil {
		return Fragment{}, true, err
	}
	decl, err := c.Accessor.Property(c.Field.Name)
	if err != nil {
		return Fragment{}, true, err
	}
	id, err := c.AddProp(parent, queryir.Prop{Name: decl.Name, Schematic: decl.Schematic})
	if err != nil {
		return Fragment{}, true, err
	}
	return Fragment{Node: id}, true, nil
}
