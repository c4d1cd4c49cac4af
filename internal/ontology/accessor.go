package ontology

import (
	"errors"
	"fmt"
	"slices"
)

// NodeKind classifies a declared name.
type NodeKind string

const (
	NodeEnum     NodeKind = "enum"
	NodeEntity   NodeKind = "entity"
	NodeRelation NodeKind = "relation"
	NodeProperty NodeKind = "property"
)

// SchemaError reports a name the ontology does not declare.
type SchemaError struct {
	Kind NodeKind
	Name string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// IsUnknown reports whether err is a *SchemaError.
func IsUnknown(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// Accessor is a read-only index over a validated ontology. It is safe for
// concurrent use. Returned values are copies.
type Accessor struct {
	o          *Ontology
	entities   map[string]int
	relations  map[string]int
	properties map[string]int
	enums      map[string]int
}

// NewAccessor validates o and indexes a private copy of it. Validation
// failures are returned as an *InvalidError.
func NewAccessor(o *Ontology) (*Accessor, error) {
	if errs := Validate(o); len(errs) > 0 {
		name := ""
		if o != nil {
			name = o.Name
		}
		return nil, &InvalidError{Name: name, Errors: errs}
	}

	a := &Accessor{
		o:          o.Clone(),
		entities:   make(map[string]int, len(o.Entities)),
		relations:  make(map[string]int, len(o.Relations)),
		properties: make(map[string]int, len(o.Properties)),
		enums:      make(map[string]int, len(o.Enums)),
	}
	for i, e := range a.o.Entities {
		a.entities[e.Name] = i
	}
	for i, r := range a.o.Relations {
		a.relations[r.Name] = i
	}
	for i, p := range a.o.Properties {
		a.properties[p.Name] = i
	}
	for i, e := range a.o.Enums {
		a.enums[e.Name] = i
	}
	return a, nil
}

// MustAccessor is NewAccessor that panics on error. Intended for tests and
// package-level fixtures.
func MustAccessor(o *Ontology) *Accessor {
	a, err := NewAccessor(o)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Accessor) Name() string        { return a.o.Name }
func (a *Accessor) Ontology() *Ontology { return a.o.Clone() }

// Entity resolves an entity type by name.
func (a *Accessor) Entity(name string) (EntityType, bool) {
	i, ok := a.entities[name]
	if !ok {
		return EntityType{}, false
	}
	e := a.o.Entities[i]
	e.Properties = slices.Clone(e.Properties)
	e.Parents = slices.Clone(e.Parents)
	return e, true
}

// Relation resolves a relationship type by name.
func (a *Accessor) Relation(name string) (RelationshipType, bool) {
	i, ok := a.relations[name]
	if !ok {
		return RelationshipType{}, false
	}
	r := a.o.Relations[i]
	r.Pairs = slices.Clone(r.Pairs)
	r.Properties = slices.Clone(r.Properties)
	return r, true
}

// Property resolves a property declaration. An undeclared name yields a
// *SchemaError.
func (a *Accessor) Property(name string) (Property, error) {
	i, ok := a.properties[name]
	if !ok {
		return Property{}, &SchemaError{Kind: NodeProperty, Name: name}
	}
	return a.o.Properties[i], nil
}

// ResolveProperty reports whether name is a declared property.
func (a *Accessor) ResolveProperty(name string) error {
	_, err := a.Property(name)
	return err
}

// Enum resolves an enumeration by name.
func (a *Accessor) Enum(name string) (EnumeratedType, bool) {
	i, ok := a.enums[name]
	if !ok {
		return EnumeratedType{}, false
	}
	e := a.o.Enums[i]
	e.Values = slices.Clone(e.Values)
	return e, true
}

// Match classifies name. Names share one namespace, so at most one kind
// matches.
func (a *Accessor) Match(name string) (NodeKind, bool) {
	if _, ok := a.enums[name]; ok {
		return NodeEnum, true
	}
	if _, ok := a.entities[name]; ok {
		return NodeEntity, true
	}
	if _, ok := a.relations[name]; ok {
		return NodeRelation, true
	}
	if _, ok := a.properties[name]; ok {
		return NodeProperty, true
	}
	return "", false
}

// Entities returns every entity type in declaration order.
func (a *Accessor) Entities() []EntityType {
	out := make([]EntityType, 0, len(a.o.Entities))
	for _, e := range a.o.Entities {
		c, _ := a.Entity(e.Name)
		out = append(out, c)
	}
	return out
}

// Ancestors returns the transitive parent types of name, nearest first.
func (a *Accessor) Ancestors(name string) []string {
	var out []string
	seen := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		i, ok := a.entities[queue[0]]
		queue = queue[1:]
		if !ok {
			continue
		}
		for _, p := range a.o.Entities[i].Parents {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
				queue = append(queue, p)
			}
		}
	}
	return out
}

// Implementers returns the concrete entity types that have iface among their
// ancestors, in declaration order.
func (a *Accessor) Implementers(iface string) []EntityType {
	var out []EntityType
	for _, e := range a.o.Entities {
		if e.Abstract || !slices.Contains(a.Ancestors(e.Name), iface) {
			continue
		}
		c, _ := a.Entity(e.Name)
		out = append(out, c)
	}
	return out
}

// PropertiesOf returns the properties of an entity type followed by the
// ones it inherits, without duplicates.
func (a *Accessor) PropertiesOf(entity string) []string {
	i, ok := a.entities[entity]
	if !ok {
		return nil
	}
	out := slices.Clone(a.o.Entities[i].Properties)
	for _, anc := range a.Ancestors(entity) {
		for _, p := range a.o.Entities[a.entities[anc]].Properties {
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// HasProperty reports whether entity declares or inherits prop.
func (a *Accessor) HasProperty(entity, prop string) bool {
	return slices.Contains(a.PropertiesOf(entity), prop)
}

// RelationsFrom returns the relationship types that may leave entity, either
// directly or through one of its ancestors, in declaration order.
func (a *Accessor) RelationsFrom(entity string) []RelationshipType {
	sources := append([]string{entity}, a.Ancestors(entity)...)
	var out []RelationshipType
	for _, r := range a.o.Relations {
		if _, ok := a.target(r, sources); ok {
			c, _ := a.Relation(r.Name)
			out = append(out, c)
		}
	}
	return out
}

// Target returns the target type of relation when traversed from entity: the
// first pair whose source is entity or one of its ancestors.
func (a *Accessor) Target(relation, entity string) (string, bool) {
	i, ok := a.relations[relation]
	if !ok {
		return "", false
	}
	return a.target(a.o.Relations[i], append([]string{entity}, a.Ancestors(entity)...))
}

func (a *Accessor) target(r RelationshipType, sources []string) (string, bool) {
	for _, p := range r.Pairs {
		if slices.Contains(sources, p.From) {
			return p.To, true
		}
	}
	return "", false
}
