package ontology

import "slices"

// Primitive property types. A property whose Array flag is set holds a list
// of the given primitive.
const (
	TypeID       = "id"
	TypeBoolean  = "boolean"
	TypeInt      = "int"
	TypeLong     = "long"
	TypeString   = "string"
	TypeText     = "text"
	TypeFloat    = "float"
	TypeTime     = "time"
	TypeDate     = "date"
	TypeDatetime = "datetime"
	TypeIP       = "ip"
	TypeGeopoint = "geopoint"
	TypeJSON     = "json"
)

// Primitives lists every primitive type name in a stable order.
var Primitives = []string{
	TypeID, TypeBoolean, TypeInt, TypeLong, TypeString, TypeText, TypeFloat,
	TypeTime, TypeDate, TypeDatetime, TypeIP, TypeGeopoint, TypeJSON,
}

// IsPrimitive reports whether t names a primitive type.
func IsPrimitive(t string) bool { return slices.Contains(Primitives, t) }

// Ontology is the full catalogue. Slices keep declaration order, which is
// observable through Accessor.Implementers and Accessor.Entities.
type Ontology struct {
	Name       string             `yaml:"name" json:"name" validate:"required,gqlname"`
	Properties []Property         `yaml:"properties" json:"properties" validate:"dive"`
	Entities   []EntityType       `yaml:"entities" json:"entities" validate:"required,min=1,dive"`
	Relations  []RelationshipType `yaml:"relations,omitempty" json:"relations,omitempty" validate:"dive"`
	Enums      []EnumeratedType   `yaml:"enums,omitempty" json:"enums,omitempty" validate:"dive"`
}

// Property is an ontology-level property declaration.
type Property struct {
	Name string `yaml:"name" json:"name" validate:"required,gqlname"`
	// Type is a primitive, an enumeration name or an entity type name.
	Type string `yaml:"type" json:"type" validate:"required"`
	// Array marks a list-valued property.
	Array bool `yaml:"array,omitempty" json:"array,omitempty"`
	// Schematic is the physical field name when it differs from Name.
	Schematic string `yaml:"schematic,omitempty" json:"schematic,omitempty"`
}

// Field returns the physical field name of the property.
func (p Property) Field() string {
	if p.Schematic != "" {
		return p.Schematic
	}
	return p.Name
}

// EntityType is a node type. Abstract entity types surface as interfaces and
// are queried through their implementers, the entities listing them as a
// parent.
type EntityType struct {
	Name       string   `yaml:"name" json:"name" validate:"required,gqlname"`
	Properties []string `yaml:"properties,omitempty" json:"properties,omitempty" validate:"dive,required"`
	Parents    []string `yaml:"parents,omitempty" json:"parents,omitempty" validate:"dive,required"`
	Abstract   bool     `yaml:"abstract,omitempty" json:"abstract,omitempty"`
}

// Pair is one permitted (source, target) endpoint combination of a
// relationship.
type Pair struct {
	From string `yaml:"from" json:"from" validate:"required"`
	To   string `yaml:"to" json:"to" validate:"required"`
}

// RelationshipType is an edge type between entity types.
type RelationshipType struct {
	Name        string   `yaml:"name" json:"name" validate:"required,gqlname"`
	Pairs       []Pair   `yaml:"pairs" json:"pairs" validate:"required,min=1,dive"`
	Directional bool     `yaml:"directional,omitempty" json:"directional,omitempty"`
	Properties  []string `yaml:"properties,omitempty" json:"properties,omitempty" validate:"dive,required"`
}

// EnumeratedType is a named, ordered set of legal values.
type EnumeratedType struct {
	Name   string   `yaml:"name" json:"name" validate:"required,gqlname"`
	Values []string `yaml:"values" json:"values" validate:"dive,gqlname"`
}

// Clone returns a deep copy of the ontology.
func (o *Ontology) Clone() *Ontology {
	c := &Ontology{
		Name:       o.Name,
		Properties: slices.Clone(o.Properties),
		Entities:   make([]EntityType, len(o.Entities)),
		Relations:  make([]RelationshipType, len(o.Relations)),
		Enums:      make([]EnumeratedType, len(o.Enums)),
	}
	for i, e := range o.Entities {
		e.Properties = slices.Clone(e.Properties)
		e.Parents = slices.Clone(e.Parents)
		c.Entities[i] = e
	}
	for i, r := range o.Relations {
		r.Pairs = slices.Clone(r.Pairs)
		r.Properties = slices.Clone(r.Properties)
		c.Relations[i] = r
	}
	for i, e := range o.Enums {
		e.Values = slices.Clone(e.Values)
		c.Enums[i] = e
	}
	return c
}
