package queryir

import (
	"slices"

	"github.com/roach88/ontoql/internal/constraint"
)

// Prop names one ontology property read by a property node.
//
// A nil Constraint makes the prop a projection. Schematic, when set, is the
// physical field name a backend should read instead of Name.
type Prop struct {
	Name       string
	Constraint constraint.Constraint
	Schematic  string
	Ext        PropExt
}

// P builds a projection prop.
func P(name string) Prop {
	return Prop{Name: name}
}

// PC builds a constrained prop.
func PC(name string, c constraint.Constraint) Prop {
	return Prop{Name: name, Constraint: c}
}

// Physical reports whether the prop is a direct field read. Function props
// are derived and take no part in field presence checks.
func (p Prop) Physical() bool {
	switch p.Ext.(type) {
	case Function, *Function:
		return false
	}
	return true
}

// IsProjection reports whether the prop carries no constraint.
func (p Prop) IsProjection() bool {
	return p.Constraint == nil
}

// Field returns the name a backend reads: the schematic name when present.
func (p Prop) Field() string {
	if p.Schematic != "" {
		return p.Schematic
	}
	return p.Name
}

// PropExt is the closed set of prop specializations.
//
// This is a sealed interface - only types in this package implement it.
type PropExt interface {
	propExt()
}

// Nested is a prop living inside an embedded structure at Path.
type Nested struct {
	Path string
}

// Ranked is a prop contributing to relevance with weight Boost.
type Ranked struct {
	Boost int64
}

// Function is a derived prop computed by Aggregation.
type Function struct {
	Aggregation string
}

// Redundant is a projection duplicated under Name for backends that need
// the selection repeated.
type Redundant struct {
	Name string
}

func (Nested) propExt()    {}
func (Ranked) propExt()    {}
func (Function) propExt()  {}
func (Redundant) propExt() {}

func cloneProp(p Prop) Prop {
	return Prop{
		Name:       p.Name,
		Constraint: constraint.Clone(p.Constraint),
		Schematic:  p.Schematic,
		Ext:        p.Ext,
	}
}

func cloneProps(ps []Prop) []Prop {
	if ps == nil {
		return nil
	}
	out := make([]Prop, len(ps))
	for i, p := range ps {
		out[i] = cloneProp(p)
	}
	return out
}

func cloneGroup(g PropGroup) PropGroup {
	out := PropGroup{Quant: g.Quant, Props: cloneProps(g.Props)}
	if g.Groups != nil {
		out.Groups = make([]PropGroup, len(g.Groups))
		for i, sub := range g.Groups {
			out.Groups[i] = cloneGroup(sub)
		}
	}
	return out
}

// allProps flattens a group and its nested groups in declaration order.
func (g PropGroup) allProps() []Prop {
	out := slices.Clone(g.Props)
	for _, sub := range g.Groups {
		out = append(out, sub.allProps()...)
	}
	return out
}
