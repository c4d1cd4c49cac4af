package queryir

import "fmt"

// Kind names a node variant. The string form is used by descriptors and the
// canonical encoding.
type Kind string

const (
	KindStart        Kind = "Start"
	KindETyped       Kind = "ETyped"
	KindEUntyped     Kind = "EUntyped"
	KindEConcrete    Kind = "EConcrete"
	KindEndPattern   Kind = "EndPattern"
	KindRel          Kind = "Rel"
	KindRelPattern   Kind = "RelPattern"
	KindQuant1       Kind = "Quant1"
	KindHQuant       Kind = "HQuant"
	KindOptional     Kind = "OptionalComp"
	KindEProp        Kind = "EProp"
	KindRelProp      Kind = "RelProp"
	KindEPropGroup   Kind = "EPropGroup"
	KindRelPropGroup Kind = "RelPropGroup"
)

// QuantKind selects the branching semantics of a quantifier or property group.
type QuantKind string

const (
	// QuantAll requires every successor to match.
	QuantAll QuantKind = "all"
	// QuantSome requires at least one successor to match.
	QuantSome QuantKind = "some"
)

// Valid reports whether q is a known quantifier kind.
func (q QuantKind) Valid() bool {
	return q == QuantAll || q == QuantSome
}

// Direction is the traversal direction of a relation.
type Direction string

const (
	DirR  Direction = "R"
	DirL  Direction = "L"
	DirRL Direction = "RL"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirR || d == DirL || d == DirRL
}

// Node is any vertex of a query graph.
//
// This is a sealed interface - only types in this package implement it.
type Node interface {
	NodeID() int
	Kind() Kind
	node() // Marker method - seals interface to this package
}

// Entity is a node bound to ontology types.
type Entity interface {
	Node
	EntityTag() string
	entity()
}

// Quantifier is a branching node with an ordered successor list.
type Quantifier interface {
	Node
	QuantKind() QuantKind
	Successors() []int
	quantifier()
}

// Property is a node reading one or more ontology properties.
type Property interface {
	Node
	property()
}

// Start is the root of every graph. It always has id 0.
type Start struct {
	ID   int
	Next int
}

func (*Start) node()         {}
func (s *Start) NodeID() int { return s.ID }
func (*Start) Kind() Kind    { return KindStart }

// ETyped is an entity bound to exactly one ontology type. Parents lists
// supertypes for polymorphic dispatch.
type ETyped struct {
	ID      int
	Tag     string
	Type    string
	Parents []string
	Next    int
	Branch  int
}

func (*ETyped) node()               {}
func (*ETyped) entity()             {}
func (e *ETyped) NodeID() int       { return e.ID }
func (*ETyped) Kind() Kind          { return KindETyped }
func (e *ETyped) EntityTag() string { return e.Tag }

// EUntyped is an entity constrained by a positive and a negative type set.
// The two sets are disjoint.
type EUntyped struct {
	ID      int
	Tag     string
	VTypes  []string
	NVTypes []string
	Next    int
	Branch  int
}

func (*EUntyped) node()               {}
func (*EUntyped) entity()             {}
func (e *EUntyped) NodeID() int       { return e.ID }
func (*EUntyped) Kind() Kind          { return KindEUntyped }
func (e *EUntyped) EntityTag() string { return e.Tag }

// EConcrete anchors a typed entity to one literal instance.
type EConcrete struct {
	ETyped
	ConcreteID   string
	ConcreteName string
}

func (*EConcrete) Kind() Kind { return KindEConcrete }

// EndPattern wraps an entity with property filters that must all hold for
// the entity to match. It shares the wrapped entity's id.
type EndPattern struct {
	Entity Entity
	Filter []Prop
}

func (*EndPattern) node()      {}
func (*EndPattern) entity()    {}
func (*EndPattern) Kind() Kind { return KindEndPattern }

func (e *EndPattern) NodeID() int {
	if e.Entity == nil {
		return 0
	}
	return e.Entity.NodeID()
}

func (e *EndPattern) EntityTag() string {
	if e.Entity == nil {
		return ""
	}
	return e.Entity.EntityTag()
}

// Rel is a relationship traversal step.
type Rel struct {
	ID      int
	Tag     string
	Type    string
	Dir     Direction
	Wrapper string
	Next    int
	Branch  int
}

func (*Rel) node()         {}
func (r *Rel) NodeID() int { return r.ID }
func (*Rel) Kind() Kind    { return KindRel }

// Range bounds the length of a variable-length path.
type Range struct {
	Lower int
	Upper int
}

func (r Range) String() string { return fmt.Sprintf("%d..%d", r.Lower, r.Upper) }

// RelPattern is a relation repeated over a path whose length lies in Length.
type RelPattern struct {
	Rel
	Length Range
}

func (*RelPattern) Kind() Kind { return KindRelPattern }

// Quant1 is a single-level quantifier.
type Quant1 struct {
	ID     int
	Quant  QuantKind
	Next   []int
	Branch int
}

func (*Quant1) node()                  {}
func (*Quant1) quantifier()            {}
func (q *Quant1) NodeID() int          { return q.ID }
func (*Quant1) Kind() Kind             { return KindQuant1 }
func (q *Quant1) QuantKind() QuantKind { return q.Quant }
func (q *Quant1) Successors() []int    { return q.Next }

// HQuant is a hierarchical quantifier whose successors are themselves
// quantifiers.
type HQuant struct {
	ID    int
	Quant QuantKind
	Next  []int
}

func (*HQuant) node()                  {}
func (*HQuant) quantifier()            {}
func (q *HQuant) NodeID() int          { return q.ID }
func (*HQuant) Kind() Kind             { return KindHQuant }
func (q *HQuant) QuantKind() QuantKind { return q.Quant }
func (q *HQuant) Successors() []int    { return q.Next }

// OptionalComp marks its successors as optional. Its kind is always some.
type OptionalComp struct {
	ID   int
	Next []int
}

func (*OptionalComp) node()                {}
func (*OptionalComp) quantifier()          {}
func (o *OptionalComp) NodeID() int        { return o.ID }
func (*OptionalComp) Kind() Kind           { return KindOptional }
func (*OptionalComp) QuantKind() QuantKind { return QuantSome }
func (o *OptionalComp) Successors() []int  { return o.Next }

// EProp reads one entity property.
type EProp struct {
	ID int
	Prop
}

func (*EProp) node()         {}
func (*EProp) property()     {}
func (p *EProp) NodeID() int { return p.ID }
func (*EProp) Kind() Kind    { return KindEProp }

// RelProp reads one relation property.
type RelProp struct {
	ID int
	Prop
}

func (*RelProp) node()         {}
func (*RelProp) property()     {}
func (p *RelProp) NodeID() int { return p.ID }
func (*RelProp) Kind() Kind    { return KindRelProp }

// PropGroup combines props and nested groups under one quantifier kind.
type PropGroup struct {
	Quant  QuantKind
	Props  []Prop
	Groups []PropGroup
}

// EPropGroup is a property group attached to an entity.
type EPropGroup struct {
	ID int
	PropGroup
}

func (*EPropGroup) node()         {}
func (*EPropGroup) property()     {}
func (g *EPropGroup) NodeID() int { return g.ID }
func (*EPropGroup) Kind() Kind    { return KindEPropGroup }

// RelPropGroup is a property group attached to a relation.
type RelPropGroup struct {
	ID int
	PropGroup
}

func (*RelPropGroup) node()         {}
func (*RelPropGroup) property()     {}
func (g *RelPropGroup) NodeID() int { return g.ID }
func (*RelPropGroup) Kind() Kind    { return KindRelPropGroup }

// edges returns the ids n links to along next and successor edges, in order.
// Branch is returned separately because it is an alternate continuation.
func edges(n Node) (next []int, branch int) {
	switch v := n.(type) {
	case *Start:
		return single(v.Next), 0
	case *ETyped:
		return single(v.Next), v.Branch
	case *EConcrete:
		return single(v.Next), v.Branch
	case *EUntyped:
		return single(v.Next), v.Branch
	case *EndPattern:
		if v.Entity == nil {
			return nil, 0
		}
		return edges(v.Entity)
	case *Rel:
		return single(v.Next), v.Branch
	case *RelPattern:
		return single(v.Next), v.Branch
	case *Quant1:
		return v.Next, v.Branch
	case *HQuant:
		return v.Next, 0
	case *OptionalComp:
		return v.Next, 0
	}
	return nil, 0
}

func single(id int) []int {
	if id == 0 {
		return nil
	}
	return []int{id}
}
