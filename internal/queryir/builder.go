package queryir

import (
	"errors"
	"fmt"
	"slices"
)

// Resolver checks property names against an ontology. ontology.Accessor
// satisfies it.
type Resolver interface {
	ResolveProperty(name string) error
}

// BuilderError is the first error latched by a Builder. Build returns it
// unchanged.
type BuilderError struct {
	Op     string
	NodeID int
	Err    error
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("builder %s (node %d): %v", e.Op, e.NodeID, e.Err)
}

func (e *BuilderError) Unwrap() error { return e.Err }

// Builder accumulates the nodes of one graph.
//
// Every method returns the builder for chaining. The first failure is
// latched: later calls become no-ops and Build reports it.
//
// Allocating a node links its id to the current node: appended to a
// quantifier's successor list, or set as an entity's or relation's Next.
// After Branch the next allocation fills the branch slot instead. Entities,
// relations and quantifiers become the current node; properties do not.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	nodes    []Node
	parent   map[int]int
	current  int
	name     string
	ontology string
	resolver Resolver
	err      error

	// branchFrom is the node whose branch slot takes the next allocation,
	// or -1.
	branchFrom int
}

// NewBuilder returns an empty builder. Call Start before anything else.
func NewBuilder() *Builder {
	return &Builder{parent: make(map[int]int), branchFrom: -1}
}

// WithName names the graph.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithOntology records the ontology the graph is written against.
func (b *Builder) WithOntology(name string) *Builder {
	b.ontology = name
	return b
}

// WithResolver makes property nodes check their names against r.
func (b *Builder) WithResolver(r Resolver) *Builder {
	b.resolver = r
	return b
}

// Err returns the latched error, if any.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(op string, id int, err error) *Builder {
	if b.err == nil {
		b.err = &BuilderError{Op: op, NodeID: id, Err: err}
	}
	return b
}

// Start allocates the Start node with id 0.
func (b *Builder) Start() *Builder {
	if b.err != nil {
		return b
	}
	if len(b.nodes) != 0 {
		return b.fail("start", 0, errors.New("graph already started"))
	}
	b.nodes = append(b.nodes, &Start{ID: 0})
	b.current = 0
	return b
}

// next returns the id the next allocation will receive.
func (b *Builder) next() int { return len(b.nodes) }

// add links n to the current node and stores it. When makeCurrent is set n
// becomes the current node.
func (b *Builder) add(op string, n Node, makeCurrent bool) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.nodes) == 0 {
		return b.fail(op, n.NodeID(), errors.New("Start must be called first"))
	}
	from, err := b.attach(n.NodeID())
	if err != nil {
		return b.fail(op, n.NodeID(), err)
	}
	b.parent[n.NodeID()] = from
	b.nodes = append(b.nodes, n)
	if makeCurrent {
		b.current = n.NodeID()
	}
	return b
}

// attach links id to the pending branch slot, or else to the current node,
// and returns the id of the node it was linked from.
func (b *Builder) attach(id int) (int, error) {
	if from := b.branchFrom; from >= 0 {
		b.branchFrom = -1
		*branchSlot(b.nodes[from]) = id
		return from, nil
	}
	return b.current, link(b.nodes[b.current], id)
}

// Branch makes the next allocated node the branch of the current entity,
// relation or single-level quantifier, an alternate continuation beside its
// Next. The current node must be able to branch and must not branch yet.
func (b *Builder) Branch() *Builder {
	if b.err != nil {
		return b
	}
	if len(b.nodes) == 0 {
		return b.fail("branch", 0, errors.New("Start must be called first"))
	}
	cur := b.nodes[b.current]
	slot := branchSlot(cur)
	switch {
	case slot == nil:
		return b.fail("branch", b.current, fmt.Errorf("%s[%d] cannot branch", cur.Kind(), b.current))
	case *slot != 0:
		return b.fail("branch", b.current, fmt.Errorf("%s[%d] already branches to %d", cur.Kind(), b.current, *slot))
	case b.branchFrom >= 0:
		return b.fail("branch", b.current, fmt.Errorf("branch of node %d is still pending", b.branchFrom))
	}
	b.branchFrom = b.current
	return b
}

// link attaches id as a successor of from.
func link(from Node, id int) error {
	switch v := from.(type) {
	case *Quant1:
		v.Next = append(v.Next, id)
		return nil
	case *HQuant:
		v.Next = append(v.Next, id)
		return nil
	case *OptionalComp:
		v.Next = append(v.Next, id)
		return nil
	}
	slot := nextSlot(from)
	if slot == nil {
		return fmt.Errorf("cannot link %d after %s[%d]", id, from.Kind(), from.NodeID())
	}
	if *slot != 0 {
		return fmt.Errorf("%s[%d] already continues to %d", from.Kind(), from.NodeID(), *slot)
	}
	*slot = id
	return nil
}

func nextSlot(n Node) *int {
	switch v := n.(type) {
	case *Start:
		return &v.Next
	case *ETyped:
		return &v.Next
	case *EConcrete:
		return &v.Next
	case *EUntyped:
		return &v.Next
	case *EndPattern:
		if v.Entity == nil {
			return nil
		}
		return nextSlot(v.Entity)
	case *Rel:
		return &v.Next
	case *RelPattern:
		return &v.Next
	}
	return nil
}

// EType adds a typed entity. Parents names supertypes of typ.
func (b *Builder) EType(typ, tag string, parents ...string) *Builder {
	if typ == "" {
		return b.fail("eType", b.next(), errors.New("entity type is required"))
	}
	return b.add("eType", &ETyped{ID: b.next(), Tag: tag, Type: typ, Parents: slices.Clone(parents)}, true)
}

// EUntyped adds an entity filtered by permitted and excluded type sets.
func (b *Builder) EUntyped(vTypes, nvTypes []string, tag string) *Builder {
	for _, t := range vTypes {
		if slices.Contains(nvTypes, t) {
			return b.fail("eUntyped", b.next(), fmt.Errorf("type %q is both permitted and excluded", t))
		}
	}
	return b.add("eUntyped", &EUntyped{ID: b.next(), Tag: tag, VTypes: slices.Clone(vTypes), NVTypes: slices.Clone(nvTypes)}, true)
}

// Concrete adds an entity anchored to one instance.
func (b *Builder) Concrete(id, name, typ, tag string) *Builder {
	if typ == "" {
		return b.fail("concrete", b.next(), errors.New("entity type is required"))
	}
	n := &EConcrete{ETyped: ETyped{ID: b.next(), Tag: tag, Type: typ}, ConcreteID: id, ConcreteName: name}
	return b.add("concrete", n, true)
}

// Rel adds a relation step.
func (b *Builder) Rel(typ string, dir Direction, tag string) *Builder {
	if !dir.Valid() {
		return b.fail("rel", b.next(), fmt.Errorf("unknown direction %q", dir))
	}
	return b.add("rel", &Rel{ID: b.next(), Tag: tag, Type: typ, Dir: dir}, true)
}

// RelPattern adds a variable-length relation step.
func (b *Builder) RelPattern(typ string, dir Direction, tag string, length Range) *Builder {
	if !dir.Valid() {
		return b.fail("relPattern", b.next(), fmt.Errorf("unknown direction %q", dir))
	}
	if length.Lower < 0 || length.Upper < length.Lower {
		return b.fail("relPattern", b.next(), fmt.Errorf("invalid path length %s", length))
	}
	n := &RelPattern{Rel: Rel{ID: b.next(), Tag: tag, Type: typ, Dir: dir}, Length: length}
	return b.add("relPattern", n, true)
}

// Quant adds a single-level quantifier.
func (b *Builder) Quant(kind QuantKind) *Builder {
	if !kind.Valid() {
		return b.fail("quant", b.next(), fmt.Errorf("unknown quantifier %q", kind))
	}
	return b.add("quant", &Quant1{ID: b.next(), Quant: kind}, true)
}

// HQuant adds a hierarchical quantifier. Its successors must be quantifiers;
// Build enforces this.
func (b *Builder) HQuant(kind QuantKind) *Builder {
	if !kind.Valid() {
		return b.fail("hQuant", b.next(), fmt.Errorf("unknown quantifier %q", kind))
	}
	return b.add("hQuant", &HQuant{ID: b.next(), Quant: kind}, true)
}

// Optional adds an optional component.
func (b *Builder) Optional() *Builder {
	return b.add("optional", &OptionalComp{ID: b.next()}, true)
}

// EProp adds an entity property.
func (b *Builder) EProp(p Prop) *Builder {
	if err := b.resolve(p); err != nil {
		return b.fail("eProp", b.next(), err)
	}
	return b.add("eProp", &EProp{ID: b.next(), Prop: cloneProp(p)}, false)
}

// EPropGroup adds a flat entity property group.
func (b *Builder) EPropGroup(kind QuantKind, props ...Prop) *Builder {
	return b.EPropGroupOf(PropGroup{Quant: kind, Props: props})
}

// EPropGroupOf adds an entity property group with nested groups.
func (b *Builder) EPropGroupOf(g PropGroup) *Builder {
	if err := b.resolveGroup(g); err != nil {
		return b.fail("ePropGroup", b.next(), err)
	}
	return b.add("ePropGroup", &EPropGroup{ID: b.next(), PropGroup: cloneGroup(g)}, false)
}

// RProp adds a relation property.
func (b *Builder) RProp(p Prop) *Builder {
	if err := b.resolve(p); err != nil {
		return b.fail("rProp", b.next(), err)
	}
	return b.add("rProp", &RelProp{ID: b.next(), Prop: cloneProp(p)}, false)
}

// RPropGroup adds a flat relation property group.
func (b *Builder) RPropGroup(kind QuantKind, props ...Prop) *Builder {
	return b.RPropGroupOf(PropGroup{Quant: kind, Props: props})
}

// RPropGroupOf adds a relation property group with nested groups.
func (b *Builder) RPropGroupOf(g PropGroup) *Builder {
	if err := b.resolveGroup(g); err != nil {
		return b.fail("rPropGroup", b.next(), err)
	}
	return b.add("rPropGroup", &RelPropGroup{ID: b.next(), PropGroup: cloneGroup(g)}, false)
}

func (b *Builder) resolve(p Prop) error {
	if p.Name == "" {
		return errors.New("property name is required")
	}
	if b.resolver == nil || !p.Physical() {
		return nil
	}
	return b.resolver.ResolveProperty(p.Name)
}

func (b *Builder) resolveGroup(g PropGroup) error {
	if !g.Quant.Valid() {
		return fmt.Errorf("unknown quantifier %q", g.Quant)
	}
	for _, p := range g.allProps() {
		if err := b.resolve(p); err != nil {
			return err
		}
	}
	return nil
}

// End wraps the current entity in an end pattern carrying filters.
func (b *Builder) End(filters ...Prop) *Builder {
	if b.err != nil {
		return b
	}
	cur, ok := b.nodes[b.current].(Entity)
	if !ok {
		return b.fail("end", b.current, fmt.Errorf("%s is not an entity", b.nodes[b.current].Kind()))
	}
	for _, p := range filters {
		if err := b.resolve(p); err != nil {
			return b.fail("end", b.current, err)
		}
	}
	if ep, wrapped := cur.(*EndPattern); wrapped {
		ep.Filter = append(ep.Filter, cloneProps(filters)...)
		return b
	}
	b.nodes[b.current] = &EndPattern{Entity: cur, Filter: cloneProps(filters)}
	return b
}

// Pop moves the current node up the attachment chain to the nearest
// ancestor satisfying pred.
func (b *Builder) Pop(pred func(Node) bool) *Builder {
	if b.err != nil {
		return b
	}
	id := b.current
	for id != 0 {
		id = b.parent[id]
		if pred(b.nodes[id]) {
			b.current = id
			return b
		}
	}
	return b.fail("pop", b.current, errors.New("no ancestor matches"))
}

// Current returns a copy of the current node, or nil before Start.
func (b *Builder) Current() Node {
	if len(b.nodes) == 0 {
		return nil
	}
	return Clone(b.nodes[b.current])
}

// CurrentIndex returns the id of the current node.
func (b *Builder) CurrentIndex() int { return b.current }

// SetCurrentIndex makes the node with id current.
func (b *Builder) SetCurrentIndex(id int) *Builder {
	if b.err != nil {
		return b
	}
	if id < 0 || id >= len(b.nodes) {
		return b.fail("setCurrent", id, fmt.Errorf("no node with id %d", id))
	}
	b.current = id
	return b
}

// Node returns a copy of an already allocated node.
func (b *Builder) Node(id int) (Node, bool) {
	if id < 0 || id >= len(b.nodes) {
		return nil, false
	}
	return Clone(b.nodes[id]), true
}

// Len returns the number of allocated nodes.
func (b *Builder) Len() int { return len(b.nodes) }

// Graft renumbers sub past the nodes allocated so far and links its first
// step to the current node, or to a pending branch. The current node does
// not change.
func (b *Builder) Graft(sub *Query) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.nodes) == 0 {
		return b.fail("graft", 0, errors.New("Start must be called first"))
	}
	start, ok := sub.node(0).(*Start)
	if !ok || start.Next == 0 {
		return b.fail("graft", b.current, errors.New("subgraph has no first step"))
	}
	offset := len(b.nodes) - 1
	moved := sub.Renumbered(offset)
	if slices.Contains(moved.nodes[offset+1:], nil) {
		return b.fail("graft", b.current, errors.New("subgraph has id gaps"))
	}
	first := start.Next + offset
	from, err := b.attach(first)
	if err != nil {
		return b.fail("graft", b.current, err)
	}
	b.nodes = append(b.nodes, moved.nodes[offset+1:]...)
	for id := offset + 1; id < len(b.nodes); id++ {
		if p, ok := moved.Parent(id); ok && p != 0 {
			b.parent[id] = p
		}
	}
	b.parent[first] = from
	return b
}
