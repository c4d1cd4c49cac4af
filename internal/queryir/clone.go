package queryir

import (
	"reflect"
	"slices"
)

// CloneOption configures Clone.
type CloneOption func(*cloneConfig)

type cloneConfig struct {
	id       int
	hasID    bool
	renumber map[int]int
}

// WithID gives the clone a new id.
func WithID(id int) CloneOption {
	return func(c *cloneConfig) {
		c.id = id
		c.hasID = true
	}
}

// WithRenumber rewrites every id the clone references through m. Ids absent
// from m are kept. The clone's own id is rewritten too unless WithID is
// also given.
func WithRenumber(m map[int]int) CloneOption {
	return func(c *cloneConfig) {
		c.renumber = m
	}
}

func (c *cloneConfig) ref(id int) int {
	if id == 0 {
		return 0
	}
	if to, ok := c.renumber[id]; ok {
		return to
	}
	return id
}

func (c *cloneConfig) refs(ids []int) []int {
	if ids == nil {
		return nil
	}
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = c.ref(id)
	}
	return out
}

func (c *cloneConfig) self(id int) int {
	if c.hasID {
		return c.id
	}
	if to, ok := c.renumber[id]; ok {
		return to
	}
	return id
}

// Clone deep-copies n. Every field is preserved except the id (WithID) and
// the referenced ids (WithRenumber). Collections are never shared between
// the clone and the original.
func Clone(n Node, opts ...CloneOption) Node {
	cfg := &cloneConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cloneNode(n, cfg)
}

func cloneNode(n Node, cfg *cloneConfig) Node {
	switch v := n.(type) {
	case nil:
		return nil
	case *Start:
		return &Start{ID: cfg.self(v.ID), Next: cfg.ref(v.Next)}
	case *ETyped:
		e := cloneETyped(v, cfg)
		return &e
	case *EConcrete:
		return &EConcrete{ETyped: cloneETyped(&v.ETyped, cfg), ConcreteID: v.ConcreteID, ConcreteName: v.ConcreteName}
	case *EUntyped:
		return &EUntyped{
			ID:      cfg.self(v.ID),
			Tag:     v.Tag,
			VTypes:  slices.Clone(v.VTypes),
			NVTypes: slices.Clone(v.NVTypes),
			Next:    cfg.ref(v.Next),
			Branch:  cfg.ref(v.Branch),
		}
	case *EndPattern:
		inner, _ := cloneNode(v.Entity, cfg).(Entity)
		return &EndPattern{Entity: inner, Filter: cloneProps(v.Filter)}
	case *Rel:
		r := cloneRel(v, cfg)
		return &r
	case *RelPattern:
		return &RelPattern{Rel: cloneRel(&v.Rel, cfg), Length: v.Length}
	case *Quant1:
		return &Quant1{ID: cfg.self(v.ID), Quant: v.Quant, Next: cfg.refs(v.Next), Branch: cfg.ref(v.Branch)}
	case *HQuant:
		return &HQuant{ID: cfg.self(v.ID), Quant: v.Quant, Next: cfg.refs(v.Next)}
	case *OptionalComp:
		return &OptionalComp{ID: cfg.self(v.ID), Next: cfg.refs(v.Next)}
	case *EProp:
		return &EProp{ID: cfg.self(v.ID), Prop: cloneProp(v.Prop)}
	case *RelProp:
		return &RelProp{ID: cfg.self(v.ID), Prop: cloneProp(v.Prop)}
	case *EPropGroup:
		return &EPropGroup{ID: cfg.self(v.ID), PropGroup: cloneGroup(v.PropGroup)}
	case *RelPropGroup:
		return &RelPropGroup{ID: cfg.self(v.ID), PropGroup: cloneGroup(v.PropGroup)}
	}
	return n
}

func cloneETyped(v *ETyped, cfg *cloneConfig) ETyped {
	return ETyped{
		ID:      cfg.self(v.ID),
		Tag:     v.Tag,
		Type:    v.Type,
		Parents: slices.Clone(v.Parents),
		Next:    cfg.ref(v.Next),
		Branch:  cfg.ref(v.Branch),
	}
}

func cloneRel(v *Rel, cfg *cloneConfig) Rel {
	return Rel{
		ID:      cfg.self(v.ID),
		Tag:     v.Tag,
		Type:    v.Type,
		Dir:     v.Dir,
		Wrapper: v.Wrapper,
		Next:    cfg.ref(v.Next),
		Branch:  cfg.ref(v.Branch),
	}
}

// Equal reports whether two nodes are structurally equal: same id, same
// bound data and same successor ids.
func Equal(a, b Node) bool {
	return reflect.DeepEqual(a, b)
}
