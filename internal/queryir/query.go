package queryir

import (
	"slices"

	"github.com/roach88/ontoql/internal/constraint"
)

// Query is a finalized, immutable query graph.
//
// Accessors return deep copies so callers can never mutate the graph after
// Build. Query satisfies constraint.Subquery and may be nested inside an
// inner-query constraint.
type Query struct {
	name     string
	ontology string
	nodes    []Node // indexed by id; nil slots are gaps left by Renumbered
}

var _ constraint.Subquery = (*Query)(nil)

// QueryName returns the name given with Builder.WithName.
func (q *Query) QueryName() string { return q.name }

// Ontology returns the ontology name given with Builder.WithOntology.
func (q *Query) Ontology() string { return q.ontology }

// Len returns the number of nodes in the graph.
func (q *Query) Len() int {
	n := 0
	for _, node := range q.nodes {
		if node != nil {
			n++
		}
	}
	return n
}

// Node returns a copy of the node with id.
func (q *Query) Node(id int) (Node, bool) {
	n := q.node(id)
	if n == nil {
		return nil, false
	}
	return Clone(n), true
}

func (q *Query) node(id int) Node {
	if id < 0 || id >= len(q.nodes) {
		return nil
	}
	return q.nodes[id]
}

// Nodes returns copies of every node in id order.
func (q *Query) Nodes() []Node {
	out := make([]Node, 0, len(q.nodes))
	for _, n := range q.nodes {
		if n != nil {
			out = append(out, Clone(n))
		}
	}
	return out
}

// Successors returns the ids id links to along next and successor edges,
// followed by its branch when present.
func (q *Query) Successors(id int) []int {
	n := q.node(id)
	if n == nil {
		return nil
	}
	next, branch := edges(n)
	out := slices.Clone(next)
	if branch != 0 {
		out = append(out, branch)
	}
	return out
}

// Parent returns the id of the node linking to id. Start has no parent.
func (q *Query) Parent(id int) (int, bool) {
	for _, n := range q.nodes {
		if n == nil {
			continue
		}
		if slices.Contains(q.Successors(n.NodeID()), id) {
			return n.NodeID(), true
		}
	}
	return 0, false
}

// FindAll returns copies of the nodes satisfying pred, in id order.
func (q *Query) FindAll(pred func(Node) bool) []Node {
	var out []Node
	for _, n := range q.nodes {
		if n != nil && pred(n) {
			out = append(out, Clone(n))
		}
	}
	return out
}

// FindByKind returns the nodes of kind k.
func (q *Query) FindByKind(k Kind) []Node {
	return q.FindAll(func(n Node) bool { return n.Kind() == k })
}

// FindByTag returns the first entity or relation tagged tag.
func (q *Query) FindByTag(tag string) (Node, bool) {
	found := q.FindAll(func(n Node) bool { return tag != "" && tagOf(n) == tag })
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

func tagOf(n Node) string {
	switch v := n.(type) {
	case Entity:
		return v.EntityTag()
	case *Rel:
		return v.Tag
	case *RelPattern:
		return v.Tag
	}
	return ""
}

// Path returns the ids on the shortest edge path from one node to another,
// both ends included. ok is false when to is unreachable.
func (q *Query) Path(from, to int) (path []int, ok bool) {
	if q.node(from) == nil || q.node(to) == nil {
		return nil, false
	}
	prev := map[int]int{from: -1}
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			for id := to; id != -1; id = prev[id] {
				path = append(path, id)
			}
			slices.Reverse(path)
			return path, true
		}
		for _, next := range q.Successors(cur) {
			if _, seen := prev[next]; !seen {
				prev[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return nil, false
}

// InnerQueries returns the subquery graphs referenced by inner-query
// constraints, depth first.
func (q *Query) InnerQueries() []*Query {
	var out []*Query
	for _, n := range q.nodes {
		for _, p := range propsOf(n) {
			sub := innerQueryOf(p.Constraint)
			if sub == nil {
				continue
			}
			out = append(out, sub)
			out = append(out, sub.InnerQueries()...)
		}
	}
	return out
}

func innerQueryOf(c constraint.Constraint) *Query {
	var sub constraint.Subquery
	switch v := c.(type) {
	case constraint.InnerQuery:
		sub = v.Query
	case *constraint.InnerQuery:
		sub = v.Query
	}
	q, _ := sub.(*Query)
	return q
}

// propsOf returns every prop carried by n, including end-pattern filters.
func propsOf(n Node) []Prop {
	switch v := n.(type) {
	case *EProp:
		return []Prop{v.Prop}
	case *RelProp:
		return []Prop{v.Prop}
	case *EPropGroup:
		return v.allProps()
	case *RelPropGroup:
		return v.allProps()
	case *EndPattern:
		return v.Filter
	}
	return nil
}

// Renumbered returns a copy of the graph with every non-start id shifted by
// offset, so it can be composed with another graph without id clashes.
// Start keeps id 0.
func (q *Query) Renumbered(offset int) *Query {
	if offset < 0 {
		offset = 0
	}
	m := make(map[int]int, len(q.nodes))
	maxID := 0
	for _, n := range q.nodes {
		if n == nil || n.NodeID() == 0 {
			continue
		}
		m[n.NodeID()] = n.NodeID() + offset
		maxID = max(maxID, n.NodeID()+offset)
	}
	out := &Query{name: q.name, ontology: q.ontology, nodes: make([]Node, maxID+1)}
	for _, n := range q.nodes {
		if n == nil {
			continue
		}
		c := Clone(n, WithRenumber(m))
		out.nodes[c.NodeID()] = c
	}
	return out
}

// Equal reports whether two graphs hold structurally equal nodes under the
// same name and ontology.
func (q *Query) Equal(other *Query) bool {
	if q == nil || other == nil {
		return q == other
	}
	if q.name != other.name || q.ontology != other.ontology || len(q.nodes) != len(other.nodes) {
		return false
	}
	for i := range q.nodes {
		if !Equal(q.nodes[i], other.nodes[i]) {
			return false
		}
	}
	return true
}
