package queryir

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/ontoql/internal/constraint"
)

// Graph validation error codes (E200-E299)
const (
	ErrStartMissing      = "E200" // node 0 is not a Start node
	ErrDanglingRef       = "E201" // next/branch/successor id not allocated
	ErrHQuantSuccessor   = "E202" // hierarchical quantifier successor is not a quantifier
	ErrConstraintInvalid = "E203" // constraint fails arity or operator checks
	ErrTypeSetOverlap    = "E204" // untyped entity permits and excludes the same type
	ErrInvalidKind       = "E205" // unknown quantifier kind or direction
	ErrTraversalCycle    = "E206" // node reachable from itself along next edges
	ErrIDMismatch        = "E207" // node stored under a slot other than its id
)

// ValidationError is one failed graph check.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Node    int    `json:"node"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// GraphError collects every failed check of one graph.
type GraphError struct {
	Errors []ValidationError
}

func (e *GraphError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid query graph (%d errors): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// IsGraphError reports whether err is (or wraps) a *GraphError.
func IsGraphError(err error) bool {
	var ge *GraphError
	return errors.As(err, &ge)
}

// Build finalizes the graph.
//
// Steps:
//  1. Trailing empty quantifiers are pruned and unlinked, repeatedly
//  2. Every referenced id must be allocated
//  3. Hierarchical quantifier successors must be quantifiers
//  4. Every constraint is re-checked against its operator arity
//  5. Next, successor and branch edges must not form a cycle
//
// A latched builder error is returned as is. Validation failures are
// returned together as a *GraphError. No partial graph is ever returned.
func (b *Builder) Build() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.nodes) == 0 {
		return nil, &BuilderError{Op: "build", Err: errors.New("Start was never called")}
	}
	if b.branchFrom >= 0 {
		return nil, &BuilderError{Op: "build", NodeID: b.branchFrom, Err: errors.New("branch was opened but nothing was added to it")}
	}

	nodes := make([]Node, len(b.nodes))
	for i, n := range b.nodes {
		nodes[i] = Clone(n)
	}
	nodes = pruneTrailing(nodes)

	q := &Query{name: b.name, ontology: b.ontology, nodes: nodes}
	if errs := Validate(q); len(errs) > 0 {
		return nil, &GraphError{Errors: errs}
	}
	return q, nil
}

// pruneTrailing drops empty quantifiers from the end of the table and
// removes every reference to them.
func pruneTrailing(nodes []Node) []Node {
	for len(nodes) > 1 {
		last := nodes[len(nodes)-1]
		qn, ok := last.(Quantifier)
		if !ok || len(qn.Successors()) > 0 {
			break
		}
		id := last.NodeID()
		nodes = nodes[:len(nodes)-1]
		for _, n := range nodes {
			unlink(n, id)
		}
	}
	return nodes
}

func unlink(n Node, id int) {
	switch v := n.(type) {
	case *Quant1:
		v.Next = slices.DeleteFunc(v.Next, func(x int) bool { return x == id })
		if v.Branch == id {
			v.Branch = 0
		}
		return
	case *HQuant:
		v.Next = slices.DeleteFunc(v.Next, func(x int) bool { return x == id })
		return
	case *OptionalComp:
		v.Next = slices.DeleteFunc(v.Next, func(x int) bool { return x == id })
		return
	}
	if slot := nextSlot(n); slot != nil && *slot == id {
		*slot = 0
	}
	if slot := branchSlot(n); slot != nil && *slot == id {
		*slot = 0
	}
}

func branchSlot(n Node) *int {
	switch v := n.(type) {
	case *ETyped:
		return &v.Branch
	case *EConcrete:
		return &v.Branch
	case *EUntyped:
		return &v.Branch
	case *EndPattern:
		if v.Entity == nil {
			return nil
		}
		return branchSlot(v.Entity)
	case *Rel:
		return &v.Branch
	case *RelPattern:
		return &v.Branch
	case *Quant1:
		return &v.Branch
	}
	return nil
}

// Validate runs the graph checks of Build over q and returns every failure.
// It does not fail fast.
func Validate(q *Query) []ValidationError {
	var errs []ValidationError

	// E200: node 0 is Start
	if _, ok := q.node(0).(*Start); !ok {
		errs = append(errs, ValidationError{
			Field:   "nodes[0]",
			Message: "graph must begin with a Start node",
			Code:    ErrStartMissing,
		})
	}

	for slot, n := range q.nodes {
		if n == nil {
			continue
		}
		id := n.NodeID()
		field := fmt.Sprintf("nodes[%d]", slot)

		// E207: id matches its slot
		if id != slot {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("node id %d stored in slot %d", id, slot),
				Code:    ErrIDMismatch,
				Node:    id,
			})
		}

		// E201: referenced ids exist and never point back at Start
		next, branch := edges(n)
		refs := slices.Clone(next)
		if branch != 0 {
			refs = append(refs, branch)
		}
		for _, ref := range refs {
			if ref <= 0 || q.node(ref) == nil {
				errs = append(errs, ValidationError{
					Field:   field + ".next",
					Message: fmt.Sprintf("%s[%d] references unallocated node %d", n.Kind(), id, ref),
					Code:    ErrDanglingRef,
					Node:    id,
				})
			}
		}

		errs = append(errs, validateNode(q, n, field)...)
	}

	errs = append(errs, validateAcyclic(q)...)
	return errs
}

func validateNode(q *Query, n Node, field string) []ValidationError {
	var errs []ValidationError
	id := n.NodeID()

	switch v := n.(type) {
	case *HQuant:
		// E202: successors are quantifiers
		for _, ref := range v.Next {
			if target := q.node(ref); target != nil {
				if _, ok := target.(Quantifier); !ok {
					errs = append(errs, ValidationError{
						Field:   field + ".next",
						Message: fmt.Sprintf("HQuant[%d] successor %d is %s, not a quantifier", id, ref, target.Kind()),
						Code:    ErrHQuantSuccessor,
						Node:    id,
					})
				}
			}
		}
	case *EUntyped:
		// E204: disjoint type sets
		for _, t := range v.VTypes {
			if slices.Contains(v.NVTypes, t) {
				errs = append(errs, ValidationError{
					Field:   field + ".vTypes",
					Message: fmt.Sprintf("type %q is both permitted and excluded", t),
					Code:    ErrTypeSetOverlap,
					Node:    id,
				})
			}
		}
	}

	// E205: closed enumerations
	if qn, ok := n.(Quantifier); ok && !qn.QuantKind().Valid() {
		errs = append(errs, ValidationError{
			Field:   field + ".quant",
			Message: fmt.Sprintf("unknown quantifier %q", qn.QuantKind()),
			Code:    ErrInvalidKind,
			Node:    id,
		})
	}
	if r := relOf(n); r != nil && !r.Dir.Valid() {
		errs = append(errs, ValidationError{
			Field:   field + ".dir",
			Message: fmt.Sprintf("unknown direction %q", r.Dir),
			Code:    ErrInvalidKind,
			Node:    id,
		})
	}

	// E203: constraints
	for i, p := range propsOf(n) {
		if err := constraint.Validate(p.Constraint); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.props[%d]", field, i),
				Message: fmt.Sprintf("property %q: %v", p.Name, err),
				Code:    ErrConstraintInvalid,
				Node:    id,
			})
		}
	}
	return errs
}

func relOf(n Node) *Rel {
	switch v := n.(type) {
	case *Rel:
		return v
	case *RelPattern:
		return &v.Rel
	}
	return nil
}

// validateAcyclic rejects any strongly connected component along next,
// successor and branch edges (E206).
func validateAcyclic(q *Query) []ValidationError {
	graph := make(map[int][]int, len(q.nodes))
	var order []int
	for _, n := range q.nodes {
		if n == nil {
			continue
		}
		next, branch := edges(n)
		if branch != 0 {
			next = append(slices.Clone(next), branch)
		}
		graph[n.NodeID()] = next
		order = append(order, n.NodeID())
	}

	var errs []ValidationError
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		slices.Sort(scc)
		parts := make([]string, len(scc))
		for i, id := range scc {
			parts[i] = fmt.Sprint(id)
		}
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("nodes[%d]", scc[0]),
			Message: fmt.Sprintf("traversal cycle through nodes %s", strings.Join(parts, " -> ")),
			Code:    ErrTraversalCycle,
			Node:    scc[0],
		})
	}
	return errs
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in order so results are deterministic.
func tarjanSCC(graph map[int][]int, order []int) [][]int {
	var (
		index   = 0
		stack   []int
		indices = make(map[int]int)
		lowlink = make(map[int]int)
		onStack = make(map[int]bool)
		sccs    [][]int
	)

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, known := graph[w]; !known {
				continue // dangling, reported as E201
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}
