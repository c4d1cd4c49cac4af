// Package queryir provides the graph-shaped query intermediate representation
// (IR) that translated queries are lowered into.
//
// A query graph is a numbered node table. Every node carries an integer id
// allocated by the Builder's counter and relationships between nodes are
// expressed as ids, never as pointers:
//
//	Start[0] ──> ETyped[Book:1] ──> Quant1[2] ──┬─> EProp[3] title
//	                                            └─> Rel[wrote:4] ──> ETyped[Author:5] ...
//
// ARENA:
//
// Query.nodes[id] holds the node with that id. Id 0 is always the Start node
// and nothing points back at it, so a Next or Branch of 0 means "absent".
// Ids are dense after Build; Renumbered may open a gap when graphs are
// composed.
//
// NODE VARIANTS:
//
// Node is a sealed interface. The variants fall into three categories, each
// with its own sealed sub-interface:
//
//	Entity      ETyped, EUntyped, EConcrete, EndPattern
//	Quantifier  Quant1, HQuant, OptionalComp
//	Property    EProp, RelProp, EPropGroup, RelPropGroup
//
// Start, Rel and RelPattern belong to no category. Only the pointer form of
// each variant implements Node, so type switches match on *ETyped, *Quant1
// and so on.
//
// LIFECYCLE:
//
// Nodes are created only through the Builder during one translation run.
// Build finalizes the graph (pruning, id checks, arity checks, cycle check)
// and returns an immutable *Query. Accessors on Query hand out deep copies,
// so a finalized graph can be shared read-only across goroutines.
//
// DESCRIPTORS:
//
// Describe renders a graph on one line in id order and Print renders it as a
// tree. Both are used by golden tests and the CLI.
package queryir
