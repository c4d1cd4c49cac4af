// Package harness runs YAML translation scenarios against an ontology.
//
// A scenario names an ontology file and a list of cases. Each case is a
// query document, optionally an expected error code, and assertions on the
// translated graph: its descriptor, node counts, tags, props and rendered
// SQL. Successful translations are cataloged in a fresh in-memory store with
// sequential ids, so identical graphs within a scenario share one id.
//
// RunWithGolden serializes the per-case outcome as canonical JSON and
// compares it against testdata/golden/<scenario>.golden.
package harness
