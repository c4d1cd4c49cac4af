// Package translate turns GraphQL-shaped query documents into query IR
// graphs. The document is parsed and validated against the surface derived
// from an ontology, then walked field by field; every field is handed to an
// ordered list of strategies that emit graph nodes.
package translate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/roach88/ontoql/internal/ontology"
	"github.com/roach88/ontoql/internal/queryir"
	"github.com/roach88/ontoql/internal/surface"
)

// DefaultQueryName names graphs from anonymous operations.
const DefaultQueryName = "query"

// Engine translates documents for one ontology generation.
//
// Thread-safety model:
//   - Translate(): safe from any goroutine; calls are serialized
//   - Reset(): safe from any goroutine; waits for the translation in flight
//
// Returned graphs are immutable and may be shared freely.
type Engine struct {
	mu         sync.Mutex
	accessor   *ontology.Accessor
	surface    *surface.Surface
	strategies []Strategy
	logger     *slog.Logger
	name       string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStrategies replaces the default strategies. They are consulted in
// order; the first one that accepts a field's type handles it.
func WithStrategies(strategies ...Strategy) EngineOption {
	return func(e *Engine) {
		e.strategies = append([]Strategy(nil), strategies...)
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithName sets the name given to graphs of anonymous operations.
// Default: DefaultQueryName.
func WithName(name string) EngineOption {
	return func(e *Engine) {
		e.name = name
	}
}

// DefaultStrategies returns the object, interface and value strategies.
func DefaultStrategies() []Strategy {
	return []Strategy{ObjectStrategy{}, InterfaceStrategy{}, ValueStrategy{}}
}

// New builds the surface for a and returns an engine translating against it.
func New(a *ontology.Accessor, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		strategies: DefaultStrategies(),
		logger:     slog.Default(),
		name:       DefaultQueryName,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.reset(a); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset rebuilds the surface for a new ontology generation. On failure the
// engine keeps translating against the previous one.
func (e *Engine) Reset(a *ontology.Accessor) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reset(a)
}

func (e *Engine) reset(a *ontology.Accessor) error {
	s, err := surface.New(a)
	if err != nil {
		return classify("build surface", err)
	}
	e.accessor = a
	e.surface = s
	e.logger.Info("surface built", "ontology", a.Name(), "entities", len(a.Entities()))
	return nil
}

// Surface returns the surface of the current ontology generation.
func (e *Engine) Surface() *surface.Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface
}

// Translate parses document, validates it against the surface and walks it
// into a finalized graph.
//
// Every validation error is reported, not only the first. Any error leaves
// no graph behind.
func (e *Engine) Translate(ctx context.Context, document string) (*queryir.Query, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := parser.Parse(parser.ParseParams{Source: document})
	if err != nil {
		return nil, NewDocumentError("parse query document", err.Error())
	}

	op, fragments, err := operation(doc)
	if err != nil {
		return nil, err
	}

	result := graphql.ValidateDocument(e.surface.Schema(), doc, nil)
	if !result.IsValid {
		problems := make([]string, len(result.Errors))
		for i, fe := range result.Errors {
			problems[i] = fe.Message
		}
		return nil, NewDocumentError("validate query document", problems...)
	}

	name := e.name
	if op.Name != nil && op.Name.Value != "" {
		name = op.Name.Value
	}
	b := queryir.NewBuilder().
		WithName(name).
		WithOntology(e.accessor.Name()).
		WithResolver(e.accessor)

	c := newContext(e.surface, b, e.logger, fragments, op)
	w := &walker{ctx: c, strategies: e.strategies}
	if err := w.walkOperation(op); err != nil {
		return nil, classify("translate query "+name, err)
	}
	if b.Len() == 0 {
		return nil, NewDocumentError("query " + name + " selects nothing translatable")
	}

	q, err := b.Build()
	if err != nil {
		return nil, classify("finalize query "+name, err)
	}

	e.logger.Info("query translated",
		"query", name,
		"ontology", e.accessor.Name(),
		"nodes", q.Len(),
	)
	return q, nil
}

// operation returns the single query operation of doc and its fragment
// definitions by name. The surface has no mutation or subscription root, so
// other operations are rejected before validation.
func operation(doc *ast.Document) (*ast.OperationDefinition, map[string]*ast.FragmentDefinition, error) {
	var ops []*ast.OperationDefinition
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.OperationDefinition:
			ops = append(ops, d)
		case *ast.FragmentDefinition:
			fragments[d.Name.Value] = d
		}
	}

	switch {
	case len(ops) == 0:
		return nil, nil, NewDocumentError("document contains no operation")
	case len(ops) > 1:
		return nil, nil, NewDocumentError("document must contain exactly one operation", opNames(ops)...)
	}
	if ops[0].Operation != ast.OperationTypeQuery {
		return nil, nil, NewDocumentError("only query operations can be translated", "got "+ops[0].Operation)
	}
	return ops[0], fragments, nil
}

func opNames(ops []*ast.OperationDefinition) []string {
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = "<anonymous>"
		if op.Name != nil {
			names[i] = op.Name.Value
		}
	}
	return names
}
