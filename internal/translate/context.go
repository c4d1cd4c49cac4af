package translate

import (
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/roach88/ontoql/internal/ontology"
	"github.com/roach88/ontoql/internal/queryir"
	"github.com/roach88/ontoql/internal/surface"
)

// PathContext maps response paths to the id of the node each produced.
// Paths join response keys with dots: "book.writtenBy.name".
type PathContext map[string]int

// Field is the position of the field being translated.
type Field struct {
	// Name is the schema field name.
	Name string

	// Key is the response key: the alias when one is given, else Name.
	Key string

	// Path is the response path of the field, unique within the document.
	Path string

	// ParentPath is the response path of the enclosing entity field, empty
	// for root fields.
	ParentPath string

	// ParentType is the object or interface the field was selected on.
	ParentType string

	// Definition is the field as declared by the surface.
	Definition *graphql.FieldDefinition

	// AST is the field as written in the document.
	AST *ast.Field
}

// Root reports whether the field is selected on the query root.
func (f *Field) Root() bool { return f.ParentPath == "" }

// Context is the per-translation state shared by the walker and the
// strategies. It lives for exactly one Translate call.
type Context struct {
	Surface  *surface.Surface
	Accessor *ontology.Accessor
	Builder  *queryir.Builder

	// Field is the field being translated.
	Field *Field

	// Paths records the node produced for every translated field.
	Paths PathContext

	logger    *slog.Logger
	fragments map[string]*ast.FragmentDefinition
	variables map[string]*ast.VariableDefinition
	visits    map[string]int

	roots  int
	fanout int
}

func newContext(s *surface.Surface, b *queryir.Builder, logger *slog.Logger, fragments map[string]*ast.FragmentDefinition, op *ast.OperationDefinition) *Context {
	vars := make(map[string]*ast.VariableDefinition, len(op.VariableDefinitions))
	for _, vd := range op.VariableDefinitions {
		vars[vd.Variable.Name.Value] = vd
	}
	return &Context{
		Surface:   s,
		Accessor:  s.Accessor(),
		Builder:   b,
		Paths:     make(PathContext),
		logger:    logger,
		fragments: fragments,
		variables: vars,
		visits:    make(map[string]int),
		fanout:    -1,
	}
}

// Logger returns the engine logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// visit returns a response path for key under parent. A path seen before
// gets a "#n" suffix so every occurrence keeps its own node.
func (c *Context) visit(parent, key string) string {
	path := key
	if parent != "" {
		path = parent + "." + key
	}
	c.visits[path]++
	if n := c.visits[path]; n > 1 {
		path = fmt.Sprintf("%s#%d", path, n)
	}
	return path
}

// Visits returns how many times a response path was walked.
func (c *Context) Visits(path string) int { return c.visits[path] }

// ParentNode returns the node produced by the enclosing entity field.
func (c *Context) ParentNode() (int, error) {
	id, ok := c.Paths[c.Field.ParentPath]
	if !ok {
		return 0, NewSchemaError("field %q has no translated parent at %q", c.Field.Name, c.Field.ParentPath)
	}
	return id, nil
}

// OpenEntity positions the builder for a new entity of the current field and
// adds it. A root field starts the graph, or hangs off the root fan-out when
// the operation selects several root fields. Any other field is reached from
// its parent entity, through a relation step named after the field.
func (c *Context) OpenEntity(typ string, parents ...string) (int, error) {
	b := c.Builder
	if c.Field.Root() {
		switch {
		case b.Len() == 0 && c.roots > 1:
			b.Start().Quant(queryir.QuantAll)
			c.fanout = b.CurrentIndex()
		case b.Len() == 0:
			b.Start()
		case c.fanout >= 0:
			b.SetCurrentIndex(c.fanout)
		default:
			return 0, NewSchemaError("root field %q reached a started graph without a fan-out", c.Field.Key)
		}
	} else {
		parent, err := c.ParentNode()
		if err != nil {
			return 0, err
		}
		b.SetCurrentIndex(c.EntityQuant(parent))
		b.Rel(c.Field.Name, queryir.DirR, "")
	}

	b.EType(typ, c.Field.Key, parents...)
	if err := b.Err(); err != nil {
		return 0, err
	}
	return b.CurrentIndex(), nil
}

// EntityQuant returns the quantifier grouping everything attached to the
// entity with id, adding an all-quantifier when the entity has none yet.
func (c *Context) EntityQuant(id int) int {
	b := c.Builder
	n, ok := b.Node(id)
	if !ok {
		return id
	}
	switch e := n.(type) {
	case *queryir.ETyped:
		if e.Next != 0 {
			if _, isQuant := mustNode(b, e.Next).(*queryir.Quant1); isQuant {
				return e.Next
			}
		}
	case *queryir.Quant1:
		return id
	}
	b.SetCurrentIndex(id).Quant(queryir.QuantAll)
	return b.CurrentIndex()
}

func mustNode(b *queryir.Builder, id int) queryir.Node {
	n, _ := b.Node(id)
	return n
}

// AddProp attaches a property read to the entity with id and returns the
// new node's id.
func (c *Context) AddProp(entity int, p queryir.Prop) (int, error) {
	b := c.Builder
	b.SetCurrentIndex(c.EntityQuant(entity))
	id := b.Len()
	b.EProp(p)
	if err := b.Err(); err != nil {
		return 0, err
	}
	return id, nil
}
