package translate

import (
	"slices"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/roach88/ontoql/internal/queryir"
	"github.com/roach88/ontoql/internal/surface"
)

// metaFields are introspection fields. They select no ontology data.
var metaFields = map[string]bool{
	"__typename": true,
	"__schema":   true,
	"__type":     true,
}

// selected is a field together with the type it was selected on. Fields of
// an inline fragment or spread are selected on the fragment's type
// condition.
type selected struct {
	field  *ast.Field
	parent string
}

type walker struct {
	ctx        *Context
	strategies []Strategy
}

func (w *walker) walkOperation(op *ast.OperationDefinition) error {
	roots, err := w.collect(op.SelectionSet, "Query", "", nil)
	if err != nil {
		return err
	}
	w.ctx.roots = len(roots)
	for _, s := range roots {
		if err := w.walkField(s, ""); err != nil {
			return err
		}
	}
	return nil
}

// collect flattens a selection set into its fields in document order.
// Fragments are inlined, introspection fields and fields excluded by @skip or
// @include are dropped. scope is the entity type the selection set reads;
// a fragment whose type condition is neither parent, scope nor an ancestor
// of scope selects nothing on it and is dropped as well.
func (w *walker) collect(set *ast.SelectionSet, parent, scope string, seen map[string]bool) ([]selected, error) {
	if set == nil {
		return nil, nil
	}
	var out []selected
	for _, sel := range set.Selections {
		var (
			directives []*ast.Directive
			cond       *ast.Named
			inner      *ast.SelectionSet
			next       = seen
		)
		switch s := sel.(type) {
		case *ast.Field:
			if metaFields[s.Name.Value] {
				continue
			}
			ok, err := w.included(s.Directives)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, selected{field: s, parent: parent})
			}
			continue
		case *ast.InlineFragment:
			directives, cond, inner = s.Directives, s.TypeCondition, s.SelectionSet
		case *ast.FragmentSpread:
			name := s.Name.Value
			def, ok := w.ctx.fragments[name]
			if !ok || seen[name] {
				continue
			}
			directives, cond, inner = s.Directives, def.TypeCondition, def.SelectionSet
			next = make(map[string]bool, len(seen)+1)
			for k := range seen {
				next[k] = true
			}
			next[name] = true
		default:
			continue
		}

		ok, err := w.included(directives)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		on := typeCondition(cond, parent)
		if !w.applies(on, parent, scope) {
			w.ctx.logger.Debug("fragment skipped", "on", on, "entity", scope)
			continue
		}
		fields, err := w.collect(inner, on, scope, next)
		if err != nil {
			return nil, err
		}
		out = append(out, fields...)
	}
	return out, nil
}

// applies reports whether a fragment on type cond selects fields of the
// entity type scope reached through a field of type parent.
func (w *walker) applies(cond, parent, scope string) bool {
	if scope == "" || cond == parent || cond == scope {
		return true
	}
	return slices.Contains(w.ctx.Accessor.Ancestors(scope), cond)
}

func typeCondition(cond *ast.Named, fallback string) string {
	if cond == nil || cond.Name == nil {
		return fallback
	}
	return cond.Name.Value
}

// included evaluates @skip and @include. A variable condition uses the
// variable's default; one without a default is rejected.
func (w *walker) included(directives []*ast.Directive) (bool, error) {
	for _, d := range directives {
		var cond bool
		switch d.Name.Value {
		case "skip":
			cond = true
		case "include":
			cond = false
		default:
			continue
		}
		for _, arg := range d.Arguments {
			if arg.Name.Value != "if" {
				continue
			}
			v, err := w.ctx.requireValue(arg.Value, "the condition of @"+d.Name.Value)
			if err != nil {
				return false, err
			}
			bv, ok := v.(*ast.BooleanValue)
			if !ok {
				return false, NewDocumentError("@" + d.Name.Value + " needs a boolean condition")
			}
			if bv.Value == cond {
				return false, nil
			}
		}
	}
	return true, nil
}

// walkField translates one field and, when it opened an entity, its
// selection set.
func (w *walker) walkField(s selected, parentPath string) error {
	c := w.ctx
	name := s.field.Name.Value
	def, ok := c.Surface.Field(s.parent, name)
	if !ok {
		return NewSchemaError("field %q is not defined on %s", name, s.parent)
	}

	key := name
	if s.field.Alias != nil && s.field.Alias.Value != "" {
		key = s.field.Alias.Value
	}
	c.Field = &Field{
		Name:       name,
		Key:        key,
		Path:       c.visit(parentPath, key),
		ParentPath: parentPath,
		ParentType: s.parent,
		Definition: def,
		AST:        s.field,
	}

	t := surface.Unwrap(def.Type)
	frag, ok, err := w.dispatch(t)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Debug("field declined", "path", c.Field.Path, "type", t.Name())
		return nil
	}

	path := c.Field.Path
	c.Paths[path] = frag.Node
	if !frag.Entity {
		return nil
	}
	children, err := w.collect(s.field.SelectionSet, t.Name(), w.entityType(frag.Node, t.Name()), nil)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := w.walkField(child, path); err != nil {
			return err
		}
	}
	return nil
}

// entityType returns the type of the typed entity with id, or fallback when
// a strategy opened some other kind of node.
func (w *walker) entityType(id int, fallback string) string {
	if n, ok := w.ctx.Builder.Node(id); ok {
		if e, ok := n.(*queryir.ETyped); ok {
			return e.Type
		}
	}
	return fallback
}

func (w *walker) dispatch(t graphql.Type) (Fragment, bool, error) {
	c := w.ctx
	for _, s := range w.strategies {
		frag, ok, err := s.Translate(c, t)
		if err != nil || ok {
			c.logger.Debug("field translated",
				"path", c.Field.Path,
				"type", t.Name(),
				"strategy", s.Name(),
				"node", frag.Node,
			)
			return frag, ok, err
		}
	}
	return Fragment{}, false, nil
}
