package queryir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ontoql/internal/constraint"
	"github.com/roach88/ontoql/internal/ir"
)

// knowledgeQuery is an entity with a property group and a relation to a
// second entity carrying its own group.
func knowledgeQuery(t *testing.T) *Query {
	t.Helper()
	q, err := NewBuilder().
		Start().
		WithOntology("Knowledge").
		WithName("test").
		EType("Entity", "P1").
		Quant(QuantSome).
		EPropGroup(QuantAll, P("category"), PC("context", constraint.MustNew(constraint.OpNotEmpty))).
		Rel("hasOutRelation", DirR, "k").
		EType("Entity", "P2").
		Quant(QuantAll).
		EPropGroup(QuantAll, PC("deleteTime", constraint.MustNew(constraint.OpEmpty))).
		Build()
	require.NoError(t, err)
	return q
}

func TestBuilder_LinksByCurrentNode(t *testing.T) {
	q := knowledgeQuery(t)

	assert.Equal(t,
		"Start[0]:ETyped[Entity:1]:Quant1[2]:{3|4}:EPropGroup[3]:Rel[hasOutRelation:4]:ETyped[Entity:5]:Quant1[6]:{7}:EPropGroup[7]",
		Describe(q))
	assert.Equal(t, "test", q.QueryName())
	assert.Equal(t, "Knowledge", q.Ontology())
	assert.Equal(t, 8, q.Len())
}

func TestBuilder_PropertiesDoNotBecomeCurrent(t *testing.T) {
	b := NewBuilder().Start().EType("Book", "b").Quant(QuantAll)
	quantID := b.CurrentIndex()

	b.EProp(P("title")).EProp(P("year"))
	assert.Equal(t, quantID, b.CurrentIndex())

	cur := b.Current()
	require.IsType(t, &Quant1{}, cur)
	assert.Equal(t, []int{3, 4}, cur.(*Quant1).Next)
}

func TestBuilder_LatchesFirstError(t *testing.T) {
	b := NewBuilder().
		Start().
		EType("Book", "b").
		EProp(P("title")). // entity links its single successor here
		EProp(P("year"))   // second successor on an entity is rejected

	_, err := b.Build()
	require.Error(t, err)

	var be *BuilderError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "eProp", be.Op)
	assert.Equal(t, 3, be.NodeID)

	// Later calls are no-ops.
	b.Quant(QuantAll)
	assert.Equal(t, 3, b.Len())
}

func TestBuilder_RequiresStart(t *testing.T) {
	_, err := NewBuilder().EType("Book", "b").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Start must be called first")

	_, err = NewBuilder().Build()
	require.Error(t, err)

	_, err = NewBuilder().Start().Start().Build()
	assert.ErrorContains(t, err, "already started")
}

func TestBuilder_RejectsOverlappingTypeSets(t *testing.T) {
	_, err := NewBuilder().Start().EUntyped([]string{"A", "B"}, []string{"B"}, "x").Build()
	assert.ErrorContains(t, err, `type "B" is both permitted and excluded`)
}

func TestBuilder_RejectsBadEnums(t *testing.T) {
	_, err := NewBuilder().Start().EType("A", "a").Quant("most").Build()
	assert.ErrorContains(t, err, `unknown quantifier "most"`)

	_, err = NewBuilder().Start().EType("A", "a").Rel("knows", "up", "").Build()
	assert.ErrorContains(t, err, `unknown direction "up"`)

	_, err = NewBuilder().Start().EType("A", "a").RelPattern("knows", DirR, "", Range{Lower: 3, Upper: 1}).Build()
	assert.ErrorContains(t, err, "invalid path length 3..1")
}

type stubResolver map[string]bool

func (r stubResolver) ResolveProperty(name string) error {
	if r[name] {
		return nil
	}
	return errors.New("unknown property " + name)
}

func TestBuilder_ResolvesProperties(t *testing.T) {
	resolver := stubResolver{"title": true}

	_, err := NewBuilder().WithResolver(resolver).
		Start().EType("Book", "b").Quant(QuantAll).
		EProp(P("title")).
		Build()
	require.NoError(t, err)

	_, err = NewBuilder().WithResolver(resolver).
		Start().EType("Book", "b").Quant(QuantAll).
		EPropGroup(QuantAll, P("title"), P("isbn")).
		Build()
	assert.ErrorContains(t, err, "unknown property isbn")

	// Function props are derived and never resolved.
	_, err = NewBuilder().WithResolver(resolver).
		Start().EType("Book", "b").Quant(QuantAll).
		EProp(Prop{Name: "count", Ext: Function{Aggregation: "count"}}).
		Build()
	assert.NoError(t, err)
}

func TestBuilder_Pop(t *testing.T) {
	b := NewBuilder().Start().
		EType("Person", "p").Quant(QuantAll).
		Rel("wrote", DirR, "").EType("Book", "b")

	isQuant := func(n Node) bool { _, ok := n.(Quantifier); return ok }
	b.Pop(isQuant)
	assert.Equal(t, 2, b.CurrentIndex())

	b.EProp(P("name"))
	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, q.Successors(2))

	_, err = NewBuilder().Start().EType("A", "a").Pop(isQuant).Build()
	assert.ErrorContains(t, err, "no ancestor matches")
}

func TestBuilder_End(t *testing.T) {
	title := PC("title", constraint.MustNew(constraint.OpEq, ir.IRString("Dune")))
	q, err := NewBuilder().Start().EType("Book", "b").End(title).Build()
	require.NoError(t, err)

	n, ok := q.Node(1)
	require.True(t, ok)
	ep, ok := n.(*EndPattern)
	require.True(t, ok)
	assert.Equal(t, "b", ep.EntityTag())
	assert.Equal(t, 1, ep.NodeID())
	require.Len(t, ep.Filter, 1)
	assert.Equal(t, "title", ep.Filter[0].Name)

	_, err = NewBuilder().Start().End().Build()
	assert.ErrorContains(t, err, "Start is not an entity")
}

func TestBuilder_SetCurrentIndex(t *testing.T) {
	b := NewBuilder().Start().Quant(QuantAll)
	fanout := b.CurrentIndex()
	b.EType("Book", "b").SetCurrentIndex(fanout).EType("Author", "a")

	q, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, q.Successors(fanout))

	_, err = NewBuilder().Start().SetCurrentIndex(9).Build()
	assert.ErrorContains(t, err, "no node with id 9")
}

func TestBuilder_Graft(t *testing.T) {
	sub, err := NewBuilder().Start().
		EType("Author", "a").Quant(QuantAll).EProp(P("name")).
		Build()
	require.NoError(t, err)

	q, err := NewBuilder().Start().
		EType("Book", "b").Quant(QuantAll).EProp(P("title")).
		Rel("writtenBy", DirR, "").
		Graft(sub).
		Build()
	require.NoError(t, err)

	assert.Equal(t,
		"Start[0]:ETyped[Book:1]:Quant1[2]:{3|4}:EProp[3]:Rel[writtenBy:4]:ETyped[Author:5]:Quant1[6]:{7}:EProp[7]",
		Describe(q))
	p, ok := q.Parent(5)
	require.True(t, ok)
	assert.Equal(t, 4, p)
}

func TestBuilder_BuildDoesNotAliasBuilderState(t *testing.T) {
	b := NewBuilder().Start().EType("Book", "b").Quant(QuantAll).EProp(P("title"))
	q, err := b.Build()
	require.NoError(t, err)

	b.EProp(P("year"))
	assert.Equal(t, []int{3}, q.Successors(2))
}

func TestBuilder_BranchFromEntity(t *testing.T) {
	q, err := NewBuilder().Start().
		EType("Book", "b").Quant(QuantAll).EProp(P("title")).
		SetCurrentIndex(1).
		Branch().
		EType("Magazine", "m").Quant(QuantAll).EProp(P("issue")).
		Build()
	require.NoError(t, err)

	assert.Equal(t,
		"Start[0]:ETyped[Book:1]:Quant1[2]:{3}:EProp[3]:ETyped[Magazine:4]:Quant1[5]:{6}:EProp[6]",
		Describe(q))
	n, _ := q.Node(1)
	book := n.(*ETyped)
	assert.Equal(t, 2, book.Next)
	assert.Equal(t, 4, book.Branch)
	assert.Equal(t, []int{2, 4}, q.Successors(1))

	p, ok := q.Parent(4)
	require.True(t, ok)
	assert.Equal(t, 1, p)
}

func TestBuilder_BranchFromQuantifierAndRelation(t *testing.T) {
	q, err := NewBuilder().Start().
		EType("Book", "b").Quant(QuantAll).EProp(P("title")).
		Branch().EType("Magazine", "m").
		SetCurrentIndex(2).
		Rel("writtenBy", DirR, "").
		Branch().Rel("editedBy", DirR, "").EType("Author", "e").
		SetCurrentIndex(5).
		EType("Author", "a").
		Build()
	require.NoError(t, err)

	n, _ := q.Node(2)
	assert.Equal(t, []int{3, 5}, n.(*Quant1).Next)
	assert.Equal(t, 4, n.(*Quant1).Branch)

	n, _ = q.Node(5)
	rel := n.(*Rel)
	assert.Equal(t, 8, rel.Next)
	assert.Equal(t, 6, rel.Branch)
}

func TestBuilder_BranchRejections(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
		op   string
		msg  string
	}{
		{
			name: "before start",
			b:    NewBuilder().Branch(),
			op:   "branch",
			msg:  "Start must be called first",
		},
		{
			name: "start cannot branch",
			b:    NewBuilder().Start().Branch(),
			op:   "branch",
			msg:  "Start[0] cannot branch",
		},
		{
			name: "hierarchical quantifier cannot branch",
			b:    NewBuilder().Start().EType("Book", "b").HQuant(QuantAll).Branch(),
			op:   "branch",
			msg:  "HQuant[2] cannot branch",
		},
		{
			name: "occupied slot",
			b: NewBuilder().Start().EType("Book", "b").
				Branch().EType("Magazine", "m").
				SetCurrentIndex(1).Branch(),
			op:  "branch",
			msg: "ETyped[1] already branches to 2",
		},
		{
			name: "branch left open",
			b:    NewBuilder().Start().EType("Book", "b").Branch(),
			op:   "build",
			msg:  "nothing was added",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			require.Error(t, err)

			var be *BuilderError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.op, be.Op)
			assert.Contains(t, be.Error(), tt.msg)
		})
	}
}
