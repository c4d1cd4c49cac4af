package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ontoql/internal/constraint"
	"github.com/roach88/ontoql/internal/ir"
)

func TestClone_PreservesFields(t *testing.T) {
	nodes := []Node{
		&Start{ID: 0, Next: 1},
		&ETyped{ID: 1, Tag: "b", Type: "Book", Parents: []string{"Work"}, Next: 2, Branch: 7},
		&EConcrete{ETyped: ETyped{ID: 2, Tag: "d", Type: "Book"}, ConcreteID: "isbn-1", ConcreteName: "Dune"},
		&EUntyped{ID: 3, VTypes: []string{"A", "B"}, NVTypes: []string{"C"}, Next: 4},
		&Rel{ID: 4, Type: "wrote", Dir: DirL, Wrapper: "w", Next: 5},
		&RelPattern{Rel: Rel{ID: 5, Type: "knows", Dir: DirRL}, Length: Range{Lower: 1, Upper: 3}},
		&Quant1{ID: 6, Quant: QuantSome, Next: []int{7, 8}},
		&HQuant{ID: 7, Quant: QuantAll, Next: []int{6}},
		&OptionalComp{ID: 8, Next: []int{9}},
		&EProp{ID: 9, Prop: Prop{Name: "title", Schematic: "title.keyword", Ext: Ranked{Boost: 2}}},
		&RelProp{ID: 10, Prop: PC("since", constraint.MustNew(constraint.OpGe, ir.IRInt(2000)))},
		&EPropGroup{ID: 11, PropGroup: PropGroup{Quant: QuantAll, Props: []Prop{P("a")}, Groups: []PropGroup{{Quant: QuantSome, Props: []Prop{P("b")}}}}},
		&RelPropGroup{ID: 12, PropGroup: PropGroup{Quant: QuantSome, Props: []Prop{P("c")}}},
		&EndPattern{Entity: &ETyped{ID: 13, Type: "Book"}, Filter: []Prop{P("d")}},
	}

	for _, n := range nodes {
		t.Run(string(n.Kind()), func(t *testing.T) {
			c := Clone(n)
			assert.True(t, Equal(n, c))
			assert.NotSame(t, n, c)
		})
	}
}

func TestClone_WithID(t *testing.T) {
	orig := &ETyped{ID: 1, Tag: "b", Type: "Book", Next: 2}
	c := Clone(orig, WithID(42)).(*ETyped)

	assert.Equal(t, 42, c.ID)
	assert.Equal(t, 2, c.Next)
	c.ID = 1
	assert.True(t, Equal(orig, c), "only the id differs")

	ep := Clone(&EndPattern{Entity: &ETyped{ID: 3, Type: "A"}}, WithID(9))
	assert.Equal(t, 9, ep.NodeID())
}

func TestClone_WithRenumber(t *testing.T) {
	q := &Quant1{ID: 2, Quant: QuantAll, Next: []int{3, 4}, Branch: 5}
	c := Clone(q, WithRenumber(map[int]int{2: 12, 3: 13, 5: 15})).(*Quant1)

	assert.Equal(t, 12, c.ID)
	assert.Equal(t, []int{13, 4}, c.Next)
	assert.Equal(t, 15, c.Branch)

	// WithID wins over the renumbering of the node's own id.
	c = Clone(q, WithID(1), WithRenumber(map[int]int{2: 12})).(*Quant1)
	assert.Equal(t, 1, c.ID)
}

func TestClone_IsDeep(t *testing.T) {
	orig := &EPropGroup{ID: 3, PropGroup: PropGroup{
		Quant: QuantAll,
		Props: []Prop{PC("tags", constraint.MustNew(constraint.OpInSet, ir.IRString("a"), ir.IRString("b")))},
		Groups: []PropGroup{{Quant: QuantSome, Props: []Prop{P("x")}}},
	}}
	c := Clone(orig).(*EPropGroup)

	c.Props[0].Name = "changed"
	c.Props[0].Constraint.(constraint.Literal).Operands[0] = ir.IRString("changed")
	c.Groups[0].Props[0].Name = "changed"

	assert.Equal(t, "tags", orig.Props[0].Name)
	assert.Equal(t, ir.IRString("a"), orig.Props[0].Constraint.(constraint.Literal).Operands[0])
	assert.Equal(t, "x", orig.Groups[0].Props[0].Name)

	q := &Quant1{ID: 1, Next: []int{2}}
	qc := Clone(q).(*Quant1)
	qc.Next[0] = 99
	assert.Equal(t, 2, q.Next[0])

	e := &ETyped{ID: 1, Parents: []string{"A"}}
	ec := Clone(e).(*ETyped)
	ec.Parents[0] = "B"
	assert.Equal(t, "A", e.Parents[0])
}

func TestQuery_Renumbered(t *testing.T) {
	q := knowledgeQuery(t)
	r := q.Renumbered(10)

	assert.Equal(t, q.Len(), r.Len())
	start, ok := r.Node(0)
	require.True(t, ok)
	assert.Equal(t, 11, start.(*Start).Next)

	quant, ok := r.Node(12)
	require.True(t, ok)
	assert.Equal(t, []int{13, 14}, quant.(*Quant1).Next)

	_, ok = r.Node(1)
	assert.False(t, ok, "ids below the offset are gaps")
	assert.Empty(t, Validate(r))
	assert.True(t, q.Equal(q.Renumbered(0)))
}

func TestQuery_Equal(t *testing.T) {
	a := knowledgeQuery(t)
	b := knowledgeQuery(t)
	assert.True(t, a.Equal(b))

	c, err := NewBuilder().Start().WithName("test").WithOntology("Knowledge").EType("Entity", "P1").Build()
	require.NoError(t, err)
	assert.False(t, a.Equal(c))

	var nilQuery *Query
	assert.False(t, a.Equal(nilQuery))
	assert.True(t, nilQuery.Equal(nil))
}
