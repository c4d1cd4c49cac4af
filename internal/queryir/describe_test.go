package queryir

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/ontoql/internal/constraint"
	"github.com/roach88/ontoql/internal/ir"
)

func TestDescribeNode(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"concrete", &EConcrete{ETyped: ETyped{ID: 1, Tag: "1", Type: "label"}, ConcreteID: "id123", ConcreteName: "name"}, "EConcrete[label:1:ID[id123]]"},
		{"typed", &ETyped{ID: 1, Tag: "1", Type: "label"}, "ETyped[label:1]"},
		{"untyped", &EUntyped{ID: 2, VTypes: []string{"A", "B"}}, "EUntyped[A|B:2]"},
		{"quant", &Quant1{ID: 1, Quant: QuantAll, Next: []int{1, 2, 3}}, "Quant1[1]:{1|2|3}"},
		{"rel", &Rel{ID: 1, Type: "knows", Dir: DirL, Wrapper: "wrap", Next: 2}, "Rel[knows:1]"},
		{"rel pattern", &RelPattern{Rel: Rel{ID: 4, Type: "knows", Dir: DirR}, Length: Range{Lower: 1, Upper: 3}}, "RelPattern[knows:4:1..3]"},
		{"nil", nil, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeNode(tt.node))
		})
	}
}

func TestDescribeWithProps(t *testing.T) {
	group := PropGroup{Quant: QuantAll, Props: []Prop{
		PC("name", constraint.MustNew(constraint.OpEq, ir.IRString("March"))),
		PC("property", constraint.MustNew(constraint.OpNotEmpty)),
		PC("age", constraint.MustNew(constraint.OpGe, ir.IRInt(20))),
	}}
	assert.Equal(t,
		"ETyped[label:1]::[name<eq,March>, property<notEmpty,>, age<ge,20>]",
		DescribeWithProps(&ETyped{ID: 1, Type: "label"}, group))

	relGroup := PropGroup{Quant: QuantAll, Props: []Prop{
		PC("date", constraint.MustNew(constraint.OpGe, ir.IRString("01/01/2000"))),
		PC("degree", constraint.MustNew(constraint.OpNotEmpty)),
	}}
	assert.Equal(t,
		"Rel[knows:1]::[date<ge,01/01/2000>, degree<notEmpty,>]",
		DescribeWithProps(&Rel{ID: 1, Type: "knows", Dir: DirL}, relGroup))
}

func TestDescribeProp(t *testing.T) {
	assert.Equal(t, "label<projection>", DescribeProp(P("label")))
	assert.Equal(t, "age<ge,20>", DescribeProp(PC("age", constraint.MustNew(constraint.OpGe, ir.IRInt(20)))))
	assert.Equal(t, "year<inRange,[1990, 2000]>",
		DescribeProp(PC("year", constraint.MustNew(constraint.OpInRange, ir.IRInt(1990), ir.IRInt(2000)))))
}

func TestDescribe_EndPattern(t *testing.T) {
	q, err := NewBuilder().Start().
		EType("Book", "b").End(PC("title", constraint.MustNew(constraint.OpEq, ir.IRString("Dune")))).
		Build()
	assert.NoError(t, err)
	assert.Equal(t, "Start[0]:EndPattern[ETyped[Book:1]]::[title<eq,Dune>]", Describe(q))
}

func TestPrint_Golden(t *testing.T) {
	q := knowledgeQuery(t)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "print_with_ids", []byte(Print(q, true)))
	g.Assert(t, "print_without_ids", []byte(Print(q, false)))
}

func TestPrint_StartOnly(t *testing.T) {
	q, err := NewBuilder().Start().Build()
	assert.NoError(t, err)
	assert.Equal(t, "└── Start", Print(q, true))
	assert.Equal(t, "Start[0]", Describe(q))
}

func TestPrint_SingleChain(t *testing.T) {
	q, err := NewBuilder().Start().EType("Book", "b").Rel("writtenBy", DirR, "").EType("Author", "a").Build()
	assert.NoError(t, err)
	assert.Equal(t, "└── Start\n    ──Typ[Book:1]──Rel(writtenBy:2)──Typ[Author:3]", Print(q, true))
}
