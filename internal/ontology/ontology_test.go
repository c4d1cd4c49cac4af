package ontology

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func library(t *testing.T) *Accessor {
	t.Helper()
	o, err := Load("testdata/library.yaml")
	require.NoError(t, err)
	a, err := NewAccessor(o)
	require.NoError(t, err)
	return a
}

func TestLoad_CUEAndYAMLAgree(t *testing.T) {
	fromYAML, err := Load("testdata/library.yaml")
	require.NoError(t, err)

	fromCUE, err := Load("testdata/library.cue")
	require.NoError(t, err)
	assert.Equal(t, fromYAML, fromCUE)

	fromDir, err := Load("testdata")
	require.NoError(t, err)
	assert.Equal(t, fromYAML, fromDir)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("testdata/missing.cue")
	assert.Error(t, err)

	_, err = Load("ontology_test.go")
	assert.ErrorContains(t, err, `unsupported file extension ".go"`)

	_, err = LoadYAML(strings.NewReader("name: x\nentitys: []\n"))
	assert.ErrorContains(t, err, "decode ontology yaml")
}

func TestCompileCUE_Errors(t *testing.T) {
	_, err := CompileCUE([]byte(`other: 1`), "x.cue")
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "ontology", ce.Field)

	_, err = CompileCUE([]byte("ontology: {\n\tname: \"x\"\n\tproperties: title: {schematic: \"t\"}\n}\n"), "x.cue")
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "type", ce.Field)
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, ce.Error(), "x.cue:")

	_, err = CompileCUE([]byte("ontology: {\n\tname: 42\n}\n"), "x.cue")
	assert.ErrorContains(t, err, "42")
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Field: "name", Message: "name is required"}
	assert.Equal(t, "name: name is required", err.Error())
}

func TestAccessor_Lookups(t *testing.T) {
	a := library(t)
	assert.Equal(t, "library", a.Name())

	book, ok := a.Entity("Book")
	require.True(t, ok)
	assert.Equal(t, []string{"Work"}, book.Parents)
	_, ok = a.Entity("Film")
	assert.False(t, ok)

	rel, ok := a.Relation("writtenBy")
	require.True(t, ok)
	assert.True(t, rel.Directional)
	assert.Equal(t, []Pair{{From: "Book", To: "Author"}}, rel.Pairs)

	p, err := a.Property("title")
	require.NoError(t, err)
	assert.Equal(t, "title_kw", p.Field())

	_, err = a.Property("isbn")
	assert.True(t, IsUnknown(err))
	assert.EqualError(t, err, `unknown property "isbn"`)
	assert.NoError(t, a.ResolveProperty("year"))
	assert.Error(t, a.ResolveProperty("isbn"))

	genre, ok := a.Enum("Genre")
	require.True(t, ok)
	assert.Equal(t, []string{"SCIFI", "FANTASY", "HISTORY"}, genre.Values)
}

func TestAccessor_Match(t *testing.T) {
	a := library(t)
	tests := []struct {
		name string
		want NodeKind
		ok   bool
	}{
		{"Genre", NodeEnum, true},
		{"Book", NodeEntity, true},
		{"writtenBy", NodeRelation, true},
		{"title", NodeProperty, true},
		{"nothing", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := a.Match(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestAccessor_Hierarchy(t *testing.T) {
	a := library(t)

	impls := a.Implementers("Work")
	require.Len(t, impls, 2)
	assert.Equal(t, "Book", impls[0].Name, "declaration order")
	assert.Equal(t, "Magazine", impls[1].Name)
	assert.Empty(t, a.Implementers("Author"))

	assert.Equal(t, []string{"Work"}, a.Ancestors("Book"))
	assert.Equal(t, []string{"year", "genre", "tags", "rating", "id", "title"}, a.PropertiesOf("Book"))
	assert.True(t, a.HasProperty("Magazine", "title"))
	assert.False(t, a.HasProperty("Magazine", "genre"))
	assert.Nil(t, a.PropertiesOf("Film"))

	rels := a.RelationsFrom("Book")
	require.Len(t, rels, 1)
	assert.Equal(t, "writtenBy", rels[0].Name)
	assert.Empty(t, a.RelationsFrom("Magazine"))

	target, ok := a.Target("wrote", "Author")
	require.True(t, ok)
	assert.Equal(t, "Book", target)
	_, ok = a.Target("wrote", "Book")
	assert.False(t, ok)
}

func TestAccessor_ReturnsCopies(t *testing.T) {
	a := library(t)

	book, _ := a.Entity("Book")
	book.Parents[0] = "Changed"
	again, _ := a.Entity("Book")
	assert.Equal(t, "Work", again.Parents[0])

	o := a.Ontology()
	o.Entities[0].Name = "Changed"
	_, ok := a.Entity("Work")
	assert.True(t, ok)
	assert.Equal(t, "Work", a.Entities()[0].Name)
}

func TestNewAccessor_Invalid(t *testing.T) {
	_, err := NewAccessor(&Ontology{Name: "empty"})
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
	assert.Contains(t, err.Error(), `invalid ontology "empty"`)

	assert.Panics(t, func() { MustAccessor(&Ontology{}) })
}

func validOntology() *Ontology {
	return &Ontology{
		Name:       "test",
		Properties: []Property{{Name: "title", Type: TypeString}},
		Entities:   []EntityType{{Name: "Book", Properties: []string{"title"}}},
	}
}

func codesOf(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Ontology)
		codes  []string
	}{
		{"valid", func(o *Ontology) {}, []string{}},
		{"missing name", func(o *Ontology) { o.Name = "" }, []string{ErrStructure}},
		{"bad name", func(o *Ontology) { o.Entities[0].Name = "my-book" }, []string{ErrStructure}},
		{"no entities", func(o *Ontology) { o.Entities = nil }, []string{ErrStructure}},
		{"duplicate across kinds", func(o *Ontology) {
			o.Enums = []EnumeratedType{{Name: "Book", Values: []string{"A"}}}
		}, []string{ErrDuplicateName}},
		{"duplicate enum value", func(o *Ontology) {
			o.Enums = []EnumeratedType{{Name: "Kind", Values: []string{"A", "A"}}}
		}, []string{ErrDuplicateName}},
		{"unknown property", func(o *Ontology) {
			o.Entities[0].Properties = append(o.Entities[0].Properties, "isbn")
		}, []string{ErrUnknownProperty}},
		{"unknown parent", func(o *Ontology) { o.Entities[0].Parents = []string{"Work"} }, []string{ErrUnknownEntity}},
		{"unknown relation endpoints", func(o *Ontology) {
			o.Relations = []RelationshipType{{Name: "cites", Pairs: []Pair{{From: "Book", To: "Paper"}}, Properties: []string{"since"}}}
		}, []string{ErrUnknownProperty, ErrUnknownEntity}},
		{"relation without pairs", func(o *Ontology) {
			o.Relations = []RelationshipType{{Name: "cites"}}
		}, []string{ErrStructure}},
		{"empty enum", func(o *Ontology) { o.Enums = []EnumeratedType{{Name: "Kind"}} }, []string{ErrEmptyEnum}},
		{"unknown property type", func(o *Ontology) { o.Properties[0].Type = "varchar" }, []string{ErrUnknownType}},
		{"abstract without implementer", func(o *Ontology) {
			o.Entities = append(o.Entities, EntityType{Name: "Work", Abstract: true})
		}, []string{ErrNoImplementers}},
		{"abstract implemented through abstract child", func(o *Ontology) {
			o.Entities = append(o.Entities,
				EntityType{Name: "Thing", Abstract: true},
				EntityType{Name: "Work", Abstract: true, Parents: []string{"Thing"}})
			o.Entities[0].Parents = []string{"Work"}
		}, []string{}},
		{"self parent", func(o *Ontology) { o.Entities[0].Parents = []string{"Book"} }, []string{ErrParentCycle}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOntology()
			tt.mutate(o)
			assert.ElementsMatch(t, tt.codes, codesOf(Validate(o)))
		})
	}
}

func TestValidate_ParentCycleMessage(t *testing.T) {
	o := validOntology()
	o.Entities = append(o.Entities,
		EntityType{Name: "A", Parents: []string{"B"}},
		EntityType{Name: "B", Parents: []string{"C"}},
		EntityType{Name: "C", Parents: []string{"A"}})

	errs := Validate(o)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrParentCycle, errs[0].Code)
	assert.Equal(t, "parent type cycle: A -> B -> C -> A", errs[0].Message)
	assert.Equal(t, "entities[3].parents", errs[0].Field)
}

func TestValidate_StructureFieldPaths(t *testing.T) {
	o := validOntology()
	o.Properties[0].Type = ""

	errs := Validate(o)
	require.Len(t, errs, 1)
	assert.Equal(t, "properties[0].type", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "[E100] properties[0].type: is required", errs[0].Error())
}
