package surface

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ontoql/internal/ontology"
	"github.com/roach88/ontoql/internal/testutil"
)

func librarySurface(t *testing.T) *Surface {
	t.Helper()
	s, err := New(testutil.Library(t))
	require.NoError(t, err)
	return s
}

func TestPrint_Golden(t *testing.T) {
	s := librarySurface(t)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "library_surface", []byte(s.Print()))
}

func TestSurface_Fields(t *testing.T) {
	s := librarySurface(t)

	entity, ok := s.RootEntity("book")
	require.True(t, ok)
	assert.Equal(t, "Book", entity)
	_, ok = s.RootEntity("Book")
	assert.False(t, ok)

	fd, ok := s.Field("Query", "work")
	require.True(t, ok)
	assert.Equal(t, "[Work!]", fd.Type.String())
	_, isIface := Unwrap(fd.Type).(*graphql.Interface)
	assert.True(t, isIface)

	fd, ok = s.Field("Book", "writtenBy")
	require.True(t, ok)
	assert.Equal(t, "Author", Unwrap(fd.Type).Name())
	require.Len(t, fd.Args, 1)
	assert.Equal(t, WhereArg, fd.Args[0].Name())

	fd, ok = s.Field("Work", "title")
	require.True(t, ok)
	assert.Equal(t, graphql.String, Unwrap(fd.Type))

	fd, ok = s.Field("Book", "genre")
	require.True(t, ok)
	_, isEnum := Unwrap(fd.Type).(*graphql.Enum)
	assert.True(t, isEnum)

	_, ok = s.Field("Book", "name")
	assert.False(t, ok)
	_, ok = s.Field("Genre", "SCIFI")
	assert.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	assert.Equal(t, graphql.String, Unwrap(graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))))
	assert.Equal(t, graphql.Int, Unwrap(graphql.Int))
}

func TestRootField(t *testing.T) {
	assert.Equal(t, "book", RootField("Book"))
	assert.Equal(t, "eTag", RootField("ETag"))
	assert.Equal(t, "", RootField(""))
}

func TestNew_RootFieldCollision(t *testing.T) {
	a := ontology.MustAccessor(&ontology.Ontology{
		Name:     "clash",
		Entities: []ontology.EntityType{{Name: "Book"}, {Name: "book"}},
	})
	_, err := New(a)
	assert.ErrorContains(t, err, `root field "book" is claimed by Book and book`)
}

func TestNew_AliasedScalars(t *testing.T) {
	a := ontology.MustAccessor(&ontology.Ontology{
		Name: "events",
		Properties: []ontology.Property{
			{Name: "at", Type: ontology.TypeDatetime},
			{Name: "size", Type: ontology.TypeLong},
			{Name: "addr", Type: ontology.TypeIP},
			{Name: "labels", Type: ontology.TypeJSON, Array: true},
		},
		Entities: []ontology.EntityType{{Name: "Event", Properties: []string{"at", "size", "addr", "labels"}}},
	})
	s, err := New(a)
	require.NoError(t, err)

	for field, want := range map[string]string{"at": "DateTime", "size": "Long", "addr": "String", "labels": "[JSON]"} {
		fd, ok := s.Field("Event", field)
		require.True(t, ok, field)
		assert.Equal(t, want, fd.Type.String(), field)
	}
}

func validate(t *testing.T, s *Surface, query string) []string {
	t.Helper()
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	require.NoError(t, err)

	result := graphql.ValidateDocument(s.Schema(), doc, nil)
	msgs := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		msgs[i] = e.Message
	}
	return msgs
}

func TestSchema_ValidatesWhereClauses(t *testing.T) {
	s := librarySurface(t)

	assert.Empty(t, validate(t, s, `{
		book(where: {operator: AND, constraints: [
			{operand: "year", operator: inRange, expression: [1990, 2000]},
			{operand: "title", operator: eq, expression: "Dune"},
			{operand: "genre", operator: inSet, expression: [SCIFI, FANTASY]},
			{operand: "rating", operator: gt, expression: 4.5},
			{operand: "title", operator: notEmpty}
		]}) { title writtenBy { name } }
	}`))

	assert.Empty(t, validate(t, s, `query Q($y: Value = 1990) {
		book(where: {constraints: [{operand: "year", operator: ge, expression: $y}]}) { title }
	}`))

	assert.Empty(t, validate(t, s, `{ work { title ... on Book { year } } }`))

	assert.NotEmpty(t, validate(t, s, `{ book { isbn } }`))
	assert.NotEmpty(t, validate(t, s, `{ book(where: {constraints: [{operand: "year", operator: between}]}) { title } }`))
	assert.NotEmpty(t, validate(t, s, `{ book(where: {constraints: [{operand: "year", operator: eq, expression: {a: 1}}]}) { title } }`))
	assert.NotEmpty(t, validate(t, s, `{ book { writtenBy } }`), "object fields need a selection")
}
