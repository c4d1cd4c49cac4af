package translate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ontoql/internal/constraint"
	"github.com/roach88/ontoql/internal/ontology"
	"github.com/roach88/ontoql/internal/queryir"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"arity", &constraint.ArityError{Op: constraint.OpEq, Arity: constraint.SingleValue, Got: 0}, ErrCodeArity},
		{"wrapped arity", fmt.Errorf("constraint on %q: %w", "year", &constraint.ArityError{Op: constraint.OpEq}), ErrCodeArity},
		{"unbound", &constraint.UnboundError{Name: "y"}, ErrCodeUnbound},
		{"unknown property", &ontology.SchemaError{Kind: ontology.NodeProperty, Name: "isbn"}, ErrCodeSchema},
		{"graph arity", &queryir.GraphError{Errors: []queryir.ValidationError{
			{Code: queryir.ErrDanglingRef}, {Code: queryir.ErrConstraintInvalid},
		}}, ErrCodeArity},
		{"graph", &queryir.GraphError{Errors: []queryir.ValidationError{{Code: queryir.ErrTraversalCycle}}}, ErrCodeSchema},
		{"other", errors.New("boom"), ErrCodeSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("translate", tt.err)
			assert.Equal(t, tt.want, got.Code)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	doc := NewDocumentError("validate", "a", "b")
	assert.Same(t, doc, classify("again", fmt.Errorf("wrapped: %w", doc)))
}

func TestError_Format(t *testing.T) {
	assert.Equal(t, "QUERY_DOCUMENT: validate: a; b", NewDocumentError("validate", "a", "b").Error())
	assert.Equal(t, `SCHEMA_INCONSISTENCY: interface "Work" has no implementing entity`,
		NewSchemaError("interface %q has no implementing entity", "Work").Error())

	err := fmt.Errorf("outer: %w", &Error{Code: ErrCodeUnbound, Message: "x"})
	assert.True(t, IsUnboundError(err))
	assert.False(t, IsArityError(err))
	assert.False(t, IsSchemaError(nil))
}
