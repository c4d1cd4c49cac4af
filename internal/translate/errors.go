package translate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/ontoql/internal/constraint"
	"github.com/roach88/ontoql/internal/ontology"
	"github.com/roach88/ontoql/internal/queryir"
)

// Error is a failed translation. No partial graph accompanies it.
//
// Translation errors fall into four categories:
//   - Schema inconsistency: a name in the query does not resolve against the ontology
//   - Query document: the text does not parse or validate against the surface
//   - Constraint arity: a where-clause operator got the wrong operand count
//   - Unbound parameter: a parameter has neither a value nor a default
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Errors lists every underlying problem. Document validation reports
	// all of them, not only the first.
	Errors []string

	err error
}

// ErrorCode categorizes translation errors.
type ErrorCode string

const (
	// ErrCodeSchema indicates a name that does not resolve against the ontology.
	ErrCodeSchema ErrorCode = "SCHEMA_INCONSISTENCY"

	// ErrCodeDocument indicates a query that fails to parse or validate.
	ErrCodeDocument ErrorCode = "QUERY_DOCUMENT"

	// ErrCodeArity indicates an operand count outside the operator's class.
	ErrCodeArity ErrorCode = "CONSTRAINT_ARITY"

	// ErrCodeUnbound indicates a parameter without value or default.
	ErrCodeUnbound ErrorCode = "UNBOUND_PARAMETER"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, strings.Join(e.Errors, "; "))
}

// Unwrap returns the error the translation error was classified from.
func (e *Error) Unwrap() error { return e.err }

func hasCode(err error, code ErrorCode) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// IsSchemaError returns true if the query referenced a name the ontology
// does not declare.
func IsSchemaError(err error) bool { return hasCode(err, ErrCodeSchema) }

// IsDocumentError returns true if the query text failed to parse or validate.
func IsDocumentError(err error) bool { return hasCode(err, ErrCodeDocument) }

// IsArityError returns true if a constraint got the wrong number of operands.
func IsArityError(err error) bool { return hasCode(err, ErrCodeArity) }

// IsUnboundError returns true if a parameter could not be resolved.
func IsUnboundError(err error) bool { return hasCode(err, ErrCodeUnbound) }

// NewSchemaError creates a schema inconsistency error.
func NewSchemaError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeSchema, Message: fmt.Sprintf(format, args...)}
}

// NewDocumentError creates a query document error listing every problem.
func NewDocumentError(message string, problems ...string) *Error {
	return &Error{Code: ErrCodeDocument, Message: message, Errors: problems}
}

// classify wraps err in an *Error, picking the code from its cause. Errors
// that are already classified pass through.
func classify(message string, err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}

	code := ErrCodeSchema
	var ge *queryir.GraphError
	switch {
	case constraint.IsArity(err):
		code = ErrCodeArity
	case constraint.IsUnbound(err):
		code = ErrCodeUnbound
	case ontology.IsUnknown(err):
		code = ErrCodeSchema
	case errors.As(err, &ge):
		for _, ve := range ge.Errors {
			if ve.Code == queryir.ErrConstraintInvalid {
				code = ErrCodeArity
				break
			}
		}
	}
	return &Error{Code: code, Message: message, Errors: []string{err.Error()}, err: err}
}
