package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/ontoql/internal/queryir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, actual %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions runs every assertion against q and its case result and
// returns the failure messages.
func EvaluateAssertions(q *queryir.Query, cr CaseResult, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluate(q, cr, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(q *queryir.Query, cr CaseResult, a Assertion) error {
	switch a.Type {
	case AssertDescribe:
		if cr.Describe != a.Value {
			return &AssertionError{Type: a.Type, Expected: a.Value, Actual: cr.Describe}
		}
	case AssertNodeCount:
		if q.Len() != a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Count), Actual: fmt.Sprint(q.Len())}
		}
	case AssertKindCount:
		got := len(q.FindByKind(queryir.Kind(a.Kind)))
		if got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d %s nodes", a.Count, a.Kind),
				Actual:   fmt.Sprint(got),
			}
		}
	case AssertHasTag:
		return assertHasTag(q, a)
	case AssertHasProp:
		for _, line := range cr.Props {
			if strings.Contains(line, a.Value) {
				return nil
			}
		}
		return &AssertionError{Type: a.Type, Expected: a.Value, Actual: fmt.Sprintf("%v", cr.Props)}
	case AssertSQLContains:
		if cr.SQLError != "" {
			return &AssertionError{Type: a.Type, Expected: a.Value, Actual: cr.SQLError}
		}
		for _, sql := range cr.SQL {
			if strings.Contains(sql, a.Value) {
				return nil
			}
		}
		return &AssertionError{Type: a.Type, Expected: a.Value, Actual: strings.Join(cr.SQL, "; ")}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertHasTag(q *queryir.Query, a Assertion) error {
	n, ok := q.FindByTag(a.Tag)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: "tag " + a.Tag, Actual: "not found"}
	}
	if a.Kind != "" && string(n.Kind()) != a.Kind {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("tag %s on %s", a.Tag, a.Kind),
			Actual:   queryir.DescribeNode(n),
		}
	}
	return nil
}
