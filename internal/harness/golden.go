package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ontoql/internal/ir"
)

// Snapshot captures the outcome of a scenario for golden comparison.
type Snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Cases        []CaseResult `json:"cases"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Empty fields are omitted; SQL text is left to the querysql
// goldens.
func (s *Snapshot) toCanonicalMap() map[string]any {
	cases := make([]any, len(s.Cases))
	for i, c := range s.Cases {
		m := map[string]any{"name": c.Name}
		if c.Error != "" {
			m["error"] = c.Error
		}
		if c.ID != "" {
			m["id"] = c.ID
		}
		if c.Describe != "" {
			m["describe"] = c.Describe
		}
		if len(c.Props) > 0 {
			props := make([]any, len(c.Props))
			for j, p := range c.Props {
				props[j] = p
			}
			m["props"] = props
		}
		cases[i] = m
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"cases":         cases,
	}
}

// Marshal returns the canonical JSON of the snapshot.
func (s *Snapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{ScenarioName: scenarioName, Cases: result.Cases}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
