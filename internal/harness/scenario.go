package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a named set of translation cases over one ontology.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Ontology is the path of the CUE or YAML ontology file.
	// Relative paths are resolved against the scenario file's directory.
	Ontology string `yaml:"ontology"`

	// Cases run in order against one engine and one catalog.
	Cases []Case `yaml:"cases"`
}

// Case is one query document and what its translation must look like.
type Case struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`

	// Expect holds the expected error. Nil means translation must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions run against the translated graph.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies an expected translation failure.
type ExpectClause struct {
	// Error is the expected error code, e.g. "CONSTRAINT_ARITY".
	Error string `yaml:"error"`
}

// Assertion validates a translated graph.
type Assertion struct {
	// Type specifies the assertion type:
	// - "describe": one-line descriptor equals Value
	// - "node_count": graph has exactly Count nodes
	// - "kind_count": graph has exactly Count nodes of Kind
	// - "has_tag": an entity or relation is tagged Tag (of Kind when set)
	// - "has_prop": some EProp or EPropGroup renders Value
	// - "sql_contains": a compiled statement contains Value
	Type string `yaml:"type"`

	Value string `yaml:"value,omitempty"`
	Kind  string `yaml:"kind,omitempty"`
	Tag   string `yaml:"tag,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertDescribe    = "describe"
	AssertNodeCount   = "node_count"
	AssertKindCount   = "kind_count"
	AssertHasTag      = "has_tag"
	AssertHasProp     = "has_prop"
	AssertSQLContains = "sql_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving the ontology path against
// baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Ontology != "" && !filepath.IsAbs(scenario.Ontology) && baseDir != "" {
		scenario.Ontology = filepath.Join(baseDir, scenario.Ontology)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Ontology == "" {
		return fmt.Errorf("ontology is required")
	}
	if _, err := os.Stat(s.Ontology); os.IsNotExist(err) {
		return fmt.Errorf("ontology file not found: %s", s.Ontology)
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		switch {
		case c.Name == "":
			return fmt.Errorf("cases[%d]: name is required", i)
		case names[c.Name]:
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		case c.Query == "":
			return fmt.Errorf("cases[%d]: query is required", i)
		case c.Expect != nil && c.Expect.Error == "":
			return fmt.Errorf("cases[%d].expect: error is required", i)
		case c.Expect != nil && len(c.Assertions) > 0:
			return fmt.Errorf("cases[%d]: assertions cannot be combined with an expected error", i)
		}
		names[c.Name] = true

		for j, a := range c.Assertions {
			if err := validateAssertion(fmt.Sprintf("cases[%d].assertions[%d]", i, j), a); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(where string, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("%s: type is required", where)
	case AssertDescribe, AssertHasProp, AssertSQLContains:
		if a.Value == "" {
			return fmt.Errorf("%s: value is required for %s", where, a.Type)
		}
	case AssertNodeCount:
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative", where)
		}
	case AssertKindCount:
		if a.Kind == "" {
			return fmt.Errorf("%s: kind is required for kind_count", where)
		}
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative", where)
		}
	case AssertHasTag:
		if a.Tag == "" {
			return fmt.Errorf("%s: tag is required for has_tag", where)
		}
	default:
		return fmt.Errorf("%s: unknown assertion type %q", where, a.Type)
	}
	return nil
}
