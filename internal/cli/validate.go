package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ontoql/internal/surface"
)

// ValidationResult summarizes a valid ontology.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	Ontology  string `json:"ontology"`
	Entities  int    `json:"entities"`
	Relations int    `json:"relations"`
	Enums     int    `json:"enums"`
}

func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ Ontology %s valid (%d entities, %d relations, %d enums)",
		r.Ontology, r.Entities, r.Relations, r.Enums)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [ontology]",
		Short: "Validate an ontology and derive its query surface",
		Long: `Validate an ontology without translating anything.

Loads the ontology (argument, --ontology, ONTOQL_ONTOLOGY or the config
file), reports every validation error, then checks that a query surface can
be derived from it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Ontology
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	a, err := LoadOntology(path)
	if err != nil {
		return failLoad(f, err)
	}
	f.VerboseLog("Loaded ontology %s from %s", a.Name(), path)

	if _, err := surface.New(a); err != nil {
		return failLoad(f, &LoadError{Code: ErrCodeInvalid, Message: "derive query surface: " + err.Error()})
	}

	o := a.Ontology()
	return f.Success(ValidationResult{
		Valid:     true,
		Ontology:  a.Name(),
		Entities:  len(o.Entities),
		Relations: len(o.Relations),
		Enums:     len(o.Enums),
	})
}
