package cli

import (
	"github.com/spf13/cobra"
)

// SurfaceOutput is the derived query surface in schema language.
type SurfaceOutput struct {
	Ontology string `json:"ontology"`
	Schema   string `json:"schema"`
}

func (s SurfaceOutput) String() string { return s.Schema }

// NewSurfaceCommand creates the surface command.
func NewSurfaceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "surface",
		Short: "Print the query surface derived from the ontology",
		Long: `Print the GraphQL schema the translator validates documents against:
one object per entity type, interfaces for abstract types, enums, and a
root field per entity.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			eng, err := newEngine(rootOpts, cmd)
			if err != nil {
				return failLoad(f, err)
			}
			s := eng.Surface()
			return f.Success(SurfaceOutput{Ontology: s.Accessor().Name(), Schema: s.Print()})
		},
	}
}
