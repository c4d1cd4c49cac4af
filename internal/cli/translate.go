package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ontoql/internal/ir"
	"github.com/roach88/ontoql/internal/queryir"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Query string // inline document
	Tree  bool   // print the tree form
	Save  bool   // catalog the graph
}

// TranslationOutput is the result of translating one document.
type TranslationOutput struct {
	Name     string      `json:"name"`
	Ontology string      `json:"ontology"`
	Hash     string      `json:"hash"`
	Describe string      `json:"describe"`
	Graph    ir.IRObject `json:"graph"`
	Tree     string      `json:"-"`
	ID       string      `json:"id,omitempty"`
	Inserted bool        `json:"inserted,omitempty"`
}

func (t TranslationOutput) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "query %s (ontology %s)\n", t.Name, t.Ontology)
	fmt.Fprintf(&b, "hash: %s\n", t.Hash)
	if t.ID != "" {
		state := "existing"
		if t.Inserted {
			state = "new"
		}
		fmt.Fprintf(&b, "catalog: %s (%s)\n", t.ID, state)
	}
	b.WriteString(t.Describe)
	if t.Tree != "" {
		b.WriteString("\n")
		b.WriteString(t.Tree)
	}
	return b.String()
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate [query-file|-]",
		Short: "Translate a query document into a query graph",
		Long: `Translate a GraphQL-shaped query document into a query IR graph.

The document is read from --query, the file argument, or stdin. The graph is
printed as a one-line descriptor (and a tree with --tree); --format json
prints its canonical encoding. With --save the graph is cataloged.

Examples:
  ontoql translate --ontology library.yaml books.graphql
  echo '{ book { title } }' | ontoql translate --ontology library.yaml --tree
  ontoql translate -q '{ author { name } }' --save --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "inline query document")
	cmd.Flags().BoolVar(&opts.Tree, "tree", false, "print the graph as a tree")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "save the graph to the catalog")

	return cmd
}

func runTranslate(opts *TranslateOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	doc, err := readDocument(cmd, opts.Query, args)
	if err != nil {
		return failLoad(f, err)
	}
	eng, err := newEngine(opts.RootOptions, cmd)
	if err != nil {
		return failLoad(f, err)
	}

	ctx := cmd.Context()
	q, err := eng.Translate(ctx, doc)
	if err != nil {
		return failTranslate(f, err)
	}

	hash, err := queryir.Hash(q)
	if err != nil {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "hash graph", err)
	}
	out := TranslationOutput{
		Name:     q.QueryName(),
		Ontology: q.Ontology(),
		Hash:     hash,
		Describe: queryir.Describe(q),
		Graph:    queryir.Encode(q),
	}
	if opts.Tree {
		out.Tree = queryir.Print(q, true)
	}

	if opts.Save {
		s, err := openCatalog(opts.RootOptions)
		if err != nil {
			return failLoad(f, err)
		}
		defer s.Close()

		rec, inserted, err := s.Save(ctx, doc, q)
		if err != nil {
			return failLoad(f, &LoadError{Code: ErrCodeCatalog, Message: err.Error()})
		}
		out.ID, out.Inserted = rec.ID, inserted
		f.VerboseLog("Cataloged %s as %s in %s", out.Name, rec.ID, opts.Catalog)
	}

	return f.Success(out)
}
