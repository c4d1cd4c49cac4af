package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ontoql/internal/queryir"
	"github.com/roach88/ontoql/internal/store"
)

// CatalogEntry is one cataloged query as printed by the catalog commands.
type CatalogEntry struct {
	ID       string `json:"id"`
	Seq      int64  `json:"seq"`
	Name     string `json:"name"`
	Ontology string `json:"ontology"`
	Hash     string `json:"hash"`
	Describe string `json:"describe"`
	Document string `json:"document,omitempty"`
	Tree     string `json:"-"`
}

func newCatalogEntry(rec store.Record) CatalogEntry {
	return CatalogEntry{
		ID:       rec.ID,
		Seq:      rec.Seq,
		Name:     rec.Name,
		Ontology: rec.Ontology,
		Hash:     rec.Hash,
		Describe: queryir.Describe(rec.Query),
	}
}

func (e CatalogEntry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  #%d  %s (%s)\n", e.ID, e.Seq, e.Name, e.Ontology)
	fmt.Fprintf(&b, "hash: %s\n", e.Hash)
	b.WriteString(e.Describe)
	if e.Document != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(e.Document))
	}
	if e.Tree != "" {
		b.WriteString("\n\n")
		b.WriteString(e.Tree)
	}
	return b.String()
}

// CatalogList is the output of catalog list.
type CatalogList struct {
	Queries []CatalogEntry `json:"queries"`
}

func (l CatalogList) String() string {
	if len(l.Queries) == 0 {
		return "No cataloged queries."
	}
	lines := make([]string, len(l.Queries))
	for i, e := range l.Queries {
		lines[i] = fmt.Sprintf("%s  #%d  %s  %s", e.ID, e.Seq, e.Name, e.Describe)
	}
	return strings.Join(lines, "\n")
}

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the catalog of saved query graphs",
		Long: `List, show and delete query graphs saved with "ontoql translate --save".

The catalog database is taken from --catalog, ONTOQL_CATALOG or the config
file.`,
	}

	var ontologyFilter string
	list := &cobra.Command{
		Use:           "list",
		Short:         "List cataloged queries in insertion order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, cmd, func(f *OutputFormatter, s *store.Store) error {
				records, err := s.List(cmd.Context(), ontologyFilter)
				if err != nil {
					return failLoad(f, &LoadError{Code: ErrCodeCatalog, Message: err.Error()})
				}
				out := CatalogList{Queries: make([]CatalogEntry, len(records))}
				for i, rec := range records {
					out.Queries[i] = newCatalogEntry(rec)
				}
				return f.Success(out)
			})
		},
	}
	list.Flags().StringVar(&ontologyFilter, "only", "", "list only queries over this ontology name")

	show := &cobra.Command{
		Use:           "show <id|hash>",
		Short:         "Show a cataloged query with its document and tree",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, cmd, func(f *OutputFormatter, s *store.Store) error {
				rec, err := s.Get(cmd.Context(), args[0])
				if errors.Is(err, sql.ErrNoRows) {
					rec, err = s.GetByHash(cmd.Context(), args[0])
				}
				if err != nil {
					return failCatalogLookup(f, args[0], err)
				}
				e := newCatalogEntry(rec)
				e.Document = rec.Document
				e.Tree = queryir.Print(rec.Query, true)
				return f.Success(e)
			})
		},
	}

	del := &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a cataloged query",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(rootOpts, cmd, func(f *OutputFormatter, s *store.Store) error {
				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return failCatalogLookup(f, args[0], err)
				}
				return f.Success(fmt.Sprintf("Deleted %s", args[0]))
			})
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}

func withCatalog(opts *RootOptions, cmd *cobra.Command, fn func(*OutputFormatter, *store.Store) error) error {
	f := newFormatter(opts, cmd)
	s, err := openCatalog(opts)
	if err != nil {
		return failLoad(f, err)
	}
	defer s.Close()
	f.VerboseLog("Using catalog %s", opts.Catalog)
	return fn(f, s)
}

func failCatalogLookup(f *OutputFormatter, key string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("no cataloged query %s", key), nil)
		return WrapExitError(ExitFailure, ErrCodeNotFound, err)
	}
	return failLoad(f, &LoadError{Code: ErrCodeCatalog, Message: err.Error()})
}
