package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ontoql/internal/querysql"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Query  string
	Schema bool // print DDL instead of compiling a query
}

// StatementOutput is one compiled statement.
type StatementOutput struct {
	Root    string   `json:"root"`
	SQL     string   `json:"sql"`
	Args    []any    `json:"args"`
	Columns []string `json:"columns"`
}

// SQLOutput is the result of the sql command.
type SQLOutput struct {
	Statements []StatementOutput `json:"statements,omitempty"`
	Schema     []string          `json:"schema,omitempty"`
}

func (o SQLOutput) String() string {
	var lines []string
	for _, ddl := range o.Schema {
		lines = append(lines, ddl+";")
	}
	for _, st := range o.Statements {
		lines = append(lines, "-- "+st.Root, st.SQL+";", fmt.Sprintf("-- args: %v", st.Args))
	}
	return strings.Join(lines, "\n")
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql [query-file|-]",
		Short: "Render a query as parameterized SQL",
		Long: `Translate a query document and render its graph as SQLite statements,
one per root entity. Values are always bound as parameters.

With --schema, print the CREATE TABLE statements of the relational layout
the rendered queries expect instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "inline query document")
	cmd.Flags().BoolVar(&opts.Schema, "schema", false, "print the table layout instead of compiling a query")

	return cmd
}

func runSQL(opts *SQLOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if opts.Schema {
		a, err := LoadOntology(opts.Ontology)
		if err != nil {
			return failLoad(f, err)
		}
		return f.Success(SQLOutput{Schema: querysql.Schema(a)})
	}

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

	stmts, err := querysql.NewCompiler().Compile(q)
	if err != nil {
		code := ErrCodeGeneric
		if querysql.IsUnsupported(err) {
			code = ErrCodeUnsupported
		}
		_ = f.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, code, err)
	}

	out := SQLOutput{Statements: make([]StatementOutput, len(stmts))}
	for i, st := range stmts {
		args := st.Args
		if args == nil {
			args = []any{}
		}
		out.Statements[i] = StatementOutput{Root: st.Root, SQL: st.SQL, Args: args, Columns: st.Columns}
	}
	return f.Success(out)
}
