package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ontoql/internal/ontology"
	"github.com/roach88/ontoql/internal/store"
	"github.com/roach88/ontoql/internal/translate"
)

// Error code constants - unified across all CLI commands. Translation
// failures use the translate error codes instead.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoOntology  = "E002" // No ontology configured
	ErrCodeInvalid     = "E003" // Ontology failed validation
	ErrCodeLoadFailed  = "E004" // Ontology load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeReadFailed  = "E006" // Query document unreadable
	ErrCodeCatalog     = "E007" // Catalog error
	ErrCodeUnsupported = "E008" // Graph has no SQL rendering
)

// LoadError represents an error that occurred while loading the ontology.
type LoadError struct {
	Code    string
	Message string
	Details []ontology.ValidationError
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadOntology loads and validates the ontology at path.
func LoadOntology(path string) (*ontology.Accessor, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeNoOntology, Message: "no ontology configured: use --ontology, ONTOQL_ONTOLOGY or the config file"}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("ontology not found: %s", path)}
	}

	o, err := ontology.Load(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}
	a, err := ontology.NewAccessor(o)
	if err != nil {
		var invalid *ontology.InvalidError
		if errors.As(err, &invalid) {
			return nil, &LoadError{
				Code:    ErrCodeInvalid,
				Message: fmt.Sprintf("ontology %q has %d validation errors", invalid.Name, len(invalid.Errors)),
				Details: invalid.Errors,
			}
		}
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}
	return a, nil
}

// newLogger returns the command logger: debug records with --verbose,
// warnings only otherwise. Logs always go to stderr.
func newLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// failLoad reports a load error and converts it to an exit error. Surface
// build failures are reported as translation errors.
func failLoad(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		if translate.IsSchemaError(err) {
			return failTranslate(f, err)
		}
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
	}
	var details any
	if len(loadErr.Details) > 0 {
		details = loadErr.Details
	}
	_ = f.Error(loadErr.Code, loadErr.Message, details)
	if f.Format != "json" {
		for _, ve := range loadErr.Details {
			fmt.Fprintf(f.Writer, "  %s\n", ve.Error())
		}
	}
	code := ExitCommandError
	if loadErr.Code == ErrCodeInvalid {
		code = ExitFailure
	}
	return WrapExitError(code, loadErr.Code, err)
}

// failTranslate reports a translation error.
func failTranslate(f *OutputFormatter, err error) error {
	var terr *translate.Error
	if !errors.As(err, &terr) {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, ErrCodeGeneric, err)
	}
	var details any
	if len(terr.Errors) > 0 {
		details = terr.Errors
	}
	_ = f.Error(string(terr.Code), terr.Message, details)
	if f.Format != "json" {
		for _, problem := range terr.Errors {
			fmt.Fprintf(f.Writer, "  %s\n", problem)
		}
	}
	return WrapExitError(ExitFailure, string(terr.Code), err)
}

// newEngine loads the configured ontology and builds a translation engine.
func newEngine(opts *RootOptions, cmd *cobra.Command) (*translate.Engine, error) {
	a, err := LoadOntology(opts.Ontology)
	if err != nil {
		return nil, err
	}
	return translate.New(a, translate.WithLogger(newLogger(opts, cmd)))
}

// readDocument returns the query document from --query, a file argument or
// stdin ("-" or no argument).
func readDocument(cmd *cobra.Command, query string, args []string) (string, error) {
	if query != "" {
		return query, nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("read stdin: %v", err)}
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if os.IsNotExist(err) {
		return "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", args[0])}
	}
	if err != nil {
		return "", &LoadError{Code: ErrCodeReadFailed, Message: err.Error()}
	}
	return string(data), nil
}

// openCatalog opens the configured catalog database.
func openCatalog(opts *RootOptions) (*store.Store, error) {
	s, err := store.Open(opts.Catalog)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCatalog, Message: err.Error()}
	}
	return s, nil
}
