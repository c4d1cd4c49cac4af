// Command ontoql translates GraphQL-shaped queries over an ontology into
// query IR graphs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/ontoql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Command errors were already rendered by the formatter.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
