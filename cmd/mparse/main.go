// Command mparse is a demonstration CLI for the mparse library: it parses
// an M source file and either dumps the resulting tree or answers a
// scope/type query at a cursor (spec.md section 1's "external
// collaborators"), grounded on cmd/sai/cmd_parse.go and cmd_dump.go.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mparse",
		Short: "Parse and inspect Power Query/M source",
	}

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newInspectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
