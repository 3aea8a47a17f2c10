// Command mlsp is a thin LSP server binary wrapping the lsp package,
// grounded on cmd/sai/cmd_lsp.go and java/codebase/lsp.go's stdio/websocket
// split.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/mparse/lsp"
)

const version = "0.1.0"

func main() {
	var wsAddress string

	rootCmd := &cobra.Command{
		Use:   "mlsp",
		Short: "Language server for Power Query/M source",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version)
			if wsAddress != "" {
				return server.RunWebSocket(wsAddress)
			}
			return server.RunStdio()
		},
	}

	rootCmd.Flags().StringVar(&wsAddress, "ws", "", "serve over a websocket at this address instead of stdio")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
