package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/mparse/parse"
	"github.com/dhamidi/mparse/tree"
)

func newParseCmd() *cobra.Command {
	var noColor bool
	var copyError bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and print its tree, or the diagnostic if it failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			renderer := newRenderer(noColor)
			result := parse.Parse(string(data))

			var diagnostic string
			switch {
			case result.LexError != nil:
				diagnostic = renderer.renderLexError(result.LexError)
			case result.InvariantError != nil:
				diagnostic = renderer.renderInvariantError(result.InvariantError)
			case result.ParseError != nil:
				diagnostic = renderer.renderParseError(result.ParseError)
			default:
				printTree(result.Nodes, result.Root, 0)
				return nil
			}

			fmt.Println(diagnostic)
			if copyError {
				renderer.copyToClipboard(diagnostic)
			}
			os.Exit(1)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colorized diagnostic output")
	cmd.Flags().BoolVar(&copyError, "copy-error", false, "copy the diagnostic to the terminal's clipboard via OSC52")
	return cmd
}

func printTree(nodes *tree.Map, node *tree.AstNode, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	label := node.Kind.String()
	if node.MaybeToken != nil {
		label += " " + fmt.Sprintf("%q", node.MaybeToken.Data)
	}
	fmt.Println(indent + label)
	for _, childID := range nodes.ChildIDs(node.ID) {
		x, ok := nodes.MaybeXor(childID)
		if !ok || !x.IsAst() {
			continue
		}
		child, _ := x.Ast()
		printTree(nodes, child, depth+1)
	}
}
