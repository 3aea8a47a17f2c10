package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/mparse/inspect"
	"github.com/dhamidi/mparse/parse"
	"github.com/dhamidi/mparse/token"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file> <line>:<col>",
		Short: "Print the scope and type visible at a cursor position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			pos, err := parseCursor(args[1])
			if err != nil {
				return err
			}

			result := parse.Parse(string(data))
			if !result.Ok() {
				return fmt.Errorf("file did not parse cleanly (lexErr=%v parseErr=%v)", result.LexError, result.ParseError)
			}

			scope := inspect.ScopeAt(result.Nodes, result.Root.ID, pos)
			names := make([]string, 0, len(scope.Names))
			for name := range scope.Names {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Println("scope:", strings.Join(names, ", "))

			closest, ok := inspect.ClosestNode(result.Nodes, result.Root.ID, pos)
			if !ok {
				fmt.Println("type: <no node at this position>")
				return nil
			}
			inspector := inspect.NewInspector(result.Nodes)
			typ := inspector.TypeOf(closest.ID())
			fmt.Printf("node: %s\ntype: %s\n", closest.Kind(), typ.Kind)
			return nil
		},
	}
	return cmd
}

func parseCursor(spec string) (token.Position, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return token.Position{}, fmt.Errorf("expected <line>:<col>, got %q", spec)
	}
	line, err := strconv.Atoi(parts[0])
	if err != nil {
		return token.Position{}, fmt.Errorf("bad line number %q: %w", parts[0], err)
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return token.Position{}, fmt.Errorf("bad column %q: %w", parts[1], err)
	}
	return token.Position{LineNumber: line, LineCodeUnit: col}, nil
}
