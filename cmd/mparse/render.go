package main

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"os"

	"github.com/dhamidi/mparse/lexer"
	"github.com/dhamidi/mparse/parse"
)

// renderer formats diagnostics for a terminal, profiling the output the
// way termenv's own examples do, and no-ops color entirely on a non-tty
// stdout (spec.md's CLI is meant to also work piped into a file or CI log).
type renderer struct {
	out     *termenv.Output
	colored bool
}

func newRenderer(noColor bool) *renderer {
	out := termenv.NewOutput(os.Stdout)
	colored := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	return &renderer{out: out, colored: colored}
}

// caretColor returns the fixed warm accent (#e05561) used for the error
// message and its "^" marker, whatever the terminal's theme.
func (r *renderer) caretColor() termenv.Color {
	c, _ := colorful.Hex("#e05561")
	return r.out.Color(c.Hex())
}

func (r *renderer) renderLexError(err *lexer.MultilineError) string {
	msg := fmt.Sprintf("lex error at %s: unterminated %s", err.PositionStart, multilineKindLabel(err.Kind))
	return r.style(msg, r.caretColor())
}

func (r *renderer) renderParseError(err *parse.ParseError) string {
	msg := "parse error: " + err.Error()
	if err.GotToken != nil {
		caret := strings.Repeat(" ", runewidth.StringWidth("parse error: ")+err.GotColumn) + "^"
		return r.style(msg, r.caretColor()) + "\n" + r.style(caret, r.caretColor())
	}
	return r.style(msg, r.caretColor())
}

func (r *renderer) renderInvariantError(err *parse.InvariantError) string {
	return r.style("internal error (please report): "+err.Error(), r.caretColor())
}

// copyToClipboard pushes the rendered diagnostic to the terminal's
// clipboard via termenv's OSC52 escape sequence (go-osc52 underneath), so a
// developer piping mparse into a remote shell can still yank the error
// without the terminal offering a native selection.
func (r *renderer) copyToClipboard(s string) {
	r.out.Copy(s)
}

func (r *renderer) style(s string, c termenv.Color) string {
	if !r.colored {
		return s
	}
	return termenv.String(s).Foreground(c).String()
}

func multilineKindLabel(k lexer.MultilineErrorKind) string {
	switch k {
	case lexer.UnterminatedString:
		return "string literal"
	case lexer.UnterminatedQuotedIdentifier:
		return "quoted identifier"
	default:
		return "block comment"
	}
}
