package parse

import (
	"context"

	"github.com/dhamidi/mparse/lexer"
	"github.com/dhamidi/mparse/tree"
)

// Settings configures a parse via the functional-options pattern (spec.md
// section 4, design note in section 9): every field has a workable zero
// value, so Parse(text) with no options is always legal.
type Settings struct {
	locale            string
	cancellationToken context.Context
	newState          func(*lexer.Snapshot) *State
	parser            ParserStrategy
}

// Option mutates a Settings value during construction.
type Option func(*Settings)

// WithLocale sets the locale used when phrasing diagnostics (currently
// only threaded through, not yet consulted by any message — reserved for
// a future translation table).
func WithLocale(locale string) Option {
	return func(s *Settings) { s.locale = locale }
}

// WithCancellationToken lets a caller abort a long parse — checked between
// productions at points a caller is likely to want to bail out of a
// pathological input (spec.md section 7, Cancellation).
func WithCancellationToken(ctx context.Context) Option {
	return func(s *Settings) { s.cancellationToken = ctx }
}

// WithNewParserState overrides how the initial parser State is built from
// a lexer.Snapshot — an extension point for embedders that need a custom
// State subtype (e.g. one that also records profiling counters).
func WithNewParserState(f func(*lexer.Snapshot) *State) Option {
	return func(s *Settings) { s.newState = f }
}

// WithParser selects which of the two binary-operator precedence engines
// (spec.md section 4.3, "Combinator variants") the parse uses:
// RecursiveDescentParser (the default) or CombinatorialParser. Both are
// guaranteed to produce byte-identical ASTs for identical input; this
// option exists for benchmarking and cross-checking the two, not because
// callers should ever need to pick one for correctness.
func WithParser(strategy ParserStrategy) Option {
	return func(s *Settings) { s.parser = strategy }
}

func newSettings(opts ...Option) *Settings {
	s := &Settings{cancellationToken: context.Background(), newState: NewState, parser: RecursiveDescentParser}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of a full lex-and-parse pass (spec.md section 4):
// exactly one of Root or an error field is meaningful.
type Result struct {
	Root     *tree.AstNode
	Nodes    *tree.Map
	Snapshot *lexer.Snapshot

	LexError       *lexer.MultilineError
	ParseError     *ParseError
	InvariantError *InvariantError
}

// Parse lexes text from scratch and parses the resulting token stream
// (spec.md section 4's top-level orchestration). Most callers editing an
// existing document should instead maintain a lexer.State incrementally
// and call ParseSnapshot directly on the resulting Snapshot.
func Parse(text string, opts ...Option) *Result {
	state := lexer.StateFrom(text)
	snap, lexErr := lexer.TryFrom(state)
	if lexErr != nil {
		return &Result{LexError: lexErr}
	}
	return ParseSnapshot(snap, opts...)
}

// ParseSnapshot runs the grammar over an already-lexed Snapshot, recovering
// any tree.InvariantViolation panic into an InvariantError at this
// boundary (spec.md section 7) so that a parser bug never crashes an
// embedding LSP server or CLI.
func ParseSnapshot(snap *lexer.Snapshot, opts ...Option) (result *Result) {
	settings := newSettings(opts...)
	state := settings.newState(snap)
	state.Strategy = settings.parser
	state.cancellationToken = settings.cancellationToken

	result = &Result{Snapshot: snap, Nodes: state.Nodes}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(cancellationPanic); ok {
				result.ParseError = newCancellationError()
				return
			}
			if violation, ok := r.(tree.InvariantViolation); ok {
				result.InvariantError = newInvariantError(violation.Error())
				return
			}
			panic(r)
		}
	}()

	if err := settings.cancellationToken.Err(); err != nil {
		result.ParseError = newCancellationError()
		return result
	}

	root, parseErr := ParseDocument(state)
	if parseErr != nil {
		result.ParseError = parseErr
		return result
	}
	result.Root = root
	return result
}

// Ok reports whether the parse produced a usable root with no lex or parse
// error at all (spec.md section 4).
func (r *Result) Ok() bool {
	return r.LexError == nil && r.ParseError == nil && r.InvariantError == nil && r.Root != nil
}

// TryLexAndParse mirrors Parse but takes an already-built lexer.State,
// letting a caller run its own error-line-map inspection (spec.md section
// 4.1) between lexing and parsing without lexing twice.
func TryLexAndParse(state *lexer.State, opts ...Option) *Result {
	snap, lexErr := lexer.TryFrom(state)
	if lexErr != nil {
		return &Result{LexError: lexErr}
	}
	return ParseSnapshot(snap, opts...)
}
