package parse

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"

	"github.com/dhamidi/mparse/token"
)

// CsvContinuationKind distinguishes the two ExpectedCsvContinuationError
// shapes named in spec.md section 4.3.
type CsvContinuationKind int

const (
	LetExpressionContinuation CsvContinuationKind = iota
	DanglingCommaContinuation
)

// ParseError is the tagged variant of spec.md section 4.3 / section 7. Only
// one field group is populated per Kind(); callers switch on Kind() rather
// than type-asserting to a concrete Go type, matching the "unified Result"
// design note in spec.md section 9.
type ParseError struct {
	kind errorKind

	GotToken        *token.Token
	GotColumn       int
	ExpectedKind    token.Kind
	ExpectedKinds   []token.Kind
	CsvKind         CsvContinuationKind
	Message         string
}

type errorKind int

const (
	ExpectedTokenKind errorKind = iota
	ExpectedAnyTokenKind
	ExpectedCsvContinuation
	UnterminatedParentheses
	UnterminatedBracket
	UnusedTokensRemain
	InvalidPrimitiveType
	Cancellation
)

func (e *ParseError) Kind() errorKind { return e.kind }

func (e *ParseError) Error() string { return e.Message }

// expectedKindPhrase returns the lowercase, space-delimited phrase used in
// diagnostic messages for a token.Kind. token.Kind.String already gives a
// display name ("numeric literal", "=>"); strcase.ToDelimited and
// strings.ToLower only normalize it.
func expectedKindPhrase(k token.Kind) string {
	return strings.ToLower(strcase.ToDelimited(k.String(), ' '))
}

func newExpectedTokenKindError(expected token.Kind, got *token.Token, column int) *ParseError {
	gotDesc := "end of input"
	if got != nil {
		gotDesc = got.Kind.String()
	}
	return &ParseError{
		kind:         ExpectedTokenKind,
		ExpectedKind: expected,
		GotToken:     got,
		GotColumn:    column,
		Message:      fmt.Sprintf("expected %s, got %s", expectedKindPhrase(expected), gotDesc),
	}
}

func newExpectedAnyTokenKindError(expected []token.Kind, got *token.Token, column int) *ParseError {
	gotDesc := "end of input"
	if got != nil {
		gotDesc = got.Kind.String()
	}
	names := make([]string, len(expected))
	for i, k := range expected {
		names[i] = expectedKindPhrase(k)
	}
	return &ParseError{
		kind:          ExpectedAnyTokenKind,
		ExpectedKinds: expected,
		GotToken:      got,
		GotColumn:     column,
		Message:       fmt.Sprintf("expected one of [%s], got %s", strings.Join(names, ", "), gotDesc),
	}
}

func newExpectedCsvContinuationError(csvKind CsvContinuationKind, got *token.Token, column int) *ParseError {
	label := "dangling comma"
	if csvKind == LetExpressionContinuation {
		label = "let expression continuation"
	}
	return &ParseError{kind: ExpectedCsvContinuation, CsvKind: csvKind, GotToken: got, GotColumn: column, Message: "expected " + label}
}

func newUnterminatedParenthesesError(got *token.Token, column int) *ParseError {
	return &ParseError{kind: UnterminatedParentheses, GotToken: got, GotColumn: column, Message: "unterminated parentheses"}
}

func newUnterminatedBracketError(got *token.Token, column int) *ParseError {
	return &ParseError{kind: UnterminatedBracket, GotToken: got, GotColumn: column, Message: "unterminated bracket"}
}

func newUnusedTokensRemainError(got *token.Token, column int) *ParseError {
	return &ParseError{kind: UnusedTokensRemain, GotToken: got, GotColumn: column, Message: "unused tokens remain after a complete parse"}
}

func newInvalidPrimitiveTypeError(got *token.Token, column int) *ParseError {
	return &ParseError{kind: InvalidPrimitiveType, GotToken: got, GotColumn: column, Message: "invalid primitive type"}
}

func newCancellationError() *ParseError {
	return &ParseError{kind: Cancellation, Message: "parse cancelled"}
}

// InvariantError wraps an internal-bug panic (a leaked context, a missing
// arena entry) with a stack trace via pkg/errors, per spec.md section 7:
// "Invariant errors are fatal — they indicate a bug and should never be
// observed for well-formed input."
type InvariantError struct {
	cause error
}

func newInvariantError(message string) *InvariantError {
	return &InvariantError{cause: errors.New(message)}
}

func (e *InvariantError) Error() string { return e.cause.Error() }

// StackTrace exposes the pkg/errors-captured frames for embedders that log
// invariant violations (these should never fire, but when they do the
// stack is the only useful diagnostic).
func (e *InvariantError) StackTrace() errors.StackTrace {
	type stackTracer interface{ StackTrace() errors.StackTrace }
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}
