package lexer

import (
	"fmt"

	"github.com/dhamidi/mparse/token"
)

// ErrorKind is the closed line-level lexical error taxonomy (spec.md §7).
type ErrorKind int

const (
	UnexpectedRead ErrorKind = iota
	UnexpectedEof
	BadLineTerminator
	BadRange
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedRead:
		return "unexpected read"
	case UnexpectedEof:
		return "unexpected end of file"
	case BadLineTerminator:
		return "bad line terminator"
	case BadRange:
		return "bad range"
	}
	return "unknown lex error"
}

// Error is a line-isolated lexical error (spec.md §4.1). It never aborts
// stateFrom; it is captured on the offending Line and surfaced through
// ErrorLineMap.
type Error struct {
	Kind       ErrorKind
	LineNumber int
	Message    string
	Position   token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.LineNumber, e.Kind, e.Message)
}

// MultilineErrorKind is the closed multi-line lexical error taxonomy.
type MultilineErrorKind int

const (
	UnterminatedString MultilineErrorKind = iota
	UnterminatedQuotedIdentifier
	UnterminatedBlockComment
)

func (k MultilineErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string"
	case UnterminatedQuotedIdentifier:
		return "unterminated quoted identifier"
	case UnterminatedBlockComment:
		return "unterminated block comment"
	}
	return "unknown multiline lex error"
}

// MultilineError fails LexerSnapshot.tryFrom (spec.md §4.2): a multi-line
// form opened with a Start token but was never closed by a matching End
// token anywhere in the remaining stream.
type MultilineError struct {
	Kind          MultilineErrorKind
	PositionStart token.Position
}

func (e *MultilineError) Error() string {
	return fmt.Sprintf("%s starting at %s", e.Kind, e.PositionStart)
}
