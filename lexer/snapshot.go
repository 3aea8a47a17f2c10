package lexer

import (
	"strings"

	"github.com/dhamidi/mparse/token"
)

// Snapshot is the immutable, multi-line-token-fused view of a lexer State
// that the parser consumes (spec.md section 4.2). Once built it never
// changes; a new edit to the State requires a new Snapshot.
type Snapshot struct {
	Tokens      []token.Token
	Comments    []token.Comment
	Terminators []string // LineTerminator per line, in line order
	lineText    []string // LineString per line, for on-demand grapheme columns
}

// LineText returns the source text of a line, for callers that need to
// compute a grapheme ColumnNumber for a position (spec.md section 3).
func (s *Snapshot) LineText(lineNumber int) string {
	if lineNumber < 0 || lineNumber >= len(s.lineText) {
		return ""
	}
	return s.lineText[lineNumber]
}

type pendingKind int

const (
	pendingBlockComment pendingKind = iota
	pendingString
	pendingQuotedIdentifier
)

type pending struct {
	kind  pendingKind
	start token.Position
	parts []string
}

// TryFrom collapses multi-line tokens and routes comments out of band
// (spec.md section 4.2). It fails with a MultilineError when a Start token
// is never matched by an End token before the input runs out.
func TryFrom(state *State) (*Snapshot, *MultilineError) {
	state.guard.Lock()
	lines := state.Lines
	state.guard.Unlock()

	snap := &Snapshot{lineText: make([]string, len(lines)), Terminators: make([]string, len(lines))}
	var open *pending

	for _, line := range lines {
		snap.lineText[line.Number] = line.LineString
		snap.Terminators[line.Number] = line.LineTerminator

		for _, raw := range line.tokens {
			switch raw.kind {
			case rkToken:
				snap.Tokens = append(snap.Tokens, token.Token{Kind: raw.tokenKind, Data: raw.data, PositionStart: raw.start, PositionEnd: raw.end})

			case rkLineComment:
				snap.Comments = append(snap.Comments, token.Comment{Kind: token.LineComment, Data: raw.data, PositionStart: raw.start, PositionEnd: raw.end})

			case rkBlockCommentWhole:
				snap.Comments = append(snap.Comments, token.Comment{Kind: token.BlockComment, Data: raw.data, PositionStart: raw.start, PositionEnd: raw.end})

			case rkStringWhole:
				snap.Tokens = append(snap.Tokens, token.Token{Kind: token.TextLiteral, Data: raw.data, PositionStart: raw.start, PositionEnd: raw.end})

			case rkQuotedIdentWhole:
				snap.Tokens = append(snap.Tokens, token.Token{Kind: token.QuotedIdentifier, Data: raw.data, PositionStart: raw.start, PositionEnd: raw.end})

			case rkBlockCommentStart:
				open = &pending{kind: pendingBlockComment, start: raw.start, parts: []string{raw.data}}
			case rkStringStart:
				open = &pending{kind: pendingString, start: raw.start, parts: []string{raw.data}}
			case rkQuotedIdentStart:
				open = &pending{kind: pendingQuotedIdentifier, start: raw.start, parts: []string{raw.data}}

			case rkBlockCommentContent, rkStringContent, rkQuotedIdentContent:
				if open != nil {
					open.parts = append(open.parts, raw.data)
				}

			case rkBlockCommentEnd:
				if open != nil {
					open.parts = append(open.parts, raw.data)
					snap.Comments = append(snap.Comments, token.Comment{Kind: token.BlockComment, Data: strings.Join(open.parts, "\n"), PositionStart: open.start, PositionEnd: raw.end, ContainsNewline: true})
					open = nil
				}
			case rkStringEnd:
				if open != nil {
					open.parts = append(open.parts, raw.data)
					snap.Tokens = append(snap.Tokens, token.Token{Kind: token.TextLiteral, Data: strings.Join(open.parts, "\n"), PositionStart: open.start, PositionEnd: raw.end})
					open = nil
				}
			case rkQuotedIdentEnd:
				if open != nil {
					open.parts = append(open.parts, raw.data)
					snap.Tokens = append(snap.Tokens, token.Token{Kind: token.QuotedIdentifier, Data: strings.Join(open.parts, "\n"), PositionStart: open.start, PositionEnd: raw.end})
					open = nil
				}
			}
		}
	}

	if open != nil {
		return nil, &MultilineError{Kind: multilineKindFor(open.kind), PositionStart: open.start}
	}

	return snap, nil
}

func multilineKindFor(k pendingKind) MultilineErrorKind {
	switch k {
	case pendingString:
		return UnterminatedString
	case pendingQuotedIdentifier:
		return UnterminatedQuotedIdentifier
	default:
		return UnterminatedBlockComment
	}
}
