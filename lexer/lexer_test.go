package lexer

import (
	"testing"

	"github.com/dhamidi/mparse/token"
)

func TestStateFromSingleLine(t *testing.T) {
	s := StateFrom("1")
	if len(s.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(s.Lines))
	}
	if len(s.Lines[0].tokens) != 1 || s.Lines[0].tokens[0].tokenKind != token.NumericLiteral {
		t.Fatalf("expected single numeric literal token, got %+v", s.Lines[0].tokens)
	}
}

func TestEmptyDocumentIsOneLine(t *testing.T) {
	s := StateFrom("")
	if len(s.Lines) != 1 || s.Lines[0].LineString != "" {
		t.Fatalf("empty document must be one empty line, got %+v", s.Lines)
	}
}

// S5 — an unterminated block comment is not a per-line error, but fails
// the snapshot.
func TestUnterminatedBlockCommentAloneOnALine(t *testing.T) {
	s := StateFrom("/* open")
	if s.Lines[0].MaybeError != nil {
		t.Fatalf("expected no per-line error, got %v", s.Lines[0].MaybeError)
	}
	if s.Lines[0].KindAtEnd != ModeInsideBlockComment {
		t.Fatalf("expected end mode insideBlockComment, got %v", s.Lines[0].KindAtEnd)
	}
	if _, err := TryFrom(s); err == nil || err.Kind != UnterminatedBlockComment {
		t.Fatalf("expected UnterminatedBlockComment, got %v", err)
	}
}

// S6 — incremental append + update yields a snapshot with one fused
// string token.
func TestIncrementalAppendThenUpdate(t *testing.T) {
	s := StateFrom("// hello")
	s.AppendLine(`"a`, "\n")
	if err := s.TryUpdateLine(1, `"a"`); err != nil {
		t.Fatalf("TryUpdateLine: %v", err)
	}
	snap, mErr := TryFrom(s)
	if mErr != nil {
		t.Fatalf("TryFrom: %v", mErr)
	}
	if len(snap.Tokens) != 1 || snap.Tokens[0].Kind != token.TextLiteral || snap.Tokens[0].Data != `"a"` {
		t.Fatalf("expected one string token with data \"a\", got %+v", snap.Tokens)
	}
	if len(snap.Comments) != 1 || snap.Comments[0].Kind != token.LineComment {
		t.Fatalf("expected one line comment, got %+v", snap.Comments)
	}
}

func TestMultilineStringFusion(t *testing.T) {
	s := StateFrom("\"line one\nline two\"")
	snap, mErr := TryFrom(s)
	if mErr != nil {
		t.Fatalf("TryFrom: %v", mErr)
	}
	if len(snap.Tokens) != 1 || snap.Tokens[0].Kind != token.TextLiteral {
		t.Fatalf("expected fused string token, got %+v", snap.Tokens)
	}
	want := "\"line one\nline two\""
	if snap.Tokens[0].Data != want {
		t.Fatalf("data = %q, want %q", snap.Tokens[0].Data, want)
	}
}

func TestQuotedIdentifierEscape(t *testing.T) {
	s := StateFrom(`#"a ""quoted"" word"`)
	snap, mErr := TryFrom(s)
	if mErr != nil {
		t.Fatalf("TryFrom: %v", mErr)
	}
	if len(snap.Tokens) != 1 || snap.Tokens[0].Kind != token.QuotedIdentifier {
		t.Fatalf("expected quoted identifier token, got %+v", snap.Tokens)
	}
}

func TestErrorLineMapOrdering(t *testing.T) {
	s := StateFrom("x\n$\ny\n%")
	m := BuildErrorLineMap(s)
	if m.IsEmpty() {
		t.Fatalf("expected errors")
	}
	got := m.OrderedLineNumbers()
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected [1,3], got %v", got)
	}
}

func TestTryUpdateLineStopsPropagationOnReconvergence(t *testing.T) {
	// Three lines; line 1 is a block comment body, line 2 closes it. If we
	// edit line 0 without changing its end-mode, lines 1-2 must not be
	// re-tokenized (their stored KindAtStart already matches).
	s := StateFrom("/* start\ninside\n*/ y")
	origLine2 := s.Lines[2]
	if err := s.TryUpdateLine(0, "/* start2"); err != nil {
		t.Fatalf("TryUpdateLine: %v", err)
	}
	if s.Lines[2] != origLine2 {
		t.Fatalf("expected line 2 untouched by reconverging edit")
	}
}
