package parse

import (
	"testing"

	"github.com/dhamidi/mparse/lexer"
	"github.com/dhamidi/mparse/tree"
)

func mustParse(t *testing.T, text string) *Result {
	t.Helper()
	result := Parse(text)
	if !result.Ok() {
		t.Fatalf("Parse(%q): lexErr=%v parseErr=%v invariantErr=%v", text, result.LexError, result.ParseError, result.InvariantError)
	}
	return result
}

func TestParseLiteralExpression(t *testing.T) {
	result := mustParse(t, "42")
	if result.Root.Kind.String() != "Document" {
		t.Fatalf("expected a Document root, got %s", result.Root.Kind)
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	result := mustParse(t, "1 + 2 * 3")
	doc := result.Root
	child, ok := result.Nodes.MaybeChildAstByAttributeIndex(doc.ID, 0)
	if !ok {
		t.Fatalf("expected document to have a child expression")
	}
	if child.Kind.String() != "ArithmeticExpression" {
		t.Fatalf("expected top-level node to be the addition, got %s", child.Kind)
	}
}

func TestParseLetExpression(t *testing.T) {
	mustParse(t, "let x = 1, y = x + 1 in y")
}

func TestParseIfExpression(t *testing.T) {
	mustParse(t, "if true then 1 else 2")
}

func TestParseRecordAndListLiterals(t *testing.T) {
	mustParse(t, `[a = 1, b = {1, 2, 3}]`)
}

func TestParseFunctionLiteralVsParenthesizedExpression(t *testing.T) {
	mustParse(t, "(x, y) => x + y")
	mustParse(t, "(1 + 2)")
}

func TestParseInvokeAndFieldAccessChain(t *testing.T) {
	mustParse(t, `f(1, 2)[field]{0}`)
}

func TestParseIsAndAsExpressions(t *testing.T) {
	mustParse(t, "x is number")
	mustParse(t, "x as text")
}

func TestParseTryOtherwise(t *testing.T) {
	mustParse(t, "try 1/0 otherwise -1")
}

func TestParseUnusedTokensRemainError(t *testing.T) {
	result := Parse("1 2")
	if result.ParseError == nil {
		t.Fatalf("expected a trailing-tokens error")
	}
	if result.ParseError.Kind() != UnusedTokensRemain {
		t.Fatalf("expected UnusedTokensRemain, got %v", result.ParseError.Kind())
	}
}

func TestParseDanglingCommaInListLiteral(t *testing.T) {
	result := Parse("{1, 2, }")
	if result.ParseError == nil {
		t.Fatalf("expected a dangling-comma error")
	}
	if result.ParseError.Kind() != ExpectedCsvContinuation {
		t.Fatalf("expected ExpectedCsvContinuation, got %v", result.ParseError.Kind())
	}
	if result.ParseError.CsvKind != DanglingCommaContinuation {
		t.Fatalf("expected DanglingCommaContinuation, got %v", result.ParseError.CsvKind)
	}
}

func TestParseDanglingCommaInLetExpression(t *testing.T) {
	result := Parse("let x = 1, in x")
	if result.ParseError == nil {
		t.Fatalf("expected a dangling-comma error")
	}
	if result.ParseError.Kind() != ExpectedCsvContinuation {
		t.Fatalf("expected ExpectedCsvContinuation, got %v", result.ParseError.Kind())
	}
	if result.ParseError.CsvKind != LetExpressionContinuation {
		t.Fatalf("expected LetExpressionContinuation, got %v", result.ParseError.CsvKind)
	}
}

func TestParseNullablePrimitiveTypeAcceptsFullClosedFamily(t *testing.T) {
	for _, name := range []string{
		"any", "anynonnull", "binary", "date", "datetime", "datetimezone", "duration",
		"function", "list", "logical", "none", "null", "number", "record", "table", "text",
		"time", "type", "action",
	} {
		mustParse(t, "x is "+name)
	}
}

func TestParseUnterminatedParentheses(t *testing.T) {
	result := Parse("(1 + 2")
	if result.ParseError == nil {
		t.Fatalf("expected an unterminated-parentheses error")
	}
}

// dumpTree renders a node's shape (kind, and each child's kind recursively)
// as a string, ignoring token positions/ids — used to compare the output of
// the two production engines structurally rather than pointer-for-pointer.
func dumpTree(nodes *tree.Map, id tree.ID) string {
	x, ok := nodes.MaybeXor(id)
	if !ok || !x.IsAst() {
		return "?"
	}
	ast, _ := x.Ast()
	out := ast.Kind.String()
	if ast.MaybeToken != nil {
		out += ":" + ast.MaybeToken.Data
	}
	children := nodes.ChildIDs(id)
	if len(children) == 0 {
		return out
	}
	out += "("
	for i, childID := range children {
		if i > 0 {
			out += ","
		}
		out += dumpTree(nodes, childID)
	}
	out += ")"
	return out
}

func TestBinaryChainEnginesProduceIdenticalASTs(t *testing.T) {
	exprs := []string{
		"1 + 2 * 3",
		"1 or 2 and 3",
		"x as number is text",
		"1 = 2 <> 3 < 4",
		"1 + 2 meta 3",
	}
	for _, expr := range exprs {
		recursive := mustParse(t, expr)
		combinatorial := Parse(expr, WithParser(CombinatorialParser))
		if !combinatorial.Ok() {
			t.Fatalf("CombinatorialParser failed on %q: lexErr=%v parseErr=%v", expr, combinatorial.LexError, combinatorial.ParseError)
		}
		got := dumpTree(combinatorial.Nodes, combinatorial.Root.ID)
		want := dumpTree(recursive.Nodes, recursive.Root.ID)
		if got != want {
			t.Fatalf("engines diverged on %q:\n recursive-descent: %s\n combinatorial:     %s", expr, want, got)
		}
	}
}

func TestBackupRestoreDeltaRollback(t *testing.T) {
	lexState := lexer.StateFrom("(x, y) => x")
	snap, lexErr := lexer.TryFrom(lexState)
	if lexErr != nil {
		t.Fatalf("TryFrom: %v", lexErr)
	}
	state := NewState(snap)
	cp := state.Backup()

	if _, err := tryParseFunctionExpression(state); err != nil {
		t.Fatalf("tryParseFunctionExpression: %v", err)
	}
	mintedDuringAttempt := state.Nodes.IDCounter()
	if mintedDuringAttempt <= cp.idCounter {
		t.Fatalf("expected ids minted during the trial parse")
	}

	state.Restore(cp)
	if state.Nodes.IDCounter() != cp.idCounter {
		t.Fatalf("Restore did not roll back the id counter: got %d, want %d", state.Nodes.IDCounter(), cp.idCounter)
	}
	if state.tokenIndex != cp.tokenIndex {
		t.Fatalf("Restore did not roll back tokenIndex")
	}
}
