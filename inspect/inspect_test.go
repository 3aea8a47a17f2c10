package inspect

import (
	"testing"

	"github.com/dhamidi/mparse/parse"
	"github.com/dhamidi/mparse/token"
)

func mustParse(t *testing.T, text string) *parse.Result {
	t.Helper()
	result := parse.Parse(text)
	if !result.Ok() {
		t.Fatalf("Parse(%q) failed: parseErr=%v lexErr=%v", text, result.ParseError, result.LexError)
	}
	return result
}

func TestScopeAtInsideLetBody(t *testing.T) {
	result := mustParse(t, "let x = 1, y = 2 in x")
	// The body "x" is the last token in the document; ask for scope right
	// at its start position.
	lastTok := result.Snapshot.Tokens[len(result.Snapshot.Tokens)-1]
	scope := ScopeAt(result.Nodes, result.Root.ID, lastTok.PositionStart)
	if _, ok := scope.Names["x"]; !ok {
		t.Fatalf("expected x to be bound in scope, got %v", scope.Names)
	}
	if _, ok := scope.Names["y"]; !ok {
		t.Fatalf("expected y to be bound in scope, got %v", scope.Names)
	}
}

func TestScopeAtInsideFunctionBody(t *testing.T) {
	result := mustParse(t, "(a, b) => a")
	lastTok := result.Snapshot.Tokens[len(result.Snapshot.Tokens)-1]
	scope := ScopeAt(result.Nodes, result.Root.ID, lastTok.PositionStart)
	if _, ok := scope.Names["a"]; !ok {
		t.Fatalf("expected parameter a to be bound in scope")
	}
	if _, ok := scope.Names["b"]; !ok {
		t.Fatalf("expected parameter b to be bound in scope")
	}
}

func TestClosestNodeFindsInnermostLiteral(t *testing.T) {
	result := mustParse(t, "1 + 2")
	pos := token.Position{LineNumber: 0, LineCodeUnit: 5} // immediately after the "2"
	closest, ok := ClosestNode(result.Nodes, result.Root.ID, pos)
	if !ok {
		t.Fatalf("expected a closest node")
	}
	if closest.Kind().String() != "LiteralExpression" {
		t.Fatalf("expected LiteralExpression, got %s", closest.Kind())
	}
}

func TestTypeOfArithmeticExpressionIsNumber(t *testing.T) {
	result := mustParse(t, "1 + 2")
	inspector := NewInspector(result.Nodes)
	child, ok := result.Nodes.MaybeChildAstByAttributeIndex(result.Root.ID, 0)
	if !ok {
		t.Fatalf("expected document child")
	}
	typ := inspector.TypeOf(child.ID)
	if typ.Kind != NumberType {
		t.Fatalf("expected NumberType, got %s", typ.Kind)
	}
}

func TestTypeOfLetBodyFollowsLastBinding(t *testing.T) {
	result := mustParse(t, `let x = "hello" in x`)
	inspector := NewInspector(result.Nodes)
	letNode, ok := result.Nodes.MaybeChildAstByAttributeIndex(result.Root.ID, 0)
	if !ok {
		t.Fatalf("expected document child")
	}
	typ := inspector.TypeOf(letNode.ID)
	if typ.Kind != TextType {
		t.Fatalf("expected the let body's identifier reference to resolve to TextType, got %s", typ.Kind)
	}
}

func TestIsInvocationContext(t *testing.T) {
	result := mustParse(t, "f(1, 2)")
	pos := token.Position{LineNumber: 0, LineCodeUnit: 3} // inside the "(1, 2)" args
	if _, ok := IsInvocationContext(result.Nodes, result.Root.ID, pos); !ok {
		t.Fatalf("expected to be inside an invocation context")
	}
}

func TestInvocationContextReportsNameArityAndArgumentIndex(t *testing.T) {
	result := mustParse(t, "f(1, 2)")
	pos := token.Position{LineNumber: 0, LineCodeUnit: 5} // the "2"
	ic, ok := IsInvocationContext(result.Nodes, result.Root.ID, pos)
	if !ok {
		t.Fatalf("expected to be inside an invocation context")
	}
	if ic.Name != "f" {
		t.Fatalf("expected invoked name f, got %q", ic.Name)
	}
	if ic.Arity != 2 {
		t.Fatalf("expected arity 2, got %d", ic.Arity)
	}
	if ic.ArgumentIndex != 1 {
		t.Fatalf("expected cursor inside the second argument (index 1), got %d", ic.ArgumentIndex)
	}
}

func TestScopeExcludesForwardReferenceWithinLet(t *testing.T) {
	result := mustParse(t, "let x = 1, y = x + 1 in y")
	pos := token.Position{LineNumber: 0, LineCodeUnit: 8} // immediately after "x ="
	scope := ScopeAt(result.Nodes, result.Root.ID, pos)
	if _, ok := scope.Names["x"]; ok {
		t.Fatalf("expected x not yet in scope immediately after \"x =\", got %v", scope.Names)
	}
	if _, ok := scope.Names["y"]; ok {
		t.Fatalf("expected y not yet in scope immediately after \"x =\", got %v", scope.Names)
	}
}

func TestScopeSelfBindsIdentifierBeingTyped(t *testing.T) {
	result := mustParse(t, "let x = 1 in x")
	pos := token.Position{LineNumber: 0, LineCodeUnit: 5} // immediately after typing "x"
	scope := ScopeAt(result.Nodes, result.Root.ID, pos)
	if _, ok := scope.Names["x"]; !ok {
		t.Fatalf("expected x to self-bind while still being typed, got %v", scope.Names)
	}
}

func TestClosestNodeResolvesPastLastToken(t *testing.T) {
	result := mustParse(t, "1 + 2")
	pos := token.Position{LineNumber: 0, LineCodeUnit: 100} // well past the last token
	if _, ok := ClosestNode(result.Nodes, result.Root.ID, pos); !ok {
		t.Fatalf("expected ClosestNode to still resolve past the last token")
	}
}

func TestTypeOfAsExpressionIsAnnotatedType(t *testing.T) {
	result := mustParse(t, "x as text")
	inspector := NewInspector(result.Nodes)
	child, ok := result.Nodes.MaybeChildAstByAttributeIndex(result.Root.ID, 0)
	if !ok {
		t.Fatalf("expected document child")
	}
	typ := inspector.TypeOf(child.ID)
	if typ.Kind != TextType {
		t.Fatalf("expected TextType, got %s", typ.Kind)
	}
	if typ.IsNullable {
		t.Fatalf("expected non-nullable text")
	}
}

func TestTypeOfIsExpressionIsStillLogical(t *testing.T) {
	result := mustParse(t, "x is number")
	inspector := NewInspector(result.Nodes)
	child, ok := result.Nodes.MaybeChildAstByAttributeIndex(result.Root.ID, 0)
	if !ok {
		t.Fatalf("expected document child")
	}
	typ := inspector.TypeOf(child.ID)
	if typ.Kind != LogicalType {
		t.Fatalf("expected LogicalType, got %s", typ.Kind)
	}
}

func TestTypeOfFunctionCapturesParameterAnnotations(t *testing.T) {
	result := mustParse(t, "(a as number, b as nullable text) => a")
	inspector := NewInspector(result.Nodes)
	child, ok := result.Nodes.MaybeChildAstByAttributeIndex(result.Root.ID, 0)
	if !ok {
		t.Fatalf("expected document child")
	}
	typ := inspector.TypeOf(child.ID)
	if typ.Kind != FunctionType {
		t.Fatalf("expected FunctionType, got %s", typ.Kind)
	}
	if len(typ.ParamTypes) != 2 {
		t.Fatalf("expected 2 param types, got %d", len(typ.ParamTypes))
	}
	if typ.ParamTypes[0].Kind != NumberType {
		t.Fatalf("expected first parameter to be NumberType, got %s", typ.ParamTypes[0].Kind)
	}
	if typ.ParamTypes[1].Kind != TextType || !typ.ParamTypes[1].IsNullable {
		t.Fatalf("expected second parameter to be nullable text, got %+v", typ.ParamTypes[1])
	}
}

func TestTypeOfListInfersElementTypeFromFirstItem(t *testing.T) {
	result := mustParse(t, "{1, 2, 3}")
	inspector := NewInspector(result.Nodes)
	child, ok := result.Nodes.MaybeChildAstByAttributeIndex(result.Root.ID, 0)
	if !ok {
		t.Fatalf("expected document child")
	}
	typ := inspector.TypeOf(child.ID)
	if typ.Kind != ListType {
		t.Fatalf("expected ListType, got %s", typ.Kind)
	}
	if typ.ElementType == nil || typ.ElementType.Kind != NumberType {
		t.Fatalf("expected number element type, got %+v", typ.ElementType)
	}
}

func TestTypeOfRecordCollectsFieldTypes(t *testing.T) {
	result := mustParse(t, `[a = 1, b = "x"]`)
	inspector := NewInspector(result.Nodes)
	child, ok := result.Nodes.MaybeChildAstByAttributeIndex(result.Root.ID, 0)
	if !ok {
		t.Fatalf("expected document child")
	}
	typ := inspector.TypeOf(child.ID)
	if typ.Kind != RecordType {
		t.Fatalf("expected RecordType, got %s", typ.Kind)
	}
	if got := typ.Fields["a"].Kind; got != NumberType {
		t.Fatalf("expected field a to be NumberType, got %s", got)
	}
	if got := typ.Fields["b"].Kind; got != TextType {
		t.Fatalf("expected field b to be TextType, got %s", got)
	}
	if typ.IsOpenRecord {
		t.Fatalf("expected a closed record")
	}
}
