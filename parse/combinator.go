package parse

import (
	"github.com/dhamidi/mparse/token"
	"github.com/dhamidi/mparse/tree"
)

// expectTokenKind consumes the current token if it has the wanted kind, or
// returns an ExpectedTokenKind ParseError otherwise (spec.md section 4.3).
func (s *State) expectTokenKind(kind token.Kind) (*token.Token, *ParseError) {
	tok := s.Peek()
	if tok == nil || tok.Kind != kind {
		return nil, newExpectedTokenKindError(kind, tok, s.PeekColumn())
	}
	return s.Advance(), nil
}

// expectAnyTokenKind is expectTokenKind generalized to a set of acceptable
// kinds, used at decision points where several productions could start
// (e.g. the primary-expression dispatch).
func (s *State) expectAnyTokenKind(kinds ...token.Kind) (*token.Token, *ParseError) {
	tok := s.Peek()
	if tok == nil {
		return nil, newExpectedAnyTokenKindError(kinds, tok, s.PeekColumn())
	}
	for _, k := range kinds {
		if tok.Kind == k {
			return s.Advance(), nil
		}
	}
	return nil, newExpectedAnyTokenKindError(kinds, tok, s.PeekColumn())
}

// isOnTokenKind reports whether the current token has the given kind,
// without consuming it — the standard one-token-lookahead test used to
// decide whether an optional production applies.
func (s *State) isOnTokenKind(kind token.Kind) bool {
	tok := s.Peek()
	return tok != nil && tok.Kind == kind
}

func (s *State) isOnAnyTokenKind(kinds ...token.Kind) bool {
	tok := s.Peek()
	if tok == nil {
		return false
	}
	for _, k := range kinds {
		if tok.Kind == k {
			return true
		}
	}
	return false
}

// leaf wraps the current token as a completed, childless AST node under
// whichever context is open (spec.md section 3 invariant d) — used for
// identifiers, literals, and constants, which never get their own
// startContext/endContext pair.
func (s *State) leaf(kind tree.Kind, tok *token.Token) *tree.AstNode {
	ast := &tree.AstNode{
		ID:         s.Nodes.NewID(),
		Kind:       kind,
		IsLeaf:     true,
		MaybeToken: tok,
		TokenRange: tree.TokenRange{
			IndexStart:    s.tokenIndex - 1,
			IndexEnd:      s.tokenIndex,
			PositionStart: tok.PositionStart,
			PositionEnd:   tok.PositionEnd,
		},
	}
	if parent := s.contextState.maybeCurrentContextNode; parent != nil {
		parentID := parent.ID
		ast.MaybeAttributeIndex = attributeIndexPtr(tree.AttributeIndex(parent.AttributeCounter))
		ctx := &tree.ContextNode{ID: ast.ID, Kind: kind, MaybeParentID: &parentID, MaybeAttributeIndex: ast.MaybeAttributeIndex}
		s.Nodes.AddContext(ctx)
		s.Nodes.PromoteToAst(ast)
		return ast
	}
	s.Nodes.AddContext(&tree.ContextNode{ID: ast.ID, Kind: kind})
	s.Nodes.PromoteToAst(ast)
	return ast
}

func attributeIndexPtr(i tree.AttributeIndex) *tree.AttributeIndex { return &i }

// binOpChain implements the left-associative binary-operator combinator
// shared by every precedence level from LogicalOr down to Multiplicative
// (spec.md section 4.3): parse one operand via next, then keep folding in
// (operator, operand) pairs for as long as the current token is one of ops.
// Each fold opens its own wrapKind context nesting the previous result as
// its left operand — the same pairwise nesting keywordTypeChain uses below,
// so `1+2+3` parses as `((1+2)+3)`, not a single n-ary node. A chain of
// length one collapses back to the bare operand — no wrapper node is
// allocated for `1`, only for `1 + 2`.
func binOpChain(s *State, wrapKind tree.Kind, ops map[token.Kind]bool, next func(*State) (*tree.AstNode, *ParseError)) (*tree.AstNode, *ParseError) {
	left, err := next(s)
	if err != nil {
		return nil, err
	}
	for s.isOnAnyKindIn(ops) {
		ctx := s.startContext(wrapKind)
		s.reparentUnderContext(left, ctx)
		s.acceptChild()

		opTok := s.Advance()
		s.leaf(tree.KindConstant, opTok)
		s.acceptChild()

		right, err := next(s)
		if err != nil {
			s.abandonContext(ctx)
			return nil, err
		}
		s.acceptChild()
		_ = right

		left = s.endContext(ctx, false)
	}
	return left, nil
}

// keywordTypeChain implements the left-associative `expr KEYWORD
// nullablePrimitiveType` fold shared by `is` and `as` (spec.md section 6):
// parse one operand via next, then keep folding in a (keyword, primitive
// type) pair for as long as the current token is kw. Shared by both
// production engines (parse/precedence.go) so their output can never
// diverge on this production.
func keywordTypeChain(s *State, wrapKind tree.Kind, kw token.Kind, next func(*State) (*tree.AstNode, *ParseError)) (*tree.AstNode, *ParseError) {
	left, err := next(s)
	if err != nil {
		return nil, err
	}
	for s.isOnTokenKind(kw) {
		ctx := s.startContext(wrapKind)
		s.reparentUnderContext(left, ctx)
		s.acceptChild()

		tok, _ := s.expectTokenKind(kw)
		s.leaf(tree.KindConstant, tok)
		s.acceptChild()

		typ, err := parseNullablePrimitiveType(s)
		if err != nil {
			s.abandonContext(ctx)
			return nil, err
		}
		s.acceptChild()
		_ = typ

		left = s.endContext(ctx, false)
	}
	return left, nil
}

func (s *State) isOnAnyKindIn(ops map[token.Kind]bool) bool {
	tok := s.Peek()
	return tok != nil && ops[tok.Kind]
}

// reparentUnderContext relinks an already-completed node as the first
// child of a wrapping context that was opened after the fact — the
// standard "we didn't know we needed a wrapper until we saw the operator"
// shape of a left-recursive binary expression rewritten as iteration.
func (s *State) reparentUnderContext(child *tree.AstNode, ctx *tree.ContextNode) {
	idx := tree.AttributeIndex(ctx.AttributeCounter)
	child.MaybeAttributeIndex = &idx
	s.Nodes.Reparent(child.ID, ctx.ID)
}
