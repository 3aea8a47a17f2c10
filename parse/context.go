package parse

import "github.com/dhamidi/mparse/tree"

// startContext opens a new in-construction node as a child of whichever
// context is currently open, and makes it current (spec.md section 4.3
// step 1). The attribute index is the position this production occupies
// within its parent — callers increment it via acceptChild as they
// accept each child.
//
// Every production opens at least one context, so checking cancellation
// here (rather than in each of the ~30 parseX functions individually)
// consults it at every production boundary, per spec.md section 7's
// cancellation contract, with a single call site.
func (s *State) startContext(kind tree.Kind) *tree.ContextNode {
	s.checkCancellation()
	ctx := &tree.ContextNode{ID: s.Nodes.NewID(), Kind: kind}
	if parent := s.contextState.maybeCurrentContextNode; parent != nil {
		parentID := parent.ID
		ctx.MaybeParentID = &parentID
		idx := tree.AttributeIndex(parent.AttributeCounter)
		ctx.MaybeAttributeIndex = &idx
	}
	if tok := s.Peek(); tok != nil {
		start := tok.PositionStart
		ctx.MaybeTokenStart = &start
	}
	ctx.TokenIndexStart = s.tokenIndex
	s.Nodes.AddContext(ctx)
	s.contextState.maybeCurrentContextNode = ctx
	return ctx
}

// endContext promotes an in-construction context to a completed AST node
// and restores the parent as current (spec.md section 4.3 step 3). isLeaf
// must match tree.IsLeafKind(ctx.Kind) for every production that reaches
// this call with no children accepted.
func (s *State) endContext(ctx *tree.ContextNode, isLeaf bool) *tree.AstNode {
	ast := &tree.AstNode{
		ID:                  ctx.ID,
		Kind:                ctx.Kind,
		MaybeAttributeIndex: ctx.MaybeAttributeIndex,
		IsLeaf:              isLeaf,
		TokenRange: tree.TokenRange{
			IndexStart: ctx.TokenIndexStart,
			IndexEnd:   s.tokenIndex,
		},
	}
	if ctx.MaybeTokenStart != nil {
		ast.TokenRange.PositionStart = *ctx.MaybeTokenStart
	}
	if s.tokenIndex > 0 && s.tokenIndex-1 < len(s.Snapshot.Tokens) {
		ast.TokenRange.PositionEnd = s.Snapshot.Tokens[s.tokenIndex-1].PositionEnd
	} else if ctx.MaybeTokenStart != nil {
		ast.TokenRange.PositionEnd = *ctx.MaybeTokenStart
	}

	s.Nodes.PromoteToAst(ast)
	s.popContext(ctx)
	return ast
}

// abandonContext deletes a context and everything minted since it was
// opened, used when a production fails outright rather than speculatively
// (spec.md section 4.3): the caller is expected to have already decided
// this attempt cannot be salvaged by backtracking to an earlier point.
func (s *State) abandonContext(ctx *tree.ContextNode) {
	backup := ctx.ID - 1
	s.Nodes.DeleteNodesAbove(backup)
	s.Nodes.SetIDCounter(backup)
	s.popContext(ctx)
}

// popContext restores the parent of ctx as the current context, resolved
// via the arena rather than a Go-level stack so that restore() (which
// rewrites contextState.maybeCurrentContextNode directly) never gets out
// of sync with it.
func (s *State) popContext(ctx *tree.ContextNode) {
	if ctx.MaybeParentID == nil {
		s.contextState.maybeCurrentContextNode = nil
		return
	}
	if x, ok := s.Nodes.MaybeXor(*ctx.MaybeParentID); ok {
		parent, _ := x.Context()
		s.contextState.maybeCurrentContextNode = parent
		return
	}
	s.contextState.maybeCurrentContextNode = nil
}

// acceptChild records that the currently-open context accepted one more
// child (spec.md section 4.3 step 2), advancing the attribute-index
// counter used by the next startContext or leaf token consumed under it.
func (s *State) acceptChild() {
	if ctx := s.contextState.maybeCurrentContextNode; ctx != nil {
		s.Nodes.IncrementAttributeCounter(ctx.ID)
	}
}

