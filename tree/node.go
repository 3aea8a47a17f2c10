package tree

import "github.com/dhamidi/mparse/token"

// ID is a process-unique, monotonically allocated node identifier
// (spec.md section 3, design note in section 9): once minted an id is
// never recycled, even after the node it named is deleted by a
// speculative rollback, so a stale cached id fails loudly rather than
// silently resolving to an unrelated node.
type ID uint32

// AttributeIndex is a child's fixed positional slot within its parent's
// production (spec.md glossary).
type AttributeIndex int

// TokenRange locates a node within both the token stream and the document.
type TokenRange struct {
	IndexStart    int
	IndexEnd      int
	PositionStart token.Position
	PositionEnd   token.Position
}

// AstNode is a completed syntactic element (spec.md section 3).
type AstNode struct {
	ID                 ID
	Kind               Kind
	MaybeAttributeIndex *AttributeIndex
	TokenRange         TokenRange
	IsLeaf             bool

	// Terminal payload, set only for leaf nodes produced directly from a
	// single token (identifiers, literals, constants).
	MaybeToken *token.Token
}

// ContextNode is an in-construction counterpart to AstNode (spec.md
// section 3). It exists between startContext and either endContext
// (success) or deletion (speculative abandon or unrecoverable failure).
type ContextNode struct {
	ID                  ID
	Kind                Kind
	MaybeAttributeIndex *AttributeIndex
	MaybeTokenStart     *token.Position
	TokenIndexStart     int
	AttributeCounter    int
	MaybeParentID       *ID
}

// XorNode is a read-only view uniting an AstNode and a ContextNode: post
// parse, every consumer that must also work on an error-partial tree
// operates on XorNodes (spec.md section 3).
type XorNode struct {
	ast *AstNode
	ctx *ContextNode
}

func astXor(n *AstNode) XorNode { return XorNode{ast: n} }
func ctxXor(n *ContextNode) XorNode { return XorNode{ctx: n} }

// IsAst reports whether this view resolves to a completed AST node.
func (x XorNode) IsAst() bool { return x.ast != nil }

// IsContext reports whether this view resolves to an in-construction
// context node.
func (x XorNode) IsContext() bool { return x.ctx != nil }

// IsValid reports whether the XorNode was ever bound to a node.
func (x XorNode) IsValid() bool { return x.ast != nil || x.ctx != nil }

func (x XorNode) ID() ID {
	if x.ast != nil {
		return x.ast.ID
	}
	return x.ctx.ID
}

func (x XorNode) Kind() Kind {
	if x.ast != nil {
		return x.ast.Kind
	}
	return x.ctx.Kind
}

func (x XorNode) MaybeAttributeIndex() *AttributeIndex {
	if x.ast != nil {
		return x.ast.MaybeAttributeIndex
	}
	return x.ctx.MaybeAttributeIndex
}

// Ast returns the underlying AstNode and true, or (nil, false) if this
// view is a context node.
func (x XorNode) Ast() (*AstNode, bool) { return x.ast, x.ast != nil }

// Context returns the underlying ContextNode and true, or (nil, false) if
// this view is an AST node.
func (x XorNode) Context() (*ContextNode, bool) { return x.ctx, x.ctx != nil }

// MaybePositionStart returns the node's known start position, if any. A
// context node with no tokens accepted yet has none.
func (x XorNode) MaybePositionStart() (token.Position, bool) {
	if x.ast != nil {
		return x.ast.TokenRange.PositionStart, true
	}
	if x.ctx.MaybeTokenStart != nil {
		return *x.ctx.MaybeTokenStart, true
	}
	return token.Position{}, false
}

// MaybePositionEnd returns the node's known end position. AST nodes always
// have one; context nodes never do directly (spec.md section 4.5 resolves
// a context node's "end" via maybeRightMostLeaf instead).
func (x XorNode) MaybePositionEnd() (token.Position, bool) {
	if x.ast != nil {
		return x.ast.TokenRange.PositionEnd, true
	}
	return token.Position{}, false
}
