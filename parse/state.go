package parse

import (
	"context"

	"github.com/dhamidi/mparse/lexer"
	"github.com/dhamidi/mparse/token"
	"github.com/dhamidi/mparse/tree"
)

// contextState tracks the parser's write position inside the node-id arena
// as it descends and ascends through nested productions (spec.md section
// 4.3): maybeCurrentContextNode is the innermost context still open.
type contextState struct {
	maybeCurrentContextNode *tree.ContextNode
}

// State is the parser's mutable position over an immutable token.Token
// stream (spec.md section 4). It is deliberately small: everything it
// needs to save for a speculative attempt fits in a Checkpoint value, which
// is what makes backup O(1) and restore O(delta) rather than O(size of
// input) (spec.md section 4.3, section 9).
type State struct {
	Snapshot *lexer.Snapshot
	Nodes    *tree.Map

	tokenIndex        int
	maybeCurrentToken *token.Token
	contextState      contextState

	// Strategy selects which of the two production engines parseExpression
	// dispatches the binary-operator precedence chain to (spec.md section
	// 4.3's "Combinator variants"). Zero value is RecursiveDescentParser,
	// so a State built without going through Settings still behaves the
	// way it always did.
	Strategy ParserStrategy

	// cancellationToken is consulted at every production boundary (see
	// startContext), not just once before the parse begins, so a caller can
	// abort a pathological input mid-parse (spec.md section 7). Left nil by
	// NewState — a State built without going through Settings never checks
	// it, matching the zero-value behavior of Strategy above.
	cancellationToken context.Context
}

// NewState builds a fresh parser state positioned before the first token.
func NewState(snap *lexer.Snapshot) *State {
	s := &State{Snapshot: snap, Nodes: tree.NewMap()}
	s.syncCurrentToken()
	return s
}

// cancellationPanic unwinds the parser stack from deep inside startContext
// when the caller's context is done, the same way tree.InvariantViolation
// unwinds an arena-invariant failure — recovered at the ParseSnapshot
// boundary and turned into a CancellationError.
type cancellationPanic struct{}

// checkCancellation panics with cancellationPanic if s.cancellationToken has
// been canceled or has expired. A nil token (the common case: most callers
// never set one) is never consulted.
func (s *State) checkCancellation() {
	if s.cancellationToken == nil {
		return
	}
	if err := s.cancellationToken.Err(); err != nil {
		panic(cancellationPanic{})
	}
}

func (s *State) syncCurrentToken() {
	if s.tokenIndex < len(s.Snapshot.Tokens) {
		s.maybeCurrentToken = &s.Snapshot.Tokens[s.tokenIndex]
	} else {
		s.maybeCurrentToken = nil
	}
}

// Peek returns the token at the current read position, or nil at EOF.
func (s *State) Peek() *token.Token { return s.maybeCurrentToken }

// PeekColumn is the column of the current token's start position, used only
// for diagnostics — it is not tracked as part of parser progress.
func (s *State) PeekColumn() int {
	if s.maybeCurrentToken == nil {
		return 0
	}
	pos := s.maybeCurrentToken.PositionStart
	return token.ColumnNumber(s.Snapshot.LineText(pos.LineNumber), pos.LineCodeUnit)
}

// Advance consumes the current token and moves the read position forward
// one slot, returning the token that was consumed.
func (s *State) Advance() *token.Token {
	consumed := s.maybeCurrentToken
	s.tokenIndex++
	s.syncCurrentToken()
	return consumed
}

// AtEOF reports whether every token has been consumed.
func (s *State) AtEOF() bool { return s.maybeCurrentToken == nil }

// Checkpoint is the O(1) backup snapshot of spec.md section 4.3: the
// parser's read position, the arena's id counter, and the id of whichever
// context node was open at the time (nil if none). Restoring rewinds the
// read position directly and asks the arena to discard everything minted
// since the checkpoint — an O(delta) operation bounded by the size of the
// abandoned attempt, never by the size of the whole document.
type Checkpoint struct {
	tokenIndex     int
	idCounter      tree.ID
	maybeContextID *tree.ID
}

// Backup captures a Checkpoint at the current position.
func (s *State) Backup() Checkpoint {
	cp := Checkpoint{tokenIndex: s.tokenIndex, idCounter: s.Nodes.IDCounter()}
	if ctx := s.contextState.maybeCurrentContextNode; ctx != nil {
		id := ctx.ID
		cp.maybeContextID = &id
	}
	return cp
}

// Restore rewinds to a prior Checkpoint, deleting every arena node minted
// since it was taken (spec.md section 4.3).
func (s *State) Restore(cp Checkpoint) {
	s.tokenIndex = cp.tokenIndex
	s.syncCurrentToken()
	s.Nodes.DeleteNodesAbove(cp.idCounter)
	s.Nodes.SetIDCounter(cp.idCounter)
	if cp.maybeContextID != nil {
		if x, ok := s.Nodes.MaybeXor(*cp.maybeContextID); ok {
			ctx, _ := x.Context()
			s.contextState.maybeCurrentContextNode = ctx
		}
	} else {
		s.contextState.maybeCurrentContextNode = nil
	}
}
