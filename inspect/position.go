// Package inspect answers questions about a parsed document at a cursor
// position: what scope is visible there, and what type does the node under
// the cursor have (spec.md section 4.4, grounded on java/at_point.go and
// java/resolve.go's declaration-lookup machinery).
package inspect

import (
	"github.com/dhamidi/mparse/token"
	"github.com/dhamidi/mparse/tree"
)

// isBeforeXorNode reports whether pos precedes every token the node spans.
func isBeforeXorNode(nodes *tree.Map, x tree.XorNode, pos token.Position) bool {
	start, ok := x.MaybePositionStart()
	if !ok {
		return false
	}
	return pos.Less(start)
}

// isAfterXorNode reports whether pos follows every token the node spans,
// falling back to the rightmost leaf's end when x itself has no known end
// (an in-construction context node — spec.md section 4.4).
func isAfterXorNode(nodes *tree.Map, x tree.XorNode, pos token.Position) bool {
	end, ok := effectiveEnd(nodes, x)
	if !ok {
		return false
	}
	return end.Less(pos)
}

// isInXorNode reports whether pos falls within [start, end] inclusive.
func isInXorNode(nodes *tree.Map, x tree.XorNode, pos token.Position) bool {
	return !isBeforeXorNode(nodes, x, pos) && !isAfterXorNode(nodes, x, pos)
}

func isOnXorNodeStart(x tree.XorNode, pos token.Position) bool {
	start, ok := x.MaybePositionStart()
	return ok && start == pos
}

func isOnXorNodeEnd(nodes *tree.Map, x tree.XorNode, pos token.Position) bool {
	end, ok := effectiveEnd(nodes, x)
	return ok && end == pos
}

// effectiveEnd resolves a node's end position, falling back to its
// rightmost leaf's end for an in-construction context node that has no
// PositionEnd of its own yet (spec.md section 4.4 design note).
func effectiveEnd(nodes *tree.Map, x tree.XorNode) (token.Position, bool) {
	if end, ok := x.MaybePositionEnd(); ok {
		return end, true
	}
	leaf, ok := nodes.MaybeRightMostLeaf(x.ID())
	if !ok {
		return token.Position{}, false
	}
	return leaf.MaybePositionEnd()
}

// ClosestNode implements spec.md section 4.5 step 1, "find the closest leaf
// by position": among all leaf ids, select the rightmost whose positionEnd
// is on-or-before pos; if none qualifies (pos is before every token), fall
// back to the lexically-first leaf. rootID is accepted for symmetry with
// ScopeAt's other entry points but is not consulted — leafNodeIds always
// belongs to a single document's arena in this implementation, so there is
// never a second root to disambiguate against.
func ClosestNode(nodes *tree.Map, rootID tree.ID, pos token.Position) (tree.XorNode, bool) {
	leafIDs := nodes.LeafNodeIDs()

	var bestID, firstID tree.ID
	var bestEnd, firstStart token.Position
	haveBest, haveFirst := false, false

	for _, id := range leafIDs {
		x, ok := nodes.MaybeXor(id)
		if !ok {
			continue
		}
		start, startOk := x.MaybePositionStart()
		end, endOk := effectiveEnd(nodes, x)
		if !startOk || !endOk {
			continue
		}

		if !haveFirst || start.Less(firstStart) {
			firstID, firstStart, haveFirst = id, start, true
		}
		if end.LessEq(pos) && (!haveBest || bestEnd.Less(end)) {
			bestID, bestEnd, haveBest = id, end, true
		}
	}

	switch {
	case haveBest:
		return nodes.MaybeXor(bestID)
	case haveFirst:
		return nodes.MaybeXor(firstID)
	default:
		return tree.XorNode{}, false
	}
}
