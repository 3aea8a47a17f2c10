package inspect

import (
	"github.com/dhamidi/mparse/token"
	"github.com/dhamidi/mparse/tree"
)

// Scope is the set of identifiers visible at a cursor position, keyed by
// name (spec.md section 4.5). Bindings closer to the cursor's own ancestry
// chain win over ones further out — first writer wins, per the design note
// keeping this a plain map rather than a stack of maps.
type Scope struct {
	Names map[string]tree.ID // identifier name -> the AstNode that bound it
}

func newScope() *Scope { return &Scope{Names: map[string]tree.ID{}} }

func (sc *Scope) bind(name string, id tree.ID) {
	if _, exists := sc.Names[name]; !exists {
		sc.Names[name] = id
	}
}

// ScopeAt computes the identifiers visible at pos by walking the ancestry
// chain of the closest node outward to the document root, applying a
// per-kind visitor at every level (spec.md section 4.5, grounded on
// java/at_point.go's findVariableDeclaration priority: local > param >
// field, generalized here to let/each/function/section scoping).
func ScopeAt(nodes *tree.Map, rootID tree.ID, pos token.Position) *Scope {
	scope := newScope()
	closest, ok := ClosestNode(nodes, rootID, pos)
	if !ok {
		return scope
	}
	for _, ancestor := range nodes.AssertAncestry(closest.ID()) {
		visitScope(nodes, ancestor, scope, pos)
	}
	return scope
}

// visitScope applies the binding rule for one ancestor's kind (spec.md
// section 4.5): each ancestor kind knows how to find the names it
// introduces among its own children, without recursing further than that.
func visitScope(nodes *tree.Map, node tree.XorNode, scope *Scope, pos token.Position) {
	switch node.Kind() {
	case tree.KindLetExpression:
		visitLetScope(nodes, node, scope, pos)
	case tree.KindEachExpression:
		scope.bind("_", node.ID())
	case tree.KindFunctionExpression:
		visitFunctionScope(nodes, node, scope)
	case tree.KindSection:
		visitSectionScope(nodes, node, scope)
	case tree.KindRecordLiteral:
		visitRecordScope(nodes, node, scope, pos)
	case tree.KindIdentifier, tree.KindGeneralizedIdentifier:
		visitIdentifierScope(nodes, node, scope, pos)
	}
}

// visitIdentifierScope adds an identifier or generalized identifier to its
// own scope, provided it has already started by pos (spec.md section 4.5:
// "the word I am typing is in its own scope"). This only ever fires for the
// closest node itself — no other ancestor in a chain is a bare identifier
// leaf — but the position check still guards the edge case where no leaf
// ends by pos and ClosestNode falls back to the lexically-first token,
// which then starts after pos.
func visitIdentifierScope(nodes *tree.Map, node tree.XorNode, scope *Scope, pos token.Position) {
	if isBeforeXorNode(nodes, node, pos) {
		return
	}
	ast, ok := node.Ast()
	if !ok || ast.MaybeToken == nil {
		return
	}
	scope.bind(ast.MaybeToken.Data, node.ID())
}

// visitLetScope binds each key-value pair's identifier, skipping any pair
// whose value has not finished by pos — a forward reference within the
// same let is not yet in scope (spec.md section 4.5, Scenario S3: scope
// immediately after "x =" contains neither x nor y).
func visitLetScope(nodes *tree.Map, letNode tree.XorNode, scope *Scope, pos token.Position) {
	for _, cid := range nodes.ChildIDs(letNode.ID()) {
		child, ok := nodes.MaybeXor(cid)
		if !ok || child.Kind() != tree.KindIdentifierPairedExpression {
			continue
		}
		if !bindingCompleteBy(nodes, child, pos) {
			continue
		}
		if id, name, ok := boundIdentifier(nodes, child, 0); ok {
			scope.bind(name, id)
		}
	}
}

func visitFunctionScope(nodes *tree.Map, fnNode tree.XorNode, scope *Scope) {
	paramList, ok := nodes.MaybeChildXorByAttributeIndex(fnNode.ID(), 0, tree.KindParameterList)
	if !ok {
		return
	}
	for _, cid := range nodes.ChildIDs(paramList.ID()) {
		param, ok := csvItem(nodes, cid, tree.KindParameter)
		if !ok {
			continue
		}
		if id, name, ok := boundIdentifier(nodes, param, 0); ok {
			scope.bind(name, id)
		}
	}
}

func visitSectionScope(nodes *tree.Map, sectionNode tree.XorNode, scope *Scope) {
	for _, cid := range nodes.ChildIDs(sectionNode.ID()) {
		member, ok := nodes.MaybeXor(cid)
		if !ok || member.Kind() != tree.KindSectionMember {
			continue
		}
		for _, mcid := range nodes.ChildIDs(member.ID()) {
			pair, ok := nodes.MaybeXor(mcid)
			if !ok || pair.Kind() != tree.KindIdentifierPairedExpression {
				continue
			}
			if id, name, ok := boundIdentifier(nodes, pair, 0); ok {
				scope.bind(name, id)
			}
		}
	}
}

// visitRecordScope binds a record literal's own field names, visible to
// other field expressions within the same record, but only those whose
// value has finished by pos — the same forward-reference rule as a let
// expression (spec.md section 4.5).
func visitRecordScope(nodes *tree.Map, recordNode tree.XorNode, scope *Scope, pos token.Position) {
	for _, cid := range nodes.ChildIDs(recordNode.ID()) {
		field, ok := csvItem(nodes, cid, tree.KindGeneralizedIdentifierPairedExpression)
		if !ok {
			continue
		}
		if !bindingCompleteBy(nodes, field, pos) {
			continue
		}
		if id, name, ok := boundIdentifier(nodes, field, 0); ok {
			scope.bind(name, id)
		}
	}
}

// bindingCompleteBy reports whether pair's value child (attribute index 2
// of an IdentifierPairedExpression or GeneralizedIdentifierPairedExpression)
// ends at or before pos.
func bindingCompleteBy(nodes *tree.Map, pair tree.XorNode, pos token.Position) bool {
	value, ok := nodes.MaybeChildXorByAttributeIndex(pair.ID(), 2)
	if !ok {
		return false
	}
	end, ok := effectiveEnd(nodes, value)
	if !ok {
		return false
	}
	return end.LessEq(pos)
}

// csvItem unwraps a Csv node's content child (spec.md's Glossary: "a
// comma-separated-value node; parent of one content expression and,
// optionally, a trailing comma constant"), and checks it is of one of
// allowedKinds (any kind when none are given). cid
// must name a Csv node — every comma-separated list wraps its items this way.
func csvItem(nodes *tree.Map, cid tree.ID, allowedKinds ...tree.Kind) (tree.XorNode, bool) {
	csv, ok := nodes.MaybeXor(cid)
	if !ok || csv.Kind() != tree.KindCsv {
		return tree.XorNode{}, false
	}
	content, ok := nodes.MaybeChildXorByAttributeIndex(csv.ID(), 0, allowedKinds...)
	if !ok {
		return tree.XorNode{}, false
	}
	return content, true
}

// boundIdentifier reads the name out of an Identifier/GeneralizedIdentifier
// leaf sitting at attrIdx under parent.
func boundIdentifier(nodes *tree.Map, parent tree.XorNode, attrIdx tree.AttributeIndex) (tree.ID, string, bool) {
	ast, ok := nodes.MaybeChildAstByAttributeIndex(parent.ID(), attrIdx, tree.KindIdentifier, tree.KindGeneralizedIdentifier)
	if !ok || ast.MaybeToken == nil {
		return 0, "", false
	}
	return ast.ID, ast.MaybeToken.Data, true
}

// InvocationContext describes the invoke expression enclosing a cursor
// position (spec.md section 4.5): the invoked expression's name, the
// argument arity, and the index of the argument the cursor sits in — used
// to decide whether completions should be parameter hints rather than
// plain identifier completions.
type InvocationContext struct {
	InvokeID      tree.ID
	Name          string
	Arity         int
	ArgumentIndex int
}

// IsInvocationContext reports whether pos sits inside an InvokeExpression's
// argument list, and if so, describes that invocation (spec.md section 4.5).
func IsInvocationContext(nodes *tree.Map, rootID tree.ID, pos token.Position) (InvocationContext, bool) {
	closest, ok := ClosestNode(nodes, rootID, pos)
	if !ok {
		return InvocationContext{}, false
	}
	ancestry := nodes.AssertAncestry(closest.ID())
	for i, ancestor := range ancestry {
		if ancestor.Kind() != tree.KindInvokeExpression {
			continue
		}
		args := invocationArguments(nodes, ancestor.ID())
		ic := InvocationContext{
			InvokeID:      ancestor.ID(),
			Arity:         len(args),
			ArgumentIndex: argumentIndexAt(nodes, args, pos),
		}
		if i+1 < len(ancestry) {
			ic.Name = invokedName(nodes, ancestry[i+1])
		}
		return ic, true
	}
	return InvocationContext{}, false
}

// invocationArguments returns an InvokeExpression's argument expressions, in
// order, unwrapped from their Csv nodes and skipping the surrounding
// parenthesis constants.
func invocationArguments(nodes *tree.Map, invokeID tree.ID) []tree.XorNode {
	var args []tree.XorNode
	for _, cid := range nodes.ChildIDs(invokeID) {
		arg, ok := csvItem(nodes, cid)
		if !ok {
			continue
		}
		args = append(args, arg)
	}
	return args
}

// argumentIndexAt picks the argument the cursor sits in: the first one
// whose end is at-or-after pos, or the last argument if pos is past all of
// them (typing a new trailing argument), or 0 if there are none yet.
func argumentIndexAt(nodes *tree.Map, args []tree.XorNode, pos token.Position) int {
	for i, arg := range args {
		end, ok := effectiveEnd(nodes, arg)
		if ok && pos.LessEq(end) {
			return i
		}
	}
	if len(args) == 0 {
		return 0
	}
	return len(args) - 1
}

// invokedName resolves the name of the expression being invoked, unwrapping
// nested RecursivePrimaryExpressions (chained calls/accesses, e.g.
// `f(1)(2)`) down to the innermost head, and reading its identifier text if
// that head is a bare IdentifierExpression. Any other head shape (a
// parenthesized expression, a field access, ...) has no single name and
// yields an empty string.
func invokedName(nodes *tree.Map, recursivePrimary tree.XorNode) string {
	head, ok := nodes.MaybeChildXorByAttributeIndex(recursivePrimary.ID(), 0)
	for ok && head.Kind() == tree.KindRecursivePrimaryExpression {
		head, ok = nodes.MaybeChildXorByAttributeIndex(head.ID(), 0)
	}
	if !ok || head.Kind() != tree.KindIdentifierExpression {
		return ""
	}
	ast, ok := nodes.MaybeChildAstByAttributeIndex(head.ID(), 0, tree.KindIdentifier)
	if !ok || ast.MaybeToken == nil {
		return ""
	}
	return ast.MaybeToken.Data
}
