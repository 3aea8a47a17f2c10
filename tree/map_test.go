package tree

import "testing"

func attr(i int) *AttributeIndex {
	a := AttributeIndex(i)
	return &a
}

func TestChildOrderingAndParentBackreference(t *testing.T) {
	m := NewMap()
	root := &ContextNode{ID: m.NewID(), Kind: KindDocument}
	m.AddContext(root)

	c2 := &ContextNode{ID: m.NewID(), Kind: KindIdentifier, MaybeAttributeIndex: attr(2), MaybeParentID: &root.ID}
	c0 := &ContextNode{ID: m.NewID(), Kind: KindIdentifier, MaybeAttributeIndex: attr(0), MaybeParentID: &root.ID}
	c1 := &ContextNode{ID: m.NewID(), Kind: KindIdentifier, MaybeAttributeIndex: attr(1), MaybeParentID: &root.ID}
	m.AddContext(c2)
	m.AddContext(c0)
	m.AddContext(c1)

	children := m.ChildIDs(root.ID)
	if len(children) != 3 || children[0] != c0.ID || children[1] != c1.ID || children[2] != c2.ID {
		t.Fatalf("children out of attribute-index order: %v", children)
	}
	for _, c := range []ID{c0.ID, c1.ID, c2.ID} {
		p, ok := m.ParentID(c)
		if !ok || p != root.ID {
			t.Fatalf("child %d: parent = %v, %v, want %v", c, p, ok, root.ID)
		}
	}
}

func TestDeleteNodesAboveRollback(t *testing.T) {
	m := NewMap()
	root := &ContextNode{ID: m.NewID(), Kind: KindDocument}
	m.AddContext(root)
	backup := m.IDCounter()

	child := &ContextNode{ID: m.NewID(), Kind: KindIdentifier, MaybeAttributeIndex: attr(0), MaybeParentID: &root.ID}
	m.AddContext(child)
	grandchild := &ContextNode{ID: m.NewID(), Kind: KindIdentifier, MaybeAttributeIndex: attr(0), MaybeParentID: &child.ID}
	m.AddContext(grandchild)

	m.DeleteNodesAbove(backup)
	m.SetIDCounter(backup)

	if _, ok := m.MaybeXor(child.ID); ok {
		t.Fatalf("expected child deleted")
	}
	if _, ok := m.MaybeXor(grandchild.ID); ok {
		t.Fatalf("expected grandchild deleted")
	}
	if children := m.ChildIDs(root.ID); len(children) != 0 {
		t.Fatalf("expected root to have no children after rollback, got %v", children)
	}

	// ids are never recycled: minting again must skip over the deleted ids.
	next := m.NewID()
	if next <= grandchild.ID {
		t.Fatalf("expected fresh id > %d, got %d", grandchild.ID, next)
	}
}

func TestPromoteToAstMovesID(t *testing.T) {
	m := NewMap()
	ctx := &ContextNode{ID: m.NewID(), Kind: KindLiteralExpression}
	m.AddContext(ctx)
	ast := &AstNode{ID: ctx.ID, Kind: KindLiteralExpression, IsLeaf: true}
	m.PromoteToAst(ast)

	x, ok := m.MaybeXor(ctx.ID)
	if !ok || !x.IsAst() {
		t.Fatalf("expected id %d to resolve to an AST node", ctx.ID)
	}
	found := false
	for _, id := range m.LeafNodeIDs() {
		if id == ast.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected leaf node id registered")
	}
}
