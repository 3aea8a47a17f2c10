package tree

import (
	"sort"
	"strconv"
)

// InvariantViolation is panicked by the Assert* family when the arena is
// found to be structurally broken — a bug, never expected for well-formed
// input (spec.md section 7). Top-level entry points recover it and convert
// it into a parse.InvariantError.
type InvariantViolation struct {
	Message string
}

func (v InvariantViolation) Error() string { return v.Message }

// Map is the node-id arena (spec.md section 3): four id-keyed mappings
// owned by a single parse/edit session. It owns every node; parent-to-child
// links are ownership, child-to-parent links are back-references only
// (spec.md section 9) — childIdsById never stores an owning pointer, only
// the id.
type Map struct {
	astNodeById     map[ID]*AstNode
	contextNodeById map[ID]*ContextNode
	parentIdById    map[ID]ID
	childIdsById    map[ID][]ID
	leafNodeIds     map[ID]bool
	idCounter       ID
	highestMinted   ID
}

// NewMap creates an empty arena.
func NewMap() *Map {
	return &Map{
		astNodeById:     map[ID]*AstNode{},
		contextNodeById: map[ID]*ContextNode{},
		parentIdById:    map[ID]ID{},
		childIdsById:    map[ID][]ID{},
		leafNodeIds:     map[ID]bool{},
	}
}

// NewID mints the next monotonic id (spec.md section 9): ids are never
// recycled, even across a rollback that deletes everything above some
// threshold: minting resumes above the highest id ever handed out.
func (m *Map) NewID() ID {
	if m.idCounter < m.highestMinted {
		m.idCounter = m.highestMinted
	}
	m.idCounter++
	m.highestMinted = m.idCounter
	return m.idCounter
}

// IDCounter returns the counter's current value, for taking a backup.
func (m *Map) IDCounter() ID { return m.idCounter }

// SetIDCounter rewinds the counter IDCounter reports during a speculative
// restore; callers must also have deleted every node with id > v first.
// The next NewID still mints above the highest id ever handed out, so the
// ids of the deleted nodes are not reused.
func (m *Map) SetIDCounter(v ID) { m.idCounter = v }

// MaybeXor resolves an id to whichever of the two node kinds it currently
// names (spec.md section 4.4).
func (m *Map) MaybeXor(id ID) (XorNode, bool) {
	if n, ok := m.astNodeById[id]; ok {
		return astXor(n), true
	}
	if n, ok := m.contextNodeById[id]; ok {
		return ctxXor(n), true
	}
	return XorNode{}, false
}

// AssertXor is MaybeXor without the boolean: it panics an
// InvariantViolation when id names nothing, which is always a bug.
func (m *Map) AssertXor(id ID) XorNode {
	x, ok := m.MaybeXor(id)
	if !ok {
		panic(InvariantViolation{Message: "node-id map: no node for id " + strconv.Itoa(int(id))})
	}
	return x
}

// ChildIDs returns a parent's children, in ascending attribute-index order
// (spec.md section 3 invariant b).
func (m *Map) ChildIDs(parentID ID) []ID {
	return m.childIdsById[parentID]
}

// ParentID returns a node's parent id. The root has none.
func (m *Map) ParentID(id ID) (ID, bool) {
	p, ok := m.parentIdById[id]
	return p, ok
}

// LeafNodeIDs returns every id whose AST kind is a leaf kind (spec.md
// section 3 invariant d). Order is unspecified; callers that need document
// order should sort by position.
func (m *Map) LeafNodeIDs() []ID {
	ids := make([]ID, 0, len(m.leafNodeIds))
	for id := range m.leafNodeIds {
		ids = append(ids, id)
	}
	return ids
}

// MaybeChildXorByAttributeIndex returns the child whose MaybeAttributeIndex
// equals attrIdx, if its kind is in allowedKinds (or allowedKinds is empty,
// meaning "any kind") — spec.md section 4.4.
func (m *Map) MaybeChildXorByAttributeIndex(parentID ID, attrIdx AttributeIndex, allowedKinds ...Kind) (XorNode, bool) {
	for _, cid := range m.childIdsById[parentID] {
		x, ok := m.MaybeXor(cid)
		if !ok {
			continue
		}
		idx := x.MaybeAttributeIndex()
		if idx == nil || *idx != attrIdx {
			continue
		}
		if len(allowedKinds) == 0 || kindIn(x.Kind(), allowedKinds) {
			return x, true
		}
		return XorNode{}, false
	}
	return XorNode{}, false
}

// MaybeChildAstByAttributeIndex is MaybeChildXorByAttributeIndex, but
// additionally requires the child to already be a completed AST node.
func (m *Map) MaybeChildAstByAttributeIndex(parentID ID, attrIdx AttributeIndex, allowedKinds ...Kind) (*AstNode, bool) {
	x, ok := m.MaybeChildXorByAttributeIndex(parentID, attrIdx, allowedKinds...)
	if !ok || !x.IsAst() {
		return nil, false
	}
	ast, _ := x.Ast()
	return ast, true
}

// MaybeRightMostLeaf descends rightward via childIdsById until it reaches
// a node with no children, used by the position inspector to find the
// effective end of a context node that has no known end position
// (spec.md section 4.4).
func (m *Map) MaybeRightMostLeaf(id ID) (XorNode, bool) {
	current := id
	x, ok := m.MaybeXor(current)
	if !ok {
		return XorNode{}, false
	}
	for {
		children := m.childIdsById[current]
		if len(children) == 0 {
			return x, true
		}
		current = children[len(children)-1]
		next, ok := m.MaybeXor(current)
		if !ok {
			return x, true
		}
		x = next
	}
}

// MaybeArrayWrapperContent resolves the common pattern of a grouping node
// (e.g. ListExpression) wrapping an ArrayWrapper child (spec.md section
// 4.4): it returns that ArrayWrapper node.
func (m *Map) MaybeArrayWrapperContent(parentID ID) (XorNode, bool) {
	for _, cid := range m.childIdsById[parentID] {
		x, ok := m.MaybeXor(cid)
		if ok && x.Kind() == KindArrayWrapper {
			return x, true
		}
	}
	return XorNode{}, false
}

// AssertAncestry walks parentIdById from id to the root, returning the
// ordered chain starting with id itself (spec.md section 4.4).
func (m *Map) AssertAncestry(id ID) []XorNode {
	var chain []XorNode
	current := id
	for {
		chain = append(chain, m.AssertXor(current))
		parent, ok := m.parentIdById[current]
		if !ok {
			return chain
		}
		current = parent
	}
}

// --- mutation, used only by package parse during tree construction ---

// AddContext inserts a freshly allocated context node into the arena and
// links it as a child of its parent, if any (spec.md section 4.3 step 1).
func (m *Map) AddContext(ctx *ContextNode) {
	m.contextNodeById[ctx.ID] = ctx
	if ctx.MaybeParentID != nil {
		parent := *ctx.MaybeParentID
		m.parentIdById[ctx.ID] = parent
		m.insertChildSorted(parent, ctx.ID)
	}
}

func (m *Map) insertChildSorted(parent, child ID) {
	children := m.childIdsById[parent]
	childIdx := m.attributeIndexOf(child)
	i := sort.Search(len(children), func(i int) bool {
		return m.attributeIndexOf(children[i]) > childIdx
	})
	children = append(children, 0)
	copy(children[i+1:], children[i:])
	children[i] = child
	m.childIdsById[parent] = children
}

func (m *Map) attributeIndexOf(id ID) AttributeIndex {
	x, ok := m.MaybeXor(id)
	if !ok {
		return 0
	}
	if idx := x.MaybeAttributeIndex(); idx != nil {
		return *idx
	}
	return 0
}

// PromoteToAst removes the context node named by ast.ID and inserts ast at
// the same id (spec.md section 4.3 step 3, section 3 invariant a).
func (m *Map) PromoteToAst(ast *AstNode) {
	delete(m.contextNodeById, ast.ID)
	m.astNodeById[ast.ID] = ast
	if ast.IsLeaf {
		m.leafNodeIds[ast.ID] = true
	}
}

// IncrementAttributeCounter bumps a context node's count of accepted
// children (spec.md section 4.3 step 2).
func (m *Map) IncrementAttributeCounter(parentID ID) {
	if ctx, ok := m.contextNodeById[parentID]; ok {
		ctx.AttributeCounter++
	}
}

// DeleteNodesAbove implements the delta-rollback delete phase (spec.md
// section 4.3): every node with id > threshold is removed from both node
// maps, unlinked from its parent's childIdsById (skipped when the parent
// is itself being deleted, to avoid redundant work), and dropped from
// leafNodeIds.
func (m *Map) DeleteNodesAbove(threshold ID) {
	toDelete := map[ID]bool{}
	for id := range m.astNodeById {
		if id > threshold {
			toDelete[id] = true
		}
	}
	for id := range m.contextNodeById {
		if id > threshold {
			toDelete[id] = true
		}
	}
	if len(toDelete) == 0 {
		return
	}

	ordered := make([]ID, 0, len(toDelete))
	for id := range toDelete {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] > ordered[j] })

	for _, id := range ordered {
		parent, hasParent := m.parentIdById[id]
		if hasParent && !toDelete[parent] {
			m.unlinkChild(parent, id)
		}
		delete(m.astNodeById, id)
		delete(m.contextNodeById, id)
		delete(m.parentIdById, id)
		delete(m.leafNodeIds, id)
		delete(m.childIdsById, id)
	}
}

// Reparent relinks an already-completed node under a different parent, used
// when a wrapping context (a binary-expression node) is only discovered to
// be necessary after its first child has already been parsed (spec.md
// section 4.3, the left-associative binary-operator combinator). Callers
// must update the child's MaybeAttributeIndex before calling Reparent.
func (m *Map) Reparent(id, newParent ID) {
	if oldParent, ok := m.parentIdById[id]; ok {
		m.unlinkChild(oldParent, id)
	}
	m.parentIdById[id] = newParent
	m.insertChildSorted(newParent, id)
}

func (m *Map) unlinkChild(parent, child ID) {
	children := m.childIdsById[parent]
	for i, c := range children {
		if c == child {
			m.childIdsById[parent] = append(children[:i], children[i+1:]...)
			return
		}
	}
}

func kindIn(k Kind, kinds []Kind) bool {
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}
