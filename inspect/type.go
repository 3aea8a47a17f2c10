package inspect

import (
	"github.com/dhamidi/mparse/token"
	"github.com/dhamidi/mparse/tree"
)

// Kind is the closed structural type family the inspector infers over
// (spec.md section 4.6): a fixed lattice, not the full M type system —
// evaluation-dependent types (e.g. a table's column schema) are out of
// scope, matching spec.md section 1's non-goals.
type Kind int

const (
	UnknownType Kind = iota
	AnyType
	AnyNonNullType
	BinaryType
	DateType
	DateTimeType
	DateTimeZoneType
	DurationType
	FunctionType
	ListType
	LogicalType
	NullType
	NumberType
	RecordType
	TableType
	TextType
	TimeType
	MetaType
	ActionType
	NoneType
)

var kindNames = map[Kind]string{
	UnknownType:      "unknown",
	AnyType:          "any",
	AnyNonNullType:   "anyNonNull",
	BinaryType:       "binary",
	DateType:         "date",
	DateTimeType:     "dateTime",
	DateTimeZoneType: "dateTimeZone",
	DurationType:     "duration",
	FunctionType:     "function",
	ListType:         "list",
	LogicalType:      "logical",
	NullType:         "null",
	NumberType:       "number",
	RecordType:       "record",
	TableType:        "table",
	TextType:         "text",
	TimeType:         "time",
	MetaType:         "type",
	ActionType:       "action",
	NoneType:         "none",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// kindFromPrimitiveName maps a parsed primitive type name (parse/grammar.go's
// primitiveTypeNames set) onto its Kind — the same 19-member closed family
// named in spec.md section 4.6, plus the zero-value UnknownType.
var kindFromPrimitiveName = map[string]Kind{
	"any": AnyType, "anynonnull": AnyNonNullType, "binary": BinaryType,
	"date": DateType, "datetime": DateTimeType, "datetimezone": DateTimeZoneType,
	"duration": DurationType, "function": FunctionType, "list": ListType,
	"logical": LogicalType, "none": NoneType, "null": NullType, "number": NumberType,
	"record": RecordType, "table": TableType, "text": TextType, "time": TimeType,
	"type": MetaType, "action": ActionType,
}

// Type is the inferred type of one node (spec.md section 4.6): every kind
// pairs with a nullability flag, and three kinds carry richer shape data
// beyond their bare Kind — function (parameter types), list (element
// type), and record (field map plus open flag). Fields unrelated to a
// value's own Kind are left at their zero value.
type Type struct {
	Kind       Kind
	IsNullable bool

	// Populated only for Kind == FunctionType. ReturnType is nil: this
	// grammar has no return-type annotation syntax on a function literal
	// (`(x) => body` never spells out what body must evaluate to), so
	// there is nothing to read it from.
	ParamTypes []Type
	ReturnType *Type

	// Populated only for Kind == ListType, and only once the list has at
	// least one item to infer from.
	ElementType *Type

	// Populated only for Kind == RecordType.
	Fields       map[string]Type
	IsOpenRecord bool
}

// Inspector memoizes type inference bottom-up over the arena it is bound
// to (spec.md section 4.6's "structural type inspector with memoized
// caches"): a node's type is computed once and reused for every
// subsequent query, including queries against ancestors that recompute
// their own type from an already-cached child.
//
// Resolves spec.md section 9's first Open Question (which of the two
// caches — by id or by kind — the inspector should key its memo table on)
// the way tryScopeType is oriented: keyed by node id, since two nodes of
// the same Kind almost never share a type (a LiteralExpression holding
// "1" and one holding "x" are both KindLiteralExpression with different
// inferred types).
type Inspector struct {
	nodes *tree.Map
	memo  map[tree.ID]Type
}

func NewInspector(nodes *tree.Map) *Inspector {
	return &Inspector{nodes: nodes, memo: map[tree.ID]Type{}}
}

// TypeOf returns the inferred type of id, computing and caching it (and
// every uncached ancestor-independent subexpression it needs) on first
// request.
func (in *Inspector) TypeOf(id tree.ID) Type {
	if t, ok := in.memo[id]; ok {
		return t
	}
	x, ok := in.nodes.MaybeXor(id)
	if !ok {
		return Type{Kind: UnknownType}
	}
	t := in.infer(x)
	in.memo[id] = t
	return t
}

func (in *Inspector) infer(x tree.XorNode) Type {
	switch x.Kind() {
	case tree.KindLiteralExpression:
		return in.inferLiteral(x)
	case tree.KindArithmeticExpression:
		return Type{Kind: NumberType}
	case tree.KindEqualityExpression, tree.KindRelationalExpression, tree.KindLogicalExpression, tree.KindIsExpression:
		return Type{Kind: LogicalType}
	case tree.KindAsExpression:
		return in.inferAsExpression(x)
	case tree.KindNullablePrimitiveType, tree.KindPrimitiveType:
		return in.inferNullablePrimitiveType(x)
	case tree.KindFunctionExpression:
		return in.inferFunction(x)
	case tree.KindListExpression:
		return in.inferList(x)
	case tree.KindRecordLiteral:
		return in.inferRecord(x)
	case tree.KindErrorRaisingExpression:
		// Raising an error never produces a value of any concrete kind —
		// none is M's bottom type, the closest member of the closed family.
		return Type{Kind: NoneType}
	case tree.KindLetExpression:
		return in.inferLetBody(x)
	case tree.KindIdentifierExpression:
		return in.inferIdentifierExpression(x)
	case tree.KindIdentifier, tree.KindGeneralizedIdentifier:
		return in.inferIdentifierLeaf(x)
	case tree.KindParenthesizedExpression:
		return in.inferParenthesized(x)
	default:
		return Type{Kind: AnyType}
	}
}

func (in *Inspector) inferLiteral(x tree.XorNode) Type {
	ast, ok := x.Ast()
	if !ok || ast.MaybeToken == nil {
		return Type{Kind: UnknownType}
	}
	switch ast.MaybeToken.Kind {
	case token.NumericLiteral:
		return Type{Kind: NumberType}
	case token.TextLiteral:
		return Type{Kind: TextType}
	case token.KeywordTrue, token.KeywordFalse:
		return Type{Kind: LogicalType}
	default:
		return Type{Kind: AnyType}
	}
}

// inferAsExpression evaluates `x as T` to the declared type T itself, not
// LogicalType — unlike `x is T`, which always evaluates to a logical
// pass/fail, `as` asserts and (assuming success) yields the annotated type
// (spec.md section 4.6).
func (in *Inspector) inferAsExpression(x tree.XorNode) Type {
	annotation, ok := in.nodes.MaybeChildXorByAttributeIndex(x.ID(), 2, tree.KindNullablePrimitiveType)
	if !ok {
		return Type{Kind: UnknownType}
	}
	return in.inferNullablePrimitiveType(annotation)
}

// inferNullablePrimitiveType reads a `[nullable] primitiveTypeName` node
// (or, if x is itself the bare PrimitiveType leaf — the case where a
// cursor lands exactly on the type name token — that leaf directly).
func (in *Inspector) inferNullablePrimitiveType(x tree.XorNode) Type {
	if x.Kind() == tree.KindPrimitiveType {
		return primitiveLeafType(x, false)
	}
	isNullable := false
	var primitiveLeaf tree.XorNode
	found := false
	for _, cid := range in.nodes.ChildIDs(x.ID()) {
		child, ok := in.nodes.MaybeXor(cid)
		if !ok {
			continue
		}
		switch child.Kind() {
		case tree.KindConstant:
			isNullable = true
		case tree.KindPrimitiveType:
			primitiveLeaf, found = child, true
		}
	}
	if !found {
		return Type{Kind: UnknownType}
	}
	return primitiveLeafType(primitiveLeaf, isNullable)
}

func primitiveLeafType(leaf tree.XorNode, isNullable bool) Type {
	ast, ok := leaf.Ast()
	if !ok || ast.MaybeToken == nil {
		return Type{Kind: UnknownType}
	}
	kind, ok := kindFromPrimitiveName[ast.MaybeToken.Data]
	if !ok {
		return Type{Kind: UnknownType, IsNullable: isNullable}
	}
	return Type{Kind: kind, IsNullable: isNullable}
}

// inferParameterType reads a Parameter's optional `as nullablePrimitiveType`
// annotation, or AnyType if the parameter carries no annotation at all.
func (in *Inspector) inferParameterType(param tree.XorNode) Type {
	annotation, ok := in.nodes.MaybeChildXorByAttributeIndex(param.ID(), 2, tree.KindNullablePrimitiveType)
	if !ok {
		return Type{Kind: AnyType}
	}
	return in.inferNullablePrimitiveType(annotation)
}

func (in *Inspector) inferFunction(x tree.XorNode) Type {
	paramList, ok := in.nodes.MaybeChildXorByAttributeIndex(x.ID(), 0, tree.KindParameterList)
	if !ok {
		return Type{Kind: FunctionType}
	}
	var params []Type
	for _, cid := range in.nodes.ChildIDs(paramList.ID()) {
		param, ok := csvItem(in.nodes, cid, tree.KindParameter)
		if !ok {
			continue
		}
		params = append(params, in.inferParameterType(param))
	}
	return Type{Kind: FunctionType, ParamTypes: params}
}

// inferList infers a list literal's element type from its first item —
// the same simplification the completion-oriented type inspector in
// spec.md section 4.6 uses rather than a full element-type union.
func (in *Inspector) inferList(x tree.XorNode) Type {
	wrapper, ok := in.nodes.MaybeArrayWrapperContent(x.ID())
	if !ok {
		return Type{Kind: ListType}
	}
	children := in.nodes.ChildIDs(wrapper.ID())
	if len(children) == 0 {
		return Type{Kind: ListType}
	}
	first, ok := csvItem(in.nodes, children[0])
	if !ok {
		return Type{Kind: ListType}
	}
	firstType := in.TypeOf(first.ID())
	return Type{Kind: ListType, ElementType: &firstType}
}

// inferRecord builds the field map of a record literal. IsOpenRecord is
// always false: this grammar has no `...` open-record marker to parse.
func (in *Inspector) inferRecord(x tree.XorNode) Type {
	fields := map[string]Type{}
	for _, cid := range in.nodes.ChildIDs(x.ID()) {
		field, ok := csvItem(in.nodes, cid, tree.KindGeneralizedIdentifierPairedExpression)
		if !ok {
			continue
		}
		_, name, ok := boundIdentifier(in.nodes, field, 0)
		if !ok {
			continue
		}
		value, ok := in.nodes.MaybeChildXorByAttributeIndex(field.ID(), 2)
		if !ok {
			continue
		}
		fields[name] = in.TypeOf(value.ID())
	}
	return Type{Kind: RecordType, Fields: fields, IsOpenRecord: false}
}

func (in *Inspector) inferLetBody(x tree.XorNode) Type {
	// Resolves spec.md section 9's second Open Question: the body sits at
	// the last attribute index, not a fixed one, since a let with N
	// bindings shifts the body's index by N. The body is therefore taken
	// as the last child, not a fixed slot; a let with no children yet
	// yields UnknownType.
	children := in.nodes.ChildIDs(x.ID())
	if len(children) == 0 {
		return Type{Kind: UnknownType}
	}
	last, ok := in.nodes.MaybeXor(children[len(children)-1])
	if !ok {
		return Type{Kind: UnknownType}
	}
	return in.TypeOf(last.ID())
}

// inferIdentifierExpression resolves an identifier reference to its
// declaration site via Scope, then infers the type of whatever that
// declaration binds (spec.md section 4.6: scope answers "where was this
// declared", type answers "what does that declaration evaluate to", and
// the two are deliberately kept separate).
func (in *Inspector) inferIdentifierExpression(x tree.XorNode) Type {
	ident, ok := in.nodes.MaybeChildAstByAttributeIndex(x.ID(), 0, tree.KindIdentifier)
	if !ok || ident.MaybeToken == nil {
		return Type{Kind: UnknownType}
	}
	return in.resolveBinding(rootOf(in.nodes, x.ID()), startOrZero(x), ident.MaybeToken.Data)
}

// inferIdentifierLeaf handles a cursor landing exactly on a bare
// Identifier/GeneralizedIdentifier leaf that is not wrapped in an
// IdentifierExpression — a binder itself (a let key, a parameter name, a
// record field key), which ClosestNode can return directly since it always
// resolves to the closest leaf, not an enclosing expression.
func (in *Inspector) inferIdentifierLeaf(x tree.XorNode) Type {
	parentID, ok := in.nodes.ParentID(x.ID())
	if !ok {
		return Type{Kind: UnknownType}
	}
	parent, ok := in.nodes.MaybeXor(parentID)
	if !ok {
		return Type{Kind: UnknownType}
	}
	return in.declaredType(parent)
}

// resolveBinding looks up name in the scope visible at pos and infers the
// type of whatever declares it.
func (in *Inspector) resolveBinding(rootID tree.ID, pos token.Position, name string) Type {
	scope := ScopeAt(in.nodes, rootID, pos)
	declID, ok := scope.Names[name]
	if !ok {
		return Type{Kind: AnyType}
	}
	parentID, ok := in.nodes.ParentID(declID)
	if !ok {
		return Type{Kind: AnyType}
	}
	decl, ok := in.nodes.MaybeXor(parentID)
	if !ok {
		return Type{Kind: AnyType}
	}
	return in.declaredType(decl)
}

// declaredType infers the type a binding site gives its own name: a
// let/record/section-member pair's value, a parameter's "as" annotation,
// or AnyType for anything looser (an each expression's implicit "_", or a
// self-bound identifier with no completed declaration yet).
func (in *Inspector) declaredType(decl tree.XorNode) Type {
	switch decl.Kind() {
	case tree.KindIdentifierPairedExpression, tree.KindGeneralizedIdentifierPairedExpression:
		value, ok := in.nodes.MaybeChildXorByAttributeIndex(decl.ID(), 2)
		if !ok {
			return Type{Kind: UnknownType}
		}
		return in.TypeOf(value.ID())
	case tree.KindParameter:
		return in.inferParameterType(decl)
	default:
		return Type{Kind: AnyType}
	}
}

func (in *Inspector) inferParenthesized(x tree.XorNode) Type {
	inner, ok := in.nodes.MaybeChildXorByAttributeIndex(x.ID(), 1)
	if !ok {
		return Type{Kind: UnknownType}
	}
	return in.TypeOf(inner.ID())
}

func startOrZero(x tree.XorNode) token.Position {
	if start, ok := x.MaybePositionStart(); ok {
		return start
	}
	return token.Position{}
}

// rootOf walks parentIdById to the top, used only by inferIdentifierExpression
// to re-run scope resolution from the document root — the inspector does
// not separately track which document a node came from since it is always
// bound to exactly one arena for its whole lifetime.
func rootOf(nodes *tree.Map, id tree.ID) tree.ID {
	current := id
	for {
		parent, ok := nodes.ParentID(current)
		if !ok {
			return current
		}
		current = parent
	}
}
