package parse

import (
	"github.com/dhamidi/mparse/token"
	"github.com/dhamidi/mparse/tree"
)

// ParserStrategy selects one of the two interchangeable engines that parse
// the binary-operator precedence chain (spec.md section 4.3, "Combinator
// variants"): RecursiveDescentParser walks a fixed call graph of named
// per-level functions (parseLogicalOrExpression calls parseLogicalAndExpression
// calls parseIsExpression, ...); CombinatorialParser walks the same
// precedence data generically, one level at a time, via combinatorialChain.
// Both bottom out in the same binOpChain/keywordTypeChain primitives, so
// they produce byte-identical ASTs for identical input — the only
// difference is how the call graph gets there, never what it builds.
type ParserStrategy int

const (
	RecursiveDescentParser ParserStrategy = iota
	CombinatorialParser
)

func (s ParserStrategy) String() string {
	if s == CombinatorialParser {
		return "combinatorial"
	}
	return "recursive-descent"
}

type chainStepKind int

const (
	binaryStep chainStepKind = iota
	keywordStep
)

// chainStep is one row of the precedence table the combinatorial engine
// walks. A binaryStep folds a run of operator tokens via binOpChain; a
// keywordStep folds a run of `is`/`as` type tests via keywordTypeChain.
type chainStep struct {
	kind     chainStepKind
	wrapKind tree.Kind
	ops      map[token.Kind]bool
	keyword  token.Kind
}

// combinatorialChain lists every precedence level from lowest (logical or)
// to highest (multiplicative) that the recursive-descent engine also
// visits, in the same order its named functions call each other in. The
// chain bottoms out at parseMetadataExpression, exactly like
// parseMultiplicativeExpression does.
var combinatorialChain = []chainStep{
	{kind: binaryStep, wrapKind: tree.KindLogicalExpression, ops: logicalOrOps},
	{kind: binaryStep, wrapKind: tree.KindLogicalExpression, ops: logicalAndOps},
	{kind: keywordStep, wrapKind: tree.KindIsExpression, keyword: token.KeywordIs},
	{kind: keywordStep, wrapKind: tree.KindAsExpression, keyword: token.KeywordAs},
	{kind: binaryStep, wrapKind: tree.KindEqualityExpression, ops: equalityOps},
	{kind: binaryStep, wrapKind: tree.KindRelationalExpression, ops: relationalOps},
	{kind: binaryStep, wrapKind: tree.KindArithmeticExpression, ops: additiveOps},
	{kind: binaryStep, wrapKind: tree.KindArithmeticExpression, ops: multiplicativeOps},
}

// parseBinaryChainTable is the CombinatorialParser engine's entry point.
// It recurses over combinatorialChain by index instead of by named
// function, delegating each row to the same primitive the equivalent
// named function in the RecursiveDescentParser engine calls directly.
func parseBinaryChainTable(s *State, level int) (*tree.AstNode, *ParseError) {
	if level >= len(combinatorialChain) {
		return parseMetadataExpression(s)
	}
	step := combinatorialChain[level]
	next := func(s *State) (*tree.AstNode, *ParseError) { return parseBinaryChainTable(s, level+1) }
	if step.kind == keywordStep {
		return keywordTypeChain(s, step.wrapKind, step.keyword, next)
	}
	return binOpChain(s, step.wrapKind, step.ops, next)
}
