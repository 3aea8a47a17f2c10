package parse

import (
	"github.com/dhamidi/mparse/token"
	"github.com/dhamidi/mparse/tree"
)

// This file implements the recursive-descent grammar for the M expression
// language (spec.md sections 3, 6): document/section structure and the
// full expression precedence chain, from the lowest-binding logical-or
// down through primary expressions and their invocation/item-access/
// field-access suffixes.

var logicalOrOps = map[token.Kind]bool{token.KeywordOr: true}
var logicalAndOps = map[token.Kind]bool{token.KeywordAnd: true}
var equalityOps = map[token.Kind]bool{token.Equal: true, token.NotEqual: true}
var relationalOps = map[token.Kind]bool{
	token.LessThan: true, token.LessThanEqualTo: true,
	token.GreaterThan: true, token.GreaterThanEqualTo: true,
}
var additiveOps = map[token.Kind]bool{token.Plus: true, token.Minus: true, token.Ampersand: true}
var multiplicativeOps = map[token.Kind]bool{token.Asterisk: true, token.Division: true}
var unaryOps = map[token.Kind]bool{token.Plus: true, token.Minus: true, token.KeywordNot: true}

// checkCsvContinuation reports a dangling comma: a comma that was just
// consumed but is immediately followed by the list's own terminator rather
// than another item (spec.md section 4.3's ExpectedCsvContinuationError).
// terminator is the token that ends the surrounding construct (a closing
// bracket for csv lists, `in` for a let expression's binding list).
func checkCsvContinuation(s *State, kind CsvContinuationKind, terminator token.Kind) *ParseError {
	if s.isOnTokenKind(terminator) {
		return newExpectedCsvContinuationError(kind, s.Peek(), s.PeekColumn())
	}
	return nil
}

// parseCsv wraps one item of a comma-separated list, and its trailing comma
// if present, in a Csv node (spec.md's Glossary: "a comma-separated-value
// node; parent of one content expression and, optionally, a trailing comma
// constant"). The caller keeps looping only while hadComma is true.
func parseCsv(s *State, parseItem func(*State) (*tree.AstNode, *ParseError), kind CsvContinuationKind, terminator token.Kind) (hadComma bool, err *ParseError) {
	ctx := s.startContext(tree.KindCsv)

	item, err := parseItem(s)
	if err != nil {
		s.abandonContext(ctx)
		return false, err
	}
	s.acceptChild()
	_ = item

	if s.isOnTokenKind(token.Comma) {
		comma, _ := s.expectTokenKind(token.Comma)
		s.leaf(tree.KindConstant, comma)
		s.acceptChild()
		if csvErr := checkCsvContinuation(s, kind, terminator); csvErr != nil {
			s.abandonContext(ctx)
			return false, csvErr
		}
		hadComma = true
	}

	s.endContext(ctx, false)
	return hadComma, nil
}

// ParseDocument is the top-level entry point (spec.md section 4): a
// document is either a section document (`section ...`) or a single
// expression document.
func ParseDocument(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindDocument)

	var (
		ast *tree.AstNode
		err *ParseError
	)
	if s.isOnTokenKind(token.KeywordSection) {
		ast, err = parseSection(s)
	} else {
		ast, err = parseExpression(s)
	}
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = ast

	if !s.AtEOF() {
		s.abandonContext(ctx)
		return nil, newUnusedTokensRemainError(s.Peek(), s.PeekColumn())
	}

	return s.endContext(ctx, false), nil
}

// parseSection implements `section [name] ; member*` (spec.md section 6).
func parseSection(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindSection)

	kw, err := s.expectTokenKind(token.KeywordSection)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, kw)
	s.acceptChild()

	if s.isOnTokenKind(token.Identifier) {
		id, _ := s.expectTokenKind(token.Identifier)
		s.leaf(tree.KindIdentifier, id)
		s.acceptChild()
	}

	semi, err := s.expectTokenKind(token.Semicolon)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, semi)
	s.acceptChild()

	for s.isOnTokenKind(token.Identifier) || s.isOnTokenKind(token.KeywordShared) {
		member, err := parseSectionMember(s)
		if err != nil {
			s.abandonContext(ctx)
			return nil, err
		}
		s.acceptChild()
		_ = member
	}

	return s.endContext(ctx, false), nil
}

// parseSectionMember implements `[shared] name = expression ;`.
func parseSectionMember(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindSectionMember)

	if s.isOnTokenKind(token.KeywordShared) {
		shared, _ := s.expectTokenKind(token.KeywordShared)
		s.leaf(tree.KindConstant, shared)
		s.acceptChild()
	}

	pair, err := parseIdentifierPairedExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = pair

	semi, err := s.expectTokenKind(token.Semicolon)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, semi)
	s.acceptChild()

	return s.endContext(ctx, false), nil
}

// parseIdentifierPairedExpression implements `identifier = expression`,
// the shape used by section members and let-expression variable bindings.
func parseIdentifierPairedExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindIdentifierPairedExpression)

	id, err := s.expectTokenKind(token.Identifier)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindIdentifier, id)
	s.acceptChild()

	eq, err := s.expectTokenKind(token.Equal)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, eq)
	s.acceptChild()

	expr, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = expr

	return s.endContext(ctx, false), nil
}

// parseExpression is the top of the precedence chain, and also the
// dispatch point for the keyword-led expression forms (let, if, try,
// each, error, function-literal) that do not participate in binary-
// operator precedence at all (spec.md section 6).
func parseExpression(s *State) (*tree.AstNode, *ParseError) {
	switch {
	case s.isOnTokenKind(token.KeywordLet):
		return parseLetExpression(s)
	case s.isOnTokenKind(token.KeywordIf):
		return parseIfExpression(s)
	case s.isOnTokenKind(token.KeywordTry):
		return parseTryExpression(s)
	case s.isOnTokenKind(token.KeywordEach):
		return parseEachExpression(s)
	case s.isOnTokenKind(token.KeywordError):
		return parseErrorRaisingExpression(s)
	default:
		if s.Strategy == CombinatorialParser {
			return parseBinaryChainTable(s, 0)
		}
		return parseLogicalOrExpression(s)
	}
}

func parseLogicalOrExpression(s *State) (*tree.AstNode, *ParseError) {
	return binOpChain(s, tree.KindLogicalExpression, logicalOrOps, parseLogicalAndExpression)
}

func parseLogicalAndExpression(s *State) (*tree.AstNode, *ParseError) {
	return binOpChain(s, tree.KindLogicalExpression, logicalAndOps, parseIsExpression)
}

// parseIsExpression implements `expr is nullablePrimitiveType`, folding
// left-associatively so `x is number is text` re-tests the prior
// IsExpression node's result (spec.md section 6 lists `is` among the
// keyword-triggered binary forms).
func parseIsExpression(s *State) (*tree.AstNode, *ParseError) {
	return keywordTypeChain(s, tree.KindIsExpression, token.KeywordIs, parseAsExpression)
}

func parseAsExpression(s *State) (*tree.AstNode, *ParseError) {
	return keywordTypeChain(s, tree.KindAsExpression, token.KeywordAs, parseEqualityExpression)
}

func parseEqualityExpression(s *State) (*tree.AstNode, *ParseError) {
	return binOpChain(s, tree.KindEqualityExpression, equalityOps, parseRelationalExpression)
}

func parseRelationalExpression(s *State) (*tree.AstNode, *ParseError) {
	return binOpChain(s, tree.KindRelationalExpression, relationalOps, parseAdditiveExpression)
}

func parseAdditiveExpression(s *State) (*tree.AstNode, *ParseError) {
	return binOpChain(s, tree.KindArithmeticExpression, additiveOps, parseMultiplicativeExpression)
}

func parseMultiplicativeExpression(s *State) (*tree.AstNode, *ParseError) {
	return binOpChain(s, tree.KindArithmeticExpression, multiplicativeOps, parseMetadataExpression)
}

// parseMetadataExpression implements `expr meta expr` (spec.md section 6),
// binding tighter than every binary comparison/arithmetic operator but
// looser than unary and primary expressions.
func parseMetadataExpression(s *State) (*tree.AstNode, *ParseError) {
	left, err := parseUnaryExpression(s)
	if err != nil {
		return nil, err
	}
	if !s.isOnTokenKind(token.KeywordMeta) {
		return left, nil
	}
	ctx := s.startContext(tree.KindMetadataExpression)
	s.reparentUnderContext(left, ctx)
	s.acceptChild()

	kw, _ := s.expectTokenKind(token.KeywordMeta)
	s.leaf(tree.KindConstant, kw)
	s.acceptChild()

	right, err := parseUnaryExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = right

	return s.endContext(ctx, false), nil
}

// parseUnaryExpression implements the prefix `+`, `-`, and `not` operators
// (spec.md section 6). Unlike the binary levels these are right-associative
// by construction: a leading run of unary operators wraps outward.
func parseUnaryExpression(s *State) (*tree.AstNode, *ParseError) {
	if !s.isOnAnyKindIn(unaryOps) {
		return parsePrimaryExpression(s)
	}
	ctx := s.startContext(tree.KindUnaryExpression)

	op := s.Advance()
	s.leaf(tree.KindConstant, op)
	s.acceptChild()

	operand, err := parseUnaryExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = operand

	return s.endContext(ctx, false), nil
}

// parsePrimaryExpression dispatches to the concrete expression forms and
// then folds any trailing invocation `(...)`, item-access `{...}`, or
// field-selector `[...]` suffixes into a RecursivePrimaryExpression
// chain (spec.md section 6, "postfix operators bind tightest"). Field
// projections (`[[a], [b]]`) are not parsed.
func parsePrimaryExpression(s *State) (*tree.AstNode, *ParseError) {
	head, err := parsePrimaryExpressionHead(s)
	if err != nil {
		return nil, err
	}
	return parseRecursivePrimarySuffixes(s, head)
}

func parsePrimaryExpressionHead(s *State) (*tree.AstNode, *ParseError) {
	switch {
	case s.isOnTokenKind(token.LeftParenthesis):
		return parseParenthesizedOrFunctionExpression(s)
	case s.isOnTokenKind(token.LeftBrace):
		return parseListExpression(s)
	case s.isOnTokenKind(token.LeftBracket):
		return parseRecordExpression(s)
	case s.isOnTokenKind(token.Identifier):
		return parseIdentifierExpression(s)
	case s.isOnAnyTokenKindLookahead(token.NumericLiteral, token.TextLiteral, token.KeywordTrue, token.KeywordFalse,
		token.KeywordHashInfinity, token.KeywordHashNan):
		tok := s.Advance()
		return s.leaf(tree.KindLiteralExpression, tok), nil
	case s.isOnTokenKind(token.QuotedIdentifier):
		return parseIdentifierExpression(s)
	default:
		return nil, newExpectedAnyTokenKindError([]token.Kind{
			token.LeftParenthesis, token.LeftBrace, token.LeftBracket, token.Identifier, token.NumericLiteral,
		}, s.Peek(), s.PeekColumn())
	}
}

func (s *State) isOnAnyTokenKindLookahead(kinds ...token.Kind) bool { return s.isOnAnyTokenKind(kinds...) }

func parseIdentifierExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindIdentifierExpression)
	tok, err := s.expectAnyTokenKind(token.Identifier, token.QuotedIdentifier)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindIdentifier, tok)
	s.acceptChild()
	return s.endContext(ctx, false), nil
}

// parseParenthesizedOrFunctionExpression disambiguates `(expr)` from a
// function literal `(params) => body` by trial parse with backup/restore
// (spec.md section 4.3, the canonical use case for O(delta) rollback): a
// function's parameter list looks exactly like a parenthesized csv until
// the `=>` either appears or doesn't.
func parseParenthesizedOrFunctionExpression(s *State) (*tree.AstNode, *ParseError) {
	cp := s.Backup()
	if fn, err := tryParseFunctionExpression(s); err == nil {
		return fn, nil
	}
	s.Restore(cp)
	return parseParenthesizedExpression(s)
}

func tryParseFunctionExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindFunctionExpression)

	params, err := parseParameterList(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = params

	arrow, err := s.expectTokenKind(token.FatArrow)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, arrow)
	s.acceptChild()

	body, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = body

	return s.endContext(ctx, false), nil
}

func parseParameterList(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindParameterList)

	lp, err := s.expectTokenKind(token.LeftParenthesis)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, lp)
	s.acceptChild()

	for !s.isOnTokenKind(token.RightParenthesis) {
		hadComma, err := parseCsv(s, parseParameter, DanglingCommaContinuation, token.RightParenthesis)
		if err != nil {
			s.abandonContext(ctx)
			return nil, err
		}
		s.acceptChild()

		if hadComma {
			continue
		}
		break
	}

	rp, err := s.expectTokenKind(token.RightParenthesis)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, rp)
	s.acceptChild()

	return s.endContext(ctx, false), nil
}

func parseParameter(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindParameter)

	id, err := s.expectTokenKind(token.Identifier)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindIdentifier, id)
	s.acceptChild()

	if s.isOnTokenKind(token.KeywordAs) {
		kw, _ := s.expectTokenKind(token.KeywordAs)
		s.leaf(tree.KindConstant, kw)
		s.acceptChild()

		typ, err := parseNullablePrimitiveType(s)
		if err != nil {
			s.abandonContext(ctx)
			return nil, err
		}
		s.acceptChild()
		_ = typ
	}

	return s.endContext(ctx, false), nil
}

func parseParenthesizedExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindParenthesizedExpression)

	lp, err := s.expectTokenKind(token.LeftParenthesis)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, lp)
	s.acceptChild()

	expr, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = expr

	rp, err := s.expectTokenKind(token.RightParenthesis)
	if err != nil {
		s.abandonContext(ctx)
		return nil, newUnterminatedParenthesesError(s.Peek(), s.PeekColumn())
	}
	s.leaf(tree.KindConstant, rp)
	s.acceptChild()

	return s.endContext(ctx, false), nil
}

// parseListExpression implements `{ item, item, ... }` (spec.md section 6).
func parseListExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindListExpression)

	lb, err := s.expectTokenKind(token.LeftBrace)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, lb)
	s.acceptChild()

	wrapper := s.startContext(tree.KindArrayWrapper)
	for !s.isOnTokenKind(token.RightBrace) {
		hadComma, err := parseCsv(s, parseExpression, DanglingCommaContinuation, token.RightBrace)
		if err != nil {
			s.abandonContext(wrapper)
			s.abandonContext(ctx)
			return nil, err
		}
		s.acceptChild()

		if hadComma {
			continue
		}
		break
	}
	s.endContext(wrapper, false)
	s.acceptChild()

	rb, err := s.expectTokenKind(token.RightBrace)
	if err != nil {
		s.abandonContext(ctx)
		return nil, newUnterminatedBracketError(s.Peek(), s.PeekColumn())
	}
	s.leaf(tree.KindConstant, rb)
	s.acceptChild()

	return s.endContext(ctx, false), nil
}

// parseRecordExpression implements `[ key = value, ... ]` (spec.md section
// 6). Keys are GeneralizedIdentifiers: plain identifiers or any of the
// reserved words listed in token.GeneralizedIdentifierStartKinds.
func parseRecordExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindRecordLiteral)

	lbr, err := s.expectTokenKind(token.LeftBracket)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, lbr)
	s.acceptChild()

	for !s.isOnTokenKind(token.RightBracket) {
		hadComma, err := parseCsv(s, parseGeneralizedIdentifierPairedExpression, DanglingCommaContinuation, token.RightBracket)
		if err != nil {
			s.abandonContext(ctx)
			return nil, err
		}
		s.acceptChild()

		if hadComma {
			continue
		}
		break
	}

	rbr, err := s.expectTokenKind(token.RightBracket)
	if err != nil {
		s.abandonContext(ctx)
		return nil, newUnterminatedBracketError(s.Peek(), s.PeekColumn())
	}
	s.leaf(tree.KindConstant, rbr)
	s.acceptChild()

	return s.endContext(ctx, false), nil
}

func parseGeneralizedIdentifierPairedExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindGeneralizedIdentifierPairedExpression)

	id, err := parseGeneralizedIdentifier(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = id

	eq, err := s.expectTokenKind(token.Equal)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, eq)
	s.acceptChild()

	expr, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = expr

	return s.endContext(ctx, false), nil
}

func parseGeneralizedIdentifier(s *State) (*tree.AstNode, *ParseError) {
	tok := s.Peek()
	if tok == nil {
		return nil, newExpectedTokenKindError(token.Identifier, tok, s.PeekColumn())
	}
	if tok.Kind != token.Identifier && !token.GeneralizedIdentifierStartKinds[tok.Kind] {
		return nil, newExpectedTokenKindError(token.Identifier, tok, s.PeekColumn())
	}
	s.Advance()
	return s.leaf(tree.KindGeneralizedIdentifier, tok), nil
}

// parseRecursivePrimarySuffixes folds trailing `(...)`, `{...}`, and
// `[...]` postfix forms onto head, left-associatively (spec.md section 6).
func parseRecursivePrimarySuffixes(s *State, head *tree.AstNode) (*tree.AstNode, *ParseError) {
	for {
		switch {
		case s.isOnTokenKind(token.LeftParenthesis):
			wrapped, err := wrapRecursivePrimary(s, head, parseInvokeExpressionTail)
			if err != nil {
				return nil, err
			}
			head = wrapped
		case s.isOnTokenKind(token.LeftBrace):
			wrapped, err := wrapRecursivePrimary(s, head, parseItemAccessExpressionTail)
			if err != nil {
				return nil, err
			}
			head = wrapped
		case s.isOnTokenKind(token.LeftBracket):
			wrapped, err := wrapRecursivePrimary(s, head, parseFieldSelectorTail)
			if err != nil {
				return nil, err
			}
			head = wrapped
		default:
			return head, nil
		}
	}
}

func wrapRecursivePrimary(s *State, head *tree.AstNode, tail func(*State) *ParseError) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindRecursivePrimaryExpression)
	s.reparentUnderContext(head, ctx)
	s.acceptChild()

	if err := tail(s); err != nil {
		s.abandonContext(ctx)
		return nil, err
	}

	return s.endContext(ctx, false), nil
}

func parseInvokeExpressionTail(s *State) *ParseError {
	ctx := s.startContext(tree.KindInvokeExpression)

	lp, err := s.expectTokenKind(token.LeftParenthesis)
	if err != nil {
		s.abandonContext(ctx)
		return err
	}
	s.leaf(tree.KindConstant, lp)
	s.acceptChild()

	for !s.isOnTokenKind(token.RightParenthesis) {
		hadComma, err := parseCsv(s, parseExpression, DanglingCommaContinuation, token.RightParenthesis)
		if err != nil {
			s.abandonContext(ctx)
			return err
		}
		s.acceptChild()

		if hadComma {
			continue
		}
		break
	}

	rp, err := s.expectTokenKind(token.RightParenthesis)
	if err != nil {
		s.abandonContext(ctx)
		return newUnterminatedParenthesesError(s.Peek(), s.PeekColumn())
	}
	s.leaf(tree.KindConstant, rp)
	s.acceptChild()

	s.endContext(ctx, false)
	return nil
}

func parseItemAccessExpressionTail(s *State) *ParseError {
	ctx := s.startContext(tree.KindItemAccessExpression)

	lb, err := s.expectTokenKind(token.LeftBrace)
	if err != nil {
		s.abandonContext(ctx)
		return err
	}
	s.leaf(tree.KindConstant, lb)
	s.acceptChild()

	idx, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return err
	}
	s.acceptChild()
	_ = idx

	rb, err := s.expectTokenKind(token.RightBrace)
	if err != nil {
		s.abandonContext(ctx)
		return newUnterminatedBracketError(s.Peek(), s.PeekColumn())
	}
	s.leaf(tree.KindConstant, rb)
	s.acceptChild()

	s.endContext(ctx, false)
	return nil
}

func parseFieldSelectorTail(s *State) *ParseError {
	ctx := s.startContext(tree.KindFieldSelector)

	lbr, err := s.expectTokenKind(token.LeftBracket)
	if err != nil {
		s.abandonContext(ctx)
		return err
	}
	s.leaf(tree.KindConstant, lbr)
	s.acceptChild()

	field, err := parseGeneralizedIdentifier(s)
	if err != nil {
		s.abandonContext(ctx)
		return err
	}
	s.acceptChild()
	_ = field

	rbr, err := s.expectTokenKind(token.RightBracket)
	if err != nil {
		s.abandonContext(ctx)
		return newUnterminatedBracketError(s.Peek(), s.PeekColumn())
	}
	s.leaf(tree.KindConstant, rbr)
	s.acceptChild()

	s.endContext(ctx, false)
	return nil
}

// parseLetExpression implements `let name = expr, ... in expr` (spec.md
// section 6).
func parseLetExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindLetExpression)

	kw, err := s.expectTokenKind(token.KeywordLet)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, kw)
	s.acceptChild()

	for {
		binding, err := parseIdentifierPairedExpression(s)
		if err != nil {
			s.abandonContext(ctx)
			return nil, err
		}
		s.acceptChild()
		_ = binding

		if s.isOnTokenKind(token.Comma) {
			comma, _ := s.expectTokenKind(token.Comma)
			s.leaf(tree.KindConstant, comma)
			s.acceptChild()
			if csvErr := checkCsvContinuation(s, LetExpressionContinuation, token.KeywordIn); csvErr != nil {
				s.abandonContext(ctx)
				return nil, csvErr
			}
			continue
		}
		break
	}

	in, err := s.expectTokenKind(token.KeywordIn)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, in)
	s.acceptChild()

	body, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = body

	return s.endContext(ctx, false), nil
}

// parseIfExpression implements `if cond then trueExpr else falseExpr`.
func parseIfExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindIfExpression)

	kw, err := s.expectTokenKind(token.KeywordIf)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, kw)
	s.acceptChild()

	cond, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = cond

	then, err := s.expectTokenKind(token.KeywordThen)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, then)
	s.acceptChild()

	trueExpr, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = trueExpr

	elseKw, err := s.expectTokenKind(token.KeywordElse)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, elseKw)
	s.acceptChild()

	falseExpr, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = falseExpr

	return s.endContext(ctx, false), nil
}

// parseTryExpression implements `try expr [otherwise expr]` (spec.md
// section 6): the otherwise clause is optional, matching the OtherwiseExpression
// node it wraps into.
func parseTryExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindErrorHandlingExpression)

	kw, err := s.expectTokenKind(token.KeywordTry)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, kw)
	s.acceptChild()

	protected, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = protected

	if s.isOnTokenKind(token.KeywordOtherwise) {
		otherwise, err := parseOtherwiseExpression(s)
		if err != nil {
			s.abandonContext(ctx)
			return nil, err
		}
		s.acceptChild()
		_ = otherwise
	}

	return s.endContext(ctx, false), nil
}

func parseOtherwiseExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindOtherwiseExpression)

	kw, err := s.expectTokenKind(token.KeywordOtherwise)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, kw)
	s.acceptChild()

	expr, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = expr

	return s.endContext(ctx, false), nil
}

// parseEachExpression implements `each expr` — sugar for a unary function
// literal over an implicit `_` parameter (spec.md section 6).
func parseEachExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindEachExpression)

	kw, err := s.expectTokenKind(token.KeywordEach)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, kw)
	s.acceptChild()

	body, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = body

	return s.endContext(ctx, false), nil
}

func parseErrorRaisingExpression(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindErrorRaisingExpression)

	kw, err := s.expectTokenKind(token.KeywordError)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.leaf(tree.KindConstant, kw)
	s.acceptChild()

	expr, err := parseExpression(s)
	if err != nil {
		s.abandonContext(ctx)
		return nil, err
	}
	s.acceptChild()
	_ = expr

	return s.endContext(ctx, false), nil
}

var primitiveTypeNames = map[string]bool{
	"any": true, "anynonnull": true, "binary": true, "date": true, "datetime": true,
	"datetimezone": true, "duration": true, "function": true, "list": true, "logical": true,
	"none": true, "null": true, "number": true, "record": true, "table": true, "text": true,
	"time": true, "type": true, "action": true,
}

// parseNullablePrimitiveType implements `[nullable] primitiveTypeName`
// (spec.md section 6), used after `is`, `as`, and in parameter type
// annotations.
func parseNullablePrimitiveType(s *State) (*tree.AstNode, *ParseError) {
	ctx := s.startContext(tree.KindNullablePrimitiveType)

	if s.isOnTokenKind(token.Identifier) && s.Peek().Data == "nullable" {
		nullable, _ := s.expectTokenKind(token.Identifier)
		s.leaf(tree.KindConstant, nullable)
		s.acceptChild()
	}

	tok := s.Peek()
	// "type" lexes as KeywordType rather than Identifier, so accept both.
	if tok == nil || (tok.Kind != token.Identifier && tok.Kind != token.KeywordType) || !primitiveTypeNames[tok.Data] {
		s.abandonContext(ctx)
		return nil, newInvalidPrimitiveTypeError(tok, s.PeekColumn())
	}
	s.Advance()
	s.leaf(tree.KindPrimitiveType, tok)
	s.acceptChild()

	return s.endContext(ctx, false), nil
}
