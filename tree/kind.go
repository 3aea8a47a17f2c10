// Package tree implements the node-id arena shared by the parser and the
// position inspector (spec.md sections 3, 4.4): AST nodes, in-construction
// context nodes, and the XOR-view that unites them.
package tree

// Kind is the closed NodeKind enumeration of spec.md section 3 (58 members,
// KindUnknown included).
type Kind int

const (
	KindUnknown Kind = iota

	// Top level.
	KindDocument
	KindSection
	KindSectionMember
	KindRecordLiteral

	// Literals and identifiers.
	KindLiteralExpression
	KindIdentifier
	KindIdentifierExpression
	KindGeneralizedIdentifier
	KindGeneralizedIdentifierPairedAnyLiteral
	KindGeneralizedIdentifierPairedExpression
	KindIdentifierPairedExpression

	// Lists and records.
	KindListExpression
	KindListLiteral
	KindArrayWrapper
	KindCsv
	KindFieldSelector
	KindFieldProjection
	KindFieldSpecification
	KindFieldSpecificationList
	KindFieldTypeSpecification

	// Let / each / function / invoke.
	KindLetExpression
	KindEachExpression
	KindFunctionExpression
	KindFunctionType
	KindParameterList
	KindParameter
	KindAsNullablePrimitiveType
	KindInvokeExpression
	KindItemAccessExpression
	KindRecursivePrimaryExpression

	// Control flow.
	KindIfExpression
	KindTryExpression
	KindCatchExpression
	KindOtherwiseExpression
	KindErrorHandlingExpression
	KindErrorRaisingExpression

	// Operators.
	KindUnaryExpression
	KindArithmeticExpression
	KindEqualityExpression
	KindRelationalExpression
	KindLogicalExpression
	KindAsExpression
	KindIsExpression
	KindMetadataExpression
	KindNullCoalescingExpression
	KindNullablePrimitiveType
	KindParenthesizedExpression

	// Types.
	KindTypeExpression
	KindPrimitiveType
	KindRecordType
	KindTableType
	KindListType
	KindNullableType
	KindNotImplementedExpression

	// Constants / terminals.
	KindConstant
	KindTBinOpExpressionState // not produced by the parser; never AST

	// Comments (out-of-band, but still representable as a XOR node kind
	// for tooling that walks token-adjacent trivia).
	KindComment
)

var kindNames = map[Kind]string{
	KindUnknown:                                "Unknown",
	KindDocument:                               "Document",
	KindSection:                                "Section",
	KindSectionMember:                          "SectionMember",
	KindRecordLiteral:                          "RecordLiteral",
	KindLiteralExpression:                      "LiteralExpression",
	KindIdentifier:                             "Identifier",
	KindIdentifierExpression:                   "IdentifierExpression",
	KindGeneralizedIdentifier:                  "GeneralizedIdentifier",
	KindGeneralizedIdentifierPairedAnyLiteral:  "GeneralizedIdentifierPairedAnyLiteral",
	KindGeneralizedIdentifierPairedExpression:  "GeneralizedIdentifierPairedExpression",
	KindIdentifierPairedExpression:             "IdentifierPairedExpression",
	KindListExpression:                         "ListExpression",
	KindListLiteral:                            "ListLiteral",
	KindArrayWrapper:                           "ArrayWrapper",
	KindCsv:                                    "Csv",
	KindFieldSelector:                          "FieldSelector",
	KindFieldProjection:                        "FieldProjection",
	KindFieldSpecification:                     "FieldSpecification",
	KindFieldSpecificationList:                 "FieldSpecificationList",
	KindFieldTypeSpecification:                 "FieldTypeSpecification",
	KindLetExpression:                          "LetExpression",
	KindEachExpression:                         "EachExpression",
	KindFunctionExpression:                     "FunctionExpression",
	KindFunctionType:                           "FunctionType",
	KindParameterList:                          "ParameterList",
	KindParameter:                              "Parameter",
	KindAsNullablePrimitiveType:                "AsNullablePrimitiveType",
	KindInvokeExpression:                       "InvokeExpression",
	KindItemAccessExpression:                   "ItemAccessExpression",
	KindRecursivePrimaryExpression:             "RecursivePrimaryExpression",
	KindIfExpression:                           "IfExpression",
	KindTryExpression:                          "TryExpression",
	KindCatchExpression:                        "CatchExpression",
	KindOtherwiseExpression:                    "OtherwiseExpression",
	KindErrorHandlingExpression:                "ErrorHandlingExpression",
	KindErrorRaisingExpression:                 "ErrorRaisingExpression",
	KindUnaryExpression:                        "UnaryExpression",
	KindArithmeticExpression:                   "ArithmeticExpression",
	KindEqualityExpression:                     "EqualityExpression",
	KindRelationalExpression:                   "RelationalExpression",
	KindLogicalExpression:                      "LogicalExpression",
	KindAsExpression:                           "AsExpression",
	KindIsExpression:                           "IsExpression",
	KindMetadataExpression:                     "MetadataExpression",
	KindNullCoalescingExpression:               "NullCoalescingExpression",
	KindNullablePrimitiveType:                  "NullablePrimitiveType",
	KindParenthesizedExpression:                "ParenthesizedExpression",
	KindTypeExpression:                         "TypeExpression",
	KindPrimitiveType:                          "PrimitiveType",
	KindRecordType:                             "RecordType",
	KindTableType:                              "TableType",
	KindListType:                               "ListType",
	KindNullableType:                           "NullableType",
	KindNotImplementedExpression:               "NotImplementedExpression",
	KindConstant:                               "Constant",
	KindComment:                                "Comment",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "InvalidNodeKind"
}

// IsLeafKind reports whether a fully-parsed node of this kind never has
// syntactic children — Node.IsLeaf mirrors this once promoted (spec.md
// section 3).
func IsLeafKind(k Kind) bool {
	switch k {
	case KindLiteralExpression, KindIdentifier, KindGeneralizedIdentifier, KindConstant, KindPrimitiveType:
		return true
	}
	return false
}
