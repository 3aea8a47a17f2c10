package token

// Kind is the closed token-kind enumeration of the M lexical grammar
// (spec.md §3, §6). Multi-line forms are lexed line-by-line as a
// Start/Content/End triple and fused into a single token of the plain
// kind by the lexer snapshot (spec.md §4.2); Kind only ever names the
// fused, "public" kind — the Start/Content/End split is an internal
// lexer.Mode concern, not part of this enumeration.
type Kind int

const (
	Eof Kind = iota

	Identifier
	GeneralizedIdentifier

	NumericLiteral
	TextLiteral
	QuotedIdentifier

	// Keywords.
	KeywordAnd
	KeywordAs
	KeywordEach
	KeywordElse
	KeywordError
	KeywordFalse
	KeywordIf
	KeywordIn
	KeywordIs
	KeywordLet
	KeywordMeta
	KeywordNot
	KeywordOr
	KeywordOtherwise
	KeywordSection
	KeywordShared
	KeywordThen
	KeywordTrue
	KeywordTry
	KeywordType

	// Hash-keywords.
	KeywordHashBinary
	KeywordHashDate
	KeywordHashDateTime
	KeywordHashDateTimeZone
	KeywordHashDuration
	KeywordHashInfinity
	KeywordHashNan
	KeywordHashSections
	KeywordHashShared
	KeywordHashTable
	KeywordHashTime

	// Punctuation / operators.
	LeftParenthesis
	RightParenthesis
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Comma
	Semicolon
	Equal
	NotEqual
	LessThan
	LessThanEqualTo
	GreaterThan
	GreaterThanEqualTo
	Plus
	Minus
	Asterisk
	Division
	Ampersand
	AtSign
	QuestionMark
	FatArrow
	CommentKindPlaceholder // never produced by the snapshot; comments are routed out of band
)

var kindNames = map[Kind]string{
	Eof:                     "end of file",
	Identifier:              "identifier",
	GeneralizedIdentifier:   "generalized identifier",
	NumericLiteral:          "numeric literal",
	TextLiteral:             "text literal",
	QuotedIdentifier:        "quoted identifier",
	KeywordAnd:              "and",
	KeywordAs:               "as",
	KeywordEach:             "each",
	KeywordElse:             "else",
	KeywordError:            "error",
	KeywordFalse:            "false",
	KeywordIf:               "if",
	KeywordIn:               "in",
	KeywordIs:               "is",
	KeywordLet:              "let",
	KeywordMeta:             "meta",
	KeywordNot:              "not",
	KeywordOr:               "or",
	KeywordOtherwise:        "otherwise",
	KeywordSection:          "section",
	KeywordShared:           "shared",
	KeywordThen:             "then",
	KeywordTrue:             "true",
	KeywordTry:              "try",
	KeywordType:             "type",
	KeywordHashBinary:       "#binary",
	KeywordHashDate:         "#date",
	KeywordHashDateTime:     "#datetime",
	KeywordHashDateTimeZone: "#datetimezone",
	KeywordHashDuration:     "#duration",
	KeywordHashInfinity:     "#infinity",
	KeywordHashNan:          "#nan",
	KeywordHashSections:     "#sections",
	KeywordHashShared:       "#shared",
	KeywordHashTable:        "#table",
	KeywordHashTime:         "#time",
	LeftParenthesis:         "(",
	RightParenthesis:        ")",
	LeftBrace:               "{",
	RightBrace:              "}",
	LeftBracket:             "[",
	RightBracket:            "]",
	Comma:                   ",",
	Semicolon:               ";",
	Equal:                   "=",
	NotEqual:                "<>",
	LessThan:                "<",
	LessThanEqualTo:         "<=",
	GreaterThan:             ">",
	GreaterThanEqualTo:      ">=",
	Plus:                    "+",
	Minus:                   "-",
	Asterisk:                "*",
	Division:                "/",
	Ampersand:               "&",
	AtSign:                  "@",
	QuestionMark:            "?",
	FatArrow:                "=>",
	CommentKindPlaceholder:  "comment",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown token kind"
}

// Keywords maps M reserved words to their token kind. Used by the line
// lexer to classify identifier-shaped runs.
var Keywords = map[string]Kind{
	"and":       KeywordAnd,
	"as":        KeywordAs,
	"each":      KeywordEach,
	"else":      KeywordElse,
	"error":     KeywordError,
	"false":     KeywordFalse,
	"if":        KeywordIf,
	"in":        KeywordIn,
	"is":        KeywordIs,
	"let":       KeywordLet,
	"meta":      KeywordMeta,
	"not":       KeywordNot,
	"or":        KeywordOr,
	"otherwise": KeywordOtherwise,
	"section":   KeywordSection,
	"shared":    KeywordShared,
	"then":      KeywordThen,
	"true":      KeywordTrue,
	"try":       KeywordTry,
	"type":      KeywordType,
}

// HashKeywords maps the "#word" spelling (post '#') to its token kind.
var HashKeywords = map[string]Kind{
	"binary":       KeywordHashBinary,
	"date":         KeywordHashDate,
	"datetime":     KeywordHashDateTime,
	"datetimezone": KeywordHashDateTimeZone,
	"duration":     KeywordHashDuration,
	"infinity":     KeywordHashInfinity,
	"nan":          KeywordHashNan,
	"sections":     KeywordHashSections,
	"shared":       KeywordHashShared,
	"table":        KeywordHashTable,
	"time":         KeywordHashTime,
}

// GeneralizedIdentifierStartKinds is the set of keyword kinds enumerated in
// spec.md §6 that may open a generalized identifier (used on the key side
// of a record literal, e.g. `[and = 1]`, `[#shared = 1]`).
var GeneralizedIdentifierStartKinds = map[Kind]bool{
	KeywordAnd: true, KeywordAs: true, KeywordEach: true, KeywordElse: true,
	KeywordError: true, KeywordFalse: true, KeywordIf: true, KeywordIn: true,
	KeywordIs: true, KeywordLet: true, KeywordMeta: true, KeywordNot: true,
	KeywordOr: true, KeywordOtherwise: true, KeywordSection: true,
	KeywordShared: true, KeywordThen: true, KeywordTrue: true, KeywordTry: true,
	KeywordType: true,

	KeywordHashBinary: true, KeywordHashDate: true, KeywordHashDateTime: true,
	KeywordHashDateTimeZone: true, KeywordHashDuration: true, KeywordHashInfinity: true,
	KeywordHashNan: true, KeywordHashSections: true, KeywordHashShared: true,
	KeywordHashTable: true, KeywordHashTime: true,
}

// Token is an immutable, positioned lexeme (spec.md §3). Positions are
// absolute within the document as of snapshot time.
type Token struct {
	Kind          Kind
	Data          string
	PositionStart Position
	PositionEnd   Position
}

// CommentKind distinguishes line comments from block comments.
type CommentKind int

const (
	LineComment CommentKind = iota
	BlockComment
)

func (k CommentKind) String() string {
	if k == LineComment {
		return "line comment"
	}
	return "block comment"
}

// Comment is carried out-of-band from the token stream (spec.md §3).
type Comment struct {
	Kind            CommentKind
	Data            string
	PositionStart   Position
	PositionEnd     Position
	ContainsNewline bool
}
