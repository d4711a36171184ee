package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token produced by lexer recovery.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Newline terminates a line holding significant tokens.
	Newline

	// Ident is a local name or method name (`foo`, `empty?`, `save!`).
	Ident
	// Const is a capitalized name (`Foo`).
	Const
	// IVar is an instance variable (`@foo`).
	IVar
	// CVar is a class variable (`@@foo`).
	CVar
	// GVar is a global variable (`$foo`, `$0`).
	GVar
	// Label is a hash/keyword label (`name:`).
	Label

	keywordBeg
	KwAlias
	KwAnd
	KwBegin
	KwBEGIN
	KwBreak
	KwCase
	KwClass
	KwDef
	KwDefined
	KwDo
	KwElse
	KwElsif
	KwEnd
	KwEND
	KwEnsure
	KwFalse
	KwFor
	KwIf
	KwIn
	KwModule
	KwNext
	KwNil
	KwNot
	KwOr
	KwRedo
	KwRescue
	KwRetry
	KwReturn
	KwSelf
	KwSuper
	KwThen
	KwTrue
	KwUndef
	KwUnless
	KwUntil
	KwWhen
	KwWhile
	KwYield
	KwFile     // __FILE__
	KwLine     // __LINE__
	KwEncoding // __ENCODING__
	keywordEnd

	literalBeg
	// IntLit represents integer literals (`42`, `0x1f`, `1_000`).
	IntLit
	// FloatLit represents float literals (`1.5`, `2e10`).
	FloatLit
	// StringLit represents quoted strings, including interpolated ones.
	StringLit
	// XStringLit represents backtick command strings.
	XStringLit
	// SymbolLit represents `:sym`, `:"sym"` and operator symbols.
	SymbolLit
	// RegexpLit represents `/re/flags` and `%r{re}`.
	RegexpLit
	// HeredocLit represents a heredoc opener (`<<~EOS`).
	HeredocLit
	// WordsLit represents `%w[]`/`%i[]` arrays.
	WordsLit
	// CharLit represents `?a`.
	CharLit
	literalEnd

	operatorBeg
	Plus     // +
	Minus    // -
	Star     // *
	Pow      // **
	Slash    // /
	Percent  // %
	Assign   // =
	OpAssign // +=, -=, ||=, <<= ...
	EqEq     // ==
	EqEqEq   // ===
	Match    // =~
	NotMatch // !~
	Bang     // !
	BangEq   // !=
	Lt       // <
	LtEq     // <=
	Gt       // >
	GtEq     // >=
	Cmp      // <=>
	Shl      // <<
	Shr      // >>
	Amp      // &
	Pipe     // |
	Caret    // ^
	Tilde    // ~
	AndAnd   // &&
	OrOr     // ||
	Question // ?
	Colon    // :
	ColonColon
	Semicolon
	Comma
	Dot
	AmpDot  // &.
	DotDot  // ..
	DotDot3 // ...
	Arrow   // ->
	FatArrow
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Backslash
	operatorEnd
)

var kindNames = map[Kind]string{
	Invalid: "Invalid", EOF: "EOF", Newline: "Newline",
	Ident: "Ident", Const: "Const", IVar: "IVar", CVar: "CVar", GVar: "GVar", Label: "Label",
	IntLit: "IntLit", FloatLit: "FloatLit", StringLit: "StringLit", XStringLit: "XStringLit",
	SymbolLit: "SymbolLit", RegexpLit: "RegexpLit", HeredocLit: "HeredocLit", WordsLit: "WordsLit",
	CharLit: "CharLit",
	Plus: "+", Minus: "-", Star: "*", Pow: "**", Slash: "/", Percent: "%", Assign: "=",
	OpAssign: "op=", EqEq: "==", EqEqEq: "===", Match: "=~", NotMatch: "!~", Bang: "!",
	BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=", Cmp: "<=>", Shl: "<<", Shr: ">>",
	Amp: "&", Pipe: "|", Caret: "^", Tilde: "~", AndAnd: "&&", OrOr: "||", Question: "?",
	Colon: ":", ColonColon: "::", Semicolon: ";", Comma: ",", Dot: ".", AmpDot: "&.",
	DotDot: "..", DotDot3: "...", Arrow: "->", FatArrow: "=>", LParen: "(", RParen: ")",
	LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]", Backslash: "\\",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	if k > keywordBeg && k < keywordEnd {
		return "Kw(" + keywordText[k] + ")"
	}
	return "Kind(?)"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k > keywordBeg && k < keywordEnd }

// IsLiteral reports whether k is a literal kind.
func (k Kind) IsLiteral() bool { return k > literalBeg && k < literalEnd }

// IsOperator reports whether k is punctuation or an operator.
func (k Kind) IsOperator() bool { return k > operatorBeg && k < operatorEnd }
