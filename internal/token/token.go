package token

import (
	"tome/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
	// SpaceBefore is set when whitespace separates this token from the previous one
	// on the same line; the parser uses it for command-call and unary-operator heuristics.
	SpaceBefore bool
}

// IsLiteral reports whether the token is a literal.
func (t Token) IsLiteral() bool { return t.Kind.IsLiteral() }

// IsKeyword reports whether the token is a reserved word.
func (t Token) IsKeyword() bool { return t.Kind.IsKeyword() }

// IsPunctOrOp reports whether the token is punctuation or an operator.
func (t Token) IsPunctOrOp() bool { return t.Kind.IsOperator() }

// IsIdent reports whether the token is an identifier (local or method name).
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsValueEnd reports whether an expression may end with this token. The lexer
// uses it to tell `/` division from a regexp and `<<` from a heredoc.
func (t Token) IsValueEnd() bool {
	switch t.Kind {
	case Ident, Const, IVar, CVar, GVar, RParen, RBracket, RBrace,
		KwEnd, KwSelf, KwNil, KwTrue, KwFalse, KwFile, KwLine, KwEncoding:
		return true
	}
	return t.Kind.IsLiteral()
}
