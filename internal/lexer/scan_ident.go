package lexer

import (
	"unicode"

	"tome/internal/diag"
	"tome/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword сканирует Ident/Const/Label и проверяет через LookupKeyword.
// Token.Text - ровно исходный срез (для Label - вместе с ':').
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if sz == 0 || (r >= utf8RuneSelf && !isIdentStartRune(r)) {
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "unknown character")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	isConst := unicode.IsUpper(r)
	lx.scanIdentTail()

	// foo? foo! - но не `foo!=`
	if !isConst {
		if b := lx.cursor.Peek(); (b == '?' || b == '!') && (lx.cursor.PeekAt(1) != '=' || lx.cursor.PeekAt(2) == '=') {
			lx.cursor.Bump()
		}
	}

	// setter name right after `def`: `def name=(v)`
	if lx.def == defName && lx.cursor.Peek() == '=' {
		switch lx.cursor.PeekAt(1) {
		case '=', '~', '>':
		default:
			lx.cursor.Bump()
		}
	}

	// label `name:` (но не `name::`)
	if lx.def == defNone && lx.cursor.Peek() == ':' && lx.cursor.PeekAt(1) != ':' && lx.prev != token.Question {
		lx.cursor.Bump()
		return lx.emit(token.Label, start)
	}

	tok := lx.emit(token.Ident, start)
	if isConst {
		tok.Kind = token.Const
	}
	if k, ok := token.LookupKeyword(tok.Text); ok {
		switch {
		case lx.prev == token.Dot || lx.prev == token.AmpDot:
			// obj.class, obj.end - имя метода
		case lx.def == defName && k != token.KwSelf:
		default:
			tok.Kind = k
		}
	}
	return tok
}

func (lx *Lexer) scanIdentTail() {
	for {
		b := lx.cursor.Peek()
		if b < utf8RuneSelf {
			if !isIdentContinueByte(b) {
				return
			}
			lx.cursor.Bump()
			continue
		}
		r, sz := lx.peekRune()
		if sz == 0 || !isIdentContinueRune(r) {
			return
		}
		lx.bumpRune()
	}
}

// @ivar, @@cvar
func (lx *Lexer) scanInstanceVar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	kind := token.IVar
	if lx.cursor.Eat('@') {
		kind = token.CVar
	}
	r, sz := lx.peekRune()
	if sz == 0 || !isIdentStartRune(r) {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "'@' without a variable name")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	lx.scanIdentTail()
	return lx.emit(kind, start)
}

// $gvar, $0, $!, $-w
func (lx *Lexer) scanGlobalVar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	b := lx.cursor.Peek()
	switch {
	case isIdentStartByte(b) || b >= utf8RuneSelf:
		lx.scanIdentTail()
	case isDec(b):
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	case b == '-':
		lx.cursor.Bump()
		if isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	case b != 0 && isGlobalSpecial(b):
		lx.cursor.Bump()
	default:
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "'$' without a variable name")
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	return lx.emit(token.GVar, start)
}

func isGlobalSpecial(b byte) bool {
	switch b {
	case '!', '@', '&', '`', '\'', '+', '~', '=', '/', '\\', ',', ';', '.', '<', '>', '_', '*', '$', '?', ':', '"':
		return true
	}
	return false
}
