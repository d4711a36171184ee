package lexer

import (
	"tome/internal/diag"
	"tome/internal/token"
)

// Поддержка: 0, 123, 1_000, 0b..., 0o..., 0..., 0x..., 0d..., 1.0, 1e-3, 1.0e+10, суффиксы r/i.
// `1.foo` и `1..2` - целое число, точка остаётся оператору.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		var digit func(byte) bool
		switch lx.cursor.PeekAt(1) {
		case 'b', 'B':
			digit = func(b byte) bool { return b == '0' || b == '1' }
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		case 'x', 'X':
			digit = isHex
		case 'd', 'D':
			digit = isDec
		}
		if digit != nil {
			lx.cursor.Off += 2
			if !lx.scanDigits(digit) {
				return lx.badNumber(start, "expected digits after base prefix")
			}
			lx.scanNumberSuffix()
			return lx.emit(kind, start)
		}
	}

	if !lx.scanDigits(isDec) {
		return lx.badNumber(start, "malformed number")
	}

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		if !lx.scanDigits(isDec) {
			return lx.badNumber(start, "malformed fraction")
		}
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if !lx.scanDigits(isDec) {
			return lx.badNumber(start, "expected digit after exponent")
		}
		kind = token.FloatLit
	}

	lx.scanNumberSuffix()
	return lx.emit(kind, start)
}

// scanDigits consumes digits and single underscores between them.
func (lx *Lexer) scanDigits(digit func(byte) bool) bool {
	if !digit(lx.cursor.Peek()) {
		return false
	}
	for {
		b := lx.cursor.Peek()
		if digit(b) {
			lx.cursor.Bump()
			continue
		}
		if b == '_' && digit(lx.cursor.PeekAt(1)) {
			lx.cursor.Bump()
			continue
		}
		if b == '_' {
			lx.cursor.Bump()
			return false
		}
		return true
	}
}

func (lx *Lexer) scanNumberSuffix() {
	if lx.cursor.Peek() == 'r' && !isIdentContinueByte(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == 'i' && !isIdentContinueByte(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) badNumber(start Mark, msg string) token.Token {
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexBadNumber, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
