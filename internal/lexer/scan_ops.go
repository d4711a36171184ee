package lexer

import (
	"tome/internal/diag"
	"tome/internal/token"
)

// valueExpected reports whether the lexer is at the beginning of an
// expression: after an operator/keyword, or after an identifier followed by a
// space when the next byte is not (`puts /re/`, `foo <<~EOS`).
func (lx *Lexer) valueExpected(spaceBefore bool, after byte) bool {
	if lx.def == defName {
		return false
	}
	if !lx.prevValueEnd {
		return true
	}
	return lx.prev == token.Ident && spaceBefore && !isSpace(after) && after != '='
}

// scanOperatorOrPunct также разбирает литералы, зависящие от контекста:
// /regexp/, %w[], <<~HEREDOC, ?c, :symbol.
// Жадность: сначала 3-символьные, затем 2-символьные, затем 1-символьные.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	sb := lx.spaceBefore(uint32(start))

	switch lx.cursor.Peek() {
	case '/':
		if lx.valueExpected(sb, lx.cursor.PeekAt(1)) {
			return lx.scanRegexp()
		}
	case '%':
		if lx.valueExpected(sb, lx.cursor.PeekAt(1)) && lx.isPercentStart() {
			return lx.scanPercent()
		}
	case '<':
		if lx.cursor.PeekAt(1) == '<' && lx.valueExpected(sb, lx.cursor.PeekAt(2)) && lx.isHeredocStart() {
			return lx.scanHeredocHead()
		}
	case '?':
		if lx.valueExpected(sb, lx.cursor.PeekAt(1)) && lx.isCharLiteral() {
			return lx.scanCharLiteral()
		}
	case ':':
		if lx.cursor.PeekAt(1) != ':' {
			if tok, ok := lx.scanSymbol(); ok {
				return tok
			}
		}
	case '`':
		// `def `(cmd)` - имя метода
		lx.cursor.Bump()
		return lx.emit(token.Ident, start)
	}

	switch {
	case lx.try3('*', '*', '='), lx.try3('<', '<', '='), lx.try3('>', '>', '='),
		lx.try3('&', '&', '='), lx.try3('|', '|', '='):
		return lx.emit(token.OpAssign, start)
	case lx.try3('<', '=', '>'):
		return lx.emit(token.Cmp, start)
	case lx.try3('=', '=', '='):
		return lx.emit(token.EqEqEq, start)
	case lx.try3('.', '.', '.'):
		return lx.emit(token.DotDot3, start)
	case lx.try2('*', '*'):
		return lx.emit(token.Pow, start)
	case lx.try2('=', '='):
		return lx.emit(token.EqEq, start)
	case lx.try2('=', '~'):
		return lx.emit(token.Match, start)
	case lx.try2('=', '>'):
		return lx.emit(token.FatArrow, start)
	case lx.try2('!', '='):
		return lx.emit(token.BangEq, start)
	case lx.try2('!', '~'):
		return lx.emit(token.NotMatch, start)
	case lx.try2('<', '='):
		return lx.emit(token.LtEq, start)
	case lx.try2('>', '='):
		return lx.emit(token.GtEq, start)
	case lx.try2('<', '<'):
		return lx.emit(token.Shl, start)
	case lx.try2('>', '>'):
		return lx.emit(token.Shr, start)
	case lx.try2('&', '&'):
		return lx.emit(token.AndAnd, start)
	case lx.try2('|', '|'):
		return lx.emit(token.OrOr, start)
	case lx.try2('&', '.'):
		return lx.emit(token.AmpDot, start)
	case lx.try2(':', ':'):
		return lx.emit(token.ColonColon, start)
	case lx.try2('.', '.'):
		return lx.emit(token.DotDot, start)
	case lx.try2('-', '>'):
		return lx.emit(token.Arrow, start)
	case lx.try2('+', '='), lx.try2('-', '='), lx.try2('*', '='), lx.try2('/', '='),
		lx.try2('%', '='), lx.try2('|', '='), lx.try2('&', '='), lx.try2('^', '='):
		return lx.emit(token.OpAssign, start)
	}

	ch := lx.cursor.Bump()
	switch ch {
	case '+', '-', '!', '~':
		// унарные имена методов: def +@, def -@
		if lx.def == defName {
			lx.cursor.Eat('@')
		}
		switch ch {
		case '+':
			return lx.emit(token.Plus, start)
		case '-':
			return lx.emit(token.Minus, start)
		case '!':
			return lx.emit(token.Bang, start)
		}
		return lx.emit(token.Tilde, start)
	case '*':
		return lx.emit(token.Star, start)
	case '/':
		return lx.emit(token.Slash, start)
	case '%':
		return lx.emit(token.Percent, start)
	case '=':
		return lx.emit(token.Assign, start)
	case '<':
		return lx.emit(token.Lt, start)
	case '>':
		return lx.emit(token.Gt, start)
	case '&':
		return lx.emit(token.Amp, start)
	case '|':
		return lx.emit(token.Pipe, start)
	case '^':
		return lx.emit(token.Caret, start)
	case '?':
		return lx.emit(token.Question, start)
	case ':':
		return lx.emit(token.Colon, start)
	case ';':
		return lx.emit(token.Semicolon, start)
	case ',':
		return lx.emit(token.Comma, start)
	case '.':
		return lx.emit(token.Dot, start)
	case '(':
		return lx.emit(token.LParen, start)
	case ')':
		return lx.emit(token.RParen, start)
	case '{':
		return lx.emit(token.LBrace, start)
	case '}':
		return lx.emit(token.RBrace, start)
	case '[':
		return lx.emit(token.LBracket, start)
	case ']':
		return lx.emit(token.RBracket, start)
	case '\\':
		return lx.emit(token.Backslash, start)
	}

	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnknownChar, sp, "unknown character")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}
