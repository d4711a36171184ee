package lexer

import (
	"tome/internal/diag"
	"tome/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
//   - ' ', '\t', '\r' коалесцируются в один TriviaSpace
//   - '\n' на строке без значимых токенов (или после оператора-продолжения) → TriviaNewline
//   - '\n' после значимого токена → токен Newline (второе возвращаемое значение true)
//   - #... до \n → TriviaLineComment
//   - =begin ... =end в начале строки → TriviaBlockComment
//   - \ перед \n → TriviaContinuation
//   - тела heredoc читаются сразу после перевода строки → TriviaHeredocBody
//   - __END__ в начале строки обрезает вход
func (lx *Lexer) collectLeadingTrivia() (token.Token, bool) {
	lx.hold = lx.carry
	lx.carry = nil
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\f' || b == '\v':
			for {
				b2 := lx.cursor.Peek()
				if b2 != ' ' && b2 != '\t' && b2 != '\r' && b2 != '\f' && b2 != '\v' {
					break
				}
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)

		case b == '\\' && lx.cursor.PeekAt(1) == '\n':
			lx.cursor.Bump()
			lx.cursor.Bump()
			lx.pushTrivia(token.TriviaContinuation, start)
			lx.hold = append(lx.hold, lx.readHeredocBodies()...)

		case b == '\n':
			if lx.lineHasSig && !lx.continuesLine() {
				lx.cursor.Bump()
				sp := lx.cursor.SpanFrom(start)
				lx.lineHasSig = false
				lx.carry = lx.readHeredocBodies()
				return token.Token{Kind: token.Newline, Span: sp, Text: "\n"}, true
			}
			lx.cursor.Bump()
			if len(lx.heredocs) > 0 {
				lx.pushTrivia(token.TriviaNewline, start)
				lx.hold = append(lx.hold, lx.readHeredocBodies()...)
				continue
			}
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaNewline, start)

		case b == '#':
			lx.cursor.SkipLine()
			lx.pushTrivia(token.TriviaLineComment, start)

		case b == '=' && lx.cursor.AtLineStart() && lx.atWord("=begin"):
			lx.scanBlockComment()

		case b == '_' && lx.cursor.AtLineStart() && lx.atWord("__END__"):
			lx.cursor.Limit = lx.cursor.Off
			return token.Token{}, false

		default:
			return token.Token{}, false
		}
	}
	return token.Token{}, false
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: lx.text(sp),
	})
}

// atWord reports whether word starts at the cursor and is followed by
// whitespace or the end of input.
func (lx *Lexer) atWord(word string) bool {
	if !lx.cursor.HasPrefix(word) {
		return false
	}
	switch lx.cursor.PeekAt(uint32(len(word))) {
	case 0, ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// scanBlockComment consumes `=begin` through the `=end` line.
func (lx *Lexer) scanBlockComment() {
	start := lx.cursor.Mark()
	lx.cursor.SkipLine()
	for !lx.cursor.EOF() {
		lx.cursor.Bump() // '\n'
		if lx.atWord("=end") {
			lx.cursor.SkipLine()
			lx.pushTrivia(token.TriviaBlockComment, start)
			return
		}
		lx.cursor.SkipLine()
	}
	lx.pushTrivia(token.TriviaBlockComment, start)
	lx.errLex(diag.LexUnterminatedBlockComment, lx.cursor.SpanFrom(start), "unterminated =begin block comment")
}

// continuesLine reports whether the newline at the cursor is insignificant:
// the line ends with a binary operator or opening bracket, or the next
// code line starts with a method-chain dot.
func (lx *Lexer) continuesLine() bool {
	switch lx.prev {
	case token.Comma, token.LParen, token.LBracket, token.LBrace, token.Dot, token.AmpDot,
		token.ColonColon, token.Assign, token.OpAssign, token.AndAnd, token.OrOr, token.FatArrow,
		token.Plus, token.Minus, token.Star, token.Pow, token.Slash, token.Percent,
		token.EqEq, token.EqEqEq, token.Match, token.NotMatch, token.BangEq,
		token.Lt, token.LtEq, token.Gt, token.GtEq, token.Cmp, token.Shl, token.Shr,
		token.Amp, token.Caret, token.Question, token.Colon, token.Backslash,
		token.KwAnd, token.KwOr, token.KwNot:
		return true
	}
	if len(lx.heredocs) > 0 {
		return false
	}
	return lx.nextLineStartsWithDot()
}

func (lx *Lexer) nextLineStartsWithDot() bool {
	c := lx.file.Content
	i := lx.cursor.Off + 1
	limit := lx.cursor.Limit
	for i < limit {
		switch c[i] {
		case ' ', '\t', '\r', '\n':
			i++
			continue
		case '#':
			for i < limit && c[i] != '\n' {
				i++
			}
			continue
		case '.':
			return i+1 >= limit || c[i+1] != '.'
		case '&':
			return i+1 < limit && c[i+1] == '.'
		}
		return false
	}
	return false
}
