package lexer

import (
	"strings"

	"tome/internal/diag"
	"tome/internal/token"
)

// scanString сканирует '...', "..." и `...`. Интерполяция #{...} пропускается
// целиком вместе с вложенными строками; литерал остаётся одним токеном.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	q := lx.cursor.Bump()
	if !lx.skipDelimited(q, q, q != '\'') {
		return lx.invalidToEOL(start, diag.LexUnterminatedString, "unterminated string literal")
	}
	if q == '`' {
		return lx.emit(token.XStringLit, start)
	}
	return lx.emit(token.StringLit, start)
}

// skipDelimited consumes input up to and including the matching close
// delimiter; the opening one is already consumed. Bracket delimiters nest.
func (lx *Lexer) skipDelimited(open, close byte, interp bool) bool {
	nest := open != close
	depth := 1
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		switch {
		case b == '\\':
			lx.cursor.Bump()
		case interp && b == '#' && lx.cursor.Peek() == '{':
			lx.cursor.Bump()
			if !lx.skipInterpolation() {
				return false
			}
		case nest && b == open:
			depth++
		case b == close:
			depth--
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

func (lx *Lexer) skipInterpolation() bool {
	depth := 1
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		switch b {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return true
			}
		case '"', '`':
			if !lx.skipDelimited(b, b, true) {
				return false
			}
		case '\'':
			if !lx.skipDelimited(b, b, false) {
				return false
			}
		}
	}
	return false
}

// isPercentStart: %w[...] %i(...) %q{...} %Q|...| %r{...} %x(...) %s(...) %(...)
func (lx *Lexer) isPercentStart() bool {
	b1 := lx.cursor.PeekAt(1)
	if strings.IndexByte("qQwWiIrsx", b1) >= 0 {
		b2 := lx.cursor.PeekAt(2)
		return b2 != 0 && !isIdentContinueByte(b2) && !isSpace(b2)
	}
	return b1 != 0 && b1 != '=' && !isIdentContinueByte(b1) && !isSpace(b1)
}

func (lx *Lexer) scanPercent() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '%'
	typ := byte('Q')
	if b := lx.cursor.Peek(); isIdentStartByte(b) {
		typ = lx.cursor.Bump()
	}
	open := lx.cursor.Bump()
	interp := strings.IndexByte("QWIrx", typ) >= 0
	if !lx.skipDelimited(open, closingDelim(open), interp) {
		return lx.invalidToEOL(start, diag.LexUnterminatedPercent, "unterminated percent literal")
	}
	switch typ {
	case 'w', 'W', 'i', 'I':
		return lx.emit(token.WordsLit, start)
	case 'r':
		lx.scanRegexpFlags()
		return lx.emit(token.RegexpLit, start)
	case 'x':
		return lx.emit(token.XStringLit, start)
	case 's':
		return lx.emit(token.SymbolLit, start)
	}
	return lx.emit(token.StringLit, start)
}

func (lx *Lexer) scanRegexp() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '/'
	if !lx.skipDelimited('/', '/', true) {
		return lx.invalidToEOL(start, diag.LexUnterminatedRegexp, "unterminated regexp literal")
	}
	lx.scanRegexpFlags()
	return lx.emit(token.RegexpLit, start)
}

func (lx *Lexer) scanRegexpFlags() {
	for strings.IndexByte("imxounse", lx.cursor.Peek()) >= 0 && lx.cursor.Peek() != 0 {
		lx.cursor.Bump()
	}
}

// symbolOperators are operator method names usable as `:op` symbols, longest first.
var symbolOperators = []string{
	"[]=", "[]", "<=>", "===", "==", "=~", "!=", "!~", "**", "+@", "-@", "<<", ">>", "<=", ">=",
	"+", "-", "*", "/", "%", "<", ">", "!", "~", "^", "&", "|",
}

// scanSymbol is called with the cursor on ':'. It returns false when the colon
// does not start a symbol.
func (lx *Lexer) scanSymbol() (token.Token, bool) {
	start := lx.cursor.Mark()
	b1 := lx.cursor.PeekAt(1)
	switch {
	case b1 == '"' || b1 == '\'':
		lx.cursor.Bump()
		q := lx.cursor.Bump()
		if !lx.skipDelimited(q, q, q == '"') {
			return lx.invalidToEOL(start, diag.LexUnterminatedString, "unterminated symbol literal"), true
		}
		return lx.emit(token.SymbolLit, start), true

	case isIdentStartByte(b1) || b1 >= utf8RuneSelf:
		lx.cursor.Bump()
		lx.scanIdentTail()
		switch lx.cursor.Peek() {
		case '?', '!':
			if lx.cursor.PeekAt(1) != '=' {
				lx.cursor.Bump()
			}
		case '=':
			switch lx.cursor.PeekAt(1) {
			case '=', '~', '>':
			default:
				lx.cursor.Bump()
			}
		}
		return lx.emit(token.SymbolLit, start), true

	case b1 == '@' || b1 == '$':
		lx.cursor.Bump()
		var sub token.Token
		if b1 == '@' {
			sub = lx.scanInstanceVar()
		} else {
			sub = lx.scanGlobalVar()
		}
		if sub.Kind == token.Invalid {
			return lx.emit(token.Invalid, start), true
		}
		return lx.emit(token.SymbolLit, start), true
	}

	lx.cursor.Bump()
	for _, op := range symbolOperators {
		if lx.cursor.HasPrefix(op) {
			lx.cursor.Off += uint32(len(op))
			return lx.emit(token.SymbolLit, start), true
		}
	}
	lx.cursor.Reset(start)
	return token.Token{}, false
}

// isHeredocStart: `<<ID`, `<<-ID`, `<<~ID`, ID может быть в кавычках.
func (lx *Lexer) isHeredocStart() bool {
	i := uint32(2)
	if b := lx.cursor.PeekAt(i); b == '~' || b == '-' {
		i++
	}
	b := lx.cursor.PeekAt(i)
	return isIdentStartByte(b) || b == '"' || b == '\'' || b == '`'
}

// scanHeredocHead consumes the opener and queues the body; the body is read
// as trivia after the current line ends.
func (lx *Lexer) scanHeredocHead() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Off += 2
	indent := false
	if b := lx.cursor.Peek(); b == '~' || b == '-' {
		indent = true
		lx.cursor.Bump()
	}
	var id string
	if q := lx.cursor.Peek(); q == '"' || q == '\'' || q == '`' {
		lx.cursor.Bump()
		idStart := lx.cursor.Off
		for !lx.cursor.EOF() && lx.cursor.Peek() != q && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		if !lx.cursor.Eat(q) {
			return lx.invalidToEOL(start, diag.LexUnterminatedHeredoc, "unterminated heredoc identifier")
		}
		id = string(lx.file.Content[idStart : lx.cursor.Off-1])
	} else {
		idStart := lx.cursor.Off
		lx.scanIdentTail()
		id = string(lx.file.Content[idStart:lx.cursor.Off])
	}
	tok := lx.emit(token.HeredocLit, start)
	lx.heredocs = append(lx.heredocs, heredoc{id: id, indent: indent, head: tok.Span})
	return tok
}

// readHeredocBodies consumes the bodies of every pending heredoc; the cursor
// must be at the start of the line following the heads.
func (lx *Lexer) readHeredocBodies() []token.Trivia {
	if len(lx.heredocs) == 0 {
		return nil
	}
	var out []token.Trivia
	for _, h := range lx.heredocs {
		start := lx.cursor.Mark()
		closed := false
		for !lx.cursor.EOF() {
			lineStart := lx.cursor.Off
			lx.cursor.SkipLine()
			line := strings.TrimRight(string(lx.file.Content[lineStart:lx.cursor.Off]), "\r")
			lx.cursor.Eat('\n')
			if h.indent {
				line = strings.TrimLeft(line, " \t")
			}
			if line == h.id {
				closed = true
				break
			}
		}
		sp := lx.cursor.SpanFrom(start)
		out = append(out, token.Trivia{Kind: token.TriviaHeredocBody, Span: sp, Text: lx.text(sp)})
		if !closed {
			lx.errLex(diag.LexUnterminatedHeredoc, h.head, "unterminated heredoc "+h.id)
		}
	}
	lx.heredocs = lx.heredocs[:0]
	return out
}

// ?a, ?\n
func (lx *Lexer) isCharLiteral() bool {
	b1 := lx.cursor.PeekAt(1)
	if b1 == 0 || isSpace(b1) {
		return false
	}
	if b1 == '\\' {
		return lx.cursor.PeekAt(2) != 0
	}
	return !isIdentContinueByte(lx.cursor.PeekAt(2))
}

func (lx *Lexer) scanCharLiteral() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '?'
	if lx.cursor.Eat('\\') {
		lx.cursor.Bump()
	} else {
		lx.bumpRune()
	}
	return lx.emit(token.CharLit, start)
}
