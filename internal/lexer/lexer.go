package lexer

import (
	"tome/internal/diag"
	"tome/internal/source"
	"tome/internal/token"
)

// defState tracks the position right after `def`, where keywords and
// operators are method names.
type defState uint8

const (
	defNone defState = iota
	defName
	defReceiver
)

type heredoc struct {
	id     string
	indent bool // `<<-` / `<<~`: terminator may be indented
	head   source.Span
}

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // 1 элементный буфер для токена
	hold   []token.Trivia // накопленные leading trivia
	carry  []token.Trivia // heredoc bodies read after an emitted Newline

	prev         token.Kind
	prevValueEnd bool
	lineHasSig   bool
	def          defState
	heredocs     []heredoc
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		prev:   token.Newline,
	}
}

// Next возвращает следующий **значимый** токен с уже собранным Leading.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	if nl, ok := lx.collectLeadingTrivia(); ok {
		nl.Leading = lx.hold
		lx.hold = nil
		lx.commit(nl)
		return nl
	}

	// EOF несёт хвостовые комментарии файла (директивы вроде @!endgroup).
	if lx.cursor.EOF() {
		lx.flushHeredocsAtEOF()
		tok := token.Token{
			Kind:    token.EOF,
			Span:    lx.emptySpan(),
			Leading: lx.hold,
		}
		lx.hold = nil
		return tok
	}

	start := lx.cursor.Mark()
	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '"' || ch == '\'':
		tok = lx.scanString()
	case ch == '`' && lx.def != defName:
		tok = lx.scanString()
	case ch == '@':
		tok = lx.scanInstanceVar()
	case ch == '$':
		tok = lx.scanGlobalVar()
	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	tok.SpaceBefore = lx.spaceBefore(uint32(start))
	lx.commit(tok)
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// commit records the emitted token as context for the next one.
func (lx *Lexer) commit(tok token.Token) {
	if tok.Kind != token.Newline {
		lx.lineHasSig = true
	}
	lx.prev = tok.Kind
	lx.prevValueEnd = tok.IsValueEnd()

	switch {
	case tok.Kind == token.KwDef:
		lx.def = defName
	case lx.def == defName:
		lx.def = defNone
		if (tok.Kind == token.KwSelf || tok.Kind == token.Ident || tok.Kind == token.Const) && lx.cursor.Peek() == '.' {
			lx.def = defReceiver
		}
	case lx.def == defReceiver:
		lx.def = defNone
		if tok.Kind == token.Dot {
			lx.def = defName
		}
	}
}

func (lx *Lexer) spaceBefore(off uint32) bool {
	if off == 0 {
		return false
	}
	b := lx.file.Content[off-1]
	return b == ' ' || b == '\t' || b == '\n'
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) emit(k token.Kind, m Mark) token.Token {
	sp := lx.cursor.SpanFrom(m)
	return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
}

// invalidToEOL reports code at m, then skips to the end of the line so lexing
// resumes at the next line boundary.
func (lx *Lexer) invalidToEOL(m Mark, code diag.Code, msg string) token.Token {
	lx.cursor.Reset(m)
	lx.cursor.Bump()
	lx.cursor.SkipLine()
	sp := lx.cursor.SpanFrom(m)
	lx.errLex(code, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) flushHeredocsAtEOF() {
	for _, h := range lx.heredocs {
		lx.errLex(diag.LexUnterminatedHeredoc, h.head, "unterminated heredoc "+h.id)
	}
	lx.heredocs = nil
}
