package parser

import (
	"bytes"
	"fmt"
	"slices"

	"tome/internal/diag"
	"tome/internal/source"
	"tome/internal/syntax"
	"tome/internal/token"
)

func (p *Parser) peek() token.Token {
	return p.lx.Peek()
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// advance - съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect - ожидаем конкретный токен. Если нет - репортим и возвращаем (tok,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(code, p.diagSpan(), msg+", found "+describe(p.peek()))
	return p.peek(), false
}

// diagSpan - лучший span для диагностики: на EOF указываем за последний токен.
func (p *Parser) diagSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return p.lastSpan.EndPoint()
	}
	return peek.Span
}

// err reports the first error of the current statement; later ones are
// suppressed until the statement loop resyncs.
func (p *Parser) err(code diag.Code, sp source.Span, msg string) {
	if p.panicking {
		return
	}
	p.panicking = true
	p.report(code, diag.SevError, sp, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if sev == diag.SevError {
		p.errors++
	}
	if p.opts.Reporter == nil {
		return
	}
	if p.opts.MaxErrors > 0 && p.errors > int(p.opts.MaxErrors) {
		if !p.tooMany {
			p.tooMany = true
			p.opts.Reporter.Report(diag.SynTooManyErrors, diag.SevError, sp, "too many syntax errors, further errors suppressed", nil)
		}
		return
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil)
}

func (p *Parser) skipNewlines() {
	for p.at(token.Newline) {
		p.advance()
	}
}

func (p *Parser) skipSeparators() {
	for p.atOr(token.Newline, token.Semicolon) {
		p.advance()
	}
}

// spaceAfter reports whether whitespace (or EOF) follows tok.
func (p *Parser) spaceAfter(tok token.Token) bool {
	if p.file == nil || int(tok.Span.End) >= len(p.file.Content) {
		return true
	}
	switch p.file.Content[tok.Span.End] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// here is an empty span right after the last consumed token. Error nodes use
// it: the offending token is left to recovery and may lie outside the
// enclosing node.
func (p *Parser) here() source.Span {
	return source.Span{File: p.tree.File, Start: p.lastSpan.End, End: p.lastSpan.End}
}

func (p *Parser) errorNode() syntax.NodeID {
	return p.tree.Add(syntax.KindError, p.here(), "")
}

// lineStart reports whether tok is the first token on its line, and the
// indentation of that line.
func (p *Parser) lineStart(tok token.Token) (indent int, first bool) {
	if p.file == nil || tok.Kind == token.EOF || tok.Kind == token.Newline {
		return 0, false
	}
	content := p.file.Content
	i := int(tok.Span.Start)
	for i > 0 && (content[i-1] == ' ' || content[i-1] == '\t') {
		i--
	}
	return int(tok.Span.Start) - i, i == 0 || content[i-1] == '\n'
}

// indentOf returns the indentation of the line containing off.
func (p *Parser) indentOf(off uint32) int {
	if p.file == nil {
		return 0
	}
	content := p.file.Content
	i := int(off)
	for i > 0 && content[i-1] != '\n' {
		i--
	}
	n := 0
	for i+n < len(content) && (content[i+n] == ' ' || content[i+n] == '\t') {
		n++
	}
	return n
}

// sameLine reports whether no newline separates offsets a <= b.
func (p *Parser) sameLine(a, b uint32) bool {
	if p.file == nil || a > b || int(b) > len(p.file.Content) {
		return false
	}
	return !bytes.Contains(p.file.Content[a:b], []byte{'\n'})
}

func (p *Parser) spanFrom(start source.Span) source.Span {
	if p.lastSpan.End < start.Start {
		return start
	}
	return start.Cover(p.lastSpan)
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Newline:
		return "newline"
	}
	return fmt.Sprintf("'%s'", tok.Text)
}
