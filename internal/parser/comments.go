package parser

import (
	"strings"

	"tome/internal/syntax"
	"tome/internal/token"
)

// commentGroups splits the comment trivia preceding tok into blocks of
// adjacent lines. attached reports whether the last block directly precedes
// the token (no blank line in between).
func (p *Parser) commentGroups(tok token.Token) (groups []*syntax.CommentBlock, attached bool) {
	if len(tok.Leading) == 0 || p.taken[tok.Span.Start] {
		return nil, false
	}
	p.taken[tok.Span.Start] = true

	var (
		cur      []token.Trivia
		newlines int
	)
	flush := func() {
		if len(cur) > 0 {
			groups = append(groups, p.hashBlock(cur))
			cur = nil
		}
	}
	for _, tr := range tok.Leading {
		switch tr.Kind {
		case token.TriviaLineComment:
			if len(cur) > 0 && newlines >= 2 {
				flush()
			}
			cur = append(cur, tr)
			newlines = 0
		case token.TriviaBlockComment:
			flush()
			groups = append(groups, p.beginEndBlock(tr))
			newlines = 0
		case token.TriviaNewline:
			newlines += tr.Newlines()
		case token.TriviaHeredocBody:
			flush()
			newlines = 2
		}
	}
	flush()
	return groups, len(groups) > 0 && newlines <= 1
}

// takeDocComment appends floating comment blocks before tok to body and
// returns the block attached to the statement starting at tok.
func (p *Parser) takeDocComment(body syntax.NodeID, tok token.Token) *syntax.CommentBlock {
	groups, attached := p.commentGroups(tok)
	if len(groups) == 0 {
		return nil
	}
	var doc *syntax.CommentBlock
	if attached {
		doc = groups[len(groups)-1]
		groups = groups[:len(groups)-1]
	}
	for _, g := range groups {
		p.appendComment(body, g)
	}
	return doc
}

// addFloatingComments keeps the comments before a closing token (`end`, EOF)
// as floating blocks of body.
func (p *Parser) addFloatingComments(body syntax.NodeID, tok token.Token) {
	groups, _ := p.commentGroups(tok)
	for _, g := range groups {
		p.appendComment(body, g)
	}
}

func (p *Parser) appendComment(body syntax.NodeID, g *syntax.CommentBlock) {
	id := p.tree.Add(syntax.KindComment, g.Span, "")
	p.tree.SetDoc(id, g)
	p.tree.Append(body, id)
}

func (p *Parser) hashBlock(lines []token.Trivia) *syntax.CommentBlock {
	sp := lines[0].Span.Cover(lines[len(lines)-1].Span)
	texts := make([]string, len(lines))
	for i, tr := range lines {
		texts[i] = stripHash(tr.Text)
	}
	return &syntax.CommentBlock{
		Text:      strings.Join(texts, "\n"),
		Span:      sp,
		StartLine: p.line(sp.Start),
		EndLine:   p.line(sp.End),
		Hash:      true,
	}
}

func (p *Parser) beginEndBlock(tr token.Trivia) *syntax.CommentBlock {
	lines := strings.Split(tr.Text, "\n")
	// первая строка - "=begin ...", последняя - "=end ..."
	if len(lines) > 0 {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.HasPrefix(lines[n-1], "=end") {
		lines = lines[:n-1]
	}
	return &syntax.CommentBlock{
		Text:      strings.Join(lines, "\n"),
		Span:      tr.Span,
		StartLine: p.line(tr.Span.Start),
		EndLine:   p.line(tr.Span.End),
	}
}

// stripHash removes the comment marker (`#`, `##`) and one following space.
func stripHash(s string) string {
	s = strings.TrimLeft(s, "#")
	s = strings.TrimPrefix(s, " ")
	return strings.TrimRight(s, " \t\r")
}

func (p *Parser) line(off uint32) int {
	if p.file == nil {
		return 0
	}
	return p.file.Line(off)
}
