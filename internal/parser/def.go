package parser

import (
	"tome/internal/diag"
	"tome/internal/syntax"
	"tome/internal/token"
)

// parseDef parses `def [recv.]name [params] body end` and the endless
// `def name(args) = expr` form.
func (p *Parser) parseDef() syntax.NodeID {
	open := p.advance()
	recv := syntax.NoNodeID

	first := p.peek()
	name, ok := p.parseMethodName()
	if ok && p.at(token.Dot) && !p.peek().SpaceBefore {
		switch first.Kind {
		case token.KwSelf:
			recv = p.tree.Add(syntax.KindSelf, first.Span, "")
		case token.Const:
			recv = p.tree.Add(syntax.KindConst, first.Span, first.Text)
		case token.Ident:
			recv = p.tree.Add(syntax.KindIdent, first.Span, first.Text)
		}
		if recv.IsValid() {
			p.advance()
			name, ok = p.parseMethodName()
		}
	}

	p.pushScope(true)
	defer p.popScope()

	params := syntax.NoNodeID
	if ok {
		switch {
		case p.at(token.LParen):
			lp := p.advance()
			params = p.parseParamList(true, token.RParen)
			p.expectClose(token.RParen, lp, diag.SynUnclosedParen)
		case !p.atOr(token.Newline, token.Semicolon, token.Assign, token.EOF):
			params = p.parseParamList(false, token.Newline, token.Semicolon)
		}
	}

	var body syntax.NodeID
	switch {
	case !p.panicking && p.at(token.Assign):
		// endless def
		p.advance()
		p.skipNewlines()
		start := p.peek().Span
		value := p.parseArg()
		body = p.tree.Add(syntax.KindBody, p.spanFrom(start), "", value)
	case p.finishHeader(open):
		body = p.parseBodyStmt(open)
	default:
		body = p.tree.Add(syntax.KindBody, p.here(), "")
	}
	return p.tree.Add(syntax.KindDef, p.spanFrom(open.Span), name, recv, params, body)
}

// parseMethodName reads the name in a def header: identifiers (including
// `name=`, `name?`), constants, keywords, `[]`, `[]=` and operators.
func (p *Parser) parseMethodName() (string, bool) {
	tok := p.peek()
	switch {
	case tok.Kind == token.Ident, tok.Kind == token.Const, tok.Kind.IsKeyword():
		p.advance()
		return tok.Text, true
	case tok.Kind == token.LBracket:
		p.advance()
		if _, ok := p.expect(token.RBracket, diag.SynExpectMethodName, "expected ']' in method name"); !ok {
			return "", false
		}
		if p.at(token.Assign) && !p.peek().SpaceBefore {
			p.advance()
			return "[]=", true
		}
		return "[]", true
	case isOperatorName(tok.Kind):
		p.advance()
		return tok.Text, true
	}
	p.err(diag.SynExpectMethodName, p.diagSpan(), "expected method name, found "+describe(tok))
	return "", false
}

// parseParamList parses parameters up to one of closers (not consumed).
// multiline lists (inside parentheses) may span lines.
func (p *Parser) parseParamList(multiline bool, closers ...token.Kind) syntax.NodeID {
	start := p.peek().Span
	params := p.tree.Add(syntax.KindParams, start.StartPoint(), "")
	if multiline {
		p.skipNewlines()
	}
	for !p.panicking && !p.atOr(closers...) && !p.at(token.EOF) {
		p.tree.Append(params, p.parseParam())
		if multiline {
			p.skipNewlines()
		}
		if !p.eat(token.Comma) {
			break
		}
		if multiline {
			p.skipNewlines()
		}
	}
	p.tree.SetSpan(params, p.spanFrom(start))
	return params
}

func (p *Parser) parseParam() syntax.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		p.declare(tok.Text)
		if p.eat(token.Assign) {
			def := p.parseTernary()
			return p.tree.Add(syntax.KindParamOpt, p.spanFrom(tok.Span), tok.Text, def)
		}
		return p.tree.Add(syntax.KindParamReq, tok.Span, tok.Text)
	case token.Label:
		p.advance()
		name := trimLabel(tok.Text)
		p.declare(name)
		if p.canStartExpr(p.peek()) && !p.at(token.Pipe) {
			def := p.parseTernary()
			return p.tree.Add(syntax.KindParamKey, p.spanFrom(tok.Span), name, def)
		}
		return p.tree.Add(syntax.KindParamKey, tok.Span, name)
	case token.Star, token.Pow, token.Amp:
		p.advance()
		name := ""
		switch {
		case p.at(token.Ident):
			name = p.advance().Text
			p.declare(name)
		case tok.Kind == token.Pow && p.at(token.KwNil):
			name = p.advance().Text
		}
		kind := syntax.KindParamRest
		switch tok.Kind {
		case token.Pow:
			kind = syntax.KindParamKeyRest
		case token.Amp:
			kind = syntax.KindParamBlock
		}
		return p.tree.Add(kind, p.spanFrom(tok.Span), name)
	case token.DotDot3:
		p.advance()
		return p.tree.Add(syntax.KindParamFwd, tok.Span, "")
	case token.LParen:
		// деструктуризация: |(a, b), c|
		p.advance()
		inner := p.parseParamList(true, token.RParen)
		p.expectClose(token.RParen, tok, diag.SynUnclosedParen)
		return p.tree.Add(syntax.KindParamReq, p.spanFrom(tok.Span), "", inner)
	}
	p.err(diag.SynBadParameter, p.diagSpan(), "unexpected "+describe(tok)+" in parameter list")
	return p.errorNode()
}

// parseBlockParams parses `|a, b = 1, *c; x|`. Block-local names after `;`
// are declared but not recorded.
func (p *Parser) parseBlockParams() syntax.NodeID {
	open := p.advance()
	p.noPipe++
	defer func() { p.noPipe-- }()

	params := p.parseParamList(false, token.Pipe, token.Semicolon)
	if p.eat(token.Semicolon) {
		for p.at(token.Ident) {
			p.declare(p.advance().Text)
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	p.expectClose(token.Pipe, open, diag.SynBadParameter)
	p.tree.SetSpan(params, p.spanFrom(open.Span))
	return params
}
