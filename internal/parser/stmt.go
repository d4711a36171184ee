package parser

import (
	"tome/internal/diag"
	"tome/internal/syntax"
	"tome/internal/token"
)

var bodyTerms = []token.Kind{token.KwEnd, token.KwRescue, token.KwElse, token.KwEnsure}

func (p *Parser) parseModule() syntax.NodeID {
	open := p.advance()
	name := p.parseCPath()
	body := p.parseNamespaceBody(open)
	return p.tree.Add(syntax.KindModule, p.spanFrom(open.Span), "", name, body)
}

// parseNamespaceBody parses the body of a module or class whose header was
// just read; a broken header without a body yields an empty one.
func (p *Parser) parseNamespaceBody(open token.Token) syntax.NodeID {
	if !p.finishHeader(open) {
		return p.tree.Add(syntax.KindBody, p.here(), "")
	}
	p.pushScope(true)
	defer p.popScope()
	return p.parseBodyStmt(open)
}

func (p *Parser) parseClass() syntax.NodeID {
	open := p.advance()
	if p.at(token.Shl) {
		// class << self
		p.advance()
		target := p.parseArg()
		body := p.parseNamespaceBody(open)
		return p.tree.Add(syntax.KindSClass, p.spanFrom(open.Span), "", target, body)
	}

	name := p.parseCPath()
	super := syntax.NoNodeID
	if !p.panicking && p.eat(token.Lt) {
		super = p.parseArg()
	}
	body := p.parseNamespaceBody(open)
	return p.tree.Add(syntax.KindClass, p.spanFrom(open.Span), "", name, super, body)
}

// parseCPath parses a class/module name: `Foo`, `::Foo`, `Foo::Bar`, or a
// dynamic scope such as `self::Foo`.
func (p *Parser) parseCPath() syntax.NodeID {
	tok := p.peek()
	var node syntax.NodeID
	switch tok.Kind {
	case token.Const:
		p.advance()
		node = p.tree.Add(syntax.KindConst, tok.Span, tok.Text)
	case token.ColonColon:
		p.advance()
		name, ok := p.expect(token.Const, diag.SynExpectConstant, "expected constant name")
		if !ok {
			return p.errorNode()
		}
		node = p.tree.Add(syntax.KindConstPath, p.spanFrom(tok.Span), name.Text, syntax.NoNodeID)
	case token.KwSelf, token.Ident, token.IVar:
		node = p.parsePrimary()
		if !p.at(token.ColonColon) {
			p.err(diag.SynExpectConstant, p.diagSpan(), "expected constant name, found "+describe(tok))
			return node
		}
	default:
		p.err(diag.SynExpectConstant, p.diagSpan(), "expected constant name, found "+describe(tok))
		return p.errorNode()
	}
	for !p.panicking && p.at(token.ColonColon) {
		p.advance()
		name, ok := p.expect(token.Const, diag.SynExpectConstant, "expected constant name after '::'")
		if !ok {
			break
		}
		node = p.tree.Add(syntax.KindConstPath, p.spanFrom(tok.Span), name.Text, node)
	}
	return node
}

// parseBodyStmt parses statements with optional rescue/else/ensure clauses
// and the closing `end` of open. With clauses the result is Body{Begin}.
func (p *Parser) parseBodyStmt(open token.Token) syntax.NodeID {
	body := p.parseStatements(bodyTerms...)
	if p.atOr(token.KwRescue, token.KwElse, token.KwEnsure) {
		beg := p.parseRescueClauses(body)
		body = p.tree.Add(syntax.KindBody, p.tree.Node(beg).Span, "", beg)
	}
	p.expectEnd(open)
	return body
}

func (p *Parser) parseBegin() syntax.NodeID {
	open := p.advance()
	body := p.parseStatements(bodyTerms...)
	beg := p.parseRescueClauses(body)
	p.expectEnd(open)
	p.tree.SetSpan(beg, p.spanFrom(open.Span))
	return beg
}

// parseRescueClauses builds Begin{body, Rescue*, Else?, Ensure?}.
func (p *Parser) parseRescueClauses(body syntax.NodeID) syntax.NodeID {
	start := p.tree.Node(body).Span
	beg := p.tree.Add(syntax.KindBegin, start, "", body)
	for p.at(token.KwRescue) {
		p.tree.Append(beg, p.parseRescue())
	}
	if p.at(token.KwElse) {
		tok := p.advance()
		els := p.parseStatements(token.KwEnd, token.KwEnsure)
		p.tree.Append(beg, p.tree.Add(syntax.KindElse, p.spanFrom(tok.Span), "", els))
	}
	if p.at(token.KwEnsure) {
		tok := p.advance()
		ens := p.parseStatements(token.KwEnd)
		p.tree.Append(beg, p.tree.Add(syntax.KindEnsure, p.spanFrom(tok.Span), "", ens))
	}
	p.tree.SetSpan(beg, p.spanFrom(start))
	return beg
}

func (p *Parser) parseRescue() syntax.NodeID {
	tok := p.advance()
	list, target := syntax.NoNodeID, syntax.NoNodeID
	if !p.atOr(token.Newline, token.Semicolon, token.KwThen, token.FatArrow, token.EOF) {
		start := p.peek().Span
		list = p.tree.Add(syntax.KindArgs, start, "")
		for !p.panicking {
			// не parseArgItem: `=>` здесь вводит переменную, а не пару хеша
			var item syntax.NodeID
			if p.at(token.Star) {
				item = p.parseArgItem()
			} else {
				item = p.parseArg()
			}
			p.tree.Append(list, item)
			if !p.eat(token.Comma) {
				break
			}
			p.skipNewlines()
		}
		p.tree.SetSpan(list, p.spanFrom(start))
	}
	if !p.panicking && p.eat(token.FatArrow) {
		target = p.parsePostfixExpr()
		p.declareTarget(target)
	}
	p.thenOrTerm()
	body := p.parseStatements(bodyTerms...)
	return p.tree.Add(syntax.KindRescue, p.spanFrom(tok.Span), "", list, target, body)
}

// thenOrTerm accepts `then` or a statement terminator after a header.
func (p *Parser) thenOrTerm() {
	if p.eat(token.KwThen) {
		return
	}
	p.expectTerm()
}

func (p *Parser) parseIf(kind syntax.Kind) syntax.NodeID {
	open := p.advance()
	node := p.parseIfTail(open, kind)
	p.expectEnd(open)
	p.tree.SetSpan(node, p.spanFrom(open.Span))
	return node
}

// parseIfTail parses condition, branches and the elsif chain; the shared
// `end` is left to the caller.
func (p *Parser) parseIfTail(open token.Token, kind syntax.Kind) syntax.NodeID {
	cond := p.parseExprStmt()
	p.thenOrTerm()
	then := p.parseStatements(token.KwElsif, token.KwElse, token.KwEnd)
	els := syntax.NoNodeID
	switch {
	case kind == syntax.KindIf && p.at(token.KwElsif):
		tok := p.advance()
		els = p.parseIfTail(tok, syntax.KindIf)
	case p.at(token.KwElse):
		p.advance()
		els = p.parseStatements(token.KwEnd)
	}
	return p.tree.Add(kind, p.spanFrom(open.Span), "", cond, then, els)
}

func (p *Parser) parseLoop(kind syntax.Kind) syntax.NodeID {
	open := p.advance()
	p.noDo++
	cond := p.parseExprStmt()
	p.noDo--
	if !p.eat(token.KwDo) {
		p.expectTerm()
	}
	body := p.parseStatements(token.KwEnd)
	p.expectEnd(open)
	return p.tree.Add(kind, p.spanFrom(open.Span), "", cond, body)
}

func (p *Parser) parseFor() syntax.NodeID {
	open := p.advance()
	start := p.peek().Span
	target := p.parseMlhsItem()
	if p.at(token.Comma) {
		mlhs := p.tree.Add(syntax.KindMlhs, start, "", target)
		for !p.panicking && p.eat(token.Comma) {
			p.tree.Append(mlhs, p.parseMlhsItem())
		}
		p.tree.SetSpan(mlhs, p.spanFrom(start))
		target = mlhs
	}
	iter := syntax.NoNodeID
	if _, ok := p.expect(token.KwIn, diag.SynUnexpectedToken, "expected 'in' after for variable"); ok {
		p.noDo++
		iter = p.parseExprStmt()
		p.noDo--
	}
	if !p.eat(token.KwDo) {
		p.expectTerm()
	}
	body := p.parseStatements(token.KwEnd)
	p.expectEnd(open)
	return p.tree.Add(syntax.KindFor, p.spanFrom(open.Span), "", target, iter, body)
}

func (p *Parser) parseCase() syntax.NodeID {
	open := p.advance()
	subject := syntax.NoNodeID
	if !p.atOr(token.Newline, token.Semicolon) {
		subject = p.parseExprStmt()
	}
	p.expectTerm()
	p.skipSeparators()

	node := p.tree.Add(syntax.KindCase, open.Span, "", subject)
	clauses := 0
	for p.atOr(token.KwWhen, token.KwIn) {
		clauses++
		tok := p.advance()
		var test syntax.NodeID
		if tok.Kind == token.KwWhen {
			start := p.peek().Span
			test = p.tree.Add(syntax.KindArgs, start, "")
			for !p.panicking {
				p.tree.Append(test, p.parseArgItem())
				if !p.eat(token.Comma) {
					break
				}
				p.skipNewlines()
			}
			p.tree.SetSpan(test, p.spanFrom(start))
		} else {
			test = p.skipPattern()
		}
		p.thenOrTerm()
		body := p.parseStatements(token.KwWhen, token.KwIn, token.KwElse, token.KwEnd)
		kind := syntax.KindWhen
		if tok.Kind == token.KwIn {
			kind = syntax.KindIn
		}
		p.tree.Append(node, p.tree.Add(kind, p.spanFrom(tok.Span), "", test, body))
	}
	if clauses == 0 {
		p.err(diag.SynUnexpectedToken, p.diagSpan(), "expected 'when' or 'in', found "+describe(p.peek()))
	}
	if p.at(token.KwElse) {
		tok := p.advance()
		els := p.parseStatements(token.KwEnd)
		p.tree.Append(node, p.tree.Add(syntax.KindElse, p.spanFrom(tok.Span), "", els))
	}
	p.expectEnd(open)
	p.tree.SetSpan(node, p.spanFrom(open.Span))
	return node
}

// skipPattern consumes a pattern-matching `in` pattern (with optional guard)
// without analysing it; patterns never declare documentable objects.
func (p *Parser) skipPattern() syntax.NodeID {
	start := p.peek().Span
	depth := 0
loop:
	for {
		switch p.peek().Kind {
		case token.EOF:
			break loop
		case token.Newline, token.Semicolon, token.KwThen:
			if depth == 0 {
				break loop
			}
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth > 0 {
				depth--
			}
		case token.Ident:
			// переменные, связанные паттерном
			p.declare(p.peek().Text)
		}
		p.advance()
	}
	return p.tree.Add(syntax.KindArgs, p.spanFrom(start), "")
}

// parseJump parses return/break/next with an optional value.
func (p *Parser) parseJump(kind syntax.Kind) syntax.NodeID {
	tok := p.advance()
	value := syntax.NoNodeID
	if p.canStartExpr(p.peek()) {
		start := p.peek().Span
		value = p.parseArgItem()
		if p.at(token.Comma) {
			arr := p.tree.Add(syntax.KindArray, start, "", value)
			for p.eat(token.Comma) {
				p.skipNewlines()
				p.tree.Append(arr, p.parseArgItem())
			}
			p.tree.SetSpan(arr, p.spanFrom(start))
			value = arr
		}
	}
	return p.tree.Add(kind, p.spanFrom(tok.Span), "", value)
}

func (p *Parser) parseYield() syntax.NodeID {
	tok := p.advance()
	args := syntax.NoNodeID
	switch {
	case p.at(token.LParen) && !p.peek().SpaceBefore:
		args = p.parseParenArgs()
	case p.canStartCommandArg():
		args = p.parseCommandArgs()
	}
	return p.tree.Add(syntax.KindYield, p.spanFrom(tok.Span), "", args)
}

// parseSuper: bare `super` (zsuper) leaves the args slot empty.
func (p *Parser) parseSuper() syntax.NodeID {
	tok := p.advance()
	args := syntax.NoNodeID
	parens := false
	switch {
	case p.at(token.LParen) && !p.peek().SpaceBefore:
		args = p.parseParenArgs()
		parens = true
	case p.canStartCommandArg():
		args = p.parseCommandArgs()
	}
	block := p.parseBlockOpt(parens || !args.IsValid())
	return p.tree.Add(syntax.KindSuper, p.spanFrom(tok.Span), "", args, block)
}

func (p *Parser) parseAlias() syntax.NodeID {
	tok := p.advance()
	newName := p.parseAliasName()
	oldName := syntax.NoNodeID
	if !p.panicking {
		oldName = p.parseAliasName()
	}
	return p.tree.Add(syntax.KindAlias, p.spanFrom(tok.Span), "", newName, oldName)
}

func (p *Parser) parseUndef() syntax.NodeID {
	tok := p.advance()
	node := p.tree.Add(syntax.KindUndef, tok.Span, "")
	for !p.panicking {
		p.tree.Append(node, p.parseAliasName())
		if !p.eat(token.Comma) {
			break
		}
		p.skipNewlines()
	}
	p.tree.SetSpan(node, p.spanFrom(tok.Span))
	return node
}

// parseAliasName reads a method name operand of alias/undef: `foo`, `:foo`,
// `$gvar`, an operator or a keyword.
func (p *Parser) parseAliasName() syntax.NodeID {
	tok := p.peek()
	switch {
	case tok.Kind == token.SymbolLit:
		p.advance()
		return p.tree.Add(syntax.KindSymbol, tok.Span, tok.Text)
	case tok.Kind == token.GVar:
		p.advance()
		return p.tree.Add(syntax.KindGVar, tok.Span, tok.Text)
	case tok.Kind == token.Ident, tok.Kind == token.Const, tok.Kind.IsKeyword(), isOperatorName(tok.Kind):
		p.advance()
		return p.tree.Add(syntax.KindIdent, tok.Span, tok.Text)
	case tok.Kind == token.Label:
		p.advance()
		return p.tree.Add(syntax.KindIdent, tok.Span, trimLabel(tok.Text))
	}
	p.err(diag.SynExpectMethodName, p.diagSpan(), "expected method name, found "+describe(tok))
	return p.errorNode()
}

// parseHook parses `BEGIN { }` / `END { }` as a call with a block.
func (p *Parser) parseHook() syntax.NodeID {
	tok := p.advance()
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after "+tok.Text)
	if !ok {
		return p.errorNode()
	}
	body := p.parseStatements(token.RBrace)
	p.expectClose(token.RBrace, open, diag.SynUnclosedBrace)
	block := p.tree.Add(syntax.KindBlock, p.spanFrom(open.Span), "", syntax.NoNodeID, body)
	return p.tree.Add(syntax.KindCall, p.spanFrom(tok.Span), tok.Text, syntax.NoNodeID, syntax.NoNodeID, block)
}
