package parser

import (
	"strings"

	"tome/internal/diag"
	"tome/internal/source"
	"tome/internal/syntax"
	"tome/internal/token"
)

// parsePostfixExpr parses a primary followed by method calls, constant
// scoping and indexing.
func (p *Parser) parsePostfixExpr() syntax.NodeID {
	start := p.peek().Span
	node := p.parsePrimary()
	for !p.panicking {
		tok := p.peek()
		switch tok.Kind {
		case token.Dot, token.AmpDot:
			p.advance()
			p.skipNewlines()
			if p.at(token.LParen) {
				// recv.() == recv.call()
				args := p.parseParenArgs()
				block := p.parseBlockOpt(true)
				node = p.tree.Add(syntax.KindCall, p.spanFrom(start), "call", node, args, block)
				continue
			}
			name, ok := p.parseCallName()
			if !ok {
				return node
			}
			node = p.parseCallRest(start, node, name)
		case token.ColonColon:
			if tok.SpaceBefore && !p.spaceAfter(tok) {
				return node
			}
			p.advance()
			name := p.peek()
			switch name.Kind {
			case token.Const:
				p.advance()
				if p.at(token.LParen) && !p.peek().SpaceBefore {
					node = p.parseCallRest(start, node, name.Text)
					continue
				}
				node = p.tree.Add(syntax.KindConstPath, p.spanFrom(start), name.Text, node)
			case token.Ident:
				p.advance()
				node = p.parseCallRest(start, node, name.Text)
			default:
				p.err(diag.SynExpectConstant, p.diagSpan(), "expected constant after '::', found "+describe(name))
				return node
			}
		case token.LBracket:
			if tok.SpaceBefore {
				return node
			}
			open := p.advance()
			args := p.tree.Add(syntax.KindArgs, open.Span, "")
			p.nested(func() { p.parseArgList(args, open, token.RBracket) })
			p.expectClose(token.RBracket, open, diag.SynUnclosedBracket)
			p.tree.SetSpan(args, p.spanFrom(open.Span))
			node = p.tree.Add(syntax.KindIndex, p.spanFrom(start), "", node, args)
		default:
			return node
		}
	}
	return node
}

// parseCallName reads a method name after `.`: identifiers, constants,
// keywords and operator names.
func (p *Parser) parseCallName() (string, bool) {
	tok := p.peek()
	switch {
	case tok.Kind == token.Ident, tok.Kind == token.Const, tok.Kind.IsKeyword():
		p.advance()
		return tok.Text, true
	case isOperatorName(tok.Kind):
		p.advance()
		return tok.Text, true
	}
	p.err(diag.SynExpectMethodName, p.diagSpan(), "expected method name, found "+describe(tok))
	return "", false
}

func isOperatorName(k token.Kind) bool {
	switch k {
	case token.Plus, token.Minus, token.Star, token.Pow, token.Slash, token.Percent,
		token.EqEq, token.EqEqEq, token.Match, token.NotMatch, token.Bang, token.BangEq,
		token.Lt, token.LtEq, token.Gt, token.GtEq, token.Cmp, token.Shl, token.Shr,
		token.Amp, token.Pipe, token.Caret, token.Tilde:
		return true
	}
	return false
}

// parseCallRest parses the arguments and block of a call whose name was
// just consumed.
func (p *Parser) parseCallRest(start source.Span, recv syntax.NodeID, name string) syntax.NodeID {
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
	return p.tree.Add(syntax.KindCall, p.spanFrom(start), name, recv, args, block)
}

// parseBlockOpt parses an optional `{ }` or `do end` block. braces is false
// after command arguments, where `{` belongs to the last argument.
func (p *Parser) parseBlockOpt(braces bool) syntax.NodeID {
	switch {
	case braces && p.at(token.LBrace):
		return p.parseBlock()
	case p.at(token.KwDo) && p.noDo == 0 && p.cmdArgs == 0:
		return p.parseBlock()
	}
	return syntax.NoNodeID
}

func (p *Parser) parseBlock() syntax.NodeID {
	open := p.advance()
	p.pushScope(false)
	defer p.popScope()

	params := syntax.NoNodeID
	p.skipNewlines()
	switch {
	case p.at(token.OrOr):
		tok := p.advance()
		params = p.tree.Add(syntax.KindParams, tok.Span, "")
	case p.at(token.Pipe):
		params = p.parseBlockParams()
	}

	var body syntax.NodeID
	if open.Kind == token.LBrace {
		body = p.parseStatements(token.RBrace)
		p.expectClose(token.RBrace, open, diag.SynUnclosedBrace)
	} else {
		body = p.parseBodyStmt(open)
	}
	return p.tree.Add(syntax.KindBlock, p.spanFrom(open.Span), "", params, body)
}

func (p *Parser) parseParenArgs() syntax.NodeID {
	open := p.advance()
	args := p.tree.Add(syntax.KindArgs, open.Span, "")
	p.nested(func() { p.parseArgList(args, open, token.RParen) })
	p.expectClose(token.RParen, open, diag.SynUnclosedParen)
	p.tree.SetSpan(args, p.spanFrom(open.Span))
	return args
}

func (p *Parser) parseCommandArgs() syntax.NodeID {
	start := p.peek().Span
	args := p.tree.Add(syntax.KindArgs, start, "")
	p.cmdArgs++
	for !p.panicking {
		p.tree.Append(args, p.parseArgItem())
		if !p.eat(token.Comma) {
			break
		}
		p.skipNewlines()
	}
	p.cmdArgs--
	p.tree.SetSpan(args, p.spanFrom(start))
	return args
}

// parseArgList parses comma-separated items up to closer (not consumed)
// appending them to into. Newlines between items are insignificant, but a
// dedented line that starts a new construct means open was never closed.
func (p *Parser) parseArgList(into syntax.NodeID, open token.Token, closer token.Kind) {
	p.skipNewlines()
	for !p.panicking && !p.at(closer) && !p.unclosed(open) {
		p.tree.Append(into, p.parseArgItem())
		p.skipNewlines()
		if !p.eat(token.Comma) {
			break
		}
		p.skipNewlines()
	}
	if !p.panicking && !p.at(closer) {
		p.unclosed(open)
	}
}

// unclosed reports an unclosed bracket at its opener once the list runs
// into end of file or a dedented line. The parser stays at that line.
func (p *Parser) unclosed(open token.Token) bool {
	if !p.dedented(open) {
		return false
	}
	p.err(unclosedCode(open.Kind), open.Span, "unclosed '"+open.Text+"'")
	p.synced = true
	return true
}

func unclosedCode(k token.Kind) diag.Code {
	switch k {
	case token.LBracket:
		return diag.SynUnclosedBracket
	case token.LBrace:
		return diag.SynUnclosedBrace
	}
	return diag.SynUnclosedParen
}

// parseArgItem parses one call argument, array element or hash pair.
func (p *Parser) parseArgItem() syntax.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.Star, token.Pow, token.Amp:
		p.advance()
		value := syntax.NoNodeID
		if p.canStartExpr(p.peek()) && !p.atOr(token.Label, token.Pow) {
			value = p.parseArg()
		}
		kind := syntax.KindSplat
		switch tok.Kind {
		case token.Pow:
			kind = syntax.KindDSplat
		case token.Amp:
			kind = syntax.KindBlockPass
		}
		return p.tree.Add(kind, p.spanFrom(tok.Span), "", value)
	case token.Label:
		p.advance()
		key := p.tree.Add(syntax.KindLabel, tok.Span, trimLabel(tok.Text))
		p.skipNewlines()
		value := syntax.NoNodeID
		if p.canStartExpr(p.peek()) {
			value = p.parseArg()
		}
		return p.tree.Add(syntax.KindPair, p.spanFrom(tok.Span), "", key, value)
	case token.DotDot3:
		p.advance()
		if p.atOr(token.RParen, token.Comma) {
			return p.tree.Add(syntax.KindParamFwd, tok.Span, tok.Text)
		}
		hi := p.parseBinary(1)
		return p.tree.Add(syntax.KindRange, p.spanFrom(tok.Span), tok.Text, syntax.NoNodeID, hi)
	}

	value := p.parseArg()
	next := p.peek()
	switch {
	case next.Kind == token.FatArrow,
		next.Kind == token.Colon && !next.SpaceBefore && p.tree.Kind(value) == syntax.KindString:
		p.advance()
		p.skipNewlines()
		v := p.parseArg()
		return p.tree.Add(syntax.KindPair, p.spanFrom(tok.Span), "", value, v)
	}
	return value
}

func (p *Parser) parsePrimary() syntax.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		return p.tree.Add(syntax.KindInt, tok.Span, tok.Text)
	case token.FloatLit:
		p.advance()
		return p.tree.Add(syntax.KindFloat, tok.Span, tok.Text)
	case token.StringLit:
		return p.parseStrings()
	case token.XStringLit:
		p.advance()
		return p.tree.Add(syntax.KindXString, tok.Span, tok.Text)
	case token.SymbolLit:
		p.advance()
		return p.tree.Add(syntax.KindSymbol, tok.Span, tok.Text)
	case token.RegexpLit:
		p.advance()
		return p.tree.Add(syntax.KindRegexp, tok.Span, tok.Text)
	case token.HeredocLit:
		p.advance()
		return p.tree.Add(syntax.KindHeredoc, tok.Span, tok.Text)
	case token.WordsLit:
		p.advance()
		return p.tree.Add(syntax.KindWords, tok.Span, tok.Text)
	case token.CharLit:
		p.advance()
		return p.tree.Add(syntax.KindChar, tok.Span, tok.Text)

	case token.IVar:
		p.advance()
		return p.tree.Add(syntax.KindIVar, tok.Span, tok.Text)
	case token.CVar:
		p.advance()
		return p.tree.Add(syntax.KindCVar, tok.Span, tok.Text)
	case token.GVar:
		p.advance()
		return p.tree.Add(syntax.KindGVar, tok.Span, tok.Text)
	case token.Ident:
		return p.parseIdentifier()
	case token.Const:
		p.advance()
		if p.at(token.LParen) && !p.peek().SpaceBefore {
			return p.parseCallRest(tok.Span, syntax.NoNodeID, tok.Text)
		}
		return p.tree.Add(syntax.KindConst, tok.Span, tok.Text)
	case token.ColonColon:
		p.advance()
		name, ok := p.expect(token.Const, diag.SynExpectConstant, "expected constant after '::'")
		if !ok {
			return p.errorNode()
		}
		return p.tree.Add(syntax.KindConstPath, p.spanFrom(tok.Span), name.Text, syntax.NoNodeID)

	case token.KwSelf:
		p.advance()
		return p.tree.Add(syntax.KindSelf, tok.Span, "")
	case token.KwNil:
		p.advance()
		return p.tree.Add(syntax.KindNil, tok.Span, "")
	case token.KwTrue:
		p.advance()
		return p.tree.Add(syntax.KindTrue, tok.Span, "")
	case token.KwFalse:
		p.advance()
		return p.tree.Add(syntax.KindFalse, tok.Span, "")
	case token.KwFile:
		p.advance()
		return p.tree.Add(syntax.KindString, tok.Span, tok.Text)
	case token.KwLine:
		p.advance()
		return p.tree.Add(syntax.KindInt, tok.Span, tok.Text)
	case token.KwEncoding:
		p.advance()
		return p.tree.Add(syntax.KindConst, tok.Span, tok.Text)

	case token.LParen:
		return p.parseParen()
	case token.LBracket:
		open := p.advance()
		arr := p.tree.Add(syntax.KindArray, open.Span, "")
		p.nested(func() { p.parseArgList(arr, open, token.RBracket) })
		p.expectClose(token.RBracket, open, diag.SynUnclosedBracket)
		p.tree.SetSpan(arr, p.spanFrom(open.Span))
		return arr
	case token.LBrace:
		open := p.advance()
		hash := p.tree.Add(syntax.KindHash, open.Span, "")
		p.nested(func() { p.parseArgList(hash, open, token.RBrace) })
		p.expectClose(token.RBrace, open, diag.SynUnclosedBrace)
		p.tree.SetSpan(hash, p.spanFrom(open.Span))
		return hash
	case token.Arrow:
		return p.parseLambda()
	case token.DotDot, token.DotDot3:
		p.advance()
		hi := p.parseBinary(1)
		return p.tree.Add(syntax.KindRange, p.spanFrom(tok.Span), tok.Text, syntax.NoNodeID, hi)
	case token.KwNot:
		p.advance()
		operand := p.parseArg()
		return p.tree.Add(syntax.KindNot, p.spanFrom(tok.Span), tok.Text, operand)
	case token.KwDefined:
		return p.parseUnary()

	case token.KwModule:
		return p.parseModule()
	case token.KwClass:
		return p.parseClass()
	case token.KwDef:
		return p.parseDef()
	case token.KwIf:
		return p.parseIf(syntax.KindIf)
	case token.KwUnless:
		return p.parseIf(syntax.KindUnless)
	case token.KwWhile:
		return p.parseLoop(syntax.KindWhile)
	case token.KwUntil:
		return p.parseLoop(syntax.KindUntil)
	case token.KwFor:
		return p.parseFor()
	case token.KwCase:
		return p.parseCase()
	case token.KwBegin:
		return p.parseBegin()
	case token.KwReturn:
		return p.parseJump(syntax.KindReturn)
	case token.KwBreak:
		return p.parseJump(syntax.KindBreak)
	case token.KwNext:
		return p.parseJump(syntax.KindNext)
	case token.KwRedo:
		p.advance()
		return p.tree.Add(syntax.KindRedo, tok.Span, "")
	case token.KwRetry:
		p.advance()
		return p.tree.Add(syntax.KindRetry, tok.Span, "")
	case token.KwYield:
		return p.parseYield()
	case token.KwSuper:
		return p.parseSuper()
	case token.KwAlias:
		return p.parseAlias()
	case token.KwUndef:
		return p.parseUndef()
	case token.KwBEGIN, token.KwEND:
		return p.parseHook()

	case token.Invalid:
		// лексер уже сообщил об ошибке
		p.advance()
		p.panicking = true
		return p.tree.Add(syntax.KindError, tok.Span, "")
	}

	p.err(diag.SynExpectExpression, p.diagSpan(), "expected expression, found "+describe(tok))
	return p.errorNode()
}

// parseStrings merges adjacent string literals ("a" "b").
func (p *Parser) parseStrings() syntax.NodeID {
	first := p.advance()
	parts := []string{first.Text}
	for p.at(token.StringLit) && p.peek().SpaceBefore {
		parts = append(parts, p.advance().Text)
	}
	return p.tree.Add(syntax.KindString, p.spanFrom(first.Span), strings.Join(parts, " "))
}

// parseIdentifier resolves the local-variable versus method-call ambiguity.
func (p *Parser) parseIdentifier() syntax.NodeID {
	tok := p.advance()
	if p.at(token.LParen) && !p.peek().SpaceBefore {
		return p.parseCallRest(tok.Span, syntax.NoNodeID, tok.Text)
	}
	if p.isLocal(tok.Text) {
		return p.tree.Add(syntax.KindIdent, tok.Span, tok.Text)
	}
	if p.canStartCommandArg() {
		return p.parseCallRest(tok.Span, syntax.NoNodeID, tok.Text)
	}
	if block := p.parseBlockOpt(true); block.IsValid() {
		return p.tree.Add(syntax.KindCall, p.spanFrom(tok.Span), tok.Text, syntax.NoNodeID, syntax.NoNodeID, block)
	}
	return p.tree.Add(syntax.KindIdent, tok.Span, tok.Text)
}

func (p *Parser) parseParen() syntax.NodeID {
	open := p.advance()
	var body syntax.NodeID
	p.nested(func() { body = p.parseStatements(token.RParen) })
	p.expectClose(token.RParen, open, diag.SynUnclosedParen)
	return p.tree.Add(syntax.KindParen, p.spanFrom(open.Span), "", body)
}

func (p *Parser) parseLambda() syntax.NodeID {
	arrow := p.advance()
	p.pushScope(false)
	defer p.popScope()

	params := syntax.NoNodeID
	switch {
	case p.at(token.LParen):
		open := p.advance()
		params = p.parseParamList(true, token.RParen)
		p.expectClose(token.RParen, open, diag.SynUnclosedParen)
	case p.atOr(token.Ident, token.Star, token.Amp, token.Label):
		params = p.parseParamList(false, token.LBrace, token.KwDo)
	}

	var body syntax.NodeID
	switch {
	case p.at(token.LBrace):
		open := p.advance()
		body = p.parseStatements(token.RBrace)
		p.expectClose(token.RBrace, open, diag.SynUnclosedBrace)
	case p.at(token.KwDo):
		open := p.advance()
		body = p.parseBodyStmt(open)
	default:
		p.err(diag.SynUnexpectedToken, p.diagSpan(), "expected lambda body, found "+describe(p.peek()))
		body = p.tree.Add(syntax.KindBody, p.here(), "")
	}
	return p.tree.Add(syntax.KindLambda, p.spanFrom(arrow.Span), "", params, body)
}

// expectClose consumes the closing bracket of open. When the offending
// token is on a later line the error points at the opener.
func (p *Parser) expectClose(k token.Kind, open token.Token, code diag.Code) {
	if p.synced {
		return
	}
	if p.eat(k) {
		return
	}
	sp := p.diagSpan()
	if p.at(token.EOF) || !p.sameLine(open.Span.End, p.peek().Span.Start) {
		sp = open.Span
	}
	closer := map[token.Kind]string{token.RParen: ")", token.RBracket: "]", token.RBrace: "}", token.Pipe: "|"}[k]
	p.err(code, sp, "expected '"+closer+"' to close '"+open.Text+"', found "+describe(p.peek()))
}

// nested parses fn with the call-context flags reset, as inside brackets.
func (p *Parser) nested(fn func()) {
	noDo, noPipe, cmdArgs := p.noDo, p.noPipe, p.cmdArgs
	p.noDo, p.noPipe, p.cmdArgs = 0, 0, 0
	fn()
	p.noDo, p.noPipe, p.cmdArgs = noDo, noPipe, cmdArgs
}
