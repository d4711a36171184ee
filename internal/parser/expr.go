package parser

import (
	"tome/internal/diag"
	"tome/internal/source"
	"tome/internal/syntax"
	"tome/internal/token"
)

// parseStatement parses one statement with trailing modifiers. inner is the
// statement before any modifier wrapping, so both can carry the doc comment.
func (p *Parser) parseStatement() (outer, inner syntax.NodeID) {
	start := p.peek().Span
	inner = p.parseExprStmt()
	outer = inner
	for !p.panicking {
		var kind syntax.Kind
		switch p.peek().Kind {
		case token.KwIf:
			kind = syntax.KindIf
		case token.KwUnless:
			kind = syntax.KindUnless
		case token.KwWhile:
			kind = syntax.KindWhile
		case token.KwUntil:
			kind = syntax.KindUntil
		case token.KwRescue:
			kind = syntax.KindRescue
		default:
			return outer, inner
		}
		mod := p.advance()
		arg := p.parseExprStmt()
		body := p.tree.Add(syntax.KindBody, p.tree.Node(outer).Span, "", outer)
		sp := p.spanFrom(start)
		switch kind {
		case syntax.KindIf, syntax.KindUnless:
			outer = p.tree.Add(kind, sp, "", arg, body, syntax.NoNodeID)
		case syntax.KindWhile, syntax.KindUntil:
			outer = p.tree.Add(kind, sp, "", arg, body)
		case syntax.KindRescue:
			rbody := p.tree.Add(syntax.KindBody, p.tree.Node(arg).Span, "", arg)
			clause := p.tree.Add(syntax.KindRescue, mod.Span.Cover(p.lastSpan), "", syntax.NoNodeID, syntax.NoNodeID, rbody)
			outer = p.tree.Add(syntax.KindBegin, sp, "", body, clause)
		}
	}
	return outer, inner
}

// parseExprStmt: `and` / `or`, the lowest precedence level.
func (p *Parser) parseExprStmt() syntax.NodeID {
	start := p.peek().Span
	left := p.parseNotExpr()
	for !p.panicking && p.atOr(token.KwAnd, token.KwOr) {
		op := p.advance()
		p.skipNewlines()
		right := p.parseNotExpr()
		kind := syntax.KindAnd
		if op.Kind == token.KwOr {
			kind = syntax.KindOr
		}
		left = p.tree.Add(kind, p.spanFrom(start), op.Text, left, right)
	}
	return left
}

func (p *Parser) parseNotExpr() syntax.NodeID {
	if p.at(token.KwNot) {
		op := p.advance()
		operand := p.parseNotExpr()
		return p.tree.Add(syntax.KindNot, p.spanFrom(op.Span), op.Text, operand)
	}
	return p.parseStmtExpr()
}

// parseStmtExpr handles statement-only forms: multiple assignment and
// `a = 1, 2`.
func (p *Parser) parseStmtExpr() syntax.NodeID {
	start := p.peek().Span
	if p.at(token.Star) {
		return p.parseMultiAssign(start, syntax.NoNodeID)
	}
	first := p.parseArg()
	if p.panicking || !p.at(token.Comma) {
		return first
	}
	switch {
	case p.assignable(first):
		return p.parseMultiAssign(start, first)
	case p.tree.Kind(first) == syntax.KindAssign:
		// a = 1, 2
		values := p.tree.Add(syntax.KindArray, p.tree.Node(p.tree.Child(first, 1)).Span, "", p.tree.Child(first, 1))
		for p.eat(token.Comma) {
			p.skipNewlines()
			p.tree.Append(values, p.parseArgItem())
		}
		p.tree.SetSpan(values, p.spanFrom(p.tree.Node(values).Span))
		p.tree.Node(first).Children[1] = values
		p.tree.SetSpan(first, p.spanFrom(start))
	}
	return first
}

func (p *Parser) parseMultiAssign(start source.Span, first syntax.NodeID) syntax.NodeID {
	mlhs := p.tree.Add(syntax.KindMlhs, start, "")
	if first.IsValid() {
		p.declareTarget(first)
		p.tree.Append(mlhs, first)
	} else {
		p.tree.Append(mlhs, p.parseMlhsItem())
	}
	for !p.panicking && p.eat(token.Comma) {
		if p.at(token.Assign) {
			break // trailing comma: `a, = list`
		}
		p.tree.Append(mlhs, p.parseMlhsItem())
	}
	p.tree.SetSpan(mlhs, p.spanFrom(start))
	if p.panicking {
		return mlhs
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after assignment targets"); !ok {
		return mlhs
	}
	p.skipNewlines()
	vstart := p.peek().Span
	value := p.parseArgItem()
	if p.at(token.Comma) || p.tree.Kind(value) == syntax.KindSplat {
		arr := p.tree.Add(syntax.KindArray, vstart, "", value)
		for p.eat(token.Comma) {
			p.skipNewlines()
			p.tree.Append(arr, p.parseArgItem())
		}
		p.tree.SetSpan(arr, p.spanFrom(vstart))
		value = arr
	}
	return p.tree.Add(syntax.KindMultiAssign, p.spanFrom(start), "", mlhs, value)
}

func (p *Parser) parseMlhsItem() syntax.NodeID {
	start := p.peek().Span
	switch p.peek().Kind {
	case token.Star:
		p.advance()
		target := syntax.NoNodeID
		if !p.atOr(token.Comma, token.Assign, token.RParen, token.KwIn) {
			target = p.parseMlhsItem()
		}
		return p.tree.Add(syntax.KindSplat, p.spanFrom(start), "", target)
	case token.LParen:
		open := p.advance()
		nested := p.tree.Add(syntax.KindMlhs, start, "")
		for !p.panicking {
			p.tree.Append(nested, p.parseMlhsItem())
			if !p.eat(token.Comma) {
				break
			}
		}
		p.expectClose(token.RParen, open, diag.SynUnclosedParen)
		p.tree.SetSpan(nested, p.spanFrom(start))
		return nested
	}
	target := p.parsePostfixExpr()
	if !p.assignable(target) && !p.panicking {
		p.err(diag.SynUnexpectedToken, p.tree.Node(target).Span, "cannot assign to "+p.tree.Kind(target).String())
	}
	p.declareTarget(target)
	return target
}

// parseArg parses an argument-level expression: assignment and below.
func (p *Parser) parseArg() syntax.NodeID {
	start := p.peek().Span
	left := p.parseTernary()
	if p.panicking {
		return left
	}
	switch p.peek().Kind {
	case token.Assign:
		if !p.assignable(left) {
			return left
		}
		p.advance()
		p.skipNewlines()
		p.declareTarget(left)
		var right syntax.NodeID
		if p.at(token.Star) {
			right = p.parseArgItem()
		} else {
			right = p.parseArg()
		}
		return p.tree.Add(syntax.KindAssign, p.spanFrom(start), "", left, right)
	case token.OpAssign:
		if !p.assignable(left) {
			return left
		}
		op := p.advance()
		p.skipNewlines()
		p.declareTarget(left)
		right := p.parseArg()
		return p.tree.Add(syntax.KindOpAssign, p.spanFrom(start), op.Text, left, right)
	}
	return left
}

func (p *Parser) assignable(id syntax.NodeID) bool {
	switch p.tree.Kind(id) {
	case syntax.KindIdent, syntax.KindIVar, syntax.KindCVar, syntax.KindGVar,
		syntax.KindConst, syntax.KindConstPath, syntax.KindIndex:
		return true
	case syntax.KindCall:
		// setter: recv.name
		return p.tree.Child(id, 0).IsValid() && !p.tree.Child(id, 1).IsValid() && !p.tree.Child(id, 2).IsValid()
	}
	return false
}

func (p *Parser) declareTarget(id syntax.NodeID) {
	if p.tree.Kind(id) == syntax.KindIdent {
		p.declare(p.tree.Text(id))
	}
}

func (p *Parser) parseTernary() syntax.NodeID {
	start := p.peek().Span
	cond := p.parseRange()
	if p.panicking || !p.at(token.Question) {
		return cond
	}
	p.advance()
	p.skipNewlines()
	var then syntax.NodeID
	if p.at(token.Label) {
		// `c ? a: b` лексится как метка
		tok := p.advance()
		then = p.tree.Add(syntax.KindIdent, tok.Span, trimLabel(tok.Text))
	} else {
		then = p.parseTernary()
		p.skipNewlines()
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in conditional expression"); !ok {
			return p.tree.Add(syntax.KindTernary, p.spanFrom(start), "", cond, then, syntax.NoNodeID)
		}
	}
	p.skipNewlines()
	els := p.parseTernary()
	return p.tree.Add(syntax.KindTernary, p.spanFrom(start), "", cond, then, els)
}

func (p *Parser) parseRange() syntax.NodeID {
	start := p.peek().Span
	lo := p.parseBinary(1)
	if p.panicking || !p.atOr(token.DotDot, token.DotDot3) {
		return lo
	}
	op := p.advance()
	hi := syntax.NoNodeID
	if p.canStartExpr(p.peek()) {
		hi = p.parseBinary(1)
	}
	return p.tree.Add(syntax.KindRange, p.spanFrom(start), op.Text, lo, hi)
}

// binaryPrec returns the binding power of a binary operator, 0 if k is not one.
func binaryPrec(k token.Kind) (prec int, rightAssoc bool) {
	switch k {
	case token.OrOr:
		return 1, false
	case token.AndAnd:
		return 2, false
	case token.EqEq, token.EqEqEq, token.BangEq, token.Match, token.NotMatch, token.Cmp:
		return 4, false
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return 5, false
	case token.Pipe, token.Caret:
		return 6, false
	case token.Amp:
		return 7, false
	case token.Shl, token.Shr:
		return 8, false
	case token.Plus, token.Minus:
		return 9, false
	case token.Star, token.Slash, token.Percent:
		return 10, false
	case token.Pow:
		return 12, true
	}
	return 0, false
}

// parseBinary - precedence climbing над бинарными операторами.
func (p *Parser) parseBinary(minPrec int) syntax.NodeID {
	start := p.peek().Span
	left := p.parseUnary()
	for !p.panicking {
		op := p.peek()
		prec, right := binaryPrec(op.Kind)
		if prec == 0 || prec < minPrec {
			break
		}
		if op.Kind == token.Pipe && p.noPipe > 0 {
			break
		}
		p.advance()
		p.skipNewlines()
		next := prec + 1
		if right {
			next = prec
		}
		rhs := p.parseBinary(next)
		kind := syntax.KindBinary
		switch op.Kind {
		case token.AndAnd:
			kind = syntax.KindAnd
		case token.OrOr:
			kind = syntax.KindOr
		}
		left = p.tree.Add(kind, p.spanFrom(start), op.Text, left, rhs)
	}
	return left
}

func (p *Parser) parseUnary() syntax.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.Bang:
		p.advance()
		operand := p.parseUnary()
		return p.tree.Add(syntax.KindNot, p.spanFrom(tok.Span), tok.Text, operand)
	case token.Minus, token.Plus, token.Tilde:
		p.advance()
		operand := p.parseUnary()
		return p.tree.Add(syntax.KindUnary, p.spanFrom(tok.Span), tok.Text, operand)
	case token.KwDefined:
		p.advance()
		operand := p.parseUnary()
		return p.tree.Add(syntax.KindDefined, p.spanFrom(tok.Span), "", operand)
	}
	return p.parsePostfixExpr()
}

// canStartExpr reports whether tok may begin an expression.
func (p *Parser) canStartExpr(tok token.Token) bool {
	if tok.Kind.IsLiteral() {
		return true
	}
	switch tok.Kind {
	case token.Ident, token.Const, token.IVar, token.CVar, token.GVar, token.Label,
		token.KwSelf, token.KwNil, token.KwTrue, token.KwFalse, token.KwFile, token.KwLine, token.KwEncoding,
		token.KwDef, token.KwNot, token.KwDefined, token.KwSuper, token.KwYield, token.KwCase,
		token.KwBegin, token.LBracket, token.LParen, token.LBrace, token.Arrow, token.Bang, token.Tilde,
		token.Minus, token.Plus, token.Star, token.Pow, token.Amp, token.ColonColon,
		token.DotDot, token.DotDot3:
		return true
	}
	return false
}

// canStartCommandArg decides whether the token after a bare method name
// starts an argument of a parenthesis-less call (`puts x`, `attr_reader :a`).
func (p *Parser) canStartCommandArg() bool {
	tok := p.peek()
	if !tok.SpaceBefore {
		return false
	}
	if tok.Kind.IsLiteral() {
		return true
	}
	switch tok.Kind {
	case token.Ident, token.Const, token.IVar, token.CVar, token.GVar, token.Label,
		token.KwSelf, token.KwNil, token.KwTrue, token.KwFalse, token.KwFile, token.KwLine, token.KwEncoding,
		token.KwDef, token.KwNot, token.KwDefined, token.KwSuper, token.KwYield, token.KwCase,
		token.LBracket, token.LParen, token.Arrow, token.Bang:
		return true
	case token.Minus, token.Star, token.Pow, token.Amp, token.ColonColon:
		// `foo -1`, `foo *args`, `foo &blk`, `foo ::Bar`; with a space after it is a binary operator
		return !p.spaceAfter(tok)
	}
	return false
}

func trimLabel(s string) string {
	if n := len(s); n > 0 && s[n-1] == ':' {
		return s[:n-1]
	}
	return s
}
