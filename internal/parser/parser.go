package parser

import (
	"slices"

	"tome/internal/diag"
	"tome/internal/lexer"
	"tome/internal/source"
	"tome/internal/syntax"
	"tome/internal/token"
)

type Options struct {
	// MaxErrors caps reported syntax errors; 0 means unbounded.
	MaxErrors uint
	Reporter  diag.Reporter
}

type Result struct {
	Root   syntax.NodeID
	Errors int
}

// Parser - состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	tree     *syntax.Tree
	file     *source.File
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики

	errors    int
	tooMany   bool
	panicking bool // an error was reported for the current statement
	// synced: after an error the parser already stands at the start of a
	// line that belongs to the enclosing statement list; no resync needed.
	synced bool

	noDo    int // >0 inside while/until/for headers: `do` belongs to the loop
	noPipe  int // >0 inside |block params|: `|` is a delimiter
	cmdArgs int // >0 inside command arguments: `do` belongs to the command

	scopes []scope
	taken  map[uint32]bool // tokens whose leading comments were already consumed
}

// ParseFile - входная точка для разбора одного файла.
// Требует уже созданный lexer над файлом tree.File.
func ParseFile(fs *source.FileSet, lx *lexer.Lexer, tree *syntax.Tree, opts Options) Result {
	p := &Parser{
		lx:    lx,
		tree:  tree,
		file:  fs.Get(tree.File),
		opts:  opts,
		taken: make(map[uint32]bool),
	}
	p.pushScope(true)
	body := p.parseStatements()
	p.popScope()

	sp := source.Span{File: tree.File}
	if p.file != nil {
		sp.End = uint32(len(p.file.Content))
	}
	root := p.tree.Add(syntax.KindFile, sp, "", body)
	return Result{Root: root, Errors: p.errors}
}

// parseStatements разбирает последовательность statement-ов до одного из
// терминаторов (не съедая его) или EOF. Каждый statement получает
// присоединённый doc-комментарий; прочие блоки комментариев становятся
// узлами KindComment.
func (p *Parser) parseStatements(terms ...token.Kind) syntax.NodeID {
	noDo, noPipe, cmdArgs := p.noDo, p.noPipe, p.cmdArgs
	p.noDo, p.noPipe, p.cmdArgs = 0, 0, 0
	defer func() { p.noDo, p.noPipe, p.cmdArgs = noDo, noPipe, cmdArgs }()

	start := p.peek().Span
	body := p.tree.Add(syntax.KindBody, start.StartPoint(), "")
	if p.synced {
		// тело сломанной конструкции: строки принадлежат внешнему списку
		return body
	}
	first := true
	for {
		p.skipSeparators()
		tok := p.peek()
		if tok.Kind == token.EOF || slices.Contains(terms, tok.Kind) {
			p.addFloatingComments(body, tok)
			break
		}
		if first {
			start = tok.Span
			first = false
		}

		doc := p.takeDocComment(body, tok)
		outer, inner := p.parseStatement()
		if outer.IsValid() {
			p.tree.SetDoc(outer, doc)
			if inner != outer {
				p.tree.SetDoc(inner, doc)
			}
			p.tree.Append(body, outer)
		}

		switch {
		case p.synced:
			p.synced, p.panicking = false, false
		case p.panicking:
			p.resync(terms)
			p.panicking = false
		case !p.atStatementEnd(terms):
			p.err(diag.SynUnexpectedToken, p.peek().Span, "unexpected "+describe(p.peek())+", expected end of statement")
			p.resync(terms)
			p.panicking = false
		}
		if next := p.peek(); next.Kind == tok.Kind && next.Span == tok.Span {
			// ничего не съели - гарантируем прогресс
			p.advance()
		}
	}
	if !first {
		p.tree.SetSpan(body, start.Cover(p.lastSpan))
	}
	return body
}

func (p *Parser) atStatementEnd(terms []token.Kind) bool {
	k := p.peek().Kind
	return k == token.Newline || k == token.Semicolon || k == token.EOF || slices.Contains(terms, k)
}

// resync - восстановление после ошибки: прокручиваем до конца statement
// (newline или ';' на текущей вложенности, съедается) либо до терминатора
// охватывающей конструкции (не съедается).
func (p *Parser) resync(terms []token.Kind) {
	depth := 0
	exprStart := false
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.EOF:
			return
		case token.Newline, token.Semicolon:
			p.advance()
			if depth == 0 {
				return
			}
			exprStart = true
			continue
		case token.KwEnd, token.RBrace, token.RParen, token.RBracket:
			if depth == 0 && slices.Contains(terms, tok.Kind) {
				return
			}
			if depth > 0 {
				depth--
			}
		case token.KwClass, token.KwModule, token.KwDef, token.KwBegin, token.KwCase, token.KwDo,
			token.LBrace, token.LParen, token.LBracket:
			depth++
		case token.KwIf, token.KwUnless, token.KwWhile, token.KwUntil:
			// модификатор `x if y` не открывает блок
			if exprStart {
				depth++
			}
		case token.KwFor:
			depth++
		default:
			if depth == 0 && slices.Contains(terms, tok.Kind) {
				return
			}
		}
		exprStart = !tok.IsValueEnd()
		p.advance()
	}
}

// recoverHeader skips the rest of a broken construct header (class name,
// condition, parameters) so the body is still parsed.
func (p *Parser) recoverHeader() {
	if !p.panicking || p.synced {
		return
	}
	depth := 0
	for {
		switch p.peek().Kind {
		case token.EOF:
			p.panicking = false
			return
		case token.Newline, token.Semicolon:
			if depth == 0 {
				p.panicking = false
				return
			}
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth > 0 {
				depth--
			}
		}
		p.advance()
	}
}

// expectTerm requires the end of a construct header.
func (p *Parser) expectTerm() {
	if !p.panicking && !p.atOr(token.Newline, token.Semicolon, token.EOF) {
		p.err(diag.SynUnexpectedToken, p.peek().Span, "unexpected "+describe(p.peek())+", expected newline or ';'")
	}
	p.recoverHeader()
}

// finishHeader ends a module, class or def header and reports whether a
// body follows. After an error in the header the rest of its line is
// dropped. An indented next line is still parsed as the body; otherwise the
// construct has none, and parsing resumes at the first line indented at or
// left of the opener so the siblings after it survive.
func (p *Parser) finishHeader(open token.Token) bool {
	if !p.panicking && !p.atOr(token.Newline, token.Semicolon, token.EOF) {
		p.err(diag.SynUnexpectedToken, p.peek().Span, "unexpected "+describe(p.peek())+", expected newline or ';'")
	}
	if !p.panicking {
		return true
	}
	if !p.synced {
		indent := p.indentOf(open.Span.Start)
		for !p.atOr(token.Newline, token.EOF) {
			p.advance()
		}
		p.skipNewlines()
		if ind, first := p.lineStart(p.peek()); first && ind > indent {
			p.panicking = false
			return true
		}
	}
	p.takeAlignedEnd(open)
	p.synced = true
	return false
}

// takeAlignedEnd consumes an `end` that starts a line at the indentation of
// open's line.
func (p *Parser) takeAlignedEnd(open token.Token) {
	if !p.at(token.KwEnd) {
		return
	}
	if ind, first := p.lineStart(p.peek()); first && ind == p.indentOf(open.Span.Start) {
		p.advance()
	}
}

// dedented reports whether the next token starts a line indented at or left
// of the line containing open and cannot continue an expression there.
func (p *Parser) dedented(open token.Token) bool {
	tok := p.peek()
	switch tok.Kind {
	case token.EOF:
		return true
	case token.KwClass, token.KwModule, token.KwDef, token.KwEnd,
		token.KwElse, token.KwElsif, token.KwRescue, token.KwEnsure, token.KwWhen:
	default:
		return false
	}
	ind, first := p.lineStart(tok)
	return first && ind <= p.indentOf(open.Span.Start)
}

// expectEnd consumes the `end` closing the construct opened by open.
// Missing `end` at EOF is reported once per construct, at its opener.
func (p *Parser) expectEnd(open token.Token) {
	if p.synced {
		if p.at(token.EOF) {
			p.report(diag.SynMissingEnd, diag.SevError, open.Span, "missing 'end' for '"+open.Text+"'")
			return
		}
		p.takeAlignedEnd(open)
		return
	}
	if p.at(token.KwEnd) {
		p.advance()
		return
	}
	if p.at(token.EOF) {
		p.report(diag.SynMissingEnd, diag.SevError, open.Span, "missing 'end' for '"+open.Text+"'")
		return
	}
	p.err(diag.SynMissingEnd, p.peek().Span, "expected 'end' for '"+open.Text+"', found "+describe(p.peek()))
}
