package tags

import (
	"errors"
	"strings"

	"tome/internal/diag"
)

// Parse splits a comment block (markers already stripped) into free text,
// tags and directives. A line starting with `@name` at column 0 opens a
// tag; indented lines continue it until the next tag or an unindented line.
// Unknown tag names are kept as free-text tags and reported in Problems.
func (l *Library) Parse(text string) Docstring {
	var doc Docstring
	l.parseInto(&doc, text, 0)
	return doc
}

type pendingTag struct {
	name      string
	directive bool
	line      int
	buf       []string
}

func (l *Library) parseInto(doc *Docstring, content string, base int) {
	var (
		textLines  []string
		cur        *pendingTag
		origIndent int
		lastLine   string
	)
	flush := func() {
		if cur != nil {
			l.emit(doc, cur, base)
			cur = nil
			origIndent = 0
		}
	}

	for i, line := range strings.Split(content, "\n") {
		indent := leadingSpace(line)
		empty := strings.TrimSpace(line) == ""
		name, directive, rest, isMeta := matchMeta(line)

		if cur != nil && !empty && (indent == 0 || indent < origIndent) {
			flush()
		}
		switch {
		case isMeta:
			cur = &pendingTag{name: name, directive: directive, line: i, buf: []string{rest}}
		case cur != nil && !empty && indent >= origIndent:
			if origIndent == 0 {
				origIndent = indent
			}
			if strings.TrimSpace(lastLine) == "" {
				cur.buf = append(cur.buf, "")
			}
			cur.buf = append(cur.buf, line[min(origIndent, len(line)):])
		case cur == nil:
			textLines = append(textLines, strings.TrimRight(line, " \t"))
		}
		lastLine = line
	}
	flush()

	doc.Text = strings.Trim(strings.Join(textLines, "\n"), "\n")
}

// matchMeta recognises `@name rest` and `@!name rest` at column 0.
func matchMeta(line string) (name string, directive bool, rest string, ok bool) {
	if !strings.HasPrefix(line, "@") {
		return "", false, "", false
	}
	s := line[1:]
	if strings.HasPrefix(s, "!") {
		directive = true
		s = s[1:]
	}
	n := 0
	for n < len(s) && isTagNameByte(s[n]) {
		n++
	}
	if n == 0 {
		return "", false, "", false
	}
	if n < len(s) && s[n] != ' ' && s[n] != '\t' {
		return "", false, "", false
	}
	return s[:n], directive, strings.TrimSpace(s[n:]), true
}

func isTagNameByte(b byte) bool {
	return b == '_' || b == '.' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func leadingSpace(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}

func (l *Library) emit(doc *Docstring, p *pendingTag, base int) {
	raw := strings.Join(p.buf, "\n")
	line := base + p.line
	if p.directive {
		l.parseDirective(doc, p.name, raw, line)
		return
	}

	def, ok := l.Lookup(p.name)
	if !ok {
		doc.Problems = append(doc.Problems, Problem{Line: line, Code: diag.SemaUnknownTag, Message: "unknown tag @" + p.name})
		def = Definition{Name: p.name, Title: p.name, Shape: ShapeText}
	}
	tag, err := l.parseTag(doc, def, raw, line)
	if err != nil {
		doc.Problems = append(doc.Problems, Problem{Line: line, Code: diag.SemaMalformedTag, Message: "@" + p.name + ": " + err.Error()})
	}
	doc.Tags = append(doc.Tags, tag)
}

var (
	errMissingName   = errors.New("missing name")
	errUnclosedTypes = errors.New("unterminated type list")
	errMissingKey    = errors.New("missing option key")
)

func (l *Library) parseTag(doc *Docstring, def Definition, raw string, line int) (Tag, error) {
	tag := Tag{Name: def.Name, Line: line}
	var err error
	switch def.Shape {
	case ShapeText:
		tag.Text = strings.TrimSpace(raw)

	case ShapeTitleAndText, ShapeRawTitleAndText:
		first, body := cutLine(raw)
		tag.Title = strings.TrimSpace(first)
		if def.Shape == ShapeRawTitleAndText {
			tag.Text = strings.TrimRight(body, "\n")
		} else {
			tag.Text = strings.Trim(body, "\n")
		}

	case ShapeTypes:
		tag.Types, raw, err = extractTypes(raw)
		tag.Text = strings.TrimSpace(raw)

	case ShapeTypesAndName:
		err = parseTypesAndName(&tag, raw)

	case ShapeTypesAndTitle:
		tag.Types, raw, err = extractTypes(raw)
		first, body := cutLine(raw)
		tag.Title = strings.TrimSpace(first)
		tag.Text = strings.TrimSpace(body)

	case ShapeName:
		tag.Subject, raw = cutWord(raw)
		tag.Text = strings.TrimSpace(raw)
		if tag.Subject == "" {
			err = errMissingName
		}

	case ShapeOption:
		var rest string
		tag.Subject, rest = cutWord(raw)
		if tag.Subject == "" {
			return tag, errMissingName
		}
		opt := &Option{}
		opt.Types, rest, err = extractTypes(rest)
		opt.Key, rest = cutWord(rest)
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "(") {
			if end := matchClose(rest, 0); end > 0 {
				opt.Defaults = splitTopLevel(rest[1:end])
				rest = rest[end+1:]
			}
		}
		opt.Text = strings.TrimSpace(rest)
		tag.Option = opt
		if opt.Key == "" && err == nil {
			err = errMissingKey
		}

	case ShapeOverload:
		sig, body := cutLine(raw)
		ov := &Overload{Signature: strings.TrimSpace(sig)}
		ov.Method, ov.Parameters = ParseSignature(ov.Signature)
		l.parseInto(&ov.Docstring, body, line+1)
		doc.Problems = append(doc.Problems, ov.Docstring.Problems...)
		ov.Docstring.Problems = nil
		tag.Overload = ov
		if ov.Method == "" {
			err = errMissingName
		}
	}
	return tag, err
}

// parseTypesAndName handles `[T] name text`, `name [T] text` and
// `name: T — text`.
func parseTypesAndName(tag *Tag, raw string) error {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "[") {
		types, rest, err := extractTypes(s)
		tag.Types = types
		tag.Subject, rest = cutWord(rest)
		tag.Text = strings.TrimSpace(rest)
		if err == nil && tag.Subject == "" {
			err = errMissingName
		}
		return err
	}

	name, rest := cutWord(s)
	if name == "" {
		return errMissingName
	}
	if len(name) > 1 && strings.HasSuffix(name, ":") {
		tag.Subject = strings.TrimSuffix(name, ":")
		typ, text := splitDash(rest)
		typ = strings.TrimSpace(typ)
		var err error
		if strings.HasPrefix(typ, "[") {
			tag.Types, _, err = extractTypes(typ)
		} else if typ != "" {
			tag.Types = splitTopLevel(typ)
		}
		tag.Text = strings.TrimSpace(text)
		return err
	}

	tag.Subject = name
	types, rest, err := extractTypes(rest)
	tag.Types = types
	tag.Text = strings.TrimSpace(rest)
	return err
}

// splitDash splits `T — text` on an em dash, `--` or ` - `. Without a
// separator the first word is the type.
func splitDash(s string) (before, after string) {
	for _, sep := range []string{"—", " -- ", " - "} {
		if i := strings.Index(s, sep); i >= 0 {
			return s[:i], s[i+len(sep):]
		}
	}
	return cutWord(s)
}

// cutWord returns the first whitespace-separated word and the remainder.
func cutWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t\n")
	i := strings.IndexAny(s, " \t\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

func cutLine(s string) (first, rest string) {
	first, rest, _ = strings.Cut(s, "\n")
	return first, rest
}

// ParseSignature extracts the method name and parameters from an
// @overload signature such as `find(id, opts = {})`.
func ParseSignature(sig string) (string, []Parameter) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(sig), "def "))
	var name, params string
	if open := strings.IndexByte(s, '('); open >= 0 {
		name = strings.TrimSpace(s[:open])
		if end := matchClose(s, open); end > 0 {
			params = s[open+1 : end]
		} else {
			params = s[open+1:]
		}
	} else {
		name, params = cutWord(s)
	}
	var out []Parameter
	for _, part := range splitTopLevel(params) {
		p := Parameter{Name: part}
		if n, d, ok := strings.Cut(part, "="); ok && !strings.HasPrefix(d, "=") {
			p.Name, p.Default = strings.TrimSpace(n), strings.TrimSpace(d)
		} else if n, d, ok := strings.Cut(part, ": "); ok {
			p.Name, p.Default = strings.TrimSpace(n)+":", strings.TrimSpace(d)
		}
		out = append(out, p)
	}
	return name, out
}

func (l *Library) parseDirective(doc *Docstring, name, raw string, line int) {
	if !IsDirective(name) {
		doc.Problems = append(doc.Problems, Problem{Line: line, Code: diag.SemaUnknownDirective, Message: "unknown directive @!" + name})
	}
	header, body := cutLine(raw)
	d := Directive{Name: name, Tag: Tag{Name: name, Line: line}}
	switch name {
	case "attribute":
		types, rest, err := extractTypes(header)
		if err != nil {
			doc.Problems = append(doc.Problems, Problem{Line: line, Code: diag.SemaMalformedTag, Message: "@!attribute: " + err.Error()})
		}
		d.Tag.Types = types
		d.Tag.Subject, _ = cutWord(rest)
		d.Tag.Title = strings.TrimSpace(rest)
	case "method":
		d.Tag.Title = strings.TrimSpace(header)
		d.Tag.Subject, _ = ParseSignature(header)
	default:
		d.Tag.Text = strings.TrimSpace(header)
	}
	if (name == "attribute" || name == "method") && strings.TrimSpace(body) != "" {
		var sub Docstring
		l.parseInto(&sub, body, line+1)
		doc.Problems = append(doc.Problems, sub.Problems...)
		sub.Problems = nil
		d.Body = &sub
	}
	doc.Directives = append(doc.Directives, d)
}
