package visitor

import (
	"slices"
	"strings"

	"tome/internal/code"
	"tome/internal/diag"
	"tome/internal/syntax"
	"tome/internal/tags"
)

// parsedDoc caches a comment block's docstring: the parser attaches one
// block to both a wrapper statement (`private def`, modifiers) and the
// declaration inside it.
type parsedDoc struct {
	doc      tags.Docstring
	base     int // file line of the first docstring line
	expanded bool
}

// docstring parses the comment block attached to id. Problems are reported
// and @!group/@!endgroup applied to the current frame on first use only.
func (v *visitor) docstring(id syntax.NodeID) (tags.Docstring, *parsedDoc) {
	n := v.tree.Node(id)
	if n == nil || n.Doc == nil {
		return tags.Docstring{}, nil
	}
	if pd, ok := v.parsed[n.Doc]; ok {
		return pd.doc, pd
	}
	text, dropped := stripMagicComments(n.Doc)
	pd := &parsedDoc{doc: v.lib.Parse(text), base: n.Doc.StartLine + dropped}
	if !n.Doc.Hash {
		pd.base++ // строка =begin
	}
	v.parsed[n.Doc] = pd
	for _, p := range pd.doc.Problems {
		v.warn(p.Code, v.lineSpan(pd.base+p.Line), p.Message)
	}
	f := v.top()
	for _, d := range pd.doc.Directives {
		switch d.Name {
		case "group":
			f.group = d.Tag.Text
		case "endgroup":
			f.group = ""
		}
	}
	return pd.doc, pd
}

// magic comments at the head of a block are not documentation.
var magicPrefixes = []string{
	"frozen_string_literal:",
	"encoding:",
	"coding:",
	"warn_indent:",
	"warn_past_scope:",
	"shareable_constant_value:",
	"typed:",
}

func isMagicComment(line string) bool {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "-*-") && strings.HasSuffix(line, "-*-") {
		return true
	}
	for _, p := range magicPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func stripMagicComments(block *syntax.CommentBlock) (string, int) {
	if !block.Hash {
		return block.Text, 0
	}
	lines := strings.Split(block.Text, "\n")
	n := 0
	for n < len(lines) && isMagicComment(lines[n]) {
		n++
	}
	return strings.Join(lines[n:], "\n"), n
}

// inherit adds the transitive tags of the enclosing namespaces that doc does
// not carry itself.
func (v *visitor) inherit(doc tags.Docstring, inherited []tags.Tag) tags.Docstring {
	var add []tags.Tag
	for _, t := range inherited {
		if !doc.HasTag(t.Name) {
			t.Inherited = true
			add = append(add, t)
		}
	}
	if len(add) > 0 {
		doc.Tags = append(slices.Clone(doc.Tags), add...)
	}
	return doc
}

// transitive returns the tags of doc that namespace members inherit.
func (v *visitor) transitive(doc tags.Docstring) []tags.Tag {
	var out []tags.Tag
	for _, t := range doc.Tags {
		if v.lib.Transitive(t.Name) {
			out = append(out, t)
		}
	}
	return out
}

// applyObjectDirectives applies @!visibility and @!scope found in the
// declaration's own docstring.
func (v *visitor) applyObjectDirectives(d *code.Declaration, doc tags.Docstring) {
	for _, dir := range doc.Directives {
		switch dir.Name {
		case "visibility":
			if vis, ok := code.ParseVisibility(dir.Tag.Text); ok {
				d.Visibility = vis
			} else {
				v.warn(diag.SemaUnknownVisibility, v.lineSpan(d.Line), "unknown visibility "+quote(dir.Tag.Text))
			}
		case "scope":
			sc, ok := code.ParseScope(dir.Tag.Text)
			if !ok {
				v.warn(diag.SemaUnknownDirective, v.lineSpan(d.Line), "unknown scope "+quote(dir.Tag.Text))
				continue
			}
			if d.Kind == code.KindMethod || d.Kind == code.KindAttribute {
				d.Scope = sc
				d.Path = code.Join(d.Namespace, d.Name, d.Kind, sc)
			}
		}
	}
}

func quote(s string) string { return "'" + s + "'" }

// visitComment handles a free-standing comment block: directives change the
// state of the enclosing namespace.
func (v *visitor) visitComment(id syntax.NodeID) {
	doc, pd := v.docstring(id)
	if pd == nil {
		return
	}
	f := v.top()
	for _, d := range doc.Directives {
		line := pd.base + d.Tag.Line
		switch d.Name {
		case "visibility":
			if vis, ok := code.ParseVisibility(d.Tag.Text); ok {
				f.visibility = vis
			} else {
				v.warn(diag.SemaUnknownVisibility, v.lineSpan(line), "unknown visibility "+quote(d.Tag.Text))
			}
		case "scope":
			if sc, ok := code.ParseScope(d.Tag.Text); ok {
				f.scope = sc
			} else {
				v.warn(diag.SemaUnknownDirective, v.lineSpan(line), "unknown scope "+quote(d.Tag.Text))
			}
		}
	}
}

// expandDirectives creates the objects declared by @!attribute and @!method
// in the block attached to id, once per block.
func (v *visitor) expandDirectives(id syntax.NodeID) {
	doc, pd := v.docstring(id)
	if pd == nil || pd.expanded {
		return
	}
	pd.expanded = true
	for _, d := range doc.Directives {
		line := pd.base + d.Tag.Line
		var body tags.Docstring
		if d.Body != nil {
			body = *d.Body
		}
		switch d.Name {
		case "attribute":
			if d.Tag.Subject == "" {
				v.warn(diag.SemaMalformedTag, v.lineSpan(line), "@!attribute needs a name")
				continue
			}
			read, write := true, true
			if len(d.Tag.Types) > 0 {
				mode := strings.Join(d.Tag.Types, "")
				read, write = strings.Contains(mode, "r"), strings.Contains(mode, "w")
			}
			v.defineAttribute(d.Tag.Subject, code.Attr{Read: read, Write: write}, line, body, nil, false)
		case "method":
			name, params := tags.ParseSignature(d.Tag.Title)
			if name == "" {
				v.warn(diag.SemaMalformedTag, v.lineSpan(line), "@!method needs a signature")
				continue
			}
			f := v.top()
			m := v.newDecl(code.Join(f.path, name, code.KindMethod, f.scope), code.KindMethod, line)
			m.Scope = f.scope
			m.Visibility = f.visibility
			m.Signature = "def " + d.Tag.Title
			for _, p := range params {
				m.Parameters = append(m.Parameters, code.Parameter{Name: p.Name, Default: p.Default})
			}
			m.Explicit = false
			v.register(m, body)
		}
	}
}
