package visitor

import (
	"strings"

	"fortio.org/safecast"

	"tome/internal/code"
	"tome/internal/diag"
	"tome/internal/source"
	"tome/internal/syntax"
	"tome/internal/tags"
)

type Options struct {
	File *source.File
	// Library is the tag vocabulary; nil means tags.DefaultLibrary().
	Library  *tags.Library
	Reporter diag.Reporter
}

// frame is the lexical state of one namespace body.
type frame struct {
	path           string
	visibility     code.Visibility
	scope          code.Scope
	singleton      bool // inside `class << self`
	moduleFunction bool
	group          string
	inherited      []tags.Tag // transitive tags of the enclosing namespaces
}

type visitor struct {
	tree   *syntax.Tree
	file   *source.File
	lib    *tags.Library
	rep    diag.Reporter
	out    []*code.Declaration
	byPath map[string]*code.Declaration
	parsed map[*syntax.CommentBlock]*parsedDoc
	frames []*frame
}

// Visit walks the tree from root and returns the declarations it defines in
// pre-order: a namespace comes before its members. Re-opened namespaces
// yield one declaration per opening, all sharing the same path.
func Visit(tree *syntax.Tree, root syntax.NodeID, opts Options) []*code.Declaration {
	lib := opts.Library
	if lib == nil {
		lib = tags.DefaultLibrary()
	}
	v := &visitor{
		tree:   tree,
		file:   opts.File,
		lib:    lib,
		rep:    opts.Reporter,
		byPath: make(map[string]*code.Declaration),
		parsed: make(map[*syntax.CommentBlock]*parsedDoc),
		frames: []*frame{{path: code.RootPath}},
	}
	if tree.Kind(root) == syntax.KindFile {
		root = tree.Child(root, 0)
	}
	v.visitBody(root)
	return v.out
}

func (v *visitor) top() *frame { return v.frames[len(v.frames)-1] }

func (v *visitor) push(f *frame) { v.frames = append(v.frames, f) }

func (v *visitor) pop() { v.frames = v.frames[:len(v.frames)-1] }

func (v *visitor) visitBody(id syntax.NodeID) {
	for _, stmt := range v.tree.Children(id) {
		v.visitStatement(stmt)
	}
}

func (v *visitor) visitStatement(id syntax.NodeID) {
	defer v.expandDirectives(id)
	switch v.tree.Kind(id) {
	case syntax.KindModule:
		v.visitModule(id)
	case syntax.KindClass:
		v.visitClass(id)
	case syntax.KindSClass:
		v.visitSClass(id)
	case syntax.KindDef:
		v.visitDef(id, nil)
	case syntax.KindCall:
		v.visitCall(id, nil)
	case syntax.KindIdent:
		v.dispatchCall(id, v.tree.Text(id), nil, nil)
	case syntax.KindAssign, syntax.KindOpAssign:
		v.visitAssign(id)
	case syntax.KindAlias:
		v.visitAlias(id)
	case syntax.KindComment:
		v.visitComment(id)
	case syntax.KindBody:
		v.visitBody(id)
	case syntax.KindBegin:
		for _, c := range v.tree.Children(id) {
			switch v.tree.Kind(c) {
			case syntax.KindBody:
				v.visitBody(c)
			case syntax.KindRescue:
				v.visitBody(v.tree.Child(c, 2))
			case syntax.KindElse, syntax.KindEnsure:
				v.visitBody(v.tree.Child(c, 0))
			}
		}
	case syntax.KindIf, syntax.KindUnless:
		// условные определения документируются обе ветки
		v.visitBody(v.tree.Child(id, 1))
		v.visitStatement(v.tree.Child(id, 2))
	}
}

// src returns the exact source text of a node.
func (v *visitor) src(id syntax.NodeID) string {
	n := v.tree.Node(id)
	if n == nil || v.file == nil || int(n.Span.End) > len(v.file.Content) {
		return ""
	}
	return string(v.file.Content[n.Span.Start:n.Span.End])
}

// firstLine returns the first source line of a node, trimmed.
func (v *visitor) firstLine(id syntax.NodeID) string {
	s := v.src(id)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func (v *visitor) line(id syntax.NodeID) int {
	n := v.tree.Node(id)
	if n == nil || v.file == nil {
		return 0
	}
	return v.file.Line(n.Span.Start)
}

func (v *visitor) path() string {
	if v.file == nil {
		return ""
	}
	return v.file.Path
}

func (v *visitor) span(id syntax.NodeID) source.Span {
	if n := v.tree.Node(id); n != nil {
		return n.Span
	}
	return source.Span{File: v.tree.File}
}

// lineSpan covers the 1-based line of the current file.
func (v *visitor) lineSpan(line int) source.Span {
	sp := source.Span{File: v.tree.File}
	if v.file == nil || line < 1 {
		return sp
	}
	idx := v.file.LineIdx
	if line >= 2 && line-2 < len(idx) {
		sp.Start = idx[line-2] + 1
	}
	if line-1 < len(idx) {
		sp.End = idx[line-1]
	} else if end, err := safecast.Conv[uint32](len(v.file.Content)); err == nil {
		sp.End = end
	}
	if sp.End < sp.Start {
		sp.End = sp.Start
	}
	return sp
}

func (v *visitor) warn(code diag.Code, sp source.Span, msg string) {
	diag.ReportWarning(v.rep, code, sp, msg).Emit()
}

// constName flattens Const/ConstPath nodes into `A::B`. abs is set for
// `::A` paths; ok is false for dynamic scopes such as `obj::A`.
func (v *visitor) constName(id syntax.NodeID) (name string, abs, ok bool) {
	switch v.tree.Kind(id) {
	case syntax.KindConst:
		return v.tree.Text(id), false, true
	case syntax.KindConstPath:
		scope := v.tree.Child(id, 0)
		text := v.tree.Text(id)
		switch {
		case !scope.IsValid():
			return text, true, true
		case v.tree.Kind(scope) == syntax.KindSelf:
			return text, false, true
		}
		inner, abs, ok := v.constName(scope)
		if !ok {
			return "", false, false
		}
		return inner + code.SepNamespace + text, abs, true
	}
	return "", false, false
}

// resolveConst turns a constant reference into a path in the current frame.
func (v *visitor) resolveConst(id syntax.NodeID) (string, bool) {
	name, abs, ok := v.constName(id)
	if !ok {
		return "", false
	}
	if abs {
		return name, true
	}
	return code.Join(v.top().path, name, code.KindConstant, code.Instance), true
}

// literalName reads a symbol or string argument: `:foo`, `:"foo"`, "foo".
func (v *visitor) literalName(id syntax.NodeID) (string, bool) {
	switch v.tree.Kind(id) {
	case syntax.KindSymbol:
		return unquote(strings.TrimPrefix(v.tree.Text(id), ":")), true
	case syntax.KindString:
		return unquote(v.tree.Text(id)), true
	case syntax.KindIdent:
		return v.tree.Text(id), true
	}
	return "", false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// newDecl fills the fields shared by every declaration.
func (v *visitor) newDecl(path string, kind code.Kind, line int) *code.Declaration {
	d := &code.Declaration{
		Path:      path,
		Name:      code.Base(path),
		Kind:      kind,
		Namespace: code.Parent(path),
		File:      v.path(),
		Line:      line,
		Explicit:  true,
	}
	d.AddFile(code.FileRef{File: d.File, Line: d.Line})
	return d
}

// register appends d to the output with its docstring, group and
// per-object directives applied.
func (v *visitor) register(d *code.Declaration, doc tags.Docstring) {
	f := v.top()
	d.Group = f.group
	d.Docstring = v.inherit(doc, f.inherited)
	v.applyObjectDirectives(d, doc)
	v.out = append(v.out, d)
	v.byPath[d.Path] = d
}
