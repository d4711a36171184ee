package visitor

import (
	"slices"
	"strings"

	"tome/internal/code"
	"tome/internal/diag"
	"tome/internal/syntax"
)

// visitDef registers a method. vis overrides the frame visibility for
// `private def ...` forms.
func (v *visitor) visitDef(id syntax.NodeID, vis *code.Visibility) *code.Declaration {
	if v.tree.Text(id) == "" {
		// header without a name
		return nil
	}
	doc, _ := v.docstring(id)
	f := v.top()
	ns, scope, visibility := f.path, f.scope, f.visibility
	if recv := v.tree.Child(id, 0); recv.IsValid() {
		switch v.tree.Kind(recv) {
		case syntax.KindSelf:
		case syntax.KindConst:
			if name := v.tree.Text(recv); name != code.Base(ns) {
				ns = code.Join(ns, name, code.KindConstant, code.Instance)
			}
		default:
			// синглтон-метод произвольного объекта
			return nil
		}
		scope = code.Class
		if !f.singleton {
			visibility = code.Public
		}
	}
	if vis != nil {
		visibility = *vis
	}

	d := v.newDecl(code.Join(ns, v.tree.Text(id), code.KindMethod, scope), code.KindMethod, v.line(id))
	d.Scope = scope
	d.Visibility = visibility
	d.Signature = v.signature(id)
	d.Parameters = v.parameters(v.tree.Child(id, 1))
	d.Source = v.src(id)
	v.register(d, doc)
	v.checkParams(d)

	if f.moduleFunction && scope == code.Instance && vis == nil {
		v.moduleFunction(d)
	}
	return d
}

// signature is the def header up to the end of its parameter list.
func (v *visitor) signature(id syntax.NodeID) string {
	s := v.src(id)
	limit := 0
	if params := v.tree.Node(v.tree.Child(id, 1)); params != nil {
		limit = int(params.Span.End - v.span(id).Start)
	}
	if limit < 0 || limit > len(s) {
		limit = 0
	}
	if i := strings.IndexByte(s[limit:], '\n'); i >= 0 {
		s = s[:limit+i]
	}
	return strings.TrimSpace(s)
}

func (v *visitor) parameters(id syntax.NodeID) []code.Parameter {
	var out []code.Parameter
	for _, p := range v.tree.Children(id) {
		name := v.tree.Text(p)
		switch v.tree.Kind(p) {
		case syntax.KindParamReq:
			if inner := v.tree.Child(p, 0); inner.IsValid() {
				var names []string
				for _, ip := range v.parameters(inner) {
					names = append(names, ip.Name)
				}
				name = "(" + strings.Join(names, ", ") + ")"
			}
			out = append(out, code.Parameter{Name: name})
		case syntax.KindParamOpt:
			out = append(out, code.Parameter{Name: name, Default: v.src(v.tree.Child(p, 0))})
		case syntax.KindParamRest:
			out = append(out, code.Parameter{Name: "*" + name})
		case syntax.KindParamKey:
			param := code.Parameter{Name: name + ":"}
			if def := v.tree.Child(p, 0); def.IsValid() {
				param.Default = v.src(def)
			}
			out = append(out, param)
		case syntax.KindParamKeyRest:
			out = append(out, code.Parameter{Name: "**" + name})
		case syntax.KindParamBlock:
			out = append(out, code.Parameter{Name: "&" + name})
		case syntax.KindParamFwd:
			out = append(out, code.Parameter{Name: "..."})
		}
	}
	return out
}

func bareName(s string) string {
	return strings.TrimRight(strings.TrimLeft(s, "*&"), ":")
}

// checkParams warns about @param tags naming parameters the method does not
// have. Forwarding (`...`) accepts anything.
func (v *visitor) checkParams(d *code.Declaration) {
	var names []string
	for _, p := range d.Parameters {
		if p.Name == "..." {
			return
		}
		names = append(names, bareName(p.Name))
	}
	for _, t := range d.Docstring.TagsNamed("param") {
		if t.Subject == "" || slices.Contains(names, bareName(t.Subject)) {
			continue
		}
		v.warn(diag.SemaParamMismatch, v.lineSpan(d.Line),
			"@param tag has unknown parameter name: "+t.Subject+" (in "+d.Path+")")
	}
}

// moduleFunction turns instance method d into a private instance method
// plus a public class method copy.
func (v *visitor) moduleFunction(d *code.Declaration) {
	d.Visibility = code.Private
	c := d.Clone()
	c.Scope = code.Class
	c.Visibility = code.Public
	c.Path = code.Join(d.Namespace, d.Name, code.KindMethod, code.Class)
	v.out = append(v.out, c)
	v.byPath[c.Path] = c
}

func (v *visitor) visitAlias(id syntax.NodeID) {
	newName, ok1 := v.literalName(v.tree.Child(id, 0))
	oldName, ok2 := v.literalName(v.tree.Child(id, 1))
	if !ok1 || !ok2 {
		// alias $new $old
		return
	}
	v.defineAlias(id, newName, oldName)
}

// defineAlias registers newName as an alias of oldName in the current frame.
// The alias takes the original's parameters, visibility and, when it has no
// comment of its own, its docstring.
func (v *visitor) defineAlias(id syntax.NodeID, newName, oldName string) {
	doc, _ := v.docstring(id)
	f := v.top()
	oldPath := code.Join(f.path, oldName, code.KindMethod, f.scope)
	d := v.newDecl(code.Join(f.path, newName, code.KindMethod, f.scope), code.KindMethod, v.line(id))
	d.Scope = f.scope
	d.Visibility = f.visibility
	d.AliasOf = oldPath
	if orig, ok := v.byPath[oldPath]; ok {
		d.Visibility = orig.Visibility
		d.Parameters = slices.Clone(orig.Parameters)
		if doc.Blank() && len(doc.Directives) == 0 {
			doc = orig.Docstring
		}
	}
	d.Signature = v.firstLine(id)
	d.Source = v.src(id)
	v.register(d, doc)
}
