package visitor

import (
	"tome/internal/code"
	"tome/internal/diag"
	"tome/internal/syntax"
	"tome/internal/tags"
)

// visitCall dispatches the class-body DSL calls that declare or modify
// objects. vis is set when the call is an argument of a visibility call
// (`private attr_reader :x`).
func (v *visitor) visitCall(id syntax.NodeID, vis *code.Visibility) {
	if recv := v.tree.Child(id, 0); recv.IsValid() && v.tree.Kind(recv) != syntax.KindSelf {
		return
	}
	v.dispatchCall(id, v.tree.Text(id), v.tree.Children(v.tree.Child(id, 1)), vis)
}

// dispatchCall also serves bare identifiers such as `private` or
// `module_function`, which parse as KindIdent.
func (v *visitor) dispatchCall(id syntax.NodeID, name string, args []syntax.NodeID, vis *code.Visibility) {
	switch name {
	case "attr_reader", "attr_writer", "attr_accessor", "attr":
		v.visitAttr(id, name, args, vis)
	case "include", "extend", "prepend":
		v.visitMixin(name, args)
	case "private", "protected", "public":
		level, _ := code.ParseVisibility(name)
		v.visitVisibility(level, args)
	case "private_class_method", "public_class_method":
		level := code.Private
		if name == "public_class_method" {
			level = code.Public
		}
		v.visitClassMethodVisibility(level, args)
	case "private_constant", "public_constant":
		level := code.Private
		if name == "public_constant" {
			level = code.Public
		}
		for _, a := range args {
			if n, ok := v.literalName(a); ok {
				v.setVisibility(code.Join(v.top().path, n, code.KindConstant, code.Instance), level)
			}
		}
	case "module_function":
		v.visitModuleFunction(args)
	case "alias_method":
		if len(args) >= 2 {
			newName, ok1 := v.literalName(args[0])
			oldName, ok2 := v.literalName(args[1])
			if ok1 && ok2 {
				v.defineAlias(id, newName, oldName)
			}
		}
	default:
		// `memoize def foo`, `helper_method def bar`
		for _, a := range args {
			if v.tree.Kind(a) == syntax.KindDef {
				v.visitDef(a, nil)
			}
		}
	}
}

func (v *visitor) visitAttr(id syntax.NodeID, name string, args []syntax.NodeID, vis *code.Visibility) {
	doc, _ := v.docstring(id)
	attr := code.Attr{Read: name != "attr_writer", Write: name == "attr_writer" || name == "attr_accessor"}
	if name == "attr" && len(args) == 2 && v.tree.Kind(args[1]) == syntax.KindTrue {
		// attr :name, true
		attr.Write = true
		args = args[:1]
	}
	for _, a := range args {
		n, ok := v.literalName(a)
		if !ok || v.tree.Kind(a) == syntax.KindIdent {
			continue
		}
		v.defineAttribute(n, attr, v.line(id), doc, vis, true)
	}
}

// defineAttribute registers the reader and/or writer of an attribute.
func (v *visitor) defineAttribute(name string, attr code.Attr, line int, doc tags.Docstring, vis *code.Visibility, explicit bool) {
	f := v.top()
	visibility := f.visibility
	if vis != nil {
		visibility = *vis
	}
	mk := func(method, sig string) *code.Declaration {
		d := v.newDecl(code.Join(f.path, method, code.KindAttribute, f.scope), code.KindAttribute, line)
		d.Scope = f.scope
		d.Visibility = visibility
		d.Attr = attr
		d.Signature = sig
		d.Explicit = explicit
		return d
	}
	if attr.Read {
		v.register(mk(name, "def "+name), doc)
	}
	if attr.Write {
		d := mk(name+"=", "def "+name+"=(value)")
		d.Parameters = []code.Parameter{{Name: "value"}}
		v.register(d, doc)
	}
}

func (v *visitor) visitMixin(name string, args []syntax.NodeID) {
	f := v.top()
	kind := code.Include
	switch {
	case name == "extend" || f.singleton:
		kind = code.Extend
	case name == "prepend":
		kind = code.Prepend
	}
	ns := v.namespace()
	if ns == nil {
		return
	}
	for _, a := range args {
		var path string
		switch v.tree.Kind(a) {
		case syntax.KindSelf:
			path = f.path
		case syntax.KindConst, syntax.KindConstPath:
			n, _, ok := v.constName(a)
			if !ok {
				v.warn(diag.SemaUnresolvedMixin, v.span(a), "cannot resolve mixin "+quote(v.src(a)))
				continue
			}
			path = n
		default:
			v.warn(diag.SemaUnresolvedMixin, v.span(a), "cannot resolve mixin "+quote(v.src(a)))
			continue
		}
		ns.AddMixin(code.Mixin{Kind: kind, Path: path})
	}
}

// namespace returns the declaration of the current frame, emitting a root
// declaration the first time root-level code needs one. It is nil for
// `class << Const` frames whose namespace is declared elsewhere.
func (v *visitor) namespace() *code.Declaration {
	path := v.top().path
	if d, ok := v.byPath[path]; ok {
		return d
	}
	if path != code.RootPath {
		return nil
	}
	d := code.NewRoot()
	v.out = append(v.out, d)
	v.byPath[path] = d
	return d
}

func (v *visitor) setVisibility(path string, vis code.Visibility) {
	if d, ok := v.byPath[path]; ok {
		d.Visibility = vis
	}
}

// visitVisibility handles private/protected/public: bare calls switch the
// frame default, arguments name methods or wrap definitions.
func (v *visitor) visitVisibility(vis code.Visibility, args []syntax.NodeID) {
	f := v.top()
	if len(args) == 0 {
		f.visibility = vis
		f.moduleFunction = false
		return
	}
	for _, a := range args {
		switch v.tree.Kind(a) {
		case syntax.KindDef:
			v.visitDef(a, &vis)
		case syntax.KindCall:
			v.visitCall(a, &vis)
		case syntax.KindArray:
			v.visitVisibility(vis, v.tree.Children(a))
		default:
			if n, ok := v.literalName(a); ok {
				v.setVisibility(code.Join(f.path, n, code.KindMethod, f.scope), vis)
			}
		}
	}
}

func (v *visitor) visitClassMethodVisibility(vis code.Visibility, args []syntax.NodeID) {
	path := v.top().path
	for _, a := range args {
		switch v.tree.Kind(a) {
		case syntax.KindDef:
			v.visitDef(a, &vis)
		case syntax.KindArray:
			v.visitClassMethodVisibility(vis, v.tree.Children(a))
		default:
			if n, ok := v.literalName(a); ok {
				v.setVisibility(code.Join(path, n, code.KindMethod, code.Class), vis)
			}
		}
	}
}

func (v *visitor) visitModuleFunction(args []syntax.NodeID) {
	f := v.top()
	if len(args) == 0 {
		f.moduleFunction = true
		return
	}
	for _, a := range args {
		if v.tree.Kind(a) == syntax.KindDef {
			if d := v.visitDef(a, nil); d != nil && d.Scope == code.Instance && !f.moduleFunction {
				v.moduleFunction(d)
			}
			continue
		}
		n, ok := v.literalName(a)
		if !ok {
			continue
		}
		if d, ok := v.byPath[code.Join(f.path, n, code.KindMethod, code.Instance)]; ok {
			v.moduleFunction(d)
		}
	}
}

// visitAssign registers constants (`A = 1`, `A::B ||= 2`), class variables
// and `Foo = Class.new` namespaces.
func (v *visitor) visitAssign(id syntax.NodeID) {
	target, value := v.tree.Child(id, 0), v.tree.Child(id, 1)
	if v.tree.Kind(id) == syntax.KindOpAssign && v.tree.Text(id) != "||=" {
		return
	}
	switch v.tree.Kind(target) {
	case syntax.KindConst, syntax.KindConstPath:
		doc, _ := v.docstring(id)
		if v.visitDynamicNamespace(id, target, value, doc) {
			return
		}
		path, ok := v.resolveConst(target)
		if !ok {
			return
		}
		d := v.newDecl(path, code.KindConstant, v.line(id))
		d.Value = v.src(value)
		d.Source = v.src(id)
		v.register(d, doc)
	case syntax.KindCVar:
		doc, _ := v.docstring(id)
		f := v.top()
		d := v.newDecl(code.Join(f.path, v.tree.Text(target), code.KindClassVariable, code.Instance), code.KindClassVariable, v.line(id))
		d.Value = v.src(value)
		d.Source = v.src(id)
		v.register(d, doc)
	}
}
