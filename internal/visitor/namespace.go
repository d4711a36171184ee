package visitor

import (
	"tome/internal/code"
	"tome/internal/diag"
	"tome/internal/syntax"
	"tome/internal/tags"
)

func (v *visitor) visitModule(id syntax.NodeID) {
	v.openNamespace(id, code.KindModule, v.tree.Child(id, 0), syntax.NoNodeID, v.tree.Child(id, 1))
}

func (v *visitor) visitClass(id syntax.NodeID) {
	v.openNamespace(id, code.KindClass, v.tree.Child(id, 0), v.tree.Child(id, 1), v.tree.Child(id, 2))
}

// openNamespace registers a module or class and visits its body in a new
// frame.
func (v *visitor) openNamespace(id syntax.NodeID, kind code.Kind, name, super, body syntax.NodeID) {
	if v.tree.Kind(name) == syntax.KindError {
		// парсер уже сообщил
		return
	}
	doc, _ := v.docstring(id)
	path, ok := v.resolveConst(name)
	if !ok {
		v.warn(diag.SemaDynamicNamespace, v.span(name), kind.String()+" name "+quote(v.src(name))+" cannot be resolved statically")
		return
	}
	d := v.newDecl(path, kind, v.line(id))
	if super.IsValid() && v.tree.Kind(super) != syntax.KindError {
		d.Superclass = v.superclass(super)
		if prev, seen := v.byPath[path]; seen && prev.Superclass != "" && prev.Superclass != d.Superclass {
			diag.ReportWarning(v.rep, diag.SemaSuperclassMismatch, v.span(super),
				"superclass mismatch for class "+quote(code.Display(path))+": "+quote(prev.Superclass)+" vs "+quote(d.Superclass)).
				WithNote(v.lineSpan(prev.Line), "previously declared here").
				Emit()
		}
	}
	d.Source = v.firstLine(id)
	v.register(d, doc)
	v.enter(d, body, false)
}

// enter visits body as the contents of namespace d.
func (v *visitor) enter(d *code.Declaration, body syntax.NodeID, singleton bool) {
	f := &frame{path: d.Path, inherited: v.transitive(d.Docstring)}
	if singleton {
		f.scope = code.Class
		f.singleton = true
	}
	v.push(f)
	v.visitBody(body)
	v.pop()
}

func (v *visitor) superclass(id syntax.NodeID) string {
	if name, abs, ok := v.constName(id); ok {
		if abs {
			return code.SepNamespace + name
		}
		return name
	}
	return v.src(id)
}

// visitSClass handles `class << self` and `class << Const`; other targets
// are singleton classes of objects and document nothing.
func (v *visitor) visitSClass(id syntax.NodeID) {
	target := v.tree.Child(id, 0)
	outer := v.top()
	path := outer.path
	switch v.tree.Kind(target) {
	case syntax.KindSelf:
	case syntax.KindConst, syntax.KindConstPath:
		p, ok := v.resolveConst(target)
		if !ok {
			return
		}
		path = p
	default:
		v.warn(diag.SemaDynamicNamespace, v.span(target), "singleton class of "+quote(v.src(target))+" is not documented")
		return
	}
	v.push(&frame{
		path:      path,
		scope:     code.Class,
		singleton: true,
		group:     outer.group,
		inherited: outer.inherited,
	})
	v.visitBody(v.tree.Child(id, 1))
	v.pop()
}

// visitDynamicNamespace handles `Foo = Class.new(Base) do ... end` and
// `Foo = Module.new do ... end`.
func (v *visitor) visitDynamicNamespace(id, target, value syntax.NodeID, doc tags.Docstring) bool {
	if v.tree.Kind(value) != syntax.KindCall || v.tree.Text(value) != "new" {
		return false
	}
	recv := v.tree.Child(value, 0)
	if v.tree.Kind(recv) != syntax.KindConst {
		return false
	}
	var kind code.Kind
	switch v.tree.Text(recv) {
	case "Class":
		kind = code.KindClass
	case "Module":
		kind = code.KindModule
	default:
		return false
	}
	path, ok := v.resolveConst(target)
	if !ok {
		return false
	}
	d := v.newDecl(path, kind, v.line(id))
	if args := v.tree.Children(v.tree.Child(value, 1)); kind == code.KindClass && len(args) > 0 {
		d.Superclass = v.superclass(args[0])
	}
	d.Source = v.firstLine(id)
	v.register(d, doc)
	if block := v.tree.Child(value, 2); block.IsValid() {
		v.enter(d, v.tree.Child(block, 1), false)
	}
	return true
}
