package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"tome/internal/code"
	"tome/internal/registry"
	"tome/internal/tags"
)

// ErrObjectNotFound is returned for paths the registry does not hold.
var ErrObjectNotFound = errors.New("object not found")

// Engine answers read-only questions about a registry.
type Engine struct {
	store *registry.Store
	// SearchPaths are namespaces consulted after the lexical chain when
	// resolving constants.
	SearchPaths []string
}

func New(store *registry.Store, searchPaths ...string) *Engine {
	return &Engine{store: store, SearchPaths: searchPaths}
}

// Object returns the declaration at path or an error wrapping
// ErrObjectNotFound.
func (e *Engine) Object(path string) (*code.Declaration, error) {
	d, ok := e.store.At(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", code.Display(path), ErrObjectNotFound)
	}
	return d, nil
}

// Lookup is the boolean form of Object.
func (e *Engine) Lookup(path string) (*code.Declaration, bool) {
	return e.store.At(path)
}

// Tags returns the tags named name of the object at path, in source order.
// An empty name returns every tag.
func (e *Engine) Tags(path, name string) ([]tags.Tag, error) {
	d, err := e.Object(path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return slices.Clone(d.Docstring.Tags), nil
	}
	return d.Docstring.TagsNamed(name), nil
}

// Tag returns the first tag named name; ok is false when the object or the
// tag is missing.
func (e *Engine) Tag(path, name string) (tags.Tag, bool) {
	d, ok := e.store.At(path)
	if !ok {
		return tags.Tag{}, false
	}
	return d.Docstring.Tag(name)
}

func (e *Engine) HasTag(path, name string) bool {
	_, ok := e.Tag(path, name)
	return ok
}

// Children returns the members of the namespace at path.
func (e *Engine) Children(path string) ([]*code.Declaration, error) {
	if _, err := e.Object(path); err != nil {
		return nil, err
	}
	return e.store.Children(path), nil
}

// ByKind returns all declarations of the given kinds in registry order; no
// kinds means all declarations.
func (e *Engine) ByKind(kinds ...code.Kind) []*code.Declaration {
	var out []*code.Declaration
	for d := range e.store.Each() {
		if len(kinds) == 0 || slices.Contains(kinds, d.Kind) {
			out = append(out, d)
		}
	}
	return out
}

// Resolve looks a constant reference up from the namespace at from: each
// enclosing namespace is tried innermost first together with the modules it
// includes, then the search paths. `::A` skips the lexical chain.
func (e *Engine) Resolve(from, name string) (*code.Declaration, bool) {
	if rest, ok := strings.CutPrefix(name, code.SepNamespace); ok {
		return e.store.At(rest)
	}
	for ns := from; ; ns = code.Parent(ns) {
		if d, ok := e.store.At(code.Join(ns, name, code.KindConstant, code.Instance)); ok {
			return d, true
		}
		if d, ok := e.viaMixins(ns, name); ok {
			return d, true
		}
		if ns == code.RootPath {
			break
		}
	}
	for _, sp := range e.SearchPaths {
		if d, ok := e.store.At(code.Join(sp, name, code.KindConstant, code.Instance)); ok {
			return d, true
		}
	}
	return nil, false
}

// lexical resolves name through the enclosing namespaces of from only.
func (e *Engine) lexical(from, name string) (*code.Declaration, bool) {
	if rest, ok := strings.CutPrefix(name, code.SepNamespace); ok {
		return e.store.At(rest)
	}
	for ns := from; ; ns = code.Parent(ns) {
		if d, ok := e.store.At(code.Join(ns, name, code.KindConstant, code.Instance)); ok {
			return d, true
		}
		if ns == code.RootPath {
			return nil, false
		}
	}
}

// viaMixins tries the modules included into ns.
func (e *Engine) viaMixins(ns, name string) (*code.Declaration, bool) {
	d, ok := e.store.At(ns)
	if !ok {
		return nil, false
	}
	for _, m := range d.Mixins {
		target, ok := e.lexical(code.Parent(ns), m.Path)
		if !ok || target.Path == ns {
			continue
		}
		if c, ok := e.store.At(code.Join(target.Path, name, code.KindConstant, code.Instance)); ok {
			return c, true
		}
	}
	return nil, false
}

// Method finds a method by name on namespace path, following the
// superclass chain and mixins.
func (e *Engine) Method(path, name string, scope code.Scope) (*code.Declaration, bool) {
	seen := make(map[string]bool)
	for ns := path; !seen[ns]; {
		seen[ns] = true
		if d, ok := e.store.At(code.Join(ns, name, code.KindMethod, scope)); ok {
			return d, true
		}
		owner, ok := e.store.At(ns)
		if !ok {
			break
		}
		for _, m := range owner.Mixins {
			if (m.Kind == code.Extend) != (scope == code.Class) {
				continue
			}
			mod, ok := e.lexical(code.Parent(ns), m.Path)
			if !ok {
				continue
			}
			if d, ok := e.store.At(code.Join(mod.Path, name, code.KindMethod, code.Instance)); ok {
				return d, true
			}
		}
		super, ok := e.lexical(code.Parent(ns), owner.Superclass)
		if owner.Superclass == "" || !ok {
			break
		}
		ns = super.Path
	}
	return nil, false
}

// Undocumented returns explicit, public declarations without docstring
// text or tags, the root excluded.
func (e *Engine) Undocumented() []*code.Declaration {
	var out []*code.Declaration
	for d := range e.store.Each() {
		if d.Kind == code.KindRoot || !d.Explicit || d.Visibility != code.Public || d.AliasOf != "" {
			continue
		}
		if d.Docstring.Blank() {
			out = append(out, d)
		}
	}
	return out
}

// Stats summarises documentation coverage.
type Stats struct {
	Total        int
	ByKind       map[code.Kind]int
	Undocumented int
	Private      int
}

// Coverage is the documented share of public objects, 1 for an empty store.
func (s Stats) Coverage() float64 {
	public := s.Total - s.Private
	if public <= 0 {
		return 1
	}
	return float64(public-s.Undocumented) / float64(public)
}

func (e *Engine) Stats() Stats {
	st := Stats{ByKind: make(map[code.Kind]int)}
	for d := range e.store.Each() {
		if d.Kind == code.KindRoot {
			continue
		}
		st.Total++
		st.ByKind[d.Kind]++
		if d.Visibility != code.Public {
			st.Private++
		}
	}
	st.Undocumented = len(e.Undocumented())
	return st
}
