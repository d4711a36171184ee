package registry

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"tome/internal/code"
	"tome/internal/tags"
)

// Store holds declarations keyed by path. Writers take the single writer
// lock; readers get a stable snapshot. The root namespace always exists.
type Store struct {
	mu       sync.RWMutex
	decls    map[string]*code.Declaration
	order    []string            // paths in first-insertion order
	children map[string][]string // namespace path -> member paths
}

// New returns a store holding only the root namespace.
func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	root := code.NewRoot()
	s.decls = map[string]*code.Declaration{root.Path: root}
	s.order = []string{root.Path}
	s.children = make(map[string][]string)
}

// Insert stores a copy of d, replacing any declaration with the same path.
// Definition sites accumulate across inserts; a namespace inserted again
// without a docstring keeps the one it had, and keeps its mixins.
func (s *Store) Insert(d *code.Declaration) {
	if d == nil {
		return
	}
	d = d.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(d)
}

func (s *Store) insert(d *code.Declaration) {
	prev, ok := s.decls[d.Path]
	if !ok {
		if d.Kind.IsNamespace() {
			d.Contributions = contributions(d)
		}
		s.decls[d.Path] = d
		s.order = append(s.order, d.Path)
		if d.Path != code.RootPath {
			s.children[d.Namespace] = append(s.children[d.Namespace], d.Path)
		}
		return
	}
	merge(prev, d)
	s.decls[d.Path] = d
}

// merge carries accumulated state of prev over into its replacement next.
func merge(prev, next *code.Declaration) {
	files := slices.Clone(prev.Files)
	for _, f := range next.Files {
		if !slices.Contains(files, f) {
			files = append(files, f)
		}
	}
	next.Files = files
	if next.File == "" {
		next.File, next.Line = prev.File, prev.Line
	}
	if !prev.Kind.IsNamespace() || !next.Kind.IsNamespace() {
		return
	}
	if next.Kind == code.KindRoot {
		next.Kind = prev.Kind
	}
	contribs := slices.Clone(contributions(prev))
	for _, c := range contributions(next) {
		i := slices.IndexFunc(contribs, func(o code.Contribution) bool { return o.File == c.File })
		if i < 0 {
			contribs = append(contribs, c)
			continue
		}
		contribs[i] = fold(contribs[i], c)
	}
	next.Contributions = contribs
	applyContributions(next)
}

// contributions returns d's per-file state; a declaration fresh from the
// visitor contributes its own fields for its file.
func contributions(d *code.Declaration) []code.Contribution {
	if len(d.Contributions) > 0 {
		return d.Contributions
	}
	if d.File == "" {
		return nil
	}
	return []code.Contribution{{
		File:       d.File,
		Docstring:  d.Docstring,
		Superclass: d.Superclass,
		Mixins:     slices.Clone(d.Mixins),
	}}
}

// fold merges a later reopening in the same file into c.
func fold(c, later code.Contribution) code.Contribution {
	if !later.Docstring.Blank() {
		c.Docstring = later.Docstring
	}
	if later.Superclass != "" {
		c.Superclass = later.Superclass
	}
	c.Mixins = union(c.Mixins, later.Mixins)
	return c
}

// applyContributions recomputes the merged namespace state: the last
// non-blank docstring, the last superclass, mixins in first-seen order.
func applyContributions(d *code.Declaration) {
	var doc tags.Docstring
	var super string
	var mixins []code.Mixin
	for _, c := range d.Contributions {
		if !c.Docstring.Blank() || doc.Blank() {
			doc = c.Docstring
		}
		if c.Superclass != "" {
			super = c.Superclass
		}
		mixins = union(mixins, c.Mixins)
	}
	d.Docstring, d.Superclass, d.Mixins = doc, super, mixins
}

func union(a, b []code.Mixin) []code.Mixin {
	out := slices.Clone(a)
	for _, m := range b {
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

// At returns the declaration at path. The result is shared with the store
// and must not be modified.
func (s *Store) At(path string) (*code.Declaration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decls[path]
	return d, ok
}

// MustAt is At for tests: it panics when path is absent.
func (s *Store) MustAt(path string) *code.Declaration {
	d, ok := s.At(path)
	if !ok {
		panic(fmt.Sprintf("registry: no object at %q", code.Display(path)))
	}
	return d
}

// Clear drops everything except the root namespace.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Len counts declarations, root included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.decls)
}

func (s *Store) snapshot() []*code.Declaration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*code.Declaration, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, s.decls[p])
	}
	return out
}

// Each iterates over a snapshot in insertion order; inserts made during the
// iteration are not observed.
func (s *Store) Each() iter.Seq[*code.Declaration] {
	snap := s.snapshot()
	return func(yield func(*code.Declaration) bool) {
		for _, d := range snap {
			if !yield(d) {
				return
			}
		}
	}
}

// Paths returns all paths in insertion order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Children returns the members of namespace path in insertion order.
func (s *Store) Children(path string) []*code.Declaration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kids := s.children[path]
	out := make([]*code.Declaration, 0, len(kids))
	for _, p := range kids {
		out = append(out, s.decls[p])
	}
	return out
}

// DeleteFile forgets definition sites in file and drops declarations that
// were defined only there. It returns the number of dropped declarations.
func (s *Store) DeleteFile(file string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for path, d := range s.decls {
		if path == code.RootPath {
			continue
		}
		if !slices.ContainsFunc(d.Files, func(f code.FileRef) bool { return f.File == file }) && d.File != file {
			continue
		}
		c := d.Clone()
		c.Files = slices.DeleteFunc(c.Files, func(f code.FileRef) bool { return f.File == file })
		if len(c.Files) == 0 {
			delete(s.decls, path)
			dropped++
			continue
		}
		if c.File == file {
			c.File, c.Line = c.Files[0].File, c.Files[0].Line
		}
		if len(c.Contributions) > 0 {
			c.Contributions = slices.DeleteFunc(c.Contributions, func(o code.Contribution) bool { return o.File == file })
			applyContributions(c)
		}
		s.decls[path] = c
	}
	if dropped > 0 {
		s.reindex()
	}
	return dropped
}

// reindex drops deleted paths from the order and children indexes.
func (s *Store) reindex() {
	s.order = slices.DeleteFunc(s.order, func(p string) bool {
		_, ok := s.decls[p]
		return !ok
	})
	for ns, kids := range s.children {
		kids = slices.DeleteFunc(kids, func(p string) bool {
			_, ok := s.decls[p]
			return !ok
		})
		if len(kids) == 0 {
			delete(s.children, ns)
		} else {
			s.children[ns] = kids
		}
	}
}

// Snapshot returns deep-enough copies of all declarations in insertion
// order, for persisting.
func (s *Store) Snapshot() []*code.Declaration {
	snap := s.snapshot()
	out := make([]*code.Declaration, len(snap))
	for i, d := range snap {
		out[i] = d.Clone()
	}
	return out
}

// Restore replaces the contents of the store with decls. The new contents
// are built aside and swapped in at once; readers never see a partial store.
func (s *Store) Restore(decls []*code.Declaration) {
	next := &Store{}
	next.reset()
	for _, d := range decls {
		if d != nil {
			next.insert(d.Clone())
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decls, s.order, s.children = next.decls, next.order, next.children
}
