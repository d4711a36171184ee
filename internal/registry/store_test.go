package registry_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tome/internal/code"
	"tome/internal/registry"
	"tome/internal/tags"
)

func decl(path string, kind code.Kind, file string, line int) *code.Declaration {
	d := &code.Declaration{
		Path:      path,
		Name:      code.Base(path),
		Kind:      kind,
		Namespace: code.Parent(path),
		File:      file,
		Line:      line,
		Explicit:  true,
	}
	d.AddFile(code.FileRef{File: file, Line: line})
	return d
}

func TestNewStoreHasRoot(t *testing.T) {
	s := registry.New()
	root, ok := s.At(code.RootPath)
	require.True(t, ok)
	assert.Equal(t, code.KindRoot, root.Kind)
	assert.Equal(t, 1, s.Len())
}

func TestInsertOverwritesLastWriteWins(t *testing.T) {
	s := registry.New()
	first := decl("Foo#bar", code.KindMethod, "a.rb", 1)
	first.Signature = "def bar"
	second := decl("Foo#bar", code.KindMethod, "b.rb", 7)
	second.Signature = "def bar(x)"

	s.Insert(first)
	s.Insert(second)

	got := s.MustAt("Foo#bar")
	assert.Equal(t, "def bar(x)", got.Signature)
	assert.Equal(t, "b.rb", got.File)
	assert.Equal(t, []code.FileRef{{File: "a.rb", Line: 1}, {File: "b.rb", Line: 7}}, got.Files)
	assert.Equal(t, 2, s.Len())
}

func TestInsertCopiesDeclaration(t *testing.T) {
	s := registry.New()
	d := decl("Foo", code.KindClass, "a.rb", 1)
	s.Insert(d)
	d.Superclass = "Mutated"
	assert.Empty(t, s.MustAt("Foo").Superclass)
}

func TestReopenedNamespaceKeepsDocsAndMixins(t *testing.T) {
	s := registry.New()
	first := decl("Foo", code.KindClass, "a.rb", 1)
	first.Docstring = tags.Docstring{Text: "The Foo."}
	first.Superclass = "Base"
	first.AddMixin(code.Mixin{Kind: code.Include, Path: "Comparable"})
	reopened := decl("Foo", code.KindClass, "b.rb", 3)
	reopened.AddMixin(code.Mixin{Kind: code.Extend, Path: "Forwardable"})

	s.Insert(first)
	s.Insert(reopened)

	got := s.MustAt("Foo")
	assert.Equal(t, "The Foo.", got.Docstring.Text)
	assert.Equal(t, "Base", got.Superclass)
	assert.Len(t, got.Files, 2)
	assert.Equal(t, []code.Mixin{
		{Kind: code.Include, Path: "Comparable"},
		{Kind: code.Extend, Path: "Forwardable"},
	}, got.Mixins)

	documented := decl("Foo", code.KindClass, "c.rb", 1)
	documented.Docstring = tags.Docstring{Text: "New docs."}
	s.Insert(documented)
	assert.Equal(t, "New docs.", s.MustAt("Foo").Docstring.Text)
}

func TestAtIsTotal(t *testing.T) {
	s := registry.New()
	for _, p := range []string{"Missing", "A::B#c", "#x", "::"} {
		d, ok := s.At(p)
		assert.False(t, ok, p)
		assert.Nil(t, d, p)
	}
	assert.Panics(t, func() { s.MustAt("Missing") })
}

func TestEachInInsertionOrder(t *testing.T) {
	s := registry.New()
	for _, p := range []string{"B", "A", "B#z", "A#a"} {
		kind := code.KindClass
		if code.IsMethodPath(p) {
			kind = code.KindMethod
		}
		s.Insert(decl(p, kind, "x.rb", 1))
	}
	s.Insert(decl("B", code.KindClass, "y.rb", 1))

	var got []string
	for d := range s.Each() {
		got = append(got, d.Path)
	}
	assert.Equal(t, []string{"", "B", "A", "B#z", "A#a"}, got)
	assert.Equal(t, got, s.Paths())

	var kids []string
	for _, d := range s.Children("B") {
		kids = append(kids, d.Path)
	}
	assert.Equal(t, []string{"B#z"}, kids)
	assert.Len(t, s.Children(code.RootPath), 2)
}

func TestEachStopsEarly(t *testing.T) {
	s := registry.New()
	s.Insert(decl("A", code.KindModule, "x.rb", 1))
	s.Insert(decl("B", code.KindModule, "x.rb", 2))
	n := 0
	for range s.Each() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestDeleteFile(t *testing.T) {
	s := registry.New()
	s.Insert(decl("Foo", code.KindClass, "a.rb", 1))
	s.Insert(decl("Foo", code.KindClass, "b.rb", 1))
	s.Insert(decl("Foo#only_a", code.KindMethod, "a.rb", 2))
	s.Insert(decl("Foo#only_b", code.KindMethod, "b.rb", 2))

	dropped := s.DeleteFile("a.rb")
	assert.Equal(t, 1, dropped)

	_, ok := s.At("Foo#only_a")
	assert.False(t, ok)
	foo := s.MustAt("Foo")
	assert.Equal(t, "b.rb", foo.File)
	assert.Equal(t, []code.FileRef{{File: "b.rb", Line: 1}}, foo.Files)
	assert.Equal(t, []string{"", "Foo", "Foo#only_b"}, s.Paths())
}

func TestReparseDropsStateOfRemovedFile(t *testing.T) {
	old := decl("Foo", code.KindClass, "a.rb", 2)
	old.Docstring = tags.Docstring{Text: "Old docs."}
	old.Superclass = "Base"
	old.AddMixin(code.Mixin{Kind: code.Include, Path: "Comparable"})
	reopened := decl("Foo", code.KindClass, "b.rb", 1)
	reopened.AddMixin(code.Mixin{Kind: code.Extend, Path: "Forwardable"})
	edited := decl("Foo", code.KindClass, "a.rb", 1)

	s := registry.New()
	s.Insert(old)
	s.Insert(reopened)
	s.DeleteFile("a.rb")
	s.Insert(edited)

	fresh := registry.New()
	fresh.Insert(edited)
	fresh.Insert(reopened)

	got, want := s.MustAt("Foo"), fresh.MustAt("Foo")
	assert.True(t, got.Docstring.Blank(), "docstring = %q", got.Docstring.Text)
	assert.Empty(t, got.Superclass)
	assert.Equal(t, want.Mixins, got.Mixins)
	assert.Equal(t, []code.Mixin{{Kind: code.Extend, Path: "Forwardable"}}, got.Mixins)
}

func TestDeleteFileFallsBackToRemainingDocs(t *testing.T) {
	a := decl("Foo", code.KindClass, "a.rb", 1)
	a.Docstring = tags.Docstring{Text: "From a."}
	b := decl("Foo", code.KindClass, "b.rb", 1)
	b.Docstring = tags.Docstring{Text: "From b."}

	s := registry.New()
	s.Insert(a)
	s.Insert(b)
	require.Equal(t, "From b.", s.MustAt("Foo").Docstring.Text)

	s.DeleteFile("b.rb")
	assert.Equal(t, "From a.", s.MustAt("Foo").Docstring.Text)
}

func TestSnapshotRestore(t *testing.T) {
	s := registry.New()
	s.Insert(decl("A", code.KindModule, "x.rb", 1))
	s.Insert(decl("A#m", code.KindMethod, "x.rb", 2))
	snap := s.Snapshot()

	s.Clear()
	assert.Equal(t, 1, s.Len())

	s.Restore(snap)
	assert.Equal(t, []string{"", "A", "A#m"}, s.Paths())
	assert.Equal(t, "A", s.MustAt("A#m").Namespace)
}

func TestRestoreIsAtomicForReaders(t *testing.T) {
	src := registry.New()
	for i := range 50 {
		src.Insert(decl(fmt.Sprintf("M#m%d", i), code.KindMethod, "x.rb", i))
	}
	snap := src.Snapshot()
	want := src.Len()

	s := registry.New()
	s.Restore(snap)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 20 {
			s.Restore(snap)
		}
		close(stop)
	}()
	for {
		select {
		case <-stop:
			wg.Wait()
			assert.Equal(t, want, s.Len())
			return
		default:
			if n := s.Len(); n != want {
				t.Fatalf("reader saw %d declarations during Restore, want %d", n, want)
			}
		}
	}
}

func TestConcurrentInserts(t *testing.T) {
	s := registry.New()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				s.Insert(decl(fmt.Sprintf("M%d#m%d", i, j), code.KindMethod, "x.rb", j))
				_, _ = s.At("M0#m0")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1+8*50, s.Len())
}
