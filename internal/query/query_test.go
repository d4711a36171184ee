package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tome/internal/code"
	"tome/internal/query"
	"tome/internal/registry"
	"tome/internal/tags"
)

func add(s *registry.Store, path string, kind code.Kind, doc string) *code.Declaration {
	d := &code.Declaration{
		Path:      path,
		Name:      code.Base(path),
		Kind:      kind,
		Namespace: code.Parent(path),
		Explicit:  true,
		Docstring: tags.DefaultLibrary().Parse(doc),
	}
	s.Insert(d)
	return d
}

func fixture() *registry.Store {
	s := registry.New()
	add(s, "Outer", code.KindModule, "The outer module.")
	add(s, "Outer::Inner", code.KindClass, "")
	add(s, "Outer::Inner#run", code.KindMethod, "Runs.\n@param x [Integer] count\n@param y [String] label\n@return [void]")
	add(s, "Outer::LIMIT", code.KindConstant, "")
	add(s, "Helpers", code.KindModule, "")
	add(s, "Helpers::TOOL", code.KindConstant, "A tool.")
	return s
}

func TestObjectNotFound(t *testing.T) {
	e := query.New(fixture())
	_, err := e.Object("Nope#x")
	require.ErrorIs(t, err, query.ErrObjectNotFound)
	_, ok := e.Lookup("Nope#x")
	assert.False(t, ok)
	_, err = e.Tags("Nope#x", "param")
	assert.ErrorIs(t, err, query.ErrObjectNotFound)
	_, err = e.Children("Nope")
	assert.ErrorIs(t, err, query.ErrObjectNotFound)
	assert.False(t, e.HasTag("Nope#x", "return"))
}

func TestTagsInSourceOrder(t *testing.T) {
	e := query.New(fixture())
	params, err := e.Tags("Outer::Inner#run", "param")
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "x", params[0].Subject)
	assert.Equal(t, "y", params[1].Subject)

	all, err := e.Tags("Outer::Inner#run", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ret, ok := e.Tag("Outer::Inner#run", "return")
	require.True(t, ok)
	assert.Equal(t, []string{"void"}, ret.Types)
	assert.True(t, e.HasTag("Outer::Inner#run", "param"))
	assert.False(t, e.HasTag("Outer::Inner#run", "raise"))
}

func TestChildrenAndByKind(t *testing.T) {
	e := query.New(fixture())
	kids, err := e.Children("Outer")
	require.NoError(t, err)
	var paths []string
	for _, k := range kids {
		paths = append(paths, k.Path)
	}
	assert.Equal(t, []string{"Outer::Inner", "Outer::LIMIT"}, paths)

	assert.Len(t, e.ByKind(code.KindModule), 2)
	assert.Len(t, e.ByKind(code.KindConstant, code.KindMethod), 3)
	assert.Len(t, e.ByKind(), 7)
}

func TestResolveWalksLexicalChain(t *testing.T) {
	s := fixture()
	e := query.New(s)

	d, ok := e.Resolve("Outer::Inner", "LIMIT")
	require.True(t, ok)
	assert.Equal(t, "Outer::LIMIT", d.Path)

	d, ok = e.Resolve("Outer::Inner", "Helpers")
	require.True(t, ok)
	assert.Equal(t, "Helpers", d.Path)

	_, ok = e.Resolve("Outer::Inner", "TOOL")
	assert.False(t, ok)

	e.SearchPaths = []string{"Helpers"}
	d, ok = e.Resolve("Outer::Inner", "TOOL")
	require.True(t, ok)
	assert.Equal(t, "Helpers::TOOL", d.Path)

	d, ok = e.Resolve("Outer::Inner", "::Outer")
	require.True(t, ok)
	assert.Equal(t, "Outer", d.Path)
}

func TestResolveThroughMixins(t *testing.T) {
	s := fixture()
	host := add(s, "Host", code.KindClass, "")
	host.AddMixin(code.Mixin{Kind: code.Include, Path: "Helpers"})
	s.Insert(host)
	e := query.New(s)

	d, ok := e.Resolve("Host", "TOOL")
	require.True(t, ok)
	assert.Equal(t, "Helpers::TOOL", d.Path)
}

func TestMethodFollowsSuperclass(t *testing.T) {
	s := fixture()
	child := add(s, "Outer::Child", code.KindClass, "")
	child.Superclass = "Inner"
	s.Insert(child)
	e := query.New(s)

	m, ok := e.Method("Outer::Child", "run", code.Instance)
	require.True(t, ok)
	assert.Equal(t, "Outer::Inner#run", m.Path)
	_, ok = e.Method("Outer::Child", "missing", code.Instance)
	assert.False(t, ok)
}

func TestUndocumentedAndStats(t *testing.T) {
	s := fixture()
	hidden := add(s, "Outer::Inner#secret", code.KindMethod, "")
	hidden.Visibility = code.Private
	s.Insert(hidden)
	e := query.New(s)

	var paths []string
	for _, d := range e.Undocumented() {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"Outer::Inner", "Outer::LIMIT", "Helpers"}, paths)

	st := e.Stats()
	assert.Equal(t, 7, st.Total)
	assert.Equal(t, 1, st.Private)
	assert.Equal(t, 3, st.Undocumented)
	assert.Equal(t, 2, st.ByKind[code.KindMethod])
	assert.Equal(t, 2, st.ByKind[code.KindConstant])
	assert.InDelta(t, 0.5, st.Coverage(), 1e-9)
}
