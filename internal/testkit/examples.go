// Package testkit holds shared helpers for tests: fixture loading and
// structural invariants of parse trees.
package testkit

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"tome/internal/diag"
	"tome/internal/driver"
	"tome/internal/lexer"
	"tome/internal/logging"
	"tome/internal/parser"
	"tome/internal/source"
	"tome/internal/syntax"
)

// ExampleSuffix is the fixture extension; the extra .txt keeps the files
// out of Ruby tooling.
const ExampleSuffix = ".rb.txt"

// ExamplesDir returns the absolute path of the shared fixture directory.
func ExamplesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "examples")
}

// Examples lists fixture names without the suffix.
func Examples(t testing.TB) []string {
	t.Helper()
	entries, err := os.ReadDir(ExamplesDir())
	if err != nil {
		t.Fatalf("read examples: %v", err)
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ExampleSuffix); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	return names
}

// ReadExample returns the text of fixture name.
func ReadExample(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(ExamplesDir(), name+ExampleSuffix))
	if err != nil {
		t.Fatalf("read example %s: %v", name, err)
	}
	return data
}

// ParseExample runs the full pipeline over fixture name into a fresh store.
// The log level is isolated and set to quiet for the duration of the test.
func ParseExample(t testing.TB, name string) *driver.Result {
	t.Helper()
	logging.Isolate(t)
	res, err := driver.ParseSource(context.Background(), driver.Request{LogLevel: "quiet"}, "lib/"+name+".rb", ReadExample(t, name))
	if err != nil {
		t.Fatalf("parse example %s: %v", name, err)
	}
	return res
}

// Tree is a parsed file without the visitor stage.
type Tree struct {
	FileSet *source.FileSet
	File    *source.File
	Tree    *syntax.Tree
	Root    syntax.NodeID
	Bag     *diag.Bag
}

// ParseTree lexes and parses text only.
func ParseTree(name string, text []byte) *Tree {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, text)
	file := fs.Get(id)
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	tree := syntax.NewTree(id, nil, 0)
	res := parser.ParseFile(fs, lexer.New(file, lexer.Options{Reporter: rep}), tree, parser.Options{Reporter: rep})
	return &Tree{FileSet: fs, File: file, Tree: tree, Root: res.Root, Bag: bag}
}
