package driver_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sync"
	"testing"

	"tome/internal/code"
	"tome/internal/diag"
	"tome/internal/driver"
	"tome/internal/logging"
	"tome/internal/registry"
	"tome/internal/token"
)

func writeRuby(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const greeter = `class Foo
  # Says hello.
  # @return [String] greeting
  def bar
    "hi"
  end
end
`

func TestParseEndToEnd(t *testing.T) {
	logging.Isolate(t)
	path := writeRuby(t, t.TempDir(), "foo.rb", greeter)

	res, err := driver.Parse(context.Background(), driver.Request{Paths: []string{path}, LogLevel: "quiet"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	foo, ok := res.Store.At("Foo")
	if !ok || foo.Kind != code.KindClass {
		t.Fatalf("Foo = %+v, %v", foo, ok)
	}
	bar, ok := res.Store.At("Foo#bar")
	if !ok {
		t.Fatalf("Foo#bar missing; have %v", res.Store.Paths())
	}
	if bar.Namespace != "Foo" || bar.Docstring.Text != "Says hello." {
		t.Errorf("bar = %+v", bar)
	}
	ret, ok := res.Engine().Tag("Foo#bar", "return")
	if !ok {
		t.Fatal("no @return on Foo#bar")
	}
	if !slices.Equal(ret.Types, []string{"String"}) || ret.Text != "greeting" {
		t.Errorf("@return = %+v", ret)
	}
	if res.Bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %+v", res.Bag.Items())
	}
	if got := res.Files[0]; got.Declarations != 2 || got.Skipped {
		t.Errorf("file result = %+v", got)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	logging.Isolate(t)
	dir := t.TempDir()
	a := writeRuby(t, dir, "a.rb", "module Shared\n  # First.\n  def one; end\nend\n")
	b := writeRuby(t, dir, "b.rb", "module Shared\n  def two; end\n  LIMIT = 3\nend\n")

	store := registry.New()
	req := driver.Request{Paths: []string{a, b}, Store: store, LogLevel: "quiet"}
	if _, err := driver.Parse(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	first := store.Snapshot()
	if _, err := driver.Parse(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if second := store.Snapshot(); !reflect.DeepEqual(first, second) {
		t.Errorf("second parse changed the registry:\nfirst  %v\nsecond %v", pathsOf(first), pathsOf(second))
	}
}

func pathsOf(decls []*code.Declaration) []string {
	out := make([]string, len(decls))
	for i, d := range decls {
		out[i] = d.Path
	}
	return out
}

func TestParseRecoversFromSyntaxErrors(t *testing.T) {
	logging.Isolate(t)
	dir := t.TempDir()
	broken := writeRuby(t, dir, "broken.rb", "class Foo\n  def a; end\n  x = = 1\n  def b; end\nend\n")
	fine := writeRuby(t, dir, "fine.rb", "module Bar; end\n")

	res, err := driver.Parse(context.Background(), driver.Request{Paths: []string{broken, fine}, LogLevel: "fatal"})
	if err != nil {
		t.Fatalf("syntax errors must not abort the batch: %v", err)
	}
	if n := res.Bag.Count(diag.SevError); n != 1 {
		t.Errorf("errors = %d, want 1: %+v", n, res.Bag.Items())
	}
	for _, p := range []string{"Foo", "Foo#a", "Foo#b", "Bar"} {
		if _, ok := res.Store.At(p); !ok {
			t.Errorf("%s missing after recovery", p)
		}
	}
	if res.Files[0].Errors != 1 || res.Files[1].Errors != 0 {
		t.Errorf("per-file errors = %+v", res.Files)
	}
}

func TestParseMissingFile(t *testing.T) {
	logging.Isolate(t)
	logging.SetOutput(new(discard))
	dir := t.TempDir()
	ok := writeRuby(t, dir, "ok.rb", "class Present; end\n")
	missing := filepath.Join(dir, "nope.rb")

	store := registry.New()
	_, err := driver.Parse(context.Background(), driver.Request{Paths: []string{ok, missing}, Store: store})
	if !errors.Is(err, driver.ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
	var notFound *driver.FileNotFoundError
	if !errors.As(err, &notFound) || notFound.Path != missing {
		t.Fatalf("err = %#v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause lost: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("nothing may be committed, got %v", store.Paths())
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestParseCommitsInInputOrder(t *testing.T) {
	logging.Isolate(t)
	dir := t.TempDir()
	var paths, want []string
	for i := range 12 {
		name := fmt.Sprintf("M%02d", 11-i)
		paths = append(paths, writeRuby(t, dir, fmt.Sprintf("f%02d.rb", i), "module "+name+"\n  def m; end\nend\n"))
		want = append(want, name, name+"#m")
	}

	res, err := driver.Parse(context.Background(), driver.Request{Paths: paths, Jobs: 4, LogLevel: "quiet"})
	if err != nil {
		t.Fatal(err)
	}
	got := res.Store.Paths()[1:]
	if !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestChecksumsSkipUnchangedFiles(t *testing.T) {
	logging.Isolate(t)
	dir := t.TempDir()
	path := writeRuby(t, dir, "svc.rb", "class Svc\n  def start; end\n  def stop; end\nend\n")
	other := writeRuby(t, dir, "other.rb", "class Other; end\n")

	store := registry.New()
	req := driver.Request{Paths: []string{path, other}, Store: store, LogLevel: "quiet"}
	first, err := driver.Parse(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	req.Checksums = first.Checksums
	second, err := driver.Parse(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if got := second.Skipped(); len(got) != 2 {
		t.Fatalf("skipped = %v, want both files", got)
	}

	writeRuby(t, dir, "svc.rb", "class Svc\n  def start; end\nend\n")
	third, err := driver.Parse(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if got := third.Parsed(); len(got) != 1 || filepath.Base(got[0]) != "svc.rb" {
		t.Errorf("parsed = %v, want only svc.rb", got)
	}
	if _, ok := store.At("Svc#stop"); ok {
		t.Error("Svc#stop survived re-parse of its file")
	}
	if _, ok := store.At("Other"); !ok {
		t.Error("declarations of the skipped file were lost")
	}
}

func TestParseSource(t *testing.T) {
	logging.Isolate(t)
	res, err := driver.ParseSource(context.Background(), driver.Request{LogLevel: "quiet"}, "(stdin)", []byte(greeter))
	if err != nil {
		t.Fatal(err)
	}
	bar := res.Store.MustAt("Foo#bar")
	if bar.File != "(stdin)" || bar.Line != 4 {
		t.Errorf("location = %s:%d", bar.File, bar.Line)
	}
}

func TestParseProgressAndCancel(t *testing.T) {
	logging.Isolate(t)
	dir := t.TempDir()
	paths := []string{
		writeRuby(t, dir, "a.rb", "class A; end\n"),
		writeRuby(t, dir, "b.rb", "class B\n  x = = 1\nend\n"),
	}

	var mu sync.Mutex
	seen := map[driver.Status]int{}
	sink := driver.SinkFunc(func(ev driver.Event) {
		mu.Lock()
		defer mu.Unlock()
		if ev.File != "" {
			seen[ev.Status]++
		}
	})
	if _, err := driver.Parse(context.Background(), driver.Request{Paths: paths, Progress: sink, LogLevel: "fatal"}); err != nil {
		t.Fatal(err)
	}
	if seen[driver.StatusQueued] != 2 || seen[driver.StatusWorking] != 2 || seen[driver.StatusDone] != 1 || seen[driver.StatusError] != 1 {
		t.Errorf("events = %v", seen)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := driver.Parse(ctx, driver.Request{Paths: paths}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseRestoresLogLevel(t *testing.T) {
	logging.Isolate(t)
	logging.SetLevel(logging.LevelDebug)
	path := writeRuby(t, t.TempDir(), "x.rb", "X = 1\n")

	if _, err := driver.Parse(context.Background(), driver.Request{Paths: []string{path}, LogLevel: "quiet"}); err != nil {
		t.Fatal(err)
	}
	if logging.CurrentLevel() != logging.LevelDebug {
		t.Errorf("level = %v after Parse", logging.CurrentLevel())
	}
	if _, err := driver.Parse(context.Background(), driver.Request{Paths: []string{path}, LogLevel: "chatty"}); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeRuby(t, dir, "lib/a.rb", "")
	writeRuby(t, dir, "lib/sub/b.rb", "")
	writeRuby(t, dir, "lib/sub/readme.md", "")
	writeRuby(t, dir, "spec/a_spec.rb", "")

	got, err := driver.Expand([]string{
		filepath.Join(dir, "lib"),
		filepath.Join(dir, "lib", "a.rb"),
		filepath.Join(dir, "spec", "*_spec.rb"),
		filepath.Join(dir, "missing.rb"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "lib", "a.rb"),
		filepath.Join(dir, "lib", "sub", "b.rb"),
		filepath.Join(dir, "spec", "a_spec.rb"),
		filepath.Join(dir, "missing.rb"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("Expand =\n%v\nwant\n%v", got, want)
	}
}

func TestTokenize(t *testing.T) {
	path := writeRuby(t, t.TempDir(), "t.rb", "puts 1\n")
	res, err := driver.Tokenize(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(res.Tokens); n == 0 || res.Tokens[n-1].Kind != token.EOF {
		t.Errorf("tokens = %v", res.Tokens)
	}
	if _, err := driver.Tokenize(filepath.Join(t.TempDir(), "none.rb"), 0); !errors.Is(err, driver.ErrFileNotFound) {
		t.Errorf("err = %v", err)
	}
}
