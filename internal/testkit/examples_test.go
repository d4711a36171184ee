package testkit_test

import (
	"context"
	"reflect"
	"slices"
	"strings"
	"testing"

	"tome/internal/code"
	"tome/internal/diag"
	"tome/internal/driver"
	"tome/internal/logging"
	"tome/internal/registry"
	"tome/internal/testkit"
)

func TestExamplesKeepSpanInvariants(t *testing.T) {
	names := testkit.Examples(t)
	if len(names) == 0 {
		t.Fatal("no examples found")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			tr := testkit.ParseTree(name+".rb", testkit.ReadExample(t, name))
			if !strings.HasPrefix(name, "recovery") && tr.Bag.HasErrors() {
				t.Fatalf("syntax errors:\n%s", diag.FormatShortDiagnostics(tr.Bag.Items(), tr.FileSet))
			}
			if err := testkit.CheckSpanInvariants(tr.Tree, tr.Root, tr.File); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestGreeterEndToEnd(t *testing.T) {
	res := testkit.ParseExample(t, "greeter")
	if _, ok := res.Store.At("Foo"); !ok {
		t.Fatalf("Foo missing; have %v", res.Store.Paths())
	}
	bar, ok := res.Store.At("Foo#bar")
	if !ok {
		t.Fatalf("Foo#bar missing; have %v", res.Store.Paths())
	}
	returns := bar.Docstring.TagsNamed("return")
	if len(returns) != 1 || !slices.Equal(returns[0].Types, []string{"String"}) {
		t.Errorf("return tags = %+v", returns)
	}
	if !res.Engine().HasTag("Foo", "example") {
		t.Error("class @example tag lost")
	}
}

func TestParsingTwiceIsIdempotent(t *testing.T) {
	logging.Isolate(t)
	src := testkit.ReadExample(t, "library")
	store := registry.New()
	parse := func() []*code.Declaration {
		_, err := driver.ParseSource(context.Background(), driver.Request{Store: store, LogLevel: "quiet"}, "lib/library.rb", src)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		return store.Snapshot()
	}
	once := parse()
	twice := parse()
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second parse changed the registry:\nonce:  %v\ntwice: %v", paths(once), paths(twice))
	}
}

func paths(decls []*code.Declaration) []string {
	out := make([]string, len(decls))
	for i, d := range decls {
		out[i] = d.Path
	}
	return out
}

func TestRecoveryKeepsSiblings(t *testing.T) {
	res := testkit.ParseExample(t, "recovery")
	for _, p := range []string{"Good", "Good#one", "AlsoGood", "AlsoGood#two"} {
		if _, ok := res.Store.At(p); !ok {
			t.Errorf("%s missing; have %v", p, res.Store.Paths())
		}
	}
	if n := res.Bag.Count(diag.SevError); n != 1 {
		t.Fatalf("errors = %d, want 1:\n%s", n, diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet))
	}
	entries := diag.Resolve(res.Bag.Items(), res.FileSet)
	for _, e := range entries {
		if e.Severity == diag.SevError && e.Line != 5 {
			t.Errorf("error reported at line %d, want 5", e.Line)
		}
	}
}

func TestBrokenHeadersKeepSiblings(t *testing.T) {
	res := testkit.ParseExample(t, "recovery_headers")
	for _, p := range []string{"Good#one", "Foo#a", "AlsoGood#two"} {
		if _, ok := res.Store.At(p); !ok {
			t.Errorf("%s missing; have %v", p, res.Store.Paths())
		}
	}
	var lines []int
	for _, e := range diag.Resolve(res.Bag.Items(), res.FileSet) {
		if e.Severity == diag.SevError {
			lines = append(lines, int(e.Line))
		}
	}
	if want := []int{5, 7, 10, 12}; !slices.Equal(lines, want) {
		t.Errorf("error lines = %v, want %v:\n%s", lines, want, diag.FormatShortDiagnostics(res.Bag.Items(), res.FileSet))
	}
}

func TestLibraryExample(t *testing.T) {
	res := testkit.ParseExample(t, "library")
	q := res.Engine()

	shelf, err := q.Object("Library::Shelf")
	if err != nil {
		t.Fatal(err)
	}
	if shelf.Superclass != "Base" || !slices.Equal(shelf.Mixins, []code.Mixin{{Kind: code.Include, Path: "Enumerable"}}) {
		t.Errorf("Shelf = %+v", shelf)
	}

	if v, ok := q.Resolve("Library::Shelf", "VERSION"); !ok || v.Value != `"1.2.0"` {
		t.Errorf("VERSION resolved to %+v, %v", v, ok)
	}

	params, err := q.Tags("Library::Shelf#initialize", "param")
	if err != nil {
		t.Fatal(err)
	}
	if len(params) != 2 || params[0].Subject != "capacity" || !slices.Equal(params[0].Types, []string{"Integer"}) {
		t.Errorf("params = %+v", params)
	}
	if opt, ok := q.Tag("Library::Shelf#initialize", "option"); !ok || opt.Option == nil {
		t.Errorf("option = %+v", opt)
	}

	overloads, _ := q.Tags("Library::Shelf#add", "overload")
	if len(overloads) != 2 {
		t.Errorf("overloads = %d, want 2", len(overloads))
	}
	if !q.HasTag("Library::Shelf#add", "raise") {
		t.Error("@raise lost")
	}

	push, ok := q.Lookup("Library::Shelf#push")
	if !ok || push.AliasOf != "Library::Shelf#add" {
		t.Errorf("push = %+v", push)
	}
	if r, ok := q.Lookup("Library::Shelf#reindex"); !ok || r.Visibility != code.Private {
		t.Errorf("reindex = %+v", r)
	}

	capacity, ok := q.Lookup("Library::Shelf#capacity")
	if !ok || capacity.Kind != code.KindAttribute || !capacity.Attr.Read {
		t.Errorf("capacity = %+v", capacity)
	}

	undocumented := paths(q.Undocumented())
	if !slices.Contains(undocumented, "Library::Shelf#each") {
		t.Errorf("each should be undocumented: %v", undocumented)
	}
	for _, p := range []string{"Library::Shelf#reindex", "Library::Shelf#push", "Library::Shelf#add"} {
		if slices.Contains(undocumented, p) {
			t.Errorf("%s reported undocumented", p)
		}
	}
}

func TestDirectivesExample(t *testing.T) {
	res := testkit.ParseExample(t, "directives")
	q := res.Engine()

	save, ok := q.Lookup("Model#save")
	if !ok || save.Explicit || save.Docstring.Text != "Persists the record." {
		t.Errorf("save = %+v", save)
	}
	name, ok := q.Lookup("Model#name")
	if !ok || name.Attr != (code.Attr{Read: true, Write: true}) {
		t.Errorf("name = %+v", name)
	}
	if cb, ok := q.Lookup("Model#before_save"); !ok || cb.Group != "Callbacks" {
		t.Errorf("before_save = %+v", cb)
	}
	if in, ok := q.Lookup("Model#internal"); !ok || in.Visibility != code.Private {
		t.Errorf("internal = %+v", in)
	}
}
