package code_test

import (
	"testing"

	"tome/internal/code"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		ns, name string
		kind     code.Kind
		scope    code.Scope
		want     string
	}{
		{"", "Foo", code.KindClass, code.Instance, "Foo"},
		{"Foo", "Bar", code.KindModule, code.Instance, "Foo::Bar"},
		{"Foo", "bar", code.KindMethod, code.Instance, "Foo#bar"},
		{"Foo", "build", code.KindMethod, code.Class, "Foo.build"},
		{"", "helper", code.KindMethod, code.Instance, "#helper"},
		{"Foo", "name=", code.KindAttribute, code.Instance, "Foo#name="},
		{"Foo", "@@count", code.KindClassVariable, code.Instance, "Foo::@@count"},
		{"A::B", "VERSION", code.KindConstant, code.Instance, "A::B::VERSION"},
	}
	for _, tt := range tests {
		if got := code.Join(tt.ns, tt.name, tt.kind, tt.scope); got != tt.want {
			t.Errorf("Join(%q, %q) = %q, want %q", tt.ns, tt.name, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		path, ns, sep, name string
	}{
		{"Foo", "", "", "Foo"},
		{"A::B::C", "A::B", "::", "C"},
		{"A::B#m", "A::B", "#", "m"},
		{"A.build", "A", ".", "build"},
		{"#helper", "", "#", "helper"},
		{"A#==", "A", "#", "=="},
		{"A::B#[]=", "A::B", "#", "[]="},
		{"A.-@", "A", ".", "-@"},
		{"A::@@x", "A", "::", "@@x"},
	}
	for _, tt := range tests {
		ns, sep, name := code.Split(tt.path)
		if ns != tt.ns || sep != tt.sep || name != tt.name {
			t.Errorf("Split(%q) = %q %q %q, want %q %q %q", tt.path, ns, sep, name, tt.ns, tt.sep, tt.name)
		}
	}
}

func TestParentAndBase(t *testing.T) {
	if got := code.Parent("A::B#m"); got != "A::B" {
		t.Errorf("Parent = %q", got)
	}
	if got := code.Parent("Foo"); got != code.RootPath {
		t.Errorf("Parent(Foo) = %q", got)
	}
	if got := code.Base("A::B.m"); got != "m" {
		t.Errorf("Base = %q", got)
	}
	if !code.IsMethodPath("A#m") || code.IsMethodPath("A::B") {
		t.Error("IsMethodPath mismatch")
	}
}

func TestDisplayRoot(t *testing.T) {
	if got := code.Display(code.RootPath); got != "(root)" {
		t.Errorf("Display(root) = %q", got)
	}
	if got := code.NewRoot().DisplayPath(); got != "(root)" {
		t.Errorf("root DisplayPath = %q", got)
	}
}

func TestKindRoundTrip(t *testing.T) {
	for k := code.KindRoot; k <= code.KindClassVariable; k++ {
		got, err := code.ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := code.ParseKind("widget"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestAddFileDeduplicates(t *testing.T) {
	d := &code.Declaration{Path: "Foo", Kind: code.KindClass}
	d.AddFile(code.FileRef{File: "a.rb", Line: 1})
	d.AddFile(code.FileRef{File: "b.rb", Line: 3})
	d.AddFile(code.FileRef{File: "a.rb", Line: 1})
	if len(d.Files) != 2 {
		t.Errorf("files = %+v", d.Files)
	}
	c := d.Clone()
	c.AddFile(code.FileRef{File: "c.rb", Line: 9})
	if len(d.Files) != 2 {
		t.Error("Clone shares the Files slice")
	}
}
