package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"tome/internal/diag"
	"tome/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	content := []byte("x = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/lib/test.rb", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 4, End: 24},
		"Unterminated string literal",
	))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/lib/test.rb:1:5"},
		{"Relative path", PathModeRelative, "lib/test.rb:1:5"},
		{"Basename only", PathModeBasename, "test.rb:1:5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := buf.String()

			for _, want := range []string{tt.contains, "ERROR", "LEX1002", "Unterminated string"} {
				if !strings.Contains(output, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, output)
				}
			}
		})
	}
}

func TestPrettyUnderline(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("lib/a.rb", []byte("class Foo\n  def = 1\nend\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SynExpectMethodName, source.Span{File: fileID, Start: 16, End: 17}, "expected method name"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename})
	want := strings.Join([]string{
		"a.rb:2:7: ERROR SYN2009: expected method name",
		" 1 | class Foo",
		" 2 |   def = 1",
		"   |       ^",
		" 3 | end",
		"",
	}, "\n")
	if !strings.HasPrefix(buf.String(), want) {
		t.Errorf("got:\n%s\nwant prefix:\n%s", buf.String(), want)
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.rb", []byte("module Foo\n  include bar\nend\n"))

	d := diag.New(diag.SevWarning, diag.SemaUnresolvedMixin, source.Span{File: fileID, Start: 21, End: 24}, "mixin cannot be resolved")
	d = d.WithNote(source.Span{File: fileID, Start: 0, End: 10}, "inside module Foo")
	bag := diag.NewBag(4)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	output := buf.String()
	if !strings.Contains(output, "note: test.rb:1:1: inside module Foo") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}
	if !strings.Contains(output, "^~~") {
		t.Fatalf("expected three-column underline, got:\n%s", output)
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(buf.String(), "note:") {
		t.Errorf("notes printed without ShowNotes:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("c.rb", []byte("x\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.LexUnknownChar, source.Span{File: fileID, Start: 0, End: 1}, "bad"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("escape codes without Color:\n%q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("no escape codes with Color:\n%q", colored.String())
	}
}
