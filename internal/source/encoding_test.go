package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeclaredEncoding(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"none", "class A; end\n", ""},
		{"plain", "# encoding: iso-8859-1\nx = 1\n", "iso-8859-1"},
		{"emacs", "# -*- coding: utf-8 -*-\n", "utf-8"},
		{"after shebang", "#!/usr/bin/env ruby\n# coding: Shift_JIS\n", "Shift_JIS"},
		{"second line without shebang", "x = 1\n# encoding: latin1\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeclaredEncoding([]byte(tt.src)); got != tt.want {
				t.Errorf("DeclaredEncoding() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadTranscodesLatin1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin.rb")
	// 0xE9 = 'é' в ISO-8859-1
	raw := []byte("# encoding: iso-8859-1\n# caf\xE9\nX = 1\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if f.GetLine(2) != "# café" {
		t.Errorf("line 2 = %q", f.GetLine(2))
	}
	if f.Flags&FileTranscoded == 0 || f.Encoding != "iso-8859-1" {
		t.Errorf("flags=%b encoding=%q", f.Flags, f.Encoding)
	}
}

func TestTranscodeUnknownEncoding(t *testing.T) {
	if _, _, _, err := Transcode([]byte("# encoding: klingon-7\n")); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}
