package lexer

import (
	"testing"

	"tome/internal/source"
)

func newCursor(t *testing.T, content string) Cursor {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("cursor.rb", []byte(content))
	return NewCursor(fs.Get(id))
}

func TestCursorBasics(t *testing.T) {
	c := newCursor(t, "ab\ncd")
	if c.Peek() != 'a' || c.PeekAt(1) != 'b' || c.PeekAt(10) != 0 {
		t.Fatal("peek mismatch")
	}
	m := c.Mark()
	c.Bump()
	c.Bump()
	if sp := c.SpanFrom(m); sp.Start != 0 || sp.End != 2 {
		t.Fatalf("span = %v", sp)
	}
	if c.AtLineStart() {
		t.Fatal("offset 2 is not a line start")
	}
	c.Bump()
	if !c.AtLineStart() {
		t.Fatal("offset 3 is a line start")
	}
	if !c.HasPrefix("cd") || c.HasPrefix("cde") {
		t.Fatal("HasPrefix mismatch")
	}
	c.Reset(m)
	c.SkipLine()
	if c.Off != 2 || c.Peek() != '\n' {
		t.Fatalf("SkipLine stopped at %d", c.Off)
	}
}

func TestCursorLimit(t *testing.T) {
	c := newCursor(t, "abc")
	c.Limit = 2
	c.Bump()
	if _, _, ok := c.Peek2(); ok {
		t.Fatal("Peek2 must respect Limit")
	}
	c.Bump()
	if !c.EOF() || c.Bump() != 0 {
		t.Fatal("cursor must stop at Limit")
	}
}
