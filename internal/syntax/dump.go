package syntax

import (
	"strings"
)

// Dump renders the subtree as an S-expression, e.g.
// (class (const Foo) nil (body (def foo nil nil (body)))).
// Absent slots print as nil; doc comments are not printed.
func (t *Tree) Dump(id NodeID) string {
	var b strings.Builder
	t.dump(&b, id)
	return b.String()
}

func (t *Tree) dump(b *strings.Builder, id NodeID) {
	n := t.Node(id)
	if n == nil {
		b.WriteString("nil")
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Kind.String())
	if txt := t.Text(id); txt != "" {
		b.WriteByte(' ')
		b.WriteString(txt)
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		t.dump(b, c)
	}
	b.WriteByte(')')
}
