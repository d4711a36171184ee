package syntax

import (
	"tome/internal/source"
)

type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

// CommentBlock is a run of adjacent comment lines with the markers stripped.
type CommentBlock struct {
	Text      string
	Span      source.Span
	StartLine int
	EndLine   int
	// Hash is true for `#` comments and false for `=begin`/`=end` blocks.
	Hash bool
}

type Node struct {
	Kind     Kind
	Span     source.Span
	Children []NodeID
	Text     source.StringID
	// Doc is the comment block attached to a statement, nil when undocumented.
	Doc *CommentBlock
}

// Tree owns the nodes of one parsed file.
type Tree struct {
	File    source.FileID
	Nodes   *Arena[Node]
	Strings *source.Interner
}

// NewTree creates an empty tree. strings may be shared between trees; nil
// allocates a private interner.
func NewTree(file source.FileID, strings *source.Interner, capHint uint) *Tree {
	if strings == nil {
		strings = source.NewInterner()
	}
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Tree{
		File:    file,
		Nodes:   NewArena[Node](capHint),
		Strings: strings,
	}
}

// Add allocates a node; text is interned when non-empty.
func (t *Tree) Add(kind Kind, sp source.Span, text string, children ...NodeID) NodeID {
	n := Node{Kind: kind, Span: sp, Text: source.NoStringID}
	if text != "" {
		n.Text = t.Strings.Intern(text)
	}
	if len(children) > 0 {
		n.Children = append([]NodeID(nil), children...)
	}
	return NodeID(t.Nodes.Allocate(n))
}

// Node returns nil for NoNodeID.
func (t *Tree) Node(id NodeID) *Node {
	return t.Nodes.Get(uint32(id))
}

func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return KindError
}

// Text returns the node's interned text or "".
func (t *Tree) Text(id NodeID) string {
	n := t.Node(id)
	if n == nil || n.Text == source.NoStringID {
		return ""
	}
	s, _ := t.Strings.Lookup(n.Text)
	return s
}

// Child returns the i-th child slot, NoNodeID when absent.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.Node(id)
	if n == nil || i < 0 || i >= len(n.Children) {
		return NoNodeID
	}
	return n.Children[i]
}

func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

func (t *Tree) Append(id, child NodeID) {
	if n := t.Node(id); n != nil {
		n.Children = append(n.Children, child)
	}
}

func (t *Tree) SetDoc(id NodeID, doc *CommentBlock) {
	if n := t.Node(id); n != nil {
		n.Doc = doc
	}
}

func (t *Tree) SetSpan(id NodeID, sp source.Span) {
	if n := t.Node(id); n != nil {
		n.Span = sp
	}
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(NodeID, *Node) bool) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if !fn(id, n) {
		return
	}
	for _, c := range n.Children {
		t.Walk(c, fn)
	}
}
