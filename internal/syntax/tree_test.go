package syntax

import (
	"testing"

	"tome/internal/source"
)

func TestTreeBuildAndDump(t *testing.T) {
	tr := NewTree(0, nil, 0)
	name := tr.Add(KindConst, source.Span{}, "Foo")
	def := tr.Add(KindDef, source.Span{}, "bar", NoNodeID, NoNodeID, tr.Add(KindBody, source.Span{}, ""))
	body := tr.Add(KindBody, source.Span{}, "", def)
	cls := tr.Add(KindClass, source.Span{}, "", name, NoNodeID, body)

	if got, want := tr.Dump(cls), "(class (const Foo) nil (body (def bar nil nil (body))))"; got != want {
		t.Fatalf("Dump = %s, want %s", got, want)
	}
	if tr.Child(cls, 1) != NoNodeID || tr.Child(cls, 7) != NoNodeID {
		t.Fatal("absent slots must be NoNodeID")
	}
	if tr.Text(def) != "bar" || tr.Kind(NoNodeID) != KindError {
		t.Fatal("accessors disagree")
	}
}

func TestWalkPreOrder(t *testing.T) {
	tr := NewTree(0, nil, 0)
	a := tr.Add(KindIdent, source.Span{}, "a")
	b := tr.Add(KindIdent, source.Span{}, "b")
	body := tr.Add(KindBody, source.Span{}, "", a, b)

	var seen []NodeID
	tr.Walk(body, func(id NodeID, _ *Node) bool {
		seen = append(seen, id)
		return true
	})
	if len(seen) != 3 || seen[0] != body || seen[1] != a || seen[2] != b {
		t.Fatalf("unexpected walk order %v", seen)
	}

	seen = seen[:0]
	tr.Walk(body, func(id NodeID, _ *Node) bool {
		seen = append(seen, id)
		return false
	})
	if len(seen) != 1 {
		t.Fatalf("children must be skipped, got %v", seen)
	}
}
