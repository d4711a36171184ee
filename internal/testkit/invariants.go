package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"tome/internal/source"
	"tome/internal/syntax"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) the root span lies within the file content and belongs to the file
// 2) every non-empty child span is contained in its parent's span
// 3) doc comments end before the node they document starts
func CheckSpanInvariants(tree *syntax.Tree, root syntax.NodeID, sf *source.File) error {
	if tree == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	rn := tree.Node(root)
	if rn == nil {
		return fmt.Errorf("root node not found")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if rn.Span.File != sf.ID {
		return fmt.Errorf("root span points to different file id: got=%d want=%d", rn.Span.File, sf.ID)
	}
	if rn.Span.End > lenContent || rn.Span.Start > rn.Span.End {
		return fmt.Errorf("root span %v outside content of %d bytes", rn.Span, lenContent)
	}

	var failure error
	var check func(id syntax.NodeID, parent source.Span)
	check = func(id syntax.NodeID, parent source.Span) {
		n := tree.Node(id)
		if n == nil || failure != nil || n.Kind == syntax.KindComment {
			// свободные комментарии не обязаны лежать внутри тела
			return
		}
		sp := n.Span
		if !sp.Empty() {
			if sp.File != sf.ID {
				failure = fmt.Errorf("%s span file mismatch: got=%d want=%d", n.Kind, sp.File, sf.ID)
				return
			}
			if sp.Start < parent.Start || sp.End > parent.End {
				failure = fmt.Errorf("%s span %v is outside parent span %v", n.Kind, sp, parent)
				return
			}
			parent = sp
		}
		if n.Doc != nil && !sp.Empty() && n.Doc.Span.End > sp.Start {
			failure = fmt.Errorf("%s doc comment %v overlaps node %v", n.Kind, n.Doc.Span, sp)
			return
		}
		for _, c := range n.Children {
			check(c, parent)
		}
	}
	for _, c := range rn.Children {
		check(c, rn.Span)
	}
	return failure
}
