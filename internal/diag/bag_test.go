package diag

import (
	"testing"

	"tome/internal/source"
)

func TestBagLimitAndCounts(t *testing.T) {
	b := NewBag(2)
	b.Add(NewError(SynUnexpectedToken, source.Span{}, "a"))
	b.Add(New(SevWarning, SemaUnknownTag, source.Span{}, "b"))
	if b.Add(NewError(SynMissingEnd, source.Span{}, "c")) {
		t.Fatal("third diagnostic must be rejected by limit")
	}
	if b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("Len=%d Dropped=%d", b.Len(), b.Dropped())
	}
	if !b.HasErrors() || !b.HasWarnings() || b.Count(SevWarning) != 1 {
		t.Fatal("severity helpers disagree with contents")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, SemaUnknownTag, source.Span{File: 0, Start: 10, End: 12}, "w"))
	b.Add(NewError(SynUnexpectedToken, source.Span{File: 0, Start: 2, End: 3}, "e"))
	b.Add(NewError(SynUnexpectedToken, source.Span{File: 0, Start: 2, End: 3}, "e again"))
	b.Sort()
	b.Dedup()

	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Primary.Start != 2 || items[1].Code != SemaUnknownTag {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexUnterminatedString: "LEX1002",
		SynMissingEnd:         "SYN2005",
		SemaUnknownTag:        "SEM3001",
		IOLoadFileError:       "IO4001",
		UnknownCode:           "E0000",
	}
	for c, want := range cases {
		if c.ID() != want {
			t.Errorf("%d.ID() = %q, want %q", c, c.ID(), want)
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Errorf("unknown code title = %q", Code(9999).Title())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportError(BagReporter{Bag: b}, SynMissingEnd, source.Span{}, "missing end").
		WithNote(source.Span{Start: 1, End: 2}, "opened here")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 || len(b.Items()[0].Notes) != 1 {
		t.Fatalf("expected one diagnostic with one note, got %+v", b.Items())
	}
}
