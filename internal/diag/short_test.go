package diag

import (
	"testing"

	"tome/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSetWithBase("/workspace")
	file := fs.Add("/workspace/lib/sample.rb", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     SemaUnknownTag,
			Message:  "unknown tag @foo",
			Primary:  source.Span{File: file, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: file, Start: 0, End: 1},
		},
	}

	expected := "error SYN2001 lib/sample.rb:1:1 first line second\n" +
		"warning SEM3001 lib/sample.rb:2:1 unknown tag @foo"
	if got := FormatShortDiagnostics(diags, fs); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}
