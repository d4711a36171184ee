package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tome/internal/diag"
	"tome/internal/lexer"
	"tome/internal/source"
	"tome/internal/token"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("def main\n  x = \"unterminated\nend\n")
	fileID := fs.AddVirtual("test.rb", content)

	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.LexUnterminatedString, source.Span{File: fileID, Start: 15, End: 28}, "Unterminated string literal")
	bag.Add(d.WithNote(source.Span{File: fileID, Start: 0, End: 3}, "in method main"))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", output.Count, len(output.Diagnostics))
	}
	got := output.Diagnostics[0]
	if got.Severity != "ERROR" || got.Code != "LEX1002" || got.Title != "Unterminated string literal" {
		t.Errorf("diagnostic = %+v", got)
	}
	loc := got.Location
	if loc.File != "test.rb" || loc.StartByte != 15 || loc.EndByte != 28 {
		t.Errorf("location = %+v", loc)
	}
	if loc.StartLine != 2 || loc.StartCol != 7 {
		t.Errorf("position = %d:%d, want 2:7", loc.StartLine, loc.StartCol)
	}
	if len(got.Notes) != 1 || got.Notes[0].Message != "in method main" {
		t.Errorf("notes = %+v", got.Notes)
	}
}

func TestJSONWithoutPositionsOrNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.rb", []byte("x\n"))
	bag := diag.NewBag(0)
	d := diag.NewError(diag.LexUnknownChar, source.Span{File: fileID, Start: 0, End: 1}, "bad")
	bag.Add(d.WithNote(source.Span{File: fileID}, "n"))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Errorf("positions included: %+v", loc)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Errorf("notes included: %+v", out.Diagnostics[0].Notes)
	}
}

func TestJSONMaxTruncatesOutput(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.rb", []byte("abc\n"))
	bag := diag.NewBag(0)
	for i := range uint32(3) {
		bag.Add(diag.NewError(diag.LexUnknownChar, source.Span{File: fileID, Start: i, End: i + 1}, "bad"))
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Errorf("count = %d, want 2", out.Count)
	}
	if bag.Len() != 3 {
		t.Errorf("bag modified: len = %d", bag.Len())
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.rb", []byte("# hi\nfoo(1)\n"))
	lx := lexer.New(fs.Get(id), lexer.Options{})
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	var pretty bytes.Buffer
	if err := FormatTokensPretty(&pretty, toks, fs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pretty.String(), `"foo" at 2:1-2:4`) {
		t.Errorf("pretty tokens:\n%s", pretty.String())
	}
	if !strings.Contains(pretty.String(), "line_comment") {
		t.Errorf("leading trivia missing:\n%s", pretty.String())
	}

	var js bytes.Buffer
	if err := FormatTokensJSON(&js, toks, fs); err != nil {
		t.Fatal(err)
	}
	var decoded []TokenOutput
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != len(toks) || decoded[len(decoded)-1].Kind != "EOF" {
		t.Errorf("decoded %d tokens, last %+v", len(decoded), decoded[len(decoded)-1])
	}
}
