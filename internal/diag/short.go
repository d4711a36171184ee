package diag

import (
	"fmt"
	"sort"
	"strings"

	"tome/internal/source"
)

// Entry is a diagnostic resolved against a FileSet: the flat
// (file, line, column, severity, code, message) record handed to consumers.
type Entry struct {
	Severity Severity
	Code     Code
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s",
		strings.ToLower(e.Severity.String()), e.Code.ID(), e.Path, e.Line, e.Column, e.Message)
}

// Resolve flattens diagnostics into entries with line/column positions.
// Paths are rendered relative to the FileSet base directory.
func Resolve(diags []Diagnostic, fs *source.FileSet) []Entry {
	if fs == nil || len(diags) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(diags))
	for _, d := range diags {
		f := fs.Get(d.Primary.File)
		if f == nil {
			continue
		}
		start, _ := fs.Resolve(d.Primary)
		out = append(out, Entry{
			Severity: d.Severity,
			Code:     d.Code,
			Path:     f.FormatPath("relative", fs.BaseDir()),
			Line:     start.Line,
			Column:   start.Col,
			Message:  strings.Join(strings.Fields(d.Message), " "),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Code < b.Code
	})
	return out
}

// FormatShortDiagnostics renders one line per diagnostic, for golden tests and
// the CLI short format.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet) string {
	entries := Resolve(diags, fs)
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}
