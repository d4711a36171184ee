package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tome/internal/diag"
	"tome/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		if f == nil {
			fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity), d.Code.ID(), d.Message)
			continue
		}
		start, end := fs.Resolve(d.Primary)
		path := formatPath(f, fs, opts.PathMode)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.location.Sprintf("%s:%d:%d", path, start.Line, start.Col),
			p.severity(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
		writeContext(w, f, start, end, opts.Context, p)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			if nf == nil {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
				continue
			}
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"),
				formatPath(nf, fs, opts.PathMode), ns.Line, ns.Col, n.Msg)
		}
	}
}

func writeContext(w io.Writer, f *source.File, start, end source.LineCol, context int8, p palette) {
	if start.Line == 0 {
		return
	}
	first := start.Line
	last := start.Line
	if context > 0 {
		c := uint32(context)
		if first > c {
			first -= c
		} else {
			first = 1
		}
		last += c
	}
	if total := uint32(len(f.LineIdx) + 1); last > total {
		last = total
	}
	gutter := len(fmt.Sprint(last))
	for ln := first; ln <= last; ln++ {
		text := strings.ReplaceAll(f.GetLine(ln), "\t", " ")
		fmt.Fprintf(w, " %*d | %s\n", gutter, ln, text)
		if ln != start.Line {
			continue
		}
		width := 1
		if end.Line == start.Line && end.Col > start.Col {
			width = int(end.Col - start.Col)
		} else if end.Line > start.Line {
			width = max(len(text)-int(start.Col)+1, 1)
		}
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, " %*s | %s%s\n", gutter, "", strings.Repeat(" ", max(int(start.Col)-1, 0)), p.marker.Sprint(marker))
	}
}

type palette struct {
	err, warn, info *color.Color
	location, code  *color.Color
	note, marker    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:      color.New(color.FgRed, color.Bold),
		warn:     color.New(color.FgYellow, color.Bold),
		info:     color.New(color.FgCyan),
		location: color.New(color.Bold),
		code:     color.New(color.Faint),
		note:     color.New(color.FgBlue),
		marker:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.location, p.code, p.note, p.marker} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.err.Sprint(s.String())
	case diag.SevWarning:
		return p.warn.Sprint(s.String())
	default:
		return p.info.Sprint(s.String())
	}
}
