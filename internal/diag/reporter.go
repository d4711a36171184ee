package diag

import "tome/internal/source"

// Reporter receives diagnostics from the lexer, parser and visitor.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// BagReporter пишет в *Bag; nil Bag глотает всё.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes})
}

// ReportBuilder collects notes for one diagnostic before Emit.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: NewError(code, primary, msg)}
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(SevWarning, code, primary, msg)}
}

// WithNote points at a related location, e.g. the earlier definition of a
// reopened namespace.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

// Emit reports once; later calls are no-ops.
func (b *ReportBuilder) Emit() {
	if b.emitted || b.reporter == nil {
		return
	}
	b.emitted = true
	d := b.diag
	b.reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
}
