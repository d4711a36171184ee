// Package diag defines the diagnostic model shared by the lexer, parser,
// visitor and driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error.
//   - Code – numeric identifier grouped by phase (LEX, SYN, SEM, IO) with a stable ID string.
//   - Message – short human text.
//   - Primary – the source.Span the finding points at.
//   - Notes – optional secondary spans.
//
// # Emitting diagnostics
//
// Phases emit through a Reporter so they never depend on storage. The lexer
// and parser call Reporter.Report directly; the visitor uses ReportWarning
// and chains WithNote before Emit. BagReporter collects into a Bag, which
// caps its size and sorts by position.
//
// Recoverable problems in user input (bad tokens, malformed statements,
// unknown tags) are always diagnostics, never Go errors. Go errors are reserved
// for IO and programming faults.
//
// # Consumers
//
//   - internal/diagfmt renders a Bag as pretty text or JSON.
//   - internal/driver collects one Bag per parse request and logs it at the
//     configured level.
package diag
