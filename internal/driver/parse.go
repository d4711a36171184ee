package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"

	"tome/internal/diag"
	"tome/internal/logging"
	"tome/internal/observ"
	"tome/internal/project"
	"tome/internal/query"
	"tome/internal/registry"
	"tome/internal/source"
	"tome/internal/tags"
)

var log = logging.ForComponent("driver")

// Request describes one parse batch.
type Request struct {
	// Paths are parsed and committed in this order. Use Expand for
	// directories and globs.
	Paths []string
	// SearchPaths are handed to the query engine of the result.
	SearchPaths []string
	// LogLevel overrides the process level for the duration of the call;
	// empty keeps the current level.
	LogLevel string
	// Store receives the declarations; nil allocates a fresh one.
	Store *registry.Store
	// Library is the tag vocabulary; nil means tags.DefaultLibrary.
	Library *tags.Library
	// Jobs bounds the parse workers; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the diagnostics kept per file; 0 is unbounded.
	MaxDiagnostics int
	// Checksums of files already in Store. A file whose content hash
	// matches is not parsed again.
	Checksums map[string]project.Digest
	Progress  ProgressSink
}

// FileResult summarises one input file.
type FileResult struct {
	Path         string
	Skipped      bool
	Declarations int
	Errors       int
}

type Result struct {
	Store       *registry.Store
	FileSet     *source.FileSet
	Bag         *diag.Bag
	Files       []FileResult
	SearchPaths []string
	// Checksums holds the request checksums updated with every committed file.
	Checksums map[string]project.Digest
	Timings   observ.Report
}

// Engine returns a query engine over the populated store.
func (r *Result) Engine() *query.Engine {
	return query.New(r.Store, r.SearchPaths...)
}

// Parsed lists the files that went through the pipeline, in input order.
func (r *Result) Parsed() []string {
	var out []string
	for _, f := range r.Files {
		if !f.Skipped {
			out = append(out, f.Path)
		}
	}
	return out
}

func (r *Result) Skipped() []string {
	var out []string
	for _, f := range r.Files {
		if f.Skipped {
			out = append(out, f.Path)
		}
	}
	return out
}

// Parse loads every path, runs lexer, parser and visitor per file and
// commits the declarations into the store in input order. Syntax errors are
// collected in Result.Bag and never abort the batch; an unreadable path
// aborts it before anything is committed.
func Parse(ctx context.Context, req Request) (*Result, error) {
	restore, err := applyLogLevel(req.LogLevel)
	if err != nil {
		return nil, err
	}
	defer restore()

	timer := observ.NewTimer()
	stopLoad := timer.Start(string(StageLoad))
	fileSet := source.NewFileSet()
	ids := make([]source.FileID, 0, len(req.Paths))
	for _, path := range req.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := fileSet.Load(path)
		if err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				notFound := &FileNotFoundError{Path: path, Err: pathErr.Err}
				logging.Fatal("cannot read input", "path", path, "error", pathErr.Err)
				return nil, notFound
			}
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		ids = append(ids, id)
	}
	stopLoad(fmt.Sprintf("%d files", len(ids)))
	return run(ctx, req, fileSet, ids, timer)
}

// ParseSource parses in-memory text under name; req.Paths is ignored.
func ParseSource(ctx context.Context, req Request, name string, text []byte) (*Result, error) {
	restore, err := applyLogLevel(req.LogLevel)
	if err != nil {
		return nil, err
	}
	defer restore()

	fileSet := source.NewFileSet()
	id := fileSet.AddVirtual(name, text)
	return run(ctx, req, fileSet, []source.FileID{id}, observ.NewTimer())
}

func applyLogLevel(level string) (restore func(), err error) {
	if level == "" {
		return func() {}, nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	restore = logging.Save()
	logging.SetLevel(lvl)
	return restore, nil
}

func run(ctx context.Context, req Request, fileSet *source.FileSet, ids []source.FileID, timer *observ.Timer) (*Result, error) {
	store := req.Store
	if store == nil {
		store = registry.New()
	}
	res := &Result{
		Store:       store,
		FileSet:     fileSet,
		Bag:         diag.NewBag(0),
		Files:       make([]FileResult, len(ids)),
		SearchPaths: req.SearchPaths,
		Checksums:   make(map[string]project.Digest, len(ids)+len(req.Checksums)),
	}
	maps.Copy(res.Checksums, req.Checksums)

	files := make([]*source.File, len(ids))
	for i, id := range ids {
		files[i] = fileSet.Get(id)
		res.Files[i].Path = files[i].Path
		emit(req.Progress, Event{File: files[i].Path, Stage: StageParse, Status: StatusQueued})
	}

	stopParse := timer.Start(string(StageParse))
	units, err := parseFiles(ctx, req, fileSet, files)
	if err != nil {
		return nil, err
	}
	stopParse(fmt.Sprintf("%d parsed", len(units)-countSkipped(units)))

	stopCommit := timer.Start(string(StageCommit))
	for i, u := range units {
		fr := &res.Files[i]
		if u.skipped {
			fr.Skipped = true
			continue
		}
		store.DeleteFile(fr.Path)
		for _, d := range u.decls {
			store.Insert(d)
		}
		res.Bag.Merge(u.bag)
		fr.Declarations = len(u.decls)
		fr.Errors = u.bag.Count(diag.SevError)
		res.Checksums[fr.Path] = project.Digest(files[i].Hash)

		status := StatusDone
		if fr.Errors > 0 {
			status = StatusError
		}
		emit(req.Progress, Event{File: fr.Path, Stage: StageCommit, Status: status, Elapsed: u.elapsed})
	}
	stopCommit(fmt.Sprintf("%d objects", store.Len()))
	res.Timings = timer.Report()

	logDiagnostics(res)
	log.Info("parse finished",
		"files", len(files),
		"skipped", countSkipped(units),
		"objects", store.Len(),
		"errors", res.Bag.Count(diag.SevError),
		"warnings", res.Bag.Count(diag.SevWarning))
	emit(req.Progress, Event{Stage: StageCommit, Status: StatusDone})
	return res, nil
}

func countSkipped(units []unit) int {
	n := 0
	for _, u := range units {
		if u.skipped {
			n++
		}
	}
	return n
}

// logDiagnostics reports every collected diagnostic at the log level
// matching its severity.
func logDiagnostics(res *Result) {
	for _, e := range diag.Resolve(res.Bag.Items(), res.FileSet) {
		attrs := []any{"code", e.Code.ID(), "file", e.Path, "line", e.Line, "column", e.Column}
		switch e.Severity {
		case diag.SevError:
			log.Error(e.Message, attrs...)
		case diag.SevWarning:
			log.Warn(e.Message, attrs...)
		default:
			log.Info(e.Message, attrs...)
		}
	}
}
