package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"tome/internal/code"
	"tome/internal/diag"
	"tome/internal/lexer"
	"tome/internal/parser"
	"tome/internal/project"
	"tome/internal/source"
	"tome/internal/syntax"
	"tome/internal/tags"
	"tome/internal/visitor"
)

// unit - результат обработки одного файла до коммита в registry
type unit struct {
	decls   []*code.Declaration
	bag     *diag.Bag
	skipped bool
	elapsed time.Duration
}

// parseFiles runs the per-file pipeline on up to req.Jobs goroutines.
// Results are indexed like files; nothing touches the store here.
func parseFiles(ctx context.Context, req Request, fileSet *source.FileSet, files []*source.File) ([]unit, error) {
	units := make([]unit, len(files))
	if len(files) == 0 {
		return units, nil
	}

	lib := req.Library
	if lib == nil {
		lib = tags.DefaultLibrary()
	}
	maxErrors, err := safecast.Conv[uint](req.MaxDiagnostics)
	if err != nil {
		return nil, fmt.Errorf("max diagnostics: %w", err)
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, file := range files {
		if sum, ok := req.Checksums[file.Path]; ok && sum == project.Digest(file.Hash) {
			units[i].skipped = true
			emit(req.Progress, Event{File: file.Path, Stage: StageParse, Status: StatusSkipped})
			continue
		}
		g.Go(func() error {
			// Проверка отмены между файлами
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(req.Progress, Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
			// индекс i уникален, мьютекс не нужен
			units[i] = parseFile(fileSet, file, lib, req.MaxDiagnostics, maxErrors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// parseFile: lexer → parser → visitor над одним файлом.
func parseFile(fileSet *source.FileSet, file *source.File, lib *tags.Library, maxDiagnostics int, maxErrors uint) unit {
	start := time.Now()
	bag := diag.NewBag(maxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	tree := syntax.NewTree(file.ID, nil, 0)
	res := parser.ParseFile(fileSet, lx, tree, parser.Options{
		Reporter:  reporter,
		MaxErrors: maxErrors,
	})
	decls := visitor.Visit(tree, res.Root, visitor.Options{
		File:     file,
		Library:  lib,
		Reporter: reporter,
	})
	return unit{decls: decls, bag: bag, elapsed: time.Since(start)}
}
