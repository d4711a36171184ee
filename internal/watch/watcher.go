// Package watch keeps a registry current while Ruby sources change on disk.
package watch

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"tome/internal/driver"
	"tome/internal/logging"
	"tome/internal/project"
	"tome/internal/registry"
)

var log = logging.ForComponent("watch")

const (
	DefaultWindow   = 300 * time.Millisecond
	DefaultMaxBatch = 100
)

type EventType int

const (
	EventWrite EventType = iota
	EventRemove
)

func (e EventType) String() string {
	if e == EventRemove {
		return "remove"
	}
	return "write"
}

// Event is one debounced change of a source file.
type Event struct {
	Path string
	Type EventType
}

// Update reports one re-parse batch.
type Update struct {
	Parsed  []string
	Removed []string
	// Dropped counts declarations removed together with deleted files.
	Dropped int
	Result  *driver.Result
	Err     error
	// Checksums is a copy of the checksums after the batch.
	Checksums map[string]project.Digest
}

// Options configures a Watcher. Request is the template for every
// re-parse; its Paths, Store and Checksums are filled in per batch.
type Options struct {
	Roots    []string
	Exclude  []string
	Window   time.Duration
	MaxBatch int
	Request  driver.Request
	// Checksums of the files already committed to Store.
	Checksums map[string]project.Digest
	OnUpdate  func(Update)
}

// Watcher re-parses changed files into one store.
type Watcher struct {
	opts  Options
	store *registry.Store

	fsw   *fsnotify.Watcher
	fswMu sync.Mutex
	deb   *Debouncer

	// mu serialises batches: the store sees one commit sequence at a time.
	mu        sync.Mutex
	checksums map[string]project.Digest
	ctx       context.Context
}

func New(store *registry.Store, opts Options) (*Watcher, error) {
	if store == nil {
		return nil, errors.New("watch: nil store")
	}
	if len(opts.Roots) == 0 {
		opts.Roots = []string{"."}
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	sums := make(map[string]project.Digest, len(opts.Checksums))
	for k, v := range opts.Checksums {
		sums[k] = v
	}
	w := &Watcher{opts: opts, store: store, fsw: fsw, checksums: sums}
	w.deb = NewDebouncer(opts.Window, opts.MaxBatch, w.flush)
	return w, nil
}

// Checksums returns a copy of the current file checksums.
func (w *Watcher) Checksums() map[string]project.Digest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.checksums)
}

// Run watches until ctx is cancelled. Pending events are flushed before it
// returns.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	for _, root := range w.opts.Roots {
		if err := w.addTree(root); err != nil {
			_ = w.fsw.Close()
			return err
		}
	}
	log.Info("watching", "roots", w.opts.Roots)

	defer func() {
		w.deb.Stop()
		w.fswMu.Lock()
		_ = w.fsw.Close()
		w.fswMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	log.Debug("fs event", "path", ev.Name, "op", ev.Op.String())
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				log.Warn("failed to watch directory", "path", ev.Name, "error", err)
			}
			return
		}
	}
	if !w.Relevant(ev.Name) {
		return
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.deb.Add(Event{Path: ev.Name, Type: EventRemove})
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.deb.Add(Event{Path: ev.Name, Type: EventWrite})
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (project.SkipDir(d.Name()) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		w.fswMu.Lock()
		defer w.fswMu.Unlock()
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		log.Debug("watching directory", "path", path)
		return nil
	})
}

// Relevant reports whether a change of path should trigger a re-parse.
func (w *Watcher) Relevant(path string) bool {
	if filepath.Ext(path) != project.SourceExt || strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	for _, root := range w.opts.Roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, dir := range strings.Split(rel, "/") {
			if project.SkipDir(dir) {
				return false
			}
		}
		for _, ex := range w.opts.Exclude {
			if ok, _ := doublestar.Match(ex, rel); ok {
				return false
			}
		}
		return true
	}
	return false
}

func (w *Watcher) flush(batch []Event) {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	w.Apply(ctx, batch)
}

// Apply commits one batch: removed files leave the store, written files are
// parsed again. Files that vanished in between count as removed.
func (w *Watcher) Apply(ctx context.Context, batch []Event) Update {
	w.mu.Lock()
	defer w.mu.Unlock()

	var up Update
	var paths []string
	for _, ev := range batch {
		if ev.Type == EventWrite {
			if _, err := os.Stat(ev.Path); err == nil {
				paths = append(paths, ev.Path)
				continue
			}
		}
		up.Removed = append(up.Removed, ev.Path)
	}

	for _, p := range up.Removed {
		key := filepath.ToSlash(filepath.Clean(p))
		up.Dropped += w.store.DeleteFile(key)
		delete(w.checksums, key)
	}

	if len(paths) > 0 {
		req := w.opts.Request
		req.Paths = paths
		req.Store = w.store
		req.Checksums = w.checksums
		res, err := driver.Parse(ctx, req)
		up.Result, up.Err = res, err
		if err == nil {
			w.checksums = res.Checksums
			up.Parsed = res.Parsed()
		}
	}

	switch {
	case up.Err != nil:
		log.Error("re-parse failed", "error", up.Err)
	case len(up.Parsed) > 0 || len(up.Removed) > 0:
		log.Info("registry updated", "parsed", len(up.Parsed), "removed", len(up.Removed), "objects", w.store.Len())
	}
	if w.opts.OnUpdate != nil {
		up.Checksums = maps.Clone(w.checksums)
		w.opts.OnUpdate(up)
	}
	return up
}
