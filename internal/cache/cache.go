// Package cache persists a registry snapshot and the checksums of the files
// it was built from, so unchanged files are not parsed again.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"tome/internal/code"
	"tome/internal/logging"
	"tome/internal/project"
	"tome/internal/registry"
	"tome/internal/version"
)

var log = logging.ForComponent("cache")

const objectsFile = "objects.mp"

// legacyChecksumsFile held checksums before they moved into Payload.
const legacyChecksumsFile = "checksums.mp"

// Cache хранит снимок registry в каталоге (по умолчанию `.tome`).
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is the on-disk registry snapshot.
type Payload struct {
	// Schema is the semantic version of this layout; see Compatible.
	Schema  string              `msgpack:"schema"`
	Tool    string              `msgpack:"tool"`
	Created time.Time           `msgpack:"created"`
	Objects []*code.Declaration `msgpack:"objects"`
	// Checksums maps slash-normalised paths to hex digests of the files
	// Objects were built from. Both are replaced by one rename.
	Checksums map[string]string `msgpack:"checksums"`
}

// Open returns the cache rooted at dir, creating the directory.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) Dir() string { return c.dir }

// Save writes the store contents and checksums in one snapshot, replacing
// the previous one atomically.
func (c *Cache) Save(store *registry.Store, checksums map[string]project.Digest) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	files := make(map[string]string, len(checksums))
	for path, sum := range checksums {
		files[path] = sum.Hex()
	}
	payload := &Payload{
		Schema:    SchemaVersion,
		Tool:      version.Number,
		Created:   time.Now().UTC(),
		Objects:   store.Snapshot(),
		Checksums: files,
	}
	if err := c.write(objectsFile, payload); err != nil {
		return err
	}
	log.Debug("cache saved", "dir", c.dir, "objects", len(payload.Objects), "files", len(files))
	return nil
}

// Load restores a snapshot into store. ok is false when there is no cache.
// A snapshot written with an incompatible schema yields ErrSchemaMismatch
// and leaves store untouched.
func (c *Cache) Load(store *registry.Store) (checksums map[string]project.Digest, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var payload Payload
	found, err := c.read(objectsFile, &payload)
	if err != nil || !found {
		return nil, false, err
	}
	if err := Compatible(payload.Schema); err != nil {
		return nil, false, err
	}

	checksums = make(map[string]project.Digest, len(payload.Checksums))
	for path, hex := range payload.Checksums {
		d, err := project.ParseDigest(hex)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", filepath.Join(c.dir, objectsFile), err)
		}
		checksums[path] = d
	}

	store.Restore(payload.Objects)
	log.Debug("cache loaded", "dir", c.dir, "objects", len(payload.Objects), "tool", payload.Tool)
	return checksums, true, nil
}

// Drop removes every cached artefact.
func (c *Cache) Drop() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range []string{objectsFile, legacyChecksumsFile} {
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (c *Cache) write(name string, v any) error {
	p := filepath.Join(c.dir, name)
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// после успешного Rename файла уже нет
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warn("failed to remove temp file", "path", tmp, "error", rmErr)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(v); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

func (c *Cache) read(name string, out any) (bool, error) {
	p := filepath.Join(c.dir, name)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn("failed to close cache file", "path", p, "error", closeErr)
		}
	}()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", p, err)
	}
	return true, nil
}
