package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"tome/internal/tags"
)

// DefaultFiles are the globs parsed when neither the command line nor the
// config names any.
var DefaultFiles = []string{"{lib,app}/**/*.rb"}

const (
	DefaultMaxDiagnostics = 100
	DefaultCacheDir       = ".tome"
	DefaultLogLevel       = "info"
)

// ErrTagNameMissing indicates a [[tags]] entry without a name.
var ErrTagNameMissing = errors.New("missing [[tags]].name")

// Config is the decoded .tome.toml. Path and Root are empty for defaults.
type Config struct {
	Path string `toml:"-"`
	Root string `toml:"-"`

	Source SourceConfig `toml:"source"`
	Parse  ParseConfig  `toml:"parse"`
	Tags   []TagConfig  `toml:"tags"`
	Cache  CacheConfig  `toml:"cache"`
}

type SourceConfig struct {
	Files       []string `toml:"files"`
	Exclude     []string `toml:"exclude"`
	SearchPaths []string `toml:"search_paths"`
}

type ParseConfig struct {
	Jobs           int    `toml:"jobs"`
	LogLevel       string `toml:"log_level"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	UseCache       bool   `toml:"use_cache"`
}

// TagConfig defines an extra tag. Shape is one of the tags.Shape names.
type TagConfig struct {
	Name       string `toml:"name"`
	Title      string `toml:"title"`
	Shape      string `toml:"shape"`
	Transitive bool   `toml:"transitive"`
}

type CacheConfig struct {
	Dir string `toml:"dir"`
}

// Default returns the configuration used without a .tome.toml.
func Default() *Config {
	return &Config{
		Source: SourceConfig{Files: append([]string(nil), DefaultFiles...)},
		Parse: ParseConfig{
			LogLevel:       DefaultLogLevel,
			MaxDiagnostics: DefaultMaxDiagnostics,
			UseCache:       true,
		},
		Cache: CacheConfig{Dir: DefaultCacheDir},
	}
}

// LoadConfig decodes path over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if meta.IsDefined("source", "files") && len(cfg.Source.Files) == 0 {
		cfg.Source.Files = append([]string(nil), DefaultFiles...)
	}
	if cfg.Parse.Jobs < 0 {
		return nil, fmt.Errorf("%s: [parse].jobs must not be negative", path)
	}
	if cfg.Parse.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("%s: [parse].max_diagnostics must not be negative", path)
	}
	for i, t := range cfg.Tags {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("%s: tag #%d: %w", path, i+1, ErrTagNameMissing)
		}
		if _, err := tags.ParseShape(t.Shape); err != nil {
			return nil, fmt.Errorf("%s: tag %q: %w", path, t.Name, err)
		}
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// DiscoverConfig finds .tome.toml from startDir upwards; without one it returns
// Default rooted at startDir.
func DiscoverConfig(startDir string) (*Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		cfg := Default()
		cfg.Root = startDir
		return cfg, nil
	}
	return LoadConfig(path)
}

// Library returns the default tag library extended with the [[tags]]
// definitions.
func (c *Config) Library() *tags.Library {
	lib := tags.DefaultLibrary()
	for _, t := range c.Tags {
		// shapes were validated by LoadConfig
		shape, _ := tags.ParseShape(t.Shape)
		title := t.Title
		if title == "" {
			title = t.Name
		}
		lib.Define(t.Name, title, shape)
		if t.Transitive {
			lib.SetTransitive(t.Name, true)
		}
	}
	return lib
}

// CacheDir is the cache directory resolved against Root.
func (c *Config) CacheDir() string {
	dir := c.Cache.Dir
	if dir == "" {
		dir = DefaultCacheDir
	}
	if filepath.IsAbs(dir) || c.Root == "" {
		return dir
	}
	return filepath.Join(c.Root, dir)
}
