package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tome/internal/cache"
	"tome/internal/driver"
	"tome/internal/logging"
	"tome/internal/project"
	"tome/internal/registry"
)

var log = logging.ForComponent("cli")

// session carries what every command resolves from flags and .tome.toml.
type session struct {
	cfg            *project.Config
	color          bool
	timings        bool
	maxDiagnostics int
	dbPath         string
}

func newSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, _ := flags.GetString("config")

	var (
		cfg *project.Config
		err error
	)
	if configPath != "" {
		cfg, err = project.LoadConfig(configPath)
	} else {
		wd, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, wdErr
		}
		cfg, err = project.DiscoverConfig(wd)
	}
	if err != nil {
		return nil, err
	}

	if err := applyLogFlags(cmd, cfg); err != nil {
		return nil, err
	}

	colorFlag, _ := flags.GetString("color")
	mode, err := readColorMode(colorFlag)
	if err != nil {
		return nil, err
	}
	useColor := shouldColor(mode, os.Stderr)
	color.NoColor = !useColor

	s := &session{cfg: cfg, color: useColor}
	s.timings, _ = flags.GetBool("timings")
	s.dbPath, _ = flags.GetString("db")
	s.maxDiagnostics, _ = flags.GetInt("max-diagnostics")
	if s.maxDiagnostics <= 0 {
		s.maxDiagnostics = cfg.Parse.MaxDiagnostics
	}
	if cfg.Path != "" {
		log.Debug("config loaded", "path", cfg.Path)
	}
	return s, nil
}

// applyLogFlags sets the process log level: --quiet, then --log-level, then
// the config value.
func applyLogFlags(cmd *cobra.Command, cfg *project.Config) error {
	flags := cmd.Root().PersistentFlags()
	levelName := cfg.Parse.LogLevel
	if v, _ := flags.GetString("log-level"); v != "" {
		levelName = v
	}
	if quiet, _ := flags.GetBool("quiet"); quiet {
		levelName = "quiet"
	}
	lvl, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logging.SetLevel(lvl)
	logging.SetOutput(cmd.ErrOrStderr())
	if f, _ := flags.GetString("log-format"); f != "" {
		return logging.SetFormat(f)
	}
	return nil
}

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on", "always":
		return colorOn, nil
	case "off", "never":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func shouldColor(mode colorMode, f *os.File) bool {
	switch mode {
	case colorOn:
		return true
	case colorOff:
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(f)
	}
}

// inputs returns the files to parse: the arguments when given, the
// configured [source].files globs otherwise.
func (s *session) inputs(args []string) ([]string, error) {
	if len(args) == 0 {
		args = make([]string, 0, len(s.cfg.Source.Files))
		for _, pattern := range s.cfg.Source.Files {
			if filepath.IsAbs(pattern) || s.cfg.Root == "" {
				args = append(args, pattern)
			} else {
				args = append(args, filepath.Join(s.cfg.Root, pattern))
			}
		}
	}
	return driver.Expand(args, s.cfg.Source.Exclude)
}

type loadOptions struct {
	noCache  bool
	progress driver.ProgressSink
}

// loadRegistry parses args into a store seeded from the cache; unchanged
// files are skipped and the cache is refreshed afterwards.
func (s *session) loadRegistry(ctx context.Context, paths []string, opts loadOptions) (*driver.Result, error) {
	store := registry.New()
	var (
		c    *cache.Cache
		sums map[string]project.Digest
	)
	if s.cfg.Parse.UseCache && !opts.noCache {
		var err error
		if c, err = cache.Open(s.cfg.CacheDir()); err != nil {
			log.Warn("cache disabled", "error", err)
			c = nil
		}
		sums = s.restore(c, store, paths)
	}

	res, err := driver.Parse(ctx, driver.Request{
		Paths:          paths,
		SearchPaths:    s.cfg.Source.SearchPaths,
		Store:          store,
		Library:        s.cfg.Library(),
		Jobs:           s.cfg.Parse.Jobs,
		MaxDiagnostics: s.maxDiagnostics,
		Checksums:      sums,
		Progress:       opts.progress,
	})
	if err != nil {
		return nil, err
	}
	if c != nil {
		if err := c.Save(res.Store, res.Checksums); err != nil {
			log.Warn("failed to save cache", "dir", c.Dir(), "error", err)
		}
	}
	return res, nil
}

// restore loads the cache into store and forgets files that are no longer
// among paths.
func (s *session) restore(c *cache.Cache, store *registry.Store, paths []string) map[string]project.Digest {
	if c == nil {
		return nil
	}
	sums, ok, err := c.Load(store)
	switch {
	case errors.Is(err, cache.ErrSchemaMismatch):
		log.Warn("cache ignored", "dir", c.Dir(), "error", err)
		if dropErr := c.Drop(); dropErr != nil {
			log.Warn("failed to drop cache", "error", dropErr)
		}
		return nil
	case err != nil:
		log.Warn("cache unreadable", "dir", c.Dir(), "error", err)
		store.Clear()
		return nil
	case !ok:
		return nil
	}

	wanted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		wanted[filepath.ToSlash(filepath.Clean(p))] = struct{}{}
	}
	for file := range sums {
		if _, keep := wanted[file]; !keep {
			dropped := store.DeleteFile(file)
			delete(sums, file)
			log.Debug("file left the project", "file", file, "dropped", dropped)
		}
	}
	return sums
}

// load parses the inputs without progress UI. Diagnostics are not printed;
// their count is logged.
func (s *session) load(cmd *cobra.Command, args []string) (*driver.Result, error) {
	paths, err := s.inputs(args)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("no Ruby sources found")
	}
	res, err := s.loadRegistry(cmd.Context(), paths, loadOptions{})
	if err != nil {
		return nil, err
	}
	if n := res.Bag.Len(); n > 0 {
		log.Warn("sources have diagnostics; run `tome parse` for details", "count", n)
	}
	if s.timings {
		_ = res.Timings.Write(cmd.ErrOrStderr())
	}
	return res, nil
}
