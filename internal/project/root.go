package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigName is the per-project configuration file.
const ConfigName = ".tome.toml"

// FindConfig looks for .tome.toml in startDir and its parents. The search
// stops after the first directory holding .git, so a checkout never picks up
// a config from outside.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve %s: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, ConfigName)
		found, err := exists(candidate)
		if err != nil {
			return "", false, err
		}
		if found {
			return candidate, true, nil
		}
		if repo, err := exists(filepath.Join(dir, ".git")); err != nil || repo {
			return "", false, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}
