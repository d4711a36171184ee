package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"tome/internal/project"
)

// Expand turns command-line arguments into an ordered, de-duplicated file
// list. Directories are searched for *.rb, globs are matched under their
// static prefix, and anything else is passed through so that a missing file
// surfaces from Parse as *FileNotFoundError.
func Expand(args, exclude []string) ([]string, error) {
	seen := make(map[string]struct{}, len(args))
	var out []string
	add := func(files ...string) {
		for _, f := range files {
			key := filepath.Clean(f)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, f)
		}
	}
	for _, arg := range args {
		switch {
		case project.IsGlob(arg):
			base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
			files, err := project.Discover(filepath.FromSlash(base), []string{pattern}, exclude)
			if err != nil {
				return nil, fmt.Errorf("expand %q: %w", arg, err)
			}
			add(files...)
		case isDir(arg):
			files, err := project.Discover(arg, []string{"**/*" + project.SourceExt}, exclude)
			if err != nil {
				return nil, fmt.Errorf("expand %q: %w", arg, err)
			}
			add(files...)
		default:
			add(arg)
		}
	}
	return out, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
