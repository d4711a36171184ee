package project

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// SourceExt is the extension picked up when walking directories.
const SourceExt = ".rb"

var skipDirs = map[string]struct{}{
	".git":          {},
	".hg":           {},
	".svn":          {},
	".bundle":       {},
	"node_modules":  {},
	"vendor":        {},
	"tmp":           {},
	DefaultCacheDir: {},
}

// SkipDir reports whether directories named name are never descended into.
func SkipDir(name string) bool {
	_, skip := skipDirs[name]
	return skip
}

// IsGlob reports whether p contains glob metacharacters.
func IsGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// Discover returns the files under root matching any of patterns and none
// of exclude, skipping what root/.gitignore ignores. Files keep the order of
// the first pattern that matched them; within one pattern they are sorted.
// Returned paths are joined with root.
func Discover(root string, patterns, exclude []string) ([]string, error) {
	for _, p := range append(slices.Clone(patterns), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob %q", p)
		}
	}
	gi := loadGitignore(root)
	fsys := os.DirFS(root)

	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, rel := range matches {
			if _, dup := seen[rel]; dup || skipped(rel, exclude, gi) {
				continue
			}
			seen[rel] = struct{}{}
			out = append(out, filepath.Join(root, filepath.FromSlash(rel)))
		}
	}
	return out, nil
}

func skipped(rel string, exclude []string, gi *ignore.GitIgnore) bool {
	for _, dir := range strings.Split(rel, "/") {
		if SkipDir(dir) {
			return true
		}
	}
	for _, ex := range exclude {
		if ok, _ := doublestar.Match(ex, rel); ok {
			return true
		}
	}
	return gi != nil && gi.MatchesPath(rel)
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
