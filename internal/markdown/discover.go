package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const markdownExt = ".md"

var skippedDirectories = map[string]struct{}{
	"node_modules": {},
}

// DiscoverOptions tunes markdown discovery.
type DiscoverOptions struct {
	// Exclude lists doublestar patterns matched against slash separated paths
	// relative to the discovery root.
	Exclude []string
}

// IsMarkdownFile reports whether path names a markdown file by extension.
func IsMarkdownFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), markdownExt)
}

// Discover walks root recursively and returns every markdown file below it,
// sorted by path. Hidden directories and node_modules are never entered.
func Discover(ctx context.Context, root string, opts DiscoverOptions) ([]string, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("markdown discover: invalid exclude pattern %q", pattern)
		}
	}

	root = filepath.Clean(root)
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != root && skipDirectory(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if !IsMarkdownFile(path) {
			return nil
		}
		if excluded(root, path, opts.Exclude) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("markdown discover %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

func skipDirectory(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := skippedDirectories[name]
	return ok
}

func excluded(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), rel); ok {
			return true
		}
	}
	return false
}
