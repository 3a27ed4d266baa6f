// File: pkg/techspec/selector.go
package techspec

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"techspec/pkg/ignore"

	"go.uber.org/zap"
)

// vcsDir is never descended into.
const vcsDir = ".git"

// Selection holds the rules the selector applies to every file under Root.
type Selection struct {
	Root              string
	IncludeExtensions []string
	ForceInclude      []string
	WorkspaceIgnore   *ignore.Matcher // .gitignore patterns.
	Exclude           *ignore.Matcher // Tool excludes plus branch-specific additions.
	Reserved          []string        // Output document and backup; never selected.
}

// Select walks the tree and returns the relative paths to include, in walk order.
func Select(sel Selection, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(sel.Root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, sel.Root)
	}

	exts := toSet(sel.IncludeExtensions)
	force := toSet(sel.ForceInclude)
	reserved := make(map[string]bool, len(sel.Reserved))
	for _, r := range sel.Reserved {
		reserved[path.Clean(filepath.ToSlash(r))] = true
	}

	var files []string
	err = filepath.WalkDir(sel.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Error accessing path during traversal", zap.String("path", p), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if d.Name() == vcsDir && p != sel.Root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(sel.Root, p)
		if relErr != nil {
			logger.Warn("Unable to determine relative path", zap.String("path", p), zap.Error(relErr))
			return nil
		}
		rel = filepath.ToSlash(rel)

		if selected(rel, d.Name(), exts, force, reserved, sel) {
			files = append(files, rel)
			logger.Debug("[+] " + rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to traverse %s: %w", sel.Root, err)
	}
	return files, nil
}

func selected(rel, name string, exts, force, reserved map[string]bool, sel Selection) bool {
	if reserved[rel] {
		return false
	}
	if force[rel] {
		return true
	}
	if !exts[Extension(name)] {
		return false
	}
	return !sel.WorkspaceIgnore.Matches(rel) && !sel.Exclude.Matches(rel)
}

// Extension returns the lowercased extension of a file name. Leading dots
// belong to the name, so ".gitignore" has no extension.
func Extension(name string) string {
	base := strings.TrimLeft(path.Base(filepath.ToSlash(name)), ".")
	return strings.ToLower(path.Ext(base))
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
