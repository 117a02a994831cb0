// clean.go implements the cache-cleanup verb.
//
// Clean recursively removes known cache and artifact patterns from the
// project tree. Each removal is best-effort: a missing target is not an
// error, and running clean twice in succession succeeds on the second
// run even though the targets no longer exist (idempotence).
package task

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// skipDirs are trees the cleaner never descends into. The dependency
// environment is excluded because its interior caches belong to the
// installed packages, not to the project.
func (r *Runner) skipDirs() map[string]bool {
	return map[string]bool{
		".git":        true,
		r.cfg.VenvDir: true,
	}
}

// Clean walks root and removes every entry whose base name matches one
// of the configured clean patterns. Patterns use filepath.Match syntax,
// so a plain name like "__pycache__" matches exactly and a glob like
// "*.pyc" matches by extension.
//
// Removal failures and walk errors are skipped, never propagated: the
// contract is best-effort cleanup. The returned slice lists the paths
// that were actually removed, sorted, for reporting.
func (r *Runner) Clean(root string) []string {
	if root == "" {
		root = "."
	}

	skip := r.skipDirs()
	var removed []string

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry — skip it, best-effort.
			return nil
		}
		if path == root {
			return nil
		}

		name := d.Name()
		if d.IsDir() && skip[name] {
			return fs.SkipDir
		}

		for _, pattern := range r.cfg.CleanPatterns {
			// filepath.Match only errors on malformed patterns, which
			// Validate cannot catch cheaply; a malformed pattern simply
			// never matches.
			ok, _ := filepath.Match(pattern, name)
			if !ok {
				continue
			}
			if rmErr := os.RemoveAll(path); rmErr == nil {
				removed = append(removed, path)
			}
			if d.IsDir() {
				// The whole subtree is gone; do not descend into it.
				return fs.SkipDir
			}
			break
		}
		return nil
	})

	sort.Strings(removed)
	return removed
}
