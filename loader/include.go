package loader

import (
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// IncludeTable memoizes included build files by their resolved absolute
// path, so re-including the same file returns the memoized result rather
// than re-executing it — the policy the reference implementation's
// sys.modules-based memoization follows (SPEC_FULL §12.1).
type IncludeTable struct {
	mu      sync.Mutex
	visited map[string]bool
}

// NewIncludeTable returns an empty table.
func NewIncludeTable() *IncludeTable {
	return &IncludeTable{visited: map[string]bool{}}
}

// Resolve validates path's extension and resolves it relative to
// includingDir (the directory of the file that issued the include), per
// spec §4.F's include semantics: relative paths resolve against the
// including file's directory, absolute paths are used as-is, and only
// files with ext are accepted.
func Resolve(path, includingDir, ext string) (string, error) {
	if filepath.Ext(path) != ext {
		return "", errors.Errorf("can only include %s files, got %s", ext, path)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join(includingDir, path), nil
}

// AlreadyVisited reports whether absPath has already been included in this
// process, marking it visited as a side effect of the first call.
func (t *IncludeTable) AlreadyVisited(absPath string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.visited[absPath] {
		return true
	}
	t.visited[absPath] = true
	return false
}
