// Package build implements the freshness check and the one piece of
// filesystem bookkeeping (parent-directory creation) that precedes running
// a stale file target's recipe.
package build

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Phantom1003/ptm/core"
)

// Mtime returns the target's modification time in nanoseconds, or 0 if the
// target is a task or the file doesn't exist.
func Mtime(t core.Target) int64 {
	if t.IsTask() {
		return 0
	}
	info, err := os.Stat(t.ID())
	if err != nil {
		return 0
	}
	return info.ModTime().UnixNano()
}

// NeedsBuilding decides whether node's recipe must run, per spec §4.D:
//   - a task target is always stale;
//   - a file target missing on disk (mtime 0) is stale;
//   - otherwise it is stale if any dependency is a task, or any
//     dependency's mtime is >= the target's mtime (note: >=, not >, so a
//     same-mtime dependency forces a rebuild — this is deliberately
//     conservative).
func NeedsBuilding(node *core.Node) bool {
	if node.Target.IsTask() {
		return true
	}
	targetMtime := Mtime(node.Target)
	if targetMtime == 0 {
		return true
	}
	for _, dep := range node.Dependencies {
		if dep.IsTask() {
			return true
		}
		if Mtime(dep) >= targetMtime {
			return true
		}
	}
	return false
}

// PrepareOutputDir creates the parent directory of a stale file target,
// recursively, before its recipe runs. It is a no-op for task targets.
func PrepareOutputDir(t core.Target) error {
	if t.IsTask() {
		return nil
	}
	dir := filepath.Dir(t.ID())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory %s", dir)
	}
	return nil
}
