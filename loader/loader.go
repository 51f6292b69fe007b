package loader

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// Loader rewrites and caches build files, then hands the cached form to an
// Evaluator. It owns the process-wide include memoization table (spec
// §4.F "Include semantics").
type Loader struct {
	Evaluator Evaluator
	Ext       string
	includes  *IncludeTable
}

// New returns a Loader that accepts build files with the given extension
// (default ".ptm" per spec §6) and hands rewritten sources to eval.
func New(eval Evaluator, ext string) *Loader {
	if ext == "" {
		ext = ".ptm"
	}
	return &Loader{Evaluator: eval, Ext: ext, includes: NewIncludeTable()}
}

// Load rewrites path (reusing a valid cache if present), then evaluates
// the cache. env is the environment proxy's current snapshot, passed
// through to the evaluator subprocess so ${NAME} lookups it performs at
// runtime agree with what the lexer compiled ${NAME} references into.
func (l *Loader) Load(ctx context.Context, path string, env []string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(err, "build file not found: %s", path)
	}
	cache, err := rewrite(path)
	if err != nil {
		return err
	}
	log.Debug("Loading %s (cache %s)", path, cache)
	if err := l.Evaluator.Eval(ctx, cache, env); err != nil {
		// Diagnostics should point at the cache path so line numbers in
		// any error correlate with what was actually executed.
		return errors.Wrapf(err, "error evaluating %s", cache)
	}
	return nil
}

// Include loads a file referenced from within another build file, per the
// include() semantics of spec §4.F: path resolution relative to the
// including file's directory, fresh execution unless already memoized by
// absolute path.
func (l *Loader) Include(ctx context.Context, path, includingDir string, env []string) error {
	abs, err := Resolve(path, includingDir, l.Ext)
	if err != nil {
		return err
	}
	if l.includes.AlreadyVisited(abs) {
		log.Debug("Include %s already loaded, skipping", abs)
		return nil
	}
	return l.Load(ctx, abs, env)
}
