package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeEvaluator records every cache path it was asked to evaluate, standing
// in for a real host interpreter so these tests don't need one installed.
type fakeEvaluator struct {
	evaluated []string
	err       error
}

func (f *fakeEvaluator) Eval(_ context.Context, cachePath string, _ []string) error {
	f.evaluated = append(f.evaluated, cachePath)
	return f.err
}

func TestLoadRewritesAndEvaluates(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.ptm")
	assert.NoError(t, os.WriteFile(src, []byte("x = 1\n"), 0o644))

	eval := &fakeEvaluator{}
	l := New(eval, ".ptm")
	assert.NoError(t, l.Load(context.Background(), src, nil))
	assert.Equal(t, []string{CachePath(src)}, eval.evaluated)
}

func TestLoadMissingFileErrors(t *testing.T) {
	l := New(&fakeEvaluator{}, ".ptm")
	err := l.Load(context.Background(), "/nonexistent/build.ptm", nil)
	assert.Error(t, err)
}

func TestLoadWrapsEvaluatorError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.ptm")
	assert.NoError(t, os.WriteFile(src, []byte("x = 1\n"), 0o644))

	eval := &fakeEvaluator{err: assert.AnError}
	l := New(eval, ".ptm")
	err := l.Load(context.Background(), src, nil)
	assert.Error(t, err)
}

func TestIncludeSkipsAlreadyVisitedFile(t *testing.T) {
	dir := t.TempDir()
	included := filepath.Join(dir, "shared.ptm")
	assert.NoError(t, os.WriteFile(included, []byte("x = 1\n"), 0o644))

	eval := &fakeEvaluator{}
	l := New(eval, ".ptm")

	assert.NoError(t, l.Include(context.Background(), "shared.ptm", dir, nil))
	assert.NoError(t, l.Include(context.Background(), "shared.ptm", dir, nil))
	// Second include of the same resolved path is memoized, so the
	// evaluator only ever saw it once.
	assert.Equal(t, []string{CachePath(included)}, eval.evaluated)
}

func TestNewDefaultsExtension(t *testing.T) {
	l := New(&fakeEvaluator{}, "")
	assert.Equal(t, ".ptm", l.Ext)
}
