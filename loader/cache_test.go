package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCachePathNaming(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", ".foo.ptm.cached"), CachePath(filepath.Join("a", "b", "foo.ptm")))
}

func TestRewriteCreatesCacheFromSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.ptm")
	assert.NoError(t, os.WriteFile(src, []byte("x = ${HOME}\n"), 0o644))

	cache, err := rewrite(src)
	assert.NoError(t, err)
	assert.Equal(t, CachePath(src), cache)

	got, err := os.ReadFile(cache)
	assert.NoError(t, err)
	assert.Equal(t, "x = environ['HOME']\n", string(got))
}

func TestRewriteReusesValidCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.ptm")
	assert.NoError(t, os.WriteFile(src, []byte("x = ${HOME}\n"), 0o644))

	cache, err := rewrite(src)
	assert.NoError(t, err)

	// Hand-corrupt the cache; since its mtime is still >= source's, a
	// second rewrite call must reuse it rather than re-lex.
	assert.NoError(t, os.WriteFile(cache, []byte("stale-but-valid"), 0o644))

	cache2, err := rewrite(src)
	assert.NoError(t, err)
	assert.Equal(t, cache, cache2)

	got, err := os.ReadFile(cache2)
	assert.NoError(t, err)
	assert.Equal(t, "stale-but-valid", string(got))
}

func TestRewriteRefreshesStaleCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.ptm")
	cache := CachePath(src)

	old := time.Now().Add(-time.Hour)
	assert.NoError(t, os.WriteFile(cache, []byte("outdated"), 0o644))
	assert.NoError(t, os.Chtimes(cache, old, old))
	assert.NoError(t, os.WriteFile(src, []byte("x = ${HOME}\n"), 0o644))

	_, err := rewrite(src)
	assert.NoError(t, err)

	got, err := os.ReadFile(cache)
	assert.NoError(t, err)
	assert.Equal(t, "x = environ['HOME']\n", string(got))
}
