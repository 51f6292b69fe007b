package loader

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// CachePath returns the adjacent cache file name for a build file: for
// /a/b/foo.ptm it is /a/b/.foo.ptm.cached, per spec §4.F.
func CachePath(source string) string {
	dir := filepath.Dir(source)
	base := filepath.Base(source)
	return filepath.Join(dir, "."+base+".cached")
}

// cacheValid reports whether the cache for source is present and at least
// as new as source (mtime(cache) >= mtime(source)).
func cacheValid(source, cache string) bool {
	srcInfo, err := os.Stat(source)
	if err != nil {
		return false
	}
	cacheInfo, err := os.Stat(cache)
	if err != nil {
		return false
	}
	return !cacheInfo.ModTime().Before(srcInfo.ModTime())
}

// rewrite runs the lexer over source and writes the result to its cache
// file, returning the cache path. If the existing cache is already valid
// it is reused without re-lexing.
func rewrite(source string) (string, error) {
	cache := CachePath(source)
	if cacheValid(source, cache) {
		return cache, nil
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return "", errors.Wrapf(err, "reading build file %s", source)
	}

	rewritten := Lex(string(raw))

	if err := os.WriteFile(cache, []byte(rewritten), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing cache %s", cache)
	}
	return cache, nil
}
