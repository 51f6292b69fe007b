package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coreos/go-semver/semver"
	"github.com/stretchr/testify/assert"
)

func writeBuildFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "build.ptm")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckVersionPragmaSatisfied(t *testing.T) {
	path := writeBuildFile(t, "#ptm: >=1.0.0\ntask('all', lambda: None)\n")
	running := semver.New("2.0.0")
	assert.NoError(t, checkVersionPragma(path, running))
}

func TestCheckVersionPragmaUnsatisfied(t *testing.T) {
	path := writeBuildFile(t, "#ptm: >=9.9.9\ntask('all', lambda: None)\n")
	running := semver.New("1.0.0")
	err := checkVersionPragma(path, running)
	assert.Error(t, err)
}

func TestCheckVersionPragmaAbsentIsFine(t *testing.T) {
	path := writeBuildFile(t, "task('all', lambda: None)\n")
	running := semver.New("1.0.0")
	assert.NoError(t, checkVersionPragma(path, running))
}

func TestCheckVersionPragmaWithoutComparator(t *testing.T) {
	path := writeBuildFile(t, "# ptm: 1.0.0\n")
	running := semver.New("1.0.0")
	assert.NoError(t, checkVersionPragma(path, running))
}
