package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.ptmconfig"))
	assert.NoError(t, err)
	assert.Equal(t, Default().Build, cfg.Build)
}

func TestLoadReadsBuildSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ptmconfig")
	content := "[build]\nMaxJobs = 4\nHostInterpreter = python3\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 4, cfg.Build.MaxJobs)
	assert.Equal(t, "python3", cfg.Build.HostInterpreter)
}

func TestLoadEnvOverridesLogLevel(t *testing.T) {
	assert.NoError(t, os.Setenv("PTM_LOG_LEVEL", "DEBUG"))
	defer os.Unsetenv("PTM_LOG_LEVEL")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.ptmconfig"))
	assert.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0, cfg.Build.MaxJobs)
	assert.Equal(t, ".ptm", cfg.Build.BuildFileExtension)
	assert.Equal(t, "INFO", cfg.Log.Level)
}
