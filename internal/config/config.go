// Package config reads ptm's small .ptmconfig file, mirroring the layered
// defaults -> config file -> environment -> flags precedence that the
// teacher's core.Configuration follows, scaled down to what ptm actually
// needs: job cap, log level, the build file extension, and the host
// interpreter command.
package config

import (
	"os"

	"gopkg.in/gcfg.v1"

	"github.com/Phantom1003/ptm/internal/logging"
)

// FileName is the repo config file name, the ptm analogue of .plzconfig.
const FileName = ".ptmconfig"

// Configuration holds ptm's tunables. Struct tags follow gcfg's
// INI-section convention: a [build] section maps onto the Build field.
type Configuration struct {
	Build struct {
		// MaxJobs caps scheduler parallelism; 0 means "use host CPU count".
		MaxJobs int
		// BuildFileExtension is the extension Loader.Include accepts for
		// includes, default ".ptm".
		BuildFileExtension string
		// HostInterpreter is the external command used to evaluate a
		// rewritten build file (see cmd/ptm's hostRunner); ptm itself never
		// implements the host scripting language, per spec §1.
		HostInterpreter string
	}
	Log struct {
		Level string
	}
}

// Default returns the configuration ptm uses when no .ptmconfig file (or
// PTM_LOG_LEVEL / flag override) is present.
func Default() *Configuration {
	c := &Configuration{}
	c.Build.MaxJobs = 0
	c.Build.BuildFileExtension = ".ptm"
	c.Build.HostInterpreter = "ptm-host"
	c.Log.Level = "INFO"
	return c
}

// Load reads filename into a copy of Default(), returning the defaults
// unchanged if the file doesn't exist. PTM_LOG_LEVEL, when set, overrides
// whatever the file or default specified, matching spec §6.
func Load(filename string) (*Configuration, error) {
	c := Default()
	if err := gcfg.ReadFileInto(c, filename); err != nil && !os.IsNotExist(err) {
		return c, err
	}
	if env := os.Getenv("PTM_LOG_LEVEL"); env != "" {
		c.Log.Level = env
	}
	logging.SetLevelFromEnv(c.Log.Level)
	return c, nil
}
