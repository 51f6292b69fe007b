package main

import (
	"os"
	"regexp"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/pkg/errors"
)

// versionPragma matches a leading "#ptm: >=1.2.0" comment, the build-file
// analogue of a Python script's minimum-interpreter-version check.
// original_source's build files carry no such pragma, but the __init__.py
// package version (ptm.__version__) is compared against nothing at
// runtime; this gives that comparison an actual enforcement point.
var versionPragma = regexp.MustCompile(`^#\s*ptm:\s*(>=)?\s*([0-9]+\.[0-9]+\.[0-9]+)\s*$`)

// checkVersionPragma scans the first few lines of a build file for a
// version pragma and, if present, fails fast when the running ptm binary
// is older than required, rather than letting the host interpreter fail
// confusingly deep into evaluation.
func checkVersionPragma(path string, running *semver.Version) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	lines := strings.SplitN(string(raw), "\n", 6)
	for _, line := range lines {
		m := versionPragma.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		required, err := semver.NewVersion(m[2])
		if err != nil {
			return errors.Wrapf(err, "parsing version pragma in %s", path)
		}
		if running.LessThan(*required) {
			return errors.Errorf("%s requires ptm >= %s, running %s", path, required, running)
		}
		return nil
	}
	return nil
}
