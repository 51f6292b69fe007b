package main

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Phantom1003/ptm/core"
)

// encodeTarget serializes a Target for passing across the self-reexec
// boundary as a single command-line argument.
func encodeTarget(t core.Target) string {
	if t.IsFile() {
		return "file:" + t.ID()
	}
	return "task:" + t.ID()
}

// decodeTarget is encodeTarget's inverse.
func decodeTarget(s string) (core.Target, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return core.Target{}, errors.Errorf("malformed target argument %q", s)
	}
	switch kind {
	case "file":
		return core.NewFileTarget(id)
	case "task":
		return core.NewTaskTarget(id), nil
	default:
		return core.Target{}, errors.Errorf("unknown target kind %q", kind)
	}
}

// newReexecLauncher returns the Reexec hook the scheduler uses to run a
// node's Simple/External action in a child process: re-invoke this same
// ptm binary with its hidden --run-recipe mode, which reloads buildFile
// (a cheap cache hit against the same source the parent already rewrote)
// and then runs only the one named target directly.
func newReexecLauncher(selfPath, buildFile, configPath string) func(core.Target, int) *exec.Cmd {
	return func(target core.Target, jobs int) *exec.Cmd {
		return exec.Command(selfPath,
			"--run-recipe", encodeTarget(target),
			"--buildfile", buildFile,
			"--config", configPath,
			"--jobs", strconv.Itoa(jobs),
		)
	}
}
