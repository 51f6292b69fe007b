//go:build windows

package scheduler

import "os/exec"

// exitCode has no signal-death case on Windows; a non-zero ExitError
// status is reported as-is.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return -1
	}
	return exitErr.ExitCode()
}
