package loader

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/Phantom1003/ptm/internal/logging"
)

var log = logging.Log

// Evaluator runs the rewritten (cached) form of a build file. The host
// scripting language's general evaluation semantics are explicitly out of
// scope for ptm (spec §1): ptm's job ends at handing the cache path to
// whatever evaluates it. Tests substitute a fake Evaluator so the
// lexer/caching behaviour can be verified without a real interpreter
// installed.
type Evaluator interface {
	Eval(ctx context.Context, cachePath string, env []string) error
}

// ExecEvaluator evaluates a cache file by exec'ing an external interpreter
// command, passing the cache path as its sole argument. The interpreter is
// a thin external collaborator named by Command; the ptm command itself
// evaluates through its own registering evaluator in cmd/ptm instead.
type ExecEvaluator struct {
	// Command is the interpreter binary, e.g. "python3" or a dedicated
	// ptm-host shim that knows how to turn Register/AddDependency calls in
	// the evaluated file into core.Registry entries.
	Command string
}

// Eval runs e.Command against cachePath, inheriting stdio so build-file
// side effects (prints, registration errors) surface directly to the user.
func (e ExecEvaluator) Eval(ctx context.Context, cachePath string, env []string) error {
	cmd := exec.CommandContext(ctx, e.Command, cachePath)
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "evaluating %s", cachePath)
	}
	return nil
}
