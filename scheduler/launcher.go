package scheduler

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/shlex"
	"github.com/pkg/errors"

	"github.com/Phantom1003/ptm/core"
)

// Launcher starts a node's recipe as a subprocess. Recipes execute in
// separate OS processes, never threads, per spec §5 ("no shared mutable
// state between recipes"); Go closures can't be pickled across a
// fork/exec boundary the way the reference implementation's
// multiprocessing.Process relies on, so a Simple/External recipe is run by
// re-executing the ptm binary (Reexec) rather than by literally forking
// the closure — the statically-typed analogue the Design Notes call for.
type Launcher struct {
	// Reexec builds the command used to run a Simple/External recipe's
	// action in a fresh child process. The child is expected to reload the
	// build file (re-registering the same recipes, deterministically) and
	// then invoke the recipe identified by its target directly.
	Reexec func(target core.Target, jobs int) *exec.Cmd
}

// Launch starts node's action with the given job allocation and returns
// the running command. Output streams are inherited, per spec §4.E.
func (l Launcher) Launch(ctx context.Context, node *core.Node, jobs int, env []string) (*exec.Cmd, error) {
	var cmd *exec.Cmd
	if node.IsShell() {
		args, err := shlex.Split(node.ShellCommand())
		if err != nil {
			return nil, errors.Wrapf(err, "splitting shell recipe for %s", node.Target)
		}
		if len(args) == 0 {
			return nil, errors.Errorf("empty shell recipe for %s", node.Target)
		}
		cmd = exec.CommandContext(ctx, args[0], args[1:]...)
	} else {
		cmd = l.Reexec(node.Target, jobs)
	}
	cmd.Env = append(append([]string{}, env...), fmt.Sprintf("PTM_JOBS=%d", jobs))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "starting %s", node.Target)
	}
	return cmd, nil
}
