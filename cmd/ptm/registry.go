package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/Phantom1003/ptm/core"
	"github.com/Phantom1003/ptm/internal/config"
	"github.com/Phantom1003/ptm/loader"
)

// hostRunner invokes the configured host interpreter against a rewritten
// build-file cache, either to register every target it declares (target
// == "") or to run one target's recipe body directly (target != ""),
// matching the two env-var-selected modes the host shim supports.
type hostRunner struct {
	cfg *config.Configuration
}

func (h hostRunner) registryFile(cachePath string) string {
	return cachePath + ".registry"
}

// run execs the host interpreter, appending the registry/exec-target env
// vars that select its mode, and returns once it exits.
func (h hostRunner) run(ctx context.Context, cachePath string, env []string, execTarget string, jobs int) error {
	cmd := exec.CommandContext(ctx, h.cfg.Build.HostInterpreter, cachePath)
	cmd.Env = append(append([]string{}, env...), "PTM_REGISTRY_FILE="+h.registryFile(cachePath))
	if execTarget != "" {
		cmd.Env = append(cmd.Env, "PTM_EXEC_TARGET="+execTarget, fmt.Sprintf("PTM_JOBS=%d", jobs))
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running host interpreter on %s", cachePath)
	}
	return nil
}

// registeringEvaluator adapts hostRunner to loader.Evaluator for the
// initial full-file load: it runs the host interpreter in registration
// mode (no PTM_EXEC_TARGET), so every target the build file declares gets
// written to the run's registry file.
type registeringEvaluator struct{ runner hostRunner }

func (e registeringEvaluator) Eval(ctx context.Context, cachePath string, env []string) error {
	return e.runner.run(ctx, cachePath, env, "", 0)
}

// buildRegistry loads buildFile (rewriting/caching it as needed) and
// materializes every target it declared into a fresh core.Registry. Each
// recipe's action is wired to re-invoke the host interpreter for that one
// target's function body, per the self-reexec model: Go never holds a
// closure over host-language code, only over "go run the host interpreter
// again, narrowed to this target."
func buildRegistry(ctx context.Context, ldr *loader.Loader, buildFile string, env []string, runner hostRunner) (*core.Registry, error) {
	if err := ldr.Load(ctx, buildFile, env); err != nil {
		return nil, err
	}
	cache := loader.CachePath(buildFile)
	regFile := runner.registryFile(cache)
	defer os.Remove(regFile)

	regs, err := readRegistrations(regFile)
	if err != nil {
		return nil, err
	}

	reg := core.NewRegistry()
	var merr *multierror.Error
	for _, r := range regs {
		target, err := r.Target.toTarget()
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		deps := make([]core.Target, 0, len(r.Deps))
		depErr := false
		for _, d := range r.Deps {
			dt, err := d.toTarget()
			if err != nil {
				merr = multierror.Append(merr, errors.Wrapf(err, "dependency of %s", target))
				depErr = true
				continue
			}
			deps = append(deps, dt)
		}
		if depErr {
			continue
		}

		var recipe *core.Recipe
		switch {
		case r.Shell != "":
			recipe = core.NewShellRecipe(target, deps, r.Shell)
		case r.External:
			recipe = core.NewExternalRecipe(target, deps, func(t string, d []string, jobs int) error {
				return runner.run(ctx, cache, env, t, jobs)
			})
		default:
			recipe = core.NewRecipe(target, deps, func(t string, d []string) error {
				return runner.run(ctx, cache, env, t, 1)
			})
		}
		recipe.WithSource(r.File, r.Line)
		reg.Register(recipe)
	}
	if merr.ErrorOrNil() != nil {
		return nil, errors.Wrap(merr, "invalid target registrations")
	}
	return reg, nil
}

// resolveTarget finds the registered target named name: a task by its
// symbolic name, or a file by path (absolute or relative to the working
// directory), per the reference BuildSystem._find_target behaviour.
func resolveTarget(reg *core.Registry, name string) (core.Target, error) {
	if t := core.NewTaskTarget(name); recipeExists(reg, t) {
		return t, nil
	}
	if ft, err := core.NewFileTarget(name); err == nil && recipeExists(reg, ft) {
		return ft, nil
	}
	return core.Target{}, errors.Errorf("target %q not found", name)
}

func recipeExists(reg *core.Registry, t core.Target) bool {
	_, ok := reg.Lookup(t)
	return ok
}
