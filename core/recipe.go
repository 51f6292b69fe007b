package core

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// SimpleAction is the action of an ordinary recipe: it receives the
// resolved target name and its dependencies' names.
type SimpleAction func(target string, deps []string) error

// ExternalAction is the action of an external recipe: in addition to
// target and deps it receives the full remaining job budget, since an
// external recipe is itself a parallel sub-build (e.g. "make -jN").
type ExternalAction func(target string, deps []string, jobs int) error

// actionKind is the sum-type tag for Recipe.Action. Go closures can't be
// pickled across a fork/exec boundary the way the reference implementation
// relies on, so the scheduler never ships an actionSimple closure to a
// child process directly: it re-execs the ptm binary and re-resolves the
// recipe by Target from a freshly reloaded registry (see
// scheduler.Launcher.Launch). actionShell bypasses that entirely and execs
// the command string.
type actionKind int

const (
	actionSimple actionKind = iota
	actionExternal
	actionShell
)

// Recipe is the record registered for each Target: its action, its
// declared dependencies, and whether it claims the full job budget.
type Recipe struct {
	Target       Target
	Dependencies []Target

	// SourceFile and SourceLine record where a task recipe was declared,
	// for diagnostics (list_targets, cycle-drop logs); zero value for
	// recipes with no known origin (e.g. decoded for a re-exec'd child).
	SourceFile string
	SourceLine int

	kind     actionKind
	simple   SimpleAction
	external ExternalAction
	shell    string
}

// Location renders the recipe's declared source, or just its target's
// identifier if no source location was recorded.
func (r *Recipe) Location() string {
	if r.SourceFile == "" {
		return r.Target.String()
	}
	return fmt.Sprintf("%s [%s@%d]", r.Target, r.SourceFile, r.SourceLine)
}

// WithSource attaches a source location to a recipe and returns it, for
// chaining onto a New*Recipe call at the registration site.
func (r *Recipe) WithSource(file string, line int) *Recipe {
	r.SourceFile = file
	r.SourceLine = line
	return r
}

// NewRecipe builds an ordinary (non-external) recipe.
func NewRecipe(target Target, deps []Target, action SimpleAction) *Recipe {
	return &Recipe{Target: target, Dependencies: deps, kind: actionSimple, simple: action}
}

// NewExternalRecipe builds a recipe whose action consumes the whole
// remaining job budget, such as a wrapped "make -jN" invocation.
func NewExternalRecipe(target Target, deps []Target, action ExternalAction) *Recipe {
	return &Recipe{Target: target, Dependencies: deps, kind: actionExternal, external: action}
}

// NewShellRecipe builds a recipe whose action is a plain shell command
// string, split with shlex and exec'd directly with no closure involved.
// This is the original_source ptm.recipe.py shell-recipe affordance,
// carried forward per SPEC_FULL §12.
func NewShellRecipe(target Target, deps []Target, command string) *Recipe {
	return &Recipe{Target: target, Dependencies: deps, kind: actionShell, shell: command}
}

// IsExternal reports whether this recipe must be given the full job budget.
func (r *Recipe) IsExternal() bool { return r.kind == actionExternal }

// IsShell reports whether this recipe's action is a shell command string.
func (r *Recipe) IsShell() bool { return r.kind == actionShell }

// ShellCommand returns the recipe's shell command string; only valid when
// IsShell is true.
func (r *Recipe) ShellCommand() string { return r.shell }

// Run invokes the recipe's action directly, in-process. It is used both by
// the re-exec'd child (for actionSimple/actionExternal) and, for
// actionShell, is never called — shell recipes are exec'd by the scheduler
// without entering Go code at all.
func (r *Recipe) Run(target string, deps []string, jobs int) error {
	switch r.kind {
	case actionSimple:
		return r.simple(target, deps)
	case actionExternal:
		return r.external(target, deps, jobs)
	default:
		return errors.Errorf("recipe for %s has no in-process action", target)
	}
}

// Registry is the process-wide mapping from Target to Recipe. It is
// mutable only through Register and AddDependency; duplicate registration
// of the same target overwrites silently, matching the reference loader's
// behaviour.
type Registry struct {
	recipes map[Target]*Recipe
	// order preserves first-registration order, used by ListTargets so
	// output doesn't reshuffle between runs of an unordered map.
	order []Target
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{recipes: map[Target]*Recipe{}}
}

// Register validates action's leading parameter shape implicitly through
// its Go type (SimpleAction vs ExternalAction replace the reference
// implementation's runtime signature inspection, per the Design Notes'
// capability-type guidance) and stores the recipe, overwriting silently if
// target was already registered.
func (reg *Registry) Register(recipe *Recipe) {
	if _, exists := reg.recipes[recipe.Target]; !exists {
		reg.order = append(reg.order, recipe.Target)
	}
	reg.recipes[recipe.Target] = recipe
}

// Lookup returns the recipe registered for target, if any.
func (reg *Registry) Lookup(target Target) (*Recipe, bool) {
	r, ok := reg.recipes[target]
	return r, ok
}

// AddDependency appends deps to an existing recipe's dependency list.
// Returns an error if target is unknown.
func (reg *Registry) AddDependency(target Target, deps ...Target) error {
	r, ok := reg.recipes[target]
	if !ok {
		return errors.Errorf("cannot add dependency to unknown target %s", target)
	}
	r.Dependencies = append(r.Dependencies, deps...)
	return nil
}

// ListTargets writes each registered target with its dependency list to w,
// in registration order. This is the Go analogue of the reference
// BuildSystem.list_targets().
func (reg *Registry) ListTargets(w io.Writer) {
	fmt.Fprintln(w, "Available targets:")
	for _, t := range reg.order {
		r := reg.recipes[t]
		deps := make([]string, len(r.Dependencies))
		for i, d := range r.Dependencies {
			deps[i] = d.String()
		}
		sort.Strings(deps)
		fmt.Fprintf(w, "  %s <- %v\n", r.Location(), deps)
	}
}
