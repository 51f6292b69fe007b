// Command ptm loads a build file, resolves one requested target against
// the dependency graph it declares, and drives the parallel scheduler to
// build it. It also answers to a hidden --run-recipe mode, used only by
// its own re-exec'd children (see reexec.go) to run a single recipe.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/Phantom1003/ptm/build"
	"github.com/Phantom1003/ptm/core"
	"github.com/Phantom1003/ptm/environ"
	"github.com/Phantom1003/ptm/internal/config"
	"github.com/Phantom1003/ptm/internal/logging"
	"github.com/Phantom1003/ptm/loader"
	"github.com/Phantom1003/ptm/scheduler"
)

var log = logging.Log

var version = semver.New("0.3.0")

// opts holds ptm's own flags, recognised only up to the first positional
// argument (the target name); everything from there on is the user-arg
// tail spec §6 hands to the build file untouched.
type opts struct {
	Jobs        int    `short:"j" long:"jobs" description:"Maximum parallel jobs (0 = config MaxJobs, else host CPU count)"`
	Watch       bool   `long:"watch" description:"Watch file-target dependencies and rebuild on change"`
	ListTargets bool   `long:"list_targets" description:"List registered targets and exit"`
	Config      string `long:"config" description:"Path to the repo config file" default:".ptmconfig"`
	Version     bool   `long:"version" description:"Print the version and exit"`
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--run-recipe" {
		os.Exit(runRecipe(os.Args[2:]))
	}
	os.Exit(run(os.Args))
}

func run(argv []string) int {
	var o opts
	// IgnoreUnknown lets anything that isn't one of ptm's own flags fall
	// through to extra untouched, since the tail of the command line
	// belongs to the build file's own argv, not to ptm (spec §6).
	parser := flags.NewNamedParser(filepath.Base(argv[0]), flags.HelpFlag|flags.IgnoreUnknown|flags.PassAfterNonOption)
	parser.AddGroup("ptm options", "", &o)

	extra, err := parser.ParseArgs(argv[1:])
	if err != nil {
		if ferr, ok := err.(*flags.Error); ok && ferr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if o.Version {
		fmt.Printf("ptm version %s\n", version)
		return 0
	}

	targetName, userArgs := splitTargetArgs(extra)

	cfg, err := config.Load(o.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return 1
	}

	buildFile, err := filepath.Abs("./build.ptm")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := os.Stat(buildFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: build.ptm not found in current directory: %s\n", mustGetwd())
		return 1
	}
	if err := checkVersionPragma(buildFile, version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	env := environ.New()
	argvJSON, err := parseArgv(userArgs).env()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	envSlice := append(env.Environ(), argvJSON)

	selfPath, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx := context.Background()
	runner := hostRunner{cfg: cfg}
	ldr := loader.New(registeringEvaluator{runner: runner}, cfg.Build.BuildFileExtension)

	reg, err := buildRegistry(ctx, ldr, buildFile, envSlice, runner)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading build file:", err)
		return 1
	}

	if o.ListTargets {
		reg.ListTargets(os.Stdout)
		if files, err := discoverBuildFiles(filepath.Dir(buildFile), cfg.Build.BuildFileExtension); err == nil && len(files) > 0 {
			fmt.Println("\nBuild files in this repo:")
			for _, f := range files {
				fmt.Printf("  %s\n", f)
			}
		}
		return 0
	}

	root, err := resolveTarget(reg, targetName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building target:", err)
		return 1
	}

	graph, err := core.NewGraph(reg, root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error building target:", err)
		return 1
	}

	jobs := o.Jobs
	if jobs == 0 {
		jobs = cfg.Build.MaxJobs
	}
	if jobs == 0 {
		jobs = hostCPUCount()
	}

	launcher := scheduler.Launcher{Reexec: newReexecLauncher(selfPath, buildFile, o.Config)}

	log.Info("Build target %q", targetName)
	buildOnce := func() int {
		id := uuid.New().String()
		return scheduler.New(graph.Order(), jobs, launcher, envSlice, id).Run(ctx)
	}

	if o.Watch {
		if err := watchLoop(ctx, graph.Order(), buildOnce); err != nil {
			fmt.Fprintln(os.Stderr, "Error watching dependencies:", err)
			return 1
		}
		return 0
	}
	return buildOnce()
}

// splitTargetArgs implements spec §6's target-defaulting rule: a missing
// first argument or one starting with '-'/'+' defaults the target to
// "all" and treats every remaining argument as a user arg; otherwise the
// first argument is the target and the rest are user args.
func splitTargetArgs(args []string) (target string, userArgs []string) {
	if len(args) == 0 {
		return "all", nil
	}
	if strings.HasPrefix(args[0], "-") || strings.HasPrefix(args[0], "+") {
		return "all", args
	}
	return args[0], args[1:]
}

// hostCPUCount reads the live logical CPU count via gopsutil rather than
// runtime.NumCPU, so a container's cgroup quota (which gopsutil's cpu.Counts
// consults on Linux) is reflected instead of the host's raw core count.
func hostCPUCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "?"
	}
	return wd
}

// runRecipe is the hidden mode a re-exec'd child runs in: it reloads
// buildFile into a fresh registry (a cheap cache hit against the same
// source the parent already rewrote), checks freshness exactly as spec
// §4.D specifies, and if stale, runs the one named recipe directly.
func runRecipe(args []string) int {
	var o struct {
		BuildFile string `long:"buildfile"`
		Config    string `long:"config"`
		Jobs      int    `long:"jobs"`
	}
	parser := flags.NewParser(&o, flags.PassDoubleDash)
	extra, err := parser.ParseArgs(args)
	if err != nil || len(extra) != 1 {
		fmt.Fprintln(os.Stderr, "malformed --run-recipe invocation:", err)
		return 1
	}

	target, err := decodeTarget(extra[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cfg, err := config.Load(o.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	env := os.Environ()
	ctx := context.Background()
	runner := hostRunner{cfg: cfg}
	ldr := loader.New(registeringEvaluator{runner: runner}, cfg.Build.BuildFileExtension)

	reg, err := buildRegistry(ctx, ldr, o.BuildFile, env, runner)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reloading build file:", err)
		return 1
	}

	recipe, ok := reg.Lookup(target)
	if !ok {
		fmt.Fprintf(os.Stderr, "target %s vanished on reload\n", target)
		return 1
	}
	node := &core.Node{Recipe: recipe}

	if !build.NeedsBuilding(node) {
		log.Info("Target %s is up to date", target)
		return 0
	}

	log.Info("Building target: %s", target)
	if err := build.PrepareOutputDir(target); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	deps := make([]string, len(recipe.Dependencies))
	for i, d := range recipe.Dependencies {
		deps[i] = d.String()
	}
	if err := recipe.Run(target.String(), deps, o.Jobs); err != nil {
		fmt.Fprintln(os.Stderr, "Error building target:", err)
		return 1
	}
	return 0
}
