// Package scheduler implements the parallel dispatch loop of spec §4.E: it
// launches recipes in worker subprocesses under a job cap, tracks
// completion, advances the dependency frontier, gives external recipes
// the whole remaining job budget, and aborts on failure or deadlock.
package scheduler

import (
	"context"
	"os"
	"os/exec"

	"github.com/dustin/go-humanize"

	"github.com/Phantom1003/ptm/core"
	"github.com/Phantom1003/ptm/internal/logging"
)

var log = logging.Log

// DeadlockExitCode is returned when the scheduler finds no runnable node
// but the build is incomplete, per spec §6/§7.
const DeadlockExitCode = 1

// wipEntry tracks one in-flight launch.
type wipEntry struct {
	cmd  *exec.Cmd
	node *core.Node
	jobs int
}

// completion is posted by a per-child reaper goroutine when its process
// exits; it is the Go analogue of the single blocking "wait for any child"
// syscall the reference implementation uses.
type completion struct {
	target core.Target
	code   int
}

// Scheduler drives the build order produced by core.Graph.Order to
// completion, respecting maxJobs.
type Scheduler struct {
	order    []*core.Node
	maxJobs  int
	cap      int
	ptr      int
	launcher Launcher
	env      []string
	// id correlates every log line this run produces, useful once --watch
	// triggers the same Scheduler construction repeatedly.
	id string

	remainingDeps map[core.Target]int
	dependents    map[core.Target][]*core.Node
	wip           map[core.Target]wipEntry
	done          map[core.Target]bool

	completions chan completion
}

// New builds a Scheduler for order with the given job cap and launcher.
// env is the snapshot of the environment proxy passed to every launched
// subprocess. id tags every log line this run emits.
func New(order []*core.Node, maxJobs int, launcher Launcher, env []string, id string) *Scheduler {
	if maxJobs < 1 {
		maxJobs = 1
	}
	s := &Scheduler{
		order:         order,
		maxJobs:       maxJobs,
		cap:           maxJobs,
		launcher:      launcher,
		env:           env,
		id:            id,
		remainingDeps: map[core.Target]int{},
		dependents:    map[core.Target][]*core.Node{},
		wip:           map[core.Target]wipEntry{},
		done:          map[core.Target]bool{},
		completions:   make(chan completion),
	}
	for _, n := range order {
		s.remainingDeps[n.Target] = len(n.Children)
	}
	// dependents[d] lists every node whose *declared* dependency list
	// names d, matching spec §4.E's "every node p whose declared dep list
	// contains this node's target name" — not just resolved Children,
	// since a dep that resolved to "no node" (an existing file leaf)
	// never needs to be un-blocked here anyway.
	for _, n := range order {
		for _, dep := range n.Dependencies {
			s.dependents[dep] = append(s.dependents[dep], n)
		}
	}
	return s
}

// Run executes the dispatch loop and returns the scheduler's exit code:
// 0 on success, the first observed non-zero subprocess exit code on
// failure, or DeadlockExitCode if no node is ever runnable again.
func (s *Scheduler) Run(ctx context.Context) int {
	var errCode *int
	for {
		if errCode != nil {
			return *errCode
		}
		if len(s.done) == len(s.order) {
			log.Debug("[%s] All targets completed", s.id)
			return 0
		}

		s.advancePointer()
		s.selectAndLaunch(ctx)

		if len(s.wip) == 0 {
			if len(s.done) < len(s.order) {
				log.Error("[%s] Deadlock detected: no runnable tasks but build incomplete", s.id)
				return DeadlockExitCode
			}
			return 0
		}

		if code := s.waitForCompletion(); code != nil {
			errCode = code
		}
	}
}

// sizeSuffix renders " (1.2 MB)" for a freshly-built file target, or ""
// for a task target or one that vanished under us.
func sizeSuffix(t core.Target) string {
	if !t.IsFile() {
		return ""
	}
	info, err := os.Stat(t.ID())
	if err != nil {
		return ""
	}
	return " (" + humanize.Bytes(uint64(info.Size())) + ")"
}

func (s *Scheduler) advancePointer() {
	for s.ptr < len(s.order) && s.done[s.order[s.ptr].Target] {
		s.ptr++
	}
}

// selectAndLaunch scans the look-ahead window order[ptr .. ptr+2*maxJobs)
// per spec §4.E step 4. The window size has no stated rationale in the
// source material; it trades fairness against scan cost and is treated as
// tunable.
//
// A ready external node is checked before the generic one-job launch, and
// only started while s.wip is empty: granting it the whole job budget
// drives s.cap to zero immediately, so no further launch can happen in
// this call or any later one until it completes, which is what keeps it
// the sole wip entry for its entire run (spec §8 property #5).
func (s *Scheduler) selectAndLaunch(ctx context.Context) {
	limit := s.ptr + 2*s.maxJobs
	if limit > len(s.order) {
		limit = len(s.order)
	}
	for i := s.ptr; i < limit; i++ {
		if s.cap <= 0 {
			break
		}
		node := s.order[i]
		t := node.Target
		_, inWip := s.wip[t]
		if s.done[t] || inWip || s.remainingDeps[t] != 0 {
			continue
		}

		if node.IsExternal() {
			if len(s.wip) == 0 {
				s.launch(ctx, node, s.maxJobs)
			}
			break
		}

		s.launch(ctx, node, 1)
	}
}

func (s *Scheduler) launch(ctx context.Context, node *core.Node, jobs int) {
	log.Debug("[%s] Started building %s with %d cores", s.id, node.Target, jobs)
	cmd, err := s.launcher.Launch(ctx, node, jobs, s.env)
	if err != nil {
		log.Error("Failed to start %s: %s", node.Target, err)
		// Still occupy the job slot and register a wip entry so
		// waitForCompletion recognises the completion below instead of
		// discarding it as stale; post it from a goroutine since
		// completions is unbuffered and nothing is receiving yet here.
		s.cap -= jobs
		s.wip[node.Target] = wipEntry{node: node, jobs: jobs}
		go func() { s.completions <- completion{target: node.Target, code: -1} }()
		return
	}
	s.cap -= jobs
	s.wip[node.Target] = wipEntry{cmd: cmd, node: node, jobs: jobs}

	go func() {
		err := cmd.Wait()
		s.completions <- completion{target: node.Target, code: exitCode(err)}
	}()
}

// waitForCompletion blocks for exactly one subprocess exit — the
// scheduler's sole blocking point, per spec §5 — and applies its result.
// It returns a non-nil pointer to the latched exit code if the completed
// node failed.
func (s *Scheduler) waitForCompletion() *int {
	c := <-s.completions
	entry, ok := s.wip[c.target]
	if !ok {
		return nil
	}
	delete(s.wip, c.target)
	s.cap += entry.jobs

	if c.code == 0 {
		s.done[c.target] = true
		log.Debug("[%s] Completed %s%s", s.id, c.target, sizeSuffix(c.target))
		for _, dependent := range s.dependents[c.target] {
			s.remainingDeps[dependent.Target]--
		}
		return nil
	}

	log.Info("[%s] Target %s failed with exit code %d", s.id, c.target, c.code)
	code := c.code
	return &code
}
