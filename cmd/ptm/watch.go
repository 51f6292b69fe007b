package main

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/Phantom1003/ptm/core"
)

// watchLoop is the SUPPLEMENTED --watch mode: it watches every file-target
// dependency reachable in order and reruns buildOnce whenever one changes,
// until ctx is cancelled. original_source/src/ptm/cli.py's docstring
// mentions a --watch flag that the distilled spec dropped; this restores
// it in the teacher's idiom, on top of fsnotify.
func watchLoop(ctx context.Context, order []*core.Node, buildOnce func() int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := map[string]bool{}
	for _, n := range order {
		for _, dep := range n.Dependencies {
			if !dep.IsFile() {
				continue
			}
			path := dep.ID()
			if watched[path] {
				continue
			}
			// A generated file may not exist until the first build runs;
			// a failed Add leaves it unwatched for the rest of the loop,
			// since the watch set is fixed here, before the first build.
			if err := watcher.Add(path); err == nil {
				watched[path] = true
			}
		}
	}
	log.Info("Watching %d file(s) for changes", len(watched))

	for {
		buildOnce()

		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			log.Info("%s changed (%s), rebuilding", ev.Name, ev.Op)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warning("watch error: %s", err)
		}
	}
}
