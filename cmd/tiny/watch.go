package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"tiny/interpreter-go/pkg/driver"
)

const watchDebounce = 100 * time.Millisecond

// watchEntry runs the plan, then reruns it whenever a source file, the
// manifest or the lockfile changes. A change cancels the run in flight.
func watchEntry(args []string, plan *runPlan, opts cliOptions) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		return 1
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watched := make(map[string]bool)
	addDirs := func(p *runPlan) {
		for _, dir := range watchDirs(p) {
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(os.Stderr, "watch: %s: %v\n", dir, err)
				continue
			}
			watched[dir] = true
		}
	}
	addDirs(plan)

	var (
		cancelRun context.CancelFunc = func() {}
		done      chan int
		debounce  <-chan time.Time
		lastCode  int
	)
	start := func(p *runPlan) {
		runCtx, cancel := context.WithCancel(ctx)
		cancelRun = cancel
		done = make(chan int, 1)
		go func(done chan<- int) {
			done <- executeEntry(runCtx, p, opts)
		}(done)
	}
	finish := func() {
		cancelRun()
		if done != nil {
			lastCode = <-done
			done = nil
		}
	}

	start(plan)
	for {
		select {
		case <-ctx.Done():
			finish()
			return lastCode
		case code := <-done:
			lastCode = code
			done = nil
			fmt.Fprintf(os.Stderr, "watch: exited with status %d; waiting for changes\n", code)
		case event, ok := <-watcher.Events:
			if !ok {
				finish()
				return lastCode
			}
			if watchRelevant(event) {
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				finish()
				return lastCode
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		case <-debounce:
			debounce = nil
			finish()
			next, err := resolveRunPlan(args)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			addDirs(next)
			fmt.Fprintf(os.Stderr, "watch: change detected, rerunning %s\n", next.entry)
			start(next)
		}
	}
}

// watchRelevant reports whether event touches a file that can change the
// program's behavior.
func watchRelevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	switch base := filepath.Base(event.Name); {
	case base == driver.ManifestName, base == driver.LockfileName:
		return true
	default:
		return filepath.Ext(base) == ".tiny"
	}
}

// watchDirs lists the directories holding the entry, the manifest and every
// library module that runs before the entry.
func watchDirs(plan *runPlan) []string {
	seen := make(map[string]struct{})
	add := func(path string) {
		if path == "" {
			return
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		seen[filepath.Dir(abs)] = struct{}{}
	}
	add(plan.entry)
	if plan.manifest != nil {
		add(plan.manifest.Path)
		if loader, err := newLoader(plan.manifest, plan.lock); err == nil {
			if preludes, err := loader.Preludes(); err == nil {
				for _, mod := range preludes {
					add(mod.Path)
				}
			}
		}
	}
	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}
