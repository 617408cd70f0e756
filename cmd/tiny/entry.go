package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"tiny/interpreter-go/pkg/driver"
	"tiny/interpreter-go/pkg/interpreter"
)

// runPlan is a resolved `tiny run` invocation.
type runPlan struct {
	entry    string
	manifest *driver.Manifest
	lock     *driver.Lockfile
}

func runEntry(args []string, opts cliOptions) int {
	plan, err := resolveRunPlan(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.watch {
		return watchEntry(args, plan, opts)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return executeEntry(ctx, plan, opts)
}

// resolveRunPlan maps the arguments of `tiny run` to an entry file. No
// argument selects the manifest's first executable target; a single
// argument names a target or a source file.
func resolveRunPlan(args []string) (*runPlan, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(args[1:], " "))
	}

	manifest, manifestErr := loadManifestFrom(".")
	if manifestErr != nil {
		switch {
		case errors.Is(manifestErr, errManifestNotFound):
			manifest = nil
		case len(args) == 1 && looksLikePathCandidate(args[0]):
			fmt.Fprintf(os.Stderr, "warning: unable to load manifest (%v); falling back to direct file execution\n", manifestErr)
			manifest = nil
		default:
			return nil, fmt.Errorf("failed to load manifest: %w", manifestErr)
		}
	}

	if len(args) == 0 {
		if manifest == nil {
			return nil, fmt.Errorf("tiny run requires a manifest target or source file (package.yml not found)")
		}
		target, err := manifest.DefaultExecutableTarget()
		if err != nil {
			return nil, fmt.Errorf("manifest error: %w", err)
		}
		return planForTarget(manifest, target)
	}

	candidate := args[0]
	if manifest != nil {
		if target, ok := manifest.FindTarget(candidate); ok && !looksLikePathCandidate(candidate) {
			return planForTarget(manifest, target)
		}
	}

	active := manifest
	if absCandidate, err := filepath.Abs(candidate); err == nil {
		if manifestPath, findErr := findManifest(filepath.Dir(absCandidate)); findErr == nil {
			if active == nil || filepath.Clean(active.Path) != filepath.Clean(manifestPath) {
				m, loadErr := driver.LoadManifest(manifestPath)
				if loadErr != nil {
					return nil, fmt.Errorf("failed to read manifest for %s: %w", candidate, loadErr)
				}
				active = m
			}
		} else if errors.Is(findErr, errManifestNotFound) {
			active = nil
		} else {
			return nil, fmt.Errorf("failed to locate manifest for %s: %w", candidate, findErr)
		}
	}

	lock, err := loadLockfileForManifest(active)
	if err != nil {
		return nil, err
	}
	return &runPlan{entry: candidate, manifest: active, lock: lock}, nil
}

func planForTarget(manifest *driver.Manifest, target *driver.Target) (*runPlan, error) {
	if target.Kind == driver.TargetLibrary {
		return nil, fmt.Errorf("target %q is a library and cannot be run", target.Name)
	}
	entry, err := resolveTargetMain(manifest, target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target %q: %w", target.Name, err)
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return nil, err
	}
	return &runPlan{entry: entry, manifest: manifest, lock: lock}, nil
}

// executeEntry runs the planned program in a fresh interpreter and reports
// the first failure on stderr.
func executeEntry(ctx context.Context, plan *runPlan, opts cliOptions) int {
	if err := plan.manifest.CheckInterpreterVersion(interpreterVersion); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	mode, err := opts.conditionMode(plan.manifest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	program, err := loadProgram(plan)
	if err != nil {
		fmt.Fprintln(os.Stderr, interpreter.DescribeError(err))
		return 1
	}

	interp := interpreter.NewWithOptions(interpreter.Options{
		Stdout:     os.Stdout,
		Conditions: mode,
		Trace:      opts.traceWriter(),
	})
	if err := interp.EvaluateProgram(ctx, program); err != nil {
		fmt.Fprintln(os.Stderr, interpreter.DescribeError(err))
		return 1
	}
	return 0
}

func loadProgram(plan *runPlan) (*driver.Program, error) {
	loader, err := newLoader(plan.manifest, plan.lock)
	if err != nil {
		return nil, err
	}
	return loader.Load(plan.entry)
}

func newLoader(manifest *driver.Manifest, lock *driver.Lockfile) (*driver.Loader, error) {
	loader := &driver.Loader{Manifest: manifest, Lock: lock}
	if lock != nil && len(lock.Packages) > 0 {
		home, err := resolveTinyHome()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve TINY_HOME: %w", err)
		}
		loader.TinyHome = home
	}
	return loader, nil
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		start = cwd
	}
	absStart, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest search path %q: %w", start, err)
	}
	manifestPath, err := findManifest(absStart)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no package.yml found from %s upwards: %w", origin, errManifestNotFound)
		}
		dir = parent
	}
}

func resolveTargetMain(manifest *driver.Manifest, target *driver.Target) (string, error) {
	if manifest == nil || target == nil {
		return "", fmt.Errorf("missing manifest or target")
	}
	mainPath := strings.TrimSpace(target.Main)
	if mainPath == "" {
		return "", fmt.Errorf("target %q missing main entrypoint", target.Name)
	}
	if filepath.IsAbs(mainPath) {
		return filepath.Clean(mainPath), nil
	}
	return filepath.Join(manifest.Dir(), filepath.FromSlash(mainPath)), nil
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.ContainsAny(arg, `/\`) || strings.Contains(arg, string(os.PathSeparator)) {
		return true
	}
	return filepath.Ext(arg) == ".tiny" || strings.HasPrefix(arg, ".")
}

func resolveTinyHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("TINY_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve TINY_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".tiny"), nil
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("package.lock missing for %q; run `tiny deps install`", manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}
