package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"tiny/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "tiny deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "tiny deps install takes no arguments (got %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return syncDependencies(nil, false)
	case "update":
		return syncDependencies(args[1:], true)
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

// syncDependencies resolves the project's dependencies and rewrites
// package.lock when the result differs from what is there. Install keeps
// every existing pin. Update drops the pins of the named dependencies, or of
// all of them when none are named.
func syncDependencies(names []string, update bool) int {
	fail := func(err error) int {
		fmt.Fprintf(os.Stderr, "tiny deps: %v\n", err)
		return 1
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fail(err)
	}
	manifest, err := loadManifestFrom(cwd)
	if err != nil {
		return fail(err)
	}
	home, err := resolveTinyHome()
	if err != nil {
		return fail(err)
	}

	lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
	previous, err := driver.LoadLockfile(lockPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		previous = nil
	case err != nil:
		return fail(err)
	case previous.Root != manifest.Name:
		return fail(fmt.Errorf("lockfile root %q does not match manifest name %q", previous.Root, manifest.Name))
	}

	pins, err := keptPins(manifest, previous, names, update)
	if err != nil {
		return fail(err)
	}
	r := newResolver(home, pins)
	packages, err := r.resolveAll(manifest)
	if err != nil {
		return fail(err)
	}
	for _, line := range r.log {
		fmt.Fprintln(os.Stdout, line)
	}

	lock := &driver.Lockfile{Path: lockPath, Root: manifest.Name, Packages: packages}
	if lock.Equal(previous) {
		fmt.Fprintf(os.Stdout, "package.lock unchanged (%d packages)\n", len(packages))
		return 0
	}
	if err := lock.Write(); err != nil {
		return fail(err)
	}
	verb := "updated"
	if previous == nil {
		verb = "created"
	}
	fmt.Fprintf(os.Stdout, "package.lock %s (%d packages)\n", verb, len(packages))
	return 0
}

// keptPins returns the locked packages the resolver should reuse.
func keptPins(manifest *driver.Manifest, previous *driver.Lockfile, names []string, update bool) (map[string]*driver.LockedPackage, error) {
	pins := make(map[string]*driver.LockedPackage)
	if previous == nil || (update && len(names) == 0) {
		return pins, nil
	}
	for _, pkg := range previous.Packages {
		pins[pkg.Name] = pkg
	}
	for _, name := range names {
		key := driver.SanitizeName(name)
		if _, ok := manifest.Dependencies[key]; !ok {
			return nil, fmt.Errorf("dependency %q not declared in manifest", name)
		}
		delete(pins, key)
	}
	return pins, nil
}

// resolver walks a dependency graph depth first, fetching each package once.
type resolver struct {
	home     string
	pins     map[string]*driver.LockedPackage
	resolved map[string]*driver.LockedPackage
	// active holds the packages being resolved, outermost first.
	active []string
	log    []string
}

func newResolver(home string, pins map[string]*driver.LockedPackage) *resolver {
	return &resolver{
		home:     home,
		pins:     pins,
		resolved: make(map[string]*driver.LockedPackage),
	}
}

// resolveAll resolves every dependency of manifest and returns the locked
// packages sorted by name.
func (r *resolver) resolveAll(manifest *driver.Manifest) ([]*driver.LockedPackage, error) {
	for _, name := range driver.SortedDependencyNames(manifest.Dependencies) {
		if err := r.resolve(name, manifest.Dependencies[name], manifest.Dir()); err != nil {
			return nil, err
		}
	}
	packages := make([]*driver.LockedPackage, 0, len(r.resolved))
	for _, pkg := range r.resolved {
		packages = append(packages, pkg)
	}
	slices.SortFunc(packages, func(a, b *driver.LockedPackage) int {
		return strings.Compare(a.Name, b.Name)
	})
	return packages, nil
}

// resolve fetches name and then the dependencies its own manifest declares.
// Relative path dependencies are anchored at base, the directory of the
// manifest that declared them. The first declaration of a name wins.
func (r *resolver) resolve(name string, dep *driver.Dependency, base string) error {
	if slices.Contains(r.active, name) {
		return fmt.Errorf("dependency cycle detected: %s -> %s", strings.Join(r.active, " -> "), name)
	}
	if _, ok := r.resolved[name]; ok {
		return nil
	}
	r.active = append(r.active, name)
	defer func() { r.active = r.active[:len(r.active)-1] }()

	var (
		got fetched
		err error
	)
	switch dep.Source() {
	case driver.SourcePath:
		got, err = r.linkPath(name, dep, base)
	case driver.SourceGit:
		got, err = r.checkoutGit(name, dep)
	default:
		got, err = r.copyFromRegistry(name, dep)
	}
	if err != nil {
		return fmt.Errorf("dependency %s: %w", name, err)
	}
	child, err := packageManifest(got.dir)
	if err != nil {
		return fmt.Errorf("dependency %s: %w", name, err)
	}
	pkg := got.pkg
	if pkg.Version == "" {
		pkg.Version = "0.0.0-dev"
		if child != nil && child.Version != "" {
			pkg.Version = child.Version
		}
	}
	r.log = append(r.log, fmt.Sprintf("%s %s %s", got.action, name, pkg.Version))

	if child != nil {
		for _, childName := range driver.SortedDependencyNames(child.Dependencies) {
			if err := r.resolve(childName, child.Dependencies[childName], got.dir); err != nil {
				return err
			}
			pkg.Requires = append(pkg.Requires, childName)
		}
	}
	r.resolved[name] = pkg
	return nil
}

// packageManifest loads dir's manifest. A package without one is a nil
// manifest, not an error.
func packageManifest(dir string) (*driver.Manifest, error) {
	manifest, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return manifest, err
}
