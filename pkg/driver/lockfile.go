package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LockfileName is written next to package.yml by `tiny deps`.
const LockfileName = "package.lock"

// Lockfile pins the packages whose library targets run before the project's
// programs.
type Lockfile struct {
	Path     string           `yaml:"-"`
	Root     string           `yaml:"root"`
	Packages []*LockedPackage `yaml:"packages"`
}

// LockedPackage is one resolved dependency. Source is one of
// "path:<dir>", "git:<url>#<commit>" or "registry:<name>@<version>".
// Requires names the locked packages whose preludes must run first.
type LockedPackage struct {
	Name     string   `yaml:"name"`
	Version  string   `yaml:"version"`
	Source   string   `yaml:"source"`
	Checksum string   `yaml:"checksum,omitempty"`
	Requires []string `yaml:"requires,omitempty"`
}

// LoadLockfile reads path. A missing file surfaces as fs.ErrNotExist.
func LoadLockfile(path string) (*Lockfile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("lockfile: %w", err)
	}
	lock := &Lockfile{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}
	lock.Path = abs
	lock.sort()
	if err := lock.check(); err != nil {
		return nil, fmt.Errorf("lockfile: %s: %w", abs, err)
	}
	return lock, nil
}

func (l *Lockfile) check() error {
	if l.Root == "" {
		return fmt.Errorf("root is required")
	}
	seen := make(map[string]bool, len(l.Packages))
	for _, pkg := range l.Packages {
		if pkg == nil || pkg.Name == "" {
			return fmt.Errorf("every package needs a name")
		}
		if seen[pkg.Name] {
			return fmt.Errorf("package %s is locked twice", pkg.Name)
		}
		seen[pkg.Name] = true
		if _, _, err := splitSource(pkg.Source); err != nil {
			return fmt.Errorf("package %s: %w", pkg.Name, err)
		}
	}
	return nil
}

func (l *Lockfile) sort() {
	sort.Slice(l.Packages, func(i, j int) bool {
		return l.Packages[i].Name < l.Packages[j].Name
	})
	for _, pkg := range l.Packages {
		if pkg != nil {
			sort.Strings(pkg.Requires)
		}
	}
}

// Write stores the lockfile at l.Path with packages sorted by name.
func (l *Lockfile) Write() error {
	if l.Path == "" {
		return fmt.Errorf("lockfile: no path")
	}
	l.sort()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := os.WriteFile(l.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: %w", err)
	}
	return nil
}

// Equal reports whether both lockfiles pin the same packages for the same
// root. Paths are ignored.
func (l *Lockfile) Equal(other *Lockfile) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.Root == other.Root && slices.EqualFunc(l.Packages, other.Packages, func(a, b *LockedPackage) bool {
		return a.Name == b.Name && a.Version == b.Version && a.Source == b.Source &&
			a.Checksum == b.Checksum && slices.Equal(a.Requires, b.Requires)
	})
}

// Find returns the locked package called name.
func (l *Lockfile) Find(name string) (*LockedPackage, bool) {
	if l == nil {
		return nil, false
	}
	name = SanitizeName(name)
	for _, pkg := range l.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// DependencyOrder lists the locked packages so that every package follows
// the packages it requires. Among packages that are ready at the same time
// the smaller name goes first. Requirements outside the lockfile are
// ignored.
func (l *Lockfile) DependencyOrder() ([]*LockedPackage, error) {
	if l == nil {
		return nil, nil
	}
	byName := make(map[string]*LockedPackage, len(l.Packages))
	for _, pkg := range l.Packages {
		byName[pkg.Name] = pkg
	}
	waiting := make(map[string]int, len(l.Packages))
	dependents := make(map[string][]string)
	var ready []string
	for _, pkg := range l.Packages {
		for _, req := range pkg.Requires {
			if _, ok := byName[req]; ok {
				waiting[pkg.Name]++
				dependents[req] = append(dependents[req], pkg.Name)
			}
		}
		if waiting[pkg.Name] == 0 {
			ready = append(ready, pkg.Name)
		}
	}

	order := make([]*LockedPackage, 0, len(l.Packages))
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, byName[name])
		for _, dependent := range dependents[name] {
			waiting[dependent]--
			if waiting[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}
	if len(order) < len(l.Packages) {
		var stuck []string
		for name, n := range waiting {
			if n > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("lockfile: dependency cycle among %s", strings.Join(stuck, ", "))
	}
	return order, nil
}

// CacheDir is where a fetched copy of name at version lives under the tiny
// home directory.
func CacheDir(tinyHome, name, version string) string {
	return filepath.Join(tinyHome, "cache", SanitizeName(name), version)
}

// Dir is the directory holding the package's sources: the linked directory
// for path sources, the cache entry otherwise.
func (p *LockedPackage) Dir(tinyHome string) (string, error) {
	kind, location, err := splitSource(p.Source)
	if err != nil {
		return "", fmt.Errorf("lockfile: package %s: %w", p.Name, err)
	}
	if kind == SourcePath {
		return location, nil
	}
	if tinyHome == "" {
		return "", fmt.Errorf("lockfile: package %s is cached but no tiny home is set", p.Name)
	}
	return CacheDir(tinyHome, p.Name, p.Version), nil
}

func splitSource(source string) (kind, location string, err error) {
	kind, location, ok := strings.Cut(source, ":")
	if !ok || location == "" {
		return "", "", fmt.Errorf("malformed source %q", source)
	}
	switch kind {
	case SourcePath:
		if !filepath.IsAbs(location) {
			return "", "", fmt.Errorf("path source %q must be absolute", location)
		}
	case SourceGit, SourceRegistry:
	default:
		return "", "", fmt.Errorf("unknown source kind %q", kind)
	}
	return kind, location, nil
}
