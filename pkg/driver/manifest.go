package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file that marks the root of a tiny project.
const ManifestName = "package.yml"

// Manifest is a parsed and validated package.yml.
type Manifest struct {
	Path    string
	Name    string
	Version string
	// Tiny constrains the interpreter versions the project runs on.
	Tiny         string
	Targets      []*Target
	Dependencies map[string]*Dependency
	Settings     Settings
}

// Settings carries interpreter options a project pins for its programs.
type Settings struct {
	Conditions string `yaml:"conditions"`
}

// TargetKind says whether a target is run or loaded ahead of other code.
type TargetKind string

const (
	TargetExecutable TargetKind = "executable"
	TargetLibrary    TargetKind = "library"
)

// Target is one entry of the manifest's targets mapping, in document order.
type Target struct {
	Name string
	Kind TargetKind
	Main string
}

// Dependency is a package whose library target runs before the project's
// programs. Exactly one of Version, Path and Git names its source.
type Dependency struct {
	Version string `yaml:"version"`
	Path    string `yaml:"path"`
	Git     string `yaml:"git"`
	Rev     string `yaml:"rev"`
	Tag     string `yaml:"tag"`
	Branch  string `yaml:"branch"`
}

// Dependency sources.
const (
	SourceRegistry = "registry"
	SourcePath     = "path"
	SourceGit      = "git"
)

// Source names where the dependency is fetched from.
func (d *Dependency) Source() string {
	switch {
	case d.Path != "":
		return SourcePath
	case d.Git != "":
		return SourceGit
	default:
		return SourceRegistry
	}
}

// UnmarshalYAML accepts a bare version constraint as shorthand.
func (d *Dependency) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = Dependency{Version: strings.TrimSpace(node.Value)}
		return nil
	}
	type fields Dependency
	var raw fields
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*d = Dependency(raw)
	return nil
}

// ValidationError lists every problem found in a manifest.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest %s is invalid:\n- %s", e.Path, strings.Join(e.Issues, "\n- "))
}

type manifestDocument struct {
	Name         string                 `yaml:"name"`
	Version      string                 `yaml:"version"`
	Tiny         string                 `yaml:"tiny"`
	Targets      yaml.Node              `yaml:"targets"`
	Dependencies map[string]*Dependency `yaml:"dependencies"`
	Settings     Settings               `yaml:"settings"`
}

// LoadManifest reads and validates the manifest at path. Open failures keep
// their underlying error so callers can test for fs.ErrNotExist.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	defer file.Close()

	var doc manifestDocument
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", abs)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}

	m := &Manifest{
		Path:         abs,
		Name:         SanitizeName(doc.Name),
		Version:      strings.TrimSpace(doc.Version),
		Tiny:         strings.TrimSpace(doc.Tiny),
		Dependencies: make(map[string]*Dependency, len(doc.Dependencies)),
		Settings:     Settings{Conditions: strings.ToLower(strings.TrimSpace(doc.Settings.Conditions))},
	}
	for name, dep := range doc.Dependencies {
		if dep == nil {
			dep = &Dependency{}
		}
		m.Dependencies[SanitizeName(name)] = dep
	}
	targets, err := decodeTargets(&doc.Targets)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", abs, err)
	}
	m.Targets = targets

	if issues := m.problems(); len(issues) > 0 {
		return nil, &ValidationError{Path: abs, Issues: issues}
	}
	return m, nil
}

// decodeTargets walks the targets mapping in document order. A scalar value
// is an executable target with that main file.
func decodeTargets(node *yaml.Node) ([]*Target, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("targets must be a mapping")
	}
	var targets []*Target
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.TrimSpace(node.Content[i].Value)
		value := node.Content[i+1]
		target := &Target{Name: name, Kind: TargetExecutable}
		if value.Kind == yaml.ScalarNode {
			target.Main = value.Value
		} else {
			var body struct {
				Type TargetKind `yaml:"type"`
				Main string     `yaml:"main"`
			}
			if err := value.Decode(&body); err != nil {
				return nil, fmt.Errorf("target %q: %w", name, err)
			}
			target.Kind, target.Main = body.Type, body.Main
		}
		target.Main = filepath.FromSlash(strings.TrimSpace(target.Main))
		targets = append(targets, target)
	}
	return targets, nil
}

func (m *Manifest) problems() []string {
	var issues []string
	add := func(format string, args ...interface{}) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if m.Name == "" {
		add("name is required")
	}
	if m.Version != "" {
		if _, err := semver.StrictNewVersion(m.Version); err != nil {
			add("version %q is not a semantic version", m.Version)
		}
	}
	if m.Tiny != "" {
		if _, err := semver.NewConstraint(m.Tiny); err != nil {
			add("tiny constraint %q is invalid", m.Tiny)
		}
	}
	if c := m.Settings.Conditions; c != "" && c != "strict" && c != "truthy" {
		add("settings.conditions must be strict or truthy, got %q", c)
	}

	seen := make(map[string]bool)
	libraries := 0
	for _, t := range m.Targets {
		key := SanitizeName(t.Name)
		switch {
		case key == "":
			add("target names must not be empty")
		case seen[key]:
			add("target %q is declared twice", t.Name)
		}
		seen[key] = true
		switch t.Kind {
		case TargetExecutable:
		case TargetLibrary:
			libraries++
		default:
			add("target %q has unknown type %q", t.Name, t.Kind)
		}
		if t.Main == "" {
			add("target %q needs a main file", t.Name)
		} else if filepath.IsAbs(t.Main) {
			add("target %q main must be relative to the project", t.Name)
		}
	}
	if libraries > 1 {
		add("only one library target is allowed")
	}

	for _, name := range SortedDependencyNames(m.Dependencies) {
		for _, issue := range m.Dependencies[name].problems() {
			add("dependency %s: %s", name, issue)
		}
	}
	return issues
}

func (d *Dependency) problems() []string {
	var issues []string
	sources := 0
	for _, s := range []string{d.Version, d.Path, d.Git} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		issues = append(issues, "set exactly one of version, path or git")
	}
	refs := 0
	for _, r := range []string{d.Rev, d.Tag, d.Branch} {
		if r != "" {
			refs++
		}
	}
	if refs > 0 && d.Git == "" {
		issues = append(issues, "rev, tag and branch need a git source")
	}
	if refs > 1 {
		issues = append(issues, "use at most one of rev, tag or branch")
	}
	if d.Version != "" {
		if _, err := semver.NewConstraint(d.Version); err != nil {
			issues = append(issues, fmt.Sprintf("invalid version constraint %q", d.Version))
		}
	}
	return issues
}

// Dir is the project root holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// ErrNoExecutableTarget reports a manifest without anything to run.
var ErrNoExecutableTarget = errors.New("manifest: no executable targets defined")

// DefaultExecutableTarget is the first executable target in document order.
func (m *Manifest) DefaultExecutableTarget() (*Target, error) {
	if m != nil {
		for _, t := range m.Targets {
			if t.Kind == TargetExecutable {
				return t, nil
			}
		}
	}
	return nil, ErrNoExecutableTarget
}

// LibraryTarget returns the target other packages load as a prelude.
func (m *Manifest) LibraryTarget() (*Target, bool) {
	if m != nil {
		for _, t := range m.Targets {
			if t.Kind == TargetLibrary {
				return t, true
			}
		}
	}
	return nil, false
}

// FindTarget matches name against target names after sanitizing both, so
// "app-server", "App_Server" and "APP-SERVER" find the same target.
func (m *Manifest) FindTarget(name string) (*Target, bool) {
	if m == nil {
		return nil, false
	}
	key := SanitizeName(name)
	for _, t := range m.Targets {
		if SanitizeName(t.Name) == key {
			return t, true
		}
	}
	return nil, false
}

// CheckInterpreterVersion fails when the tiny constraint excludes version.
func (m *Manifest) CheckInterpreterVersion(version string) error {
	if m == nil || m.Tiny == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(m.Tiny)
	if err != nil {
		return fmt.Errorf("manifest: tiny constraint %q: %w", m.Tiny, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("manifest: interpreter version %q: %w", version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("manifest: %s requires tiny %s, running %s", m.Name, m.Tiny, version)
	}
	return nil
}

// SortedDependencyNames lists the keys of deps in order.
func SortedDependencyNames(deps map[string]*Dependency) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SanitizeName lowercases name and maps every rune outside [a-z0-9_] to an
// underscore. Package and dependency names are stored in this form.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, strings.ToLower(strings.TrimSpace(name)))
}
