package interpreter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"tiny/interpreter-go/pkg/driver"
)

// FixtureManifestName is the file that marks a directory as a fixture.
const FixtureManifestName = "manifest.yml"

// Fixture describes one recorded program and its expected behavior.
type Fixture struct {
	Dir         string        `yaml:"-"`
	Description string        `yaml:"description"`
	Entry       string        `yaml:"entry"`
	Setup       []string      `yaml:"setup"`
	Conditions  string        `yaml:"conditions"`
	Expect      FixtureExpect `yaml:"expect"`
}

// FixtureExpect lists what a fixture run must produce. Stdout is compared
// line by line even when an error is expected.
type FixtureExpect struct {
	Stdout    []string `yaml:"stdout"`
	Error     string   `yaml:"error"`
	ErrorKind string   `yaml:"errorKind"`
}

// FixtureResult is the outcome of replaying one fixture.
type FixtureResult struct {
	Name     string
	Fixture  *Fixture
	Stdout   []string
	Err      error
	Failures []string
}

// Passed reports whether the run matched every expectation.
func (r FixtureResult) Passed() bool {
	return len(r.Failures) == 0
}

// LoadFixture reads dir/manifest.yml. A missing manifest yields a fixture
// with default settings.
func LoadFixture(dir string) (*Fixture, error) {
	fixture := &Fixture{}
	path := filepath.Join(dir, FixtureManifestName)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read fixture manifest %s: %w", path, err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(fixture); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse fixture manifest %s: %w", path, err)
		}
	}
	fixture.Dir = dir
	if fixture.Entry == "" {
		fixture.Entry = "main.tiny"
	}
	switch fixture.Expect.ErrorKind {
	case "", StageLex, StageParse, StageRuntime, StageBreak:
	default:
		return nil, fmt.Errorf("fixture %s: unknown errorKind %q", dir, fixture.Expect.ErrorKind)
	}
	return fixture, nil
}

// Program loads the fixture's setup files followed by its entry.
func (f *Fixture) Program() (*driver.Program, error) {
	var modules []*driver.Module
	for _, setup := range f.Setup {
		mod, err := driver.LoadModule(filepath.Join(f.Dir, setup))
		if err != nil {
			return nil, err
		}
		modules = append(modules, mod)
	}
	entry, err := driver.LoadModule(filepath.Join(f.Dir, f.Entry))
	if err != nil {
		return nil, err
	}
	modules = append(modules, entry)
	return &driver.Program{Entry: entry, Modules: modules}, nil
}

// RunFixture replays the fixture in dir. The returned error is reserved for
// fixtures that cannot be loaded at all; program failures are recorded in
// the result and judged against the expectations.
func RunFixture(ctx context.Context, dir string) (FixtureResult, error) {
	fixture, err := LoadFixture(dir)
	if err != nil {
		return FixtureResult{Name: filepath.Base(dir)}, err
	}
	return fixture.Run(ctx)
}

// Run replays f in a fresh interpreter.
func (f *Fixture) Run(ctx context.Context) (FixtureResult, error) {
	result := FixtureResult{Name: filepath.Base(f.Dir), Fixture: f}
	mode, err := ParseConditionMode(f.Conditions)
	if err != nil {
		return result, fmt.Errorf("fixture %s: %w", f.Dir, err)
	}
	var stdout bytes.Buffer
	interp := NewWithOptions(Options{Stdout: &stdout, Conditions: mode})
	program, err := f.Program()
	if err == nil {
		err = interp.EvaluateProgram(ctx, program)
	}
	result.Err = err
	result.Stdout = splitLines(stdout.String())
	result.Failures = f.judge(result.Stdout, err)
	return result, nil
}

func (f *Fixture) judge(stdout []string, err error) []string {
	var failures []string
	if !equalLines(stdout, f.Expect.Stdout) {
		failures = append(failures, fmt.Sprintf("stdout mismatch: expected %q, got %q", f.Expect.Stdout, stdout))
	}
	expectErr := f.Expect.Error != "" || f.Expect.ErrorKind != ""
	switch {
	case !expectErr && err != nil:
		failures = append(failures, fmt.Sprintf("unexpected error: %s", DescribeError(err)))
	case expectErr && err == nil:
		failures = append(failures, "expected an error, program succeeded")
	case expectErr:
		if f.Expect.ErrorKind != "" && Stage(err) != f.Expect.ErrorKind {
			failures = append(failures, fmt.Sprintf("expected %s error, got %s", f.Expect.ErrorKind, DescribeError(err)))
		}
		if f.Expect.Error != "" && !strings.Contains(err.Error(), f.Expect.Error) {
			failures = append(failures, fmt.Sprintf("expected error containing %q, got %q", f.Expect.Error, err.Error()))
		}
	}
	return failures
}

// CollectFixtures returns every directory under root holding a fixture
// manifest, sorted by path.
func CollectFixtures(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == FixtureManifestName {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

func splitLines(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func equalLines(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for idx := range got {
		if got[idx] != want[idx] {
			return false
		}
	}
	return true
}
