package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tiny/interpreter-go/pkg/driver"
)

func publishRegistryPackage(t *testing.T, registry, name, version, lib string) {
	t.Helper()
	dir := filepath.Join(registry, name, version)
	writeFile(t, filepath.Join(dir, "package.yml"), `
name: `+name+`
version: `+version+`
targets:
  lib:
    type: library
    main: lib.tiny
`)
	writeFile(t, filepath.Join(dir, "lib.tiny"), lib)
}

func loadProjectLock(t *testing.T, project string) *driver.Lockfile {
	t.Helper()
	lock, err := driver.LoadLockfile(filepath.Join(project, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	return lock
}

func TestDepsInstallAndRunWithPathGitAndRegistry(t *testing.T) {
	root := t.TempDir()
	home, registry := isolateHome(t, root)

	mathDir := filepath.Join(root, "mathlib")
	writeFile(t, filepath.Join(mathDir, "package.yml"), `
name: mathlib
version: 1.2.0
targets:
  lib:
    type: library
    main: lib.tiny
`)
	writeFile(t, filepath.Join(mathDir, "lib.tiny"), "var answer = 42")

	publishRegistryPackage(t, registry, "counter", "1.0.0", "var count = 1")
	publishRegistryPackage(t, registry, "counter", "1.1.0", "var count = 2")
	publishRegistryPackage(t, registry, "counter", "2.0.0", "var count = 3")

	gitDir := filepath.Join(root, "greeter")
	writeFile(t, filepath.Join(gitDir, "package.yml"), `
name: greeter
targets:
  lib:
    type: library
    main: lib.tiny
dependencies:
  counter: "^1.0.0"
`)
	writeFile(t, filepath.Join(gitDir, "lib.tiny"), "var greeting = count + 5")
	commit := commitAll(t, gitDir, "greeter")

	project := filepath.Join(root, "app")
	writeFile(t, filepath.Join(project, "package.yml"), `
name: app
version: 0.1.0
targets:
  app: main.tiny
dependencies:
  mathlib:
    path: ../mathlib
  counter: "^1.0.0"
  greeter:
    git: `+gitDir+`
    rev: `+commit+`
`)
	writeFile(t, filepath.Join(project, "main.tiny"), "print(answer + count + greeting)")
	t.Chdir(project)

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("tiny deps install exited %d (stderr: %q)", code, stderr)
	}
	for _, fragment := range []string{
		"copied counter 1.1.0",
		"cloned greeter " + commit,
		"linked mathlib 1.2.0",
		"package.lock created (3 packages)",
	} {
		if !strings.Contains(stdout, fragment) {
			t.Fatalf("install output missing %q:\n%s", fragment, stdout)
		}
	}

	lock := loadProjectLock(t, project)
	if lock.Root != "app" || len(lock.Packages) != 3 {
		t.Fatalf("lock unexpected: %#v", lock)
	}
	counter, ok := lock.Find("counter")
	if !ok || counter.Source != "registry:counter@1.1.0" || !strings.HasPrefix(counter.Checksum, "sha256:") {
		t.Fatalf("counter lock entry = %#v", counter)
	}
	greeter, ok := lock.Find("greeter")
	if !ok || greeter.Version != commit || greeter.Source != "git:"+gitDir+"#"+commit {
		t.Fatalf("greeter lock entry = %#v", greeter)
	}
	if strings.Join(greeter.Requires, ",") != "counter" {
		t.Fatalf("greeter should require counter: %#v", greeter.Requires)
	}
	mathlib, ok := lock.Find("mathlib")
	if !ok || mathlib.Source != "path:"+mathDir || mathlib.Checksum != "" {
		t.Fatalf("mathlib lock entry = %#v", mathlib)
	}
	if _, err := os.Stat(filepath.Join(home, "cache", "greeter", commit, "lib.tiny")); err != nil {
		t.Fatalf("git checkout missing from cache: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "cache", "greeter", commit, ".git")); !os.IsNotExist(err) {
		t.Fatalf("cached checkout should not keep .git: %v", err)
	}

	code, stdout, stderr = captureCLI(t, []string{"run"})
	if code != 0 {
		t.Fatalf("tiny run exited %d (stderr: %q)", code, stderr)
	}
	if stdout != "51\n" {
		t.Fatalf("stdout = %q, want 51", stdout)
	}

	code, stdout, stderr = captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "reused greeter "+commit) || !strings.Contains(stdout, "package.lock unchanged") {
		t.Fatalf("second install: %d %q %q", code, stdout, stderr)
	}
}

func TestDepsInstallKeepsPinUntilUpdate(t *testing.T) {
	root := t.TempDir()
	_, registry := isolateHome(t, root)
	publishRegistryPackage(t, registry, "counter", "1.0.0", "var count = 1")

	project := filepath.Join(root, "app")
	writeFile(t, filepath.Join(project, "package.yml"), `
name: app
targets:
  app: main.tiny
dependencies:
  counter: "^1.0.0"
`)
	writeFile(t, filepath.Join(project, "main.tiny"), "print(count)")
	t.Chdir(project)

	if code, _, stderr := captureCLI(t, []string{"deps", "install"}); code != 0 {
		t.Fatalf("install exited %d (stderr: %q)", code, stderr)
	}
	publishRegistryPackage(t, registry, "counter", "1.4.0", "var count = 4")

	code, stdout, _ := captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "copied counter 1.0.0") {
		t.Fatalf("install should keep the pinned version: %d %q", code, stdout)
	}
	if _, stdout, _ := captureCLI(t, []string{"run"}); stdout != "1\n" {
		t.Fatalf("pinned run printed %q", stdout)
	}

	code, stdout, stderr := captureCLI(t, []string{"deps", "update", "counter"})
	if code != 0 || !strings.Contains(stdout, "copied counter 1.4.0") || !strings.Contains(stdout, "package.lock updated") {
		t.Fatalf("update: %d %q %q", code, stdout, stderr)
	}
	if _, stdout, _ := captureCLI(t, []string{"run"}); stdout != "4\n" {
		t.Fatalf("updated run printed %q", stdout)
	}

	code, _, stderr = captureCLI(t, []string{"deps", "update", "nope"})
	if code != 1 || !strings.Contains(stderr, `dependency "nope" not declared`) {
		t.Fatalf("unknown update target: %d %q", code, stderr)
	}
}

func TestDepsGitHeadMovesOnlyOnUpdate(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)

	gitDir := filepath.Join(root, "shapes")
	writeFile(t, filepath.Join(gitDir, "package.yml"), `
name: shapes
targets:
  lib:
    type: library
    main: lib.tiny
`)
	writeFile(t, filepath.Join(gitDir, "lib.tiny"), "var sides = 3")
	first := commitAll(t, gitDir, "triangle")

	project := filepath.Join(root, "app")
	writeFile(t, filepath.Join(project, "package.yml"), `
name: app
targets:
  app: main.tiny
dependencies:
  shapes:
    git: `+gitDir+`
`)
	writeFile(t, filepath.Join(project, "main.tiny"), "print(sides)")
	t.Chdir(project)

	if code, _, stderr := captureCLI(t, []string{"deps", "install"}); code != 0 {
		t.Fatalf("install exited %d (stderr: %q)", code, stderr)
	}
	writeFile(t, filepath.Join(gitDir, "lib.tiny"), "var sides = 4")
	second := commitAll(t, gitDir, "square")

	if code, stdout, _ := captureCLI(t, []string{"deps", "install"}); code != 0 || !strings.Contains(stdout, "reused shapes "+first) {
		t.Fatalf("install should keep the pinned commit: %d %q", code, stdout)
	}
	if _, stdout, _ := captureCLI(t, []string{"run"}); stdout != "3\n" {
		t.Fatalf("pinned run printed %q", stdout)
	}

	if code, stdout, stderr := captureCLI(t, []string{"deps", "update"}); code != 0 || !strings.Contains(stdout, "cloned shapes "+second) {
		t.Fatalf("update: %d %q %q", code, stdout, stderr)
	}
	if _, stdout, _ := captureCLI(t, []string{"run"}); stdout != "4\n" {
		t.Fatalf("updated run printed %q", stdout)
	}
}

func TestDepsInstallDetectsCycles(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)
	writeFile(t, filepath.Join(root, "a", "package.yml"), `
name: a
dependencies:
  b:
    path: ../b
`)
	writeFile(t, filepath.Join(root, "b", "package.yml"), `
name: b
dependencies:
  a:
    path: ../a
`)
	project := filepath.Join(root, "app")
	writeFile(t, filepath.Join(project, "package.yml"), `
name: app
dependencies:
  a:
    path: ../a
`)
	t.Chdir(project)

	code, _, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 1 || !strings.Contains(stderr, "dependency cycle detected: a -> b -> a") {
		t.Fatalf("expected cycle error: %d %q", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(project, "package.lock")); !os.IsNotExist(err) {
		t.Fatalf("no lockfile should be written on failure: %v", err)
	}
}

func TestDepsRejectsRootMismatch(t *testing.T) {
	root := t.TempDir()
	isolateHome(t, root)
	writeFile(t, filepath.Join(root, "package.yml"), "name: app")
	writeFile(t, filepath.Join(root, "package.lock"), "root: other\npackages: []")
	t.Chdir(root)

	code, _, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 1 || !strings.Contains(stderr, "does not match manifest name") {
		t.Fatalf("expected root mismatch: %d %q", code, stderr)
	}
}

func TestDepsUsageErrors(t *testing.T) {
	cases := map[string][]string{
		"requires a subcommand":   {"deps"},
		"takes no arguments":      {"deps", "install", "extra"},
		"unknown deps subcommand": {"deps", "purge"},
	}
	for want, args := range cases {
		if code, _, stderr := captureCLI(t, args); code != 1 || !strings.Contains(stderr, want) {
			t.Fatalf("%v: %d %q, want %q", args, code, stderr, want)
		}
	}
}

func TestHighestMatching(t *testing.T) {
	dir := t.TempDir()
	for _, v := range []string{"0.9.0", "1.0.0", "1.2.3", "2.0.0-beta.1", "notes"} {
		if err := os.MkdirAll(filepath.Join(dir, v), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	cases := map[string]string{
		"^1.0.0":  "1.2.3",
		"~1.0":    "1.0.0",
		"<1.0.0":  "0.9.0",
		"=1.0.0":  "1.0.0",
		">=0.1.0": "1.2.3",
	}
	for constraint, want := range cases {
		got, err := highestMatching(dir, constraint)
		if err != nil || got != want {
			t.Fatalf("highestMatching(%q) = %q, %v; want %q", constraint, got, err, want)
		}
	}
	if _, err := highestMatching(dir, "^3.0.0"); err == nil || !strings.Contains(err.Error(), "no version satisfies") {
		t.Fatalf("expected no match error, got %v", err)
	}
}

func TestGitRevision(t *testing.T) {
	cases := []struct {
		dep  driver.Dependency
		want string
	}{
		{driver.Dependency{Git: "x", Rev: "abc123"}, "abc123"},
		{driver.Dependency{Git: "x", Tag: "v1.0.0"}, "refs/tags/v1.0.0"},
		{driver.Dependency{Git: "x", Branch: "main"}, "refs/remotes/origin/main"},
		{driver.Dependency{Git: "x"}, "HEAD"},
	}
	for _, tc := range cases {
		if got := string(gitRevision(&tc.dep)); got != tc.want {
			t.Fatalf("gitRevision(%+v) = %q, want %q", tc.dep, got, tc.want)
		}
	}
}
