package driver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLockfileWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	lock := &Lockfile{
		Path: filepath.Join(dir, LockfileName),
		Root: "demo",
		Packages: []*LockedPackage{
			{Name: "zeta", Version: "1.0.0", Source: "registry:zeta@1.0.0", Checksum: "sha256:abc"},
			{Name: "alpha", Version: "0.2.0", Source: "path:" + dir, Requires: []string{"zeta", "beta"}},
			{Name: "beta", Version: "3.0.0", Source: "git:https://example.com/beta.git#0f1e2d"},
		},
	}
	if err := lock.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(lock.Path)
	if err != nil {
		t.Fatalf("read lockfile: %v", err)
	}
	if !strings.HasPrefix(string(data), "root: demo\n") || strings.Contains(string(data), "path: ") {
		t.Fatalf("unexpected lockfile contents:\n%s", data)
	}

	loaded, err := LoadLockfile(lock.Path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if !loaded.Equal(lock) {
		t.Fatalf("round trip changed the lock:\n%#v", loaded.Packages)
	}
	if loaded.Packages[0].Name != "alpha" || strings.Join(loaded.Packages[0].Requires, ",") != "beta,zeta" {
		t.Fatalf("packages not normalized: %#v", loaded.Packages[0])
	}
	if pkg, ok := loaded.Find("Zeta"); !ok || pkg.Checksum != "sha256:abc" {
		t.Fatalf("Find(Zeta) = %#v, %v", pkg, ok)
	}
	if _, ok := loaded.Find("missing"); ok {
		t.Fatalf("Find(missing) should fail")
	}
}

func TestLoadLockfileMissing(t *testing.T) {
	_, err := LoadLockfile(filepath.Join(t.TempDir(), LockfileName))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadLockfileRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"no root":       "packages: []\n",
		"unknown field": "root: app\ntool: tiny\n",
		"duplicate":     "root: app\npackages:\n  - {name: a, source: 'registry:a@1.0.0'}\n  - {name: a, source: 'registry:a@1.0.0'}\n",
		"relative path": "root: app\npackages:\n  - {name: a, source: 'path:vendor/a'}\n",
		"unknown kind":  "root: app\npackages:\n  - {name: a, source: 'ftp:host/a'}\n",
	}
	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), LockfileName)
			if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := LoadLockfile(path); err == nil {
				t.Fatalf("expected error for %q", contents)
			}
		})
	}
}

func TestLockfileDependencyOrder(t *testing.T) {
	lock := &Lockfile{Packages: []*LockedPackage{
		{Name: "app_support", Requires: []string{"math", "strings"}},
		{Name: "strings", Requires: []string{"math", "elsewhere"}},
		{Name: "math"},
		{Name: "zed"},
	}}
	ordered, err := lock.DependencyOrder()
	if err != nil {
		t.Fatalf("DependencyOrder: %v", err)
	}
	var names []string
	for _, pkg := range ordered {
		names = append(names, pkg.Name)
	}
	if got, want := strings.Join(names, ","), "math,strings,app_support,zed"; got != want {
		t.Fatalf("DependencyOrder = %s, want %s", got, want)
	}
}

func TestLockfileDependencyOrderCycle(t *testing.T) {
	lock := &Lockfile{Packages: []*LockedPackage{
		{Name: "a", Requires: []string{"b"}},
		{Name: "b", Requires: []string{"a"}},
		{Name: "c"},
	}}
	if _, err := lock.DependencyOrder(); err == nil || !strings.Contains(err.Error(), "cycle among a, b") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLockedPackageDir(t *testing.T) {
	home := filepath.Join(string(filepath.Separator), "home", "tiny")
	linked := filepath.Join(string(filepath.Separator), "work", "lib")
	cases := []struct {
		pkg  LockedPackage
		want string
	}{
		{LockedPackage{Name: "lib", Source: "path:" + linked}, linked},
		{LockedPackage{Name: "lib", Version: "1.2.0", Source: "registry:lib@1.2.0"}, filepath.Join(home, "cache", "lib", "1.2.0")},
		{LockedPackage{Name: "lib", Version: "9a8b7c", Source: "git:https://example.com/lib.git#9a8b7c"}, filepath.Join(home, "cache", "lib", "9a8b7c")},
	}
	for _, tc := range cases {
		got, err := tc.pkg.Dir(home)
		if err != nil {
			t.Fatalf("Dir(%s): %v", tc.pkg.Source, err)
		}
		if got != tc.want {
			t.Fatalf("Dir(%s) = %s, want %s", tc.pkg.Source, got, tc.want)
		}
	}
	if _, err := (&LockedPackage{Name: "x", Source: "ftp:nowhere"}).Dir(home); err == nil {
		t.Fatalf("expected unsupported source error")
	}
}
