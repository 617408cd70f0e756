package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

// commitAll stages everything in dir, initializing a repository there if
// needed, and returns the new commit hash.
func commitAll(t *testing.T, dir, message string) string {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		t.Fatalf("open repository %s: %v", dir, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		t.Fatalf("stage %s: %v", dir, err)
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "tiny", Email: "tiny@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

// isolateHome points TINY_HOME and TINY_REGISTRY into the test's temp dir.
func isolateHome(t *testing.T, root string) (home, registry string) {
	t.Helper()
	home = filepath.Join(root, "tiny-home")
	registry = filepath.Join(root, "registry")
	t.Setenv("TINY_HOME", home)
	t.Setenv("TINY_REGISTRY", registry)
	return home, registry
}

// captureCLI runs the CLI with args and returns its exit code along with
// everything it wrote to stdout and stderr.
func captureCLI(t *testing.T, args []string) (code int, stdout, stderr string) {
	t.Helper()
	finishOut := redirect(t, &os.Stdout)
	finishErr := redirect(t, &os.Stderr)
	code = run(args)
	return code, finishOut(), finishErr()
}

// redirect points *target at a pipe drained in the background. The returned
// func restores *target and yields what was written.
func redirect(t *testing.T, target **os.File) func() string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	saved := *target
	*target = w
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		close(done)
	}()
	return func() string {
		*target = saved
		_ = w.Close()
		<-done
		return buf.String()
	}
}
