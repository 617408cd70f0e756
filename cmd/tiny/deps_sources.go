package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"tiny/interpreter-go/pkg/driver"
)

// fetched is a dependency made available on disk.
type fetched struct {
	pkg    *driver.LockedPackage
	dir    string
	action string
}

// linkPath uses a local directory in place. Path dependencies carry no
// checksum since their contents are expected to change.
func (r *resolver) linkPath(name string, dep *driver.Dependency, base string) (fetched, error) {
	dir := dep.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return fetched{}, err
	}
	if !info.IsDir() {
		return fetched{}, fmt.Errorf("%s is not a directory", dir)
	}
	pkg := &driver.LockedPackage{Name: name, Source: driver.SourcePath + ":" + dir}
	return fetched{pkg: pkg, dir: dir, action: "linked"}, nil
}

// registryRoot holds one directory per package with one subdirectory per
// published version.
func registryRoot(home string) string {
	if dir := strings.TrimSpace(os.Getenv("TINY_REGISTRY")); dir != "" {
		return dir
	}
	return filepath.Join(home, "registry")
}

// copyFromRegistry copies the highest published version satisfying the
// constraint into the cache. A pinned version is kept while it still
// satisfies the constraint and is still published.
func (r *resolver) copyFromRegistry(name string, dep *driver.Dependency) (fetched, error) {
	published := filepath.Join(registryRoot(r.home), name)
	constraint, err := semver.NewConstraint(dep.Version)
	if err != nil {
		return fetched{}, err
	}
	version := ""
	if pin := r.pins[name]; pin != nil && pin.Source == registrySource(name, pin.Version) {
		if v, err := semver.NewVersion(pin.Version); err == nil && constraint.Check(v) && isDir(filepath.Join(published, pin.Version)) {
			version = pin.Version
		}
	}
	if version == "" {
		if version, err = highestMatching(published, dep.Version); err != nil {
			return fetched{}, err
		}
	}

	dir := driver.CacheDir(r.home, name, version)
	if err := os.RemoveAll(dir); err != nil {
		return fetched{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fetched{}, err
	}
	if err := os.CopyFS(dir, os.DirFS(filepath.Join(published, version))); err != nil {
		return fetched{}, fmt.Errorf("copy %s %s: %w", name, version, err)
	}
	sum, err := dirChecksum(dir)
	if err != nil {
		return fetched{}, err
	}
	pkg := &driver.LockedPackage{Name: name, Version: version, Source: registrySource(name, version), Checksum: sum}
	return fetched{pkg: pkg, dir: dir, action: "copied"}, nil
}

func registrySource(name, version string) string {
	return driver.SourceRegistry + ":" + name + "@" + version
}

// highestMatching picks the greatest version directory under dir that
// satisfies constraint. Directories that are not versions are ignored.
func highestMatching(dir, constraint string) (string, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("registry: %w", err)
	}
	var best *semver.Version
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, err := semver.NewVersion(entry.Name())
		if err != nil || !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return "", fmt.Errorf("registry: no version satisfies %s in %s", constraint, dir)
	}
	return best.Original(), nil
}

// checkoutGit clones the repository, checks out the requested revision and
// keeps the working tree, without .git, in the cache under its commit hash.
// A pinned commit whose checkout is still cached is reused without cloning.
func (r *resolver) checkoutGit(name string, dep *driver.Dependency) (fetched, error) {
	if pin := r.pins[name]; pin != nil && pin.Source == gitSource(dep.Git, pin.Version) {
		dir := driver.CacheDir(r.home, name, pin.Version)
		if isDir(dir) {
			return r.gitResult(name, dep, pin.Version, dir, "reused")
		}
	}

	parent := filepath.Dir(driver.CacheDir(r.home, name, "x"))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fetched{}, err
	}
	tmp, err := os.MkdirTemp(parent, ".clone-")
	if err != nil {
		return fetched{}, err
	}
	defer os.RemoveAll(tmp)

	repo, err := git.PlainClone(tmp, false, &git.CloneOptions{URL: dep.Git})
	if err != nil {
		return fetched{}, fmt.Errorf("clone %s: %w", dep.Git, err)
	}
	rev := gitRevision(dep)
	hash, err := repo.ResolveRevision(rev)
	if err != nil {
		return fetched{}, fmt.Errorf("resolve %s in %s: %w", rev, dep.Git, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fetched{}, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return fetched{}, fmt.Errorf("checkout %s: %w", hash, err)
	}
	if err := os.RemoveAll(filepath.Join(tmp, ".git")); err != nil {
		return fetched{}, err
	}

	commit := hash.String()
	dir := driver.CacheDir(r.home, name, commit)
	if err := os.RemoveAll(dir); err != nil {
		return fetched{}, err
	}
	if err := os.Rename(tmp, dir); err != nil {
		return fetched{}, err
	}
	return r.gitResult(name, dep, commit, dir, "cloned")
}

func (r *resolver) gitResult(name string, dep *driver.Dependency, commit, dir, action string) (fetched, error) {
	sum, err := dirChecksum(dir)
	if err != nil {
		return fetched{}, err
	}
	pkg := &driver.LockedPackage{Name: name, Version: commit, Source: gitSource(dep.Git, commit), Checksum: sum}
	return fetched{pkg: pkg, dir: dir, action: action}, nil
}

func gitSource(url, commit string) string {
	return driver.SourceGit + ":" + url + "#" + commit
}

// gitRevision maps the dependency's rev, tag or branch to a revision go-git
// can resolve. Without any of them the remote's HEAD is used.
func gitRevision(dep *driver.Dependency) plumbing.Revision {
	switch {
	case dep.Rev != "":
		return plumbing.Revision(dep.Rev)
	case dep.Tag != "":
		return plumbing.Revision(plumbing.NewTagReferenceName(dep.Tag))
	case dep.Branch != "":
		return plumbing.Revision(plumbing.NewRemoteReferenceName("origin", dep.Branch))
	default:
		return plumbing.Revision(plumbing.HEAD)
	}
}

// dirChecksum hashes every regular file under dir together with its
// slash-separated relative path.
func dirChecksum(dir string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		fmt.Fprintf(h, "%s\x00", filepath.ToSlash(rel))
		_, err = io.Copy(h, f)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", dir, err)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
