// Package driver turns files and projects on disk into programs the
// interpreter can run.
package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tiny/interpreter-go/pkg/ast"
	"tiny/interpreter-go/pkg/parser"
)

// Module is one parsed source file.
type Module struct {
	Package string
	Path    string
	AST     []ast.Statement
}

// Program contains the entry module preceded by the library modules it
// builds on, in the order they must run.
type Program struct {
	Entry   *Module
	Modules []*Module
}

// LoadModule reads and parses a single source file. Lex and parse failures
// keep their types and gain the file path as context.
func LoadModule(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	stmts, err := parser.ParseSource(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Module{Path: path, AST: stmts}, nil
}

// Loader assembles programs for a project. A nil Manifest loads bare files.
type Loader struct {
	Manifest *Manifest
	Lock     *Lockfile
	TinyHome string
}

// Load builds the program for entry. Library targets of locked packages run
// first in dependency order, then the project's own library target, then
// the entry file.
func (l *Loader) Load(entry string) (*Program, error) {
	absEntry, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", entry, err)
	}
	preludes, err := l.Preludes()
	if err != nil {
		return nil, err
	}
	mod, err := LoadModule(entry)
	if err != nil {
		return nil, err
	}
	if l.Manifest != nil {
		mod.Package = l.Manifest.Name
	}
	modules := make([]*Module, 0, len(preludes)+1)
	for _, prelude := range preludes {
		if samePath(prelude.Path, absEntry) {
			continue
		}
		modules = append(modules, prelude)
	}
	modules = append(modules, mod)
	return &Program{Entry: mod, Modules: modules}, nil
}

// Preludes loads the library modules every program of the project sees.
func (l *Loader) Preludes() ([]*Module, error) {
	if l == nil || l.Manifest == nil {
		return nil, nil
	}
	var modules []*Module
	ordered, err := l.Lock.DependencyOrder()
	if err != nil {
		return nil, err
	}
	for _, pkg := range ordered {
		dir, err := pkg.Dir(l.TinyHome)
		if err != nil {
			return nil, err
		}
		mod, err := loadLibrary(dir, pkg.Name)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.Name, err)
		}
		if mod != nil {
			modules = append(modules, mod)
		}
	}
	if lib, ok := l.Manifest.LibraryTarget(); ok {
		mod, err := LoadModule(filepath.Join(l.Manifest.Dir(), lib.Main))
		if err != nil {
			return nil, err
		}
		mod.Package = l.Manifest.Name
		modules = append(modules, mod)
	}
	return modules, nil
}

// loadLibrary parses the library target of the package rooted at dir. A
// package without a manifest or without a library target contributes
// nothing.
func loadLibrary(dir, name string) (*Module, error) {
	manifest, err := LoadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	lib, ok := manifest.LibraryTarget()
	if !ok {
		return nil, nil
	}
	mod, err := LoadModule(filepath.Join(dir, lib.Main))
	if err != nil {
		return nil, err
	}
	mod.Package = name
	return mod, nil
}

func samePath(a, b string) bool {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	return filepath.Clean(absA) == filepath.Clean(b)
}
