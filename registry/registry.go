// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package registry enumerates the modules of a library collection laid
// out as <root>/libs/<module>/{include,src}.
package registry

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
)

// FakeModule is present in the on-disk layout but is not a real module.
const FakeModule = "headers"

var (
	// ErrRootNotFound is returned when the collection root doesn't exist.
	ErrRootNotFound = errors.New("collection root not found")
	// ErrNoModules is returned when no module is discovered.
	ErrNoModules = errors.New("no modules found")
	// ErrUnknownModule is returned by Lookup for a name not in the registry.
	ErrUnknownModule = errors.New("unknown module")
)

// Module is an independently distributable unit of the collection.
type Module struct {
	Name string
	// IncludeDir is the header root, <root>/libs/<name>/include.
	IncludeDir string
	// SourceDir is the source root, <root>/libs/<name>/src.
	SourceDir string
}

// Registry is an immutable set of modules.
type Registry struct {
	root    string
	modules []Module
	byName  map[string]int
}

// New creates a registry of named modules under root.
// root is made absolute; FakeModule and duplicates are dropped.
func New(root string, names []string) (*Registry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	names = slices.Clone(names)
	sort.Strings(names)
	names = slices.Compact(names)
	r := &Registry{
		root:   root,
		byName: make(map[string]int, len(names)),
	}
	libs := r.LibsDir()
	for _, name := range names {
		if name == "" || name == FakeModule {
			continue
		}
		dir := filepath.Join(libs, filepath.FromSlash(name))
		r.byName[name] = len(r.modules)
		r.modules = append(r.modules, Module{
			Name:       name,
			IncludeDir: filepath.Join(dir, "include"),
			SourceDir:  filepath.Join(dir, "src"),
		})
	}
	if len(r.modules) == 0 {
		return nil, fmt.Errorf("%s: %w", libs, ErrNoModules)
	}
	return r, nil
}

// Discover creates a registry from the directories in <root>/libs.
func Discover(root string) (*Registry, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(filepath.Join(root, "libs"))
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	var names []string
	for _, ent := range ents {
		if !ent.IsDir() {
			continue
		}
		names = append(names, ent.Name())
	}
	return New(root, names)
}

var gitmodulesLibsPath = regexp.MustCompile(`^\s*path\s*=*\slibs/(\S*)\s*$`)

// DiscoverGitmodules creates a registry from `path = libs/<name>` entries
// of <root>/.gitmodules.
func DiscoverGitmodules(root string) (*Registry, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(filepath.Join(root, ".gitmodules"))
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitmodules: %w", err)
	}
	return New(root, parseGitmodules(buf))
}

func parseGitmodules(buf []byte) []string {
	var names []string
	s := bufio.NewScanner(bytes.NewReader(buf))
	for s.Scan() {
		m := gitmodulesLibsPath.FindStringSubmatch(s.Text())
		if m == nil || m[1] == "" {
			continue
		}
		names = append(names, m[1])
	}
	return names
}

func checkRoot(root string) error {
	if root == "" {
		return fmt.Errorf("path to collection not available: %w", ErrRootNotFound)
	}
	st, err := os.Stat(root)
	if err != nil || !st.IsDir() {
		return fmt.Errorf("can't find %s: %w", root, ErrRootNotFound)
	}
	return nil
}

// Root returns the absolute collection root.
func (r *Registry) Root() string {
	return r.root
}

// LibsDir returns <root>/libs.
func (r *Registry) LibsDir() string {
	return filepath.Join(r.root, "libs")
}

// Modules returns modules sorted by name.
func (r *Registry) Modules() []Module {
	return slices.Clone(r.modules)
}

// Names returns module names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		names = append(names, m.Name)
	}
	return names
}

// Lookup returns the module for name.
func (r *Registry) Lookup(name string) (Module, error) {
	i, ok := r.byName[name]
	if !ok {
		return Module{}, fmt.Errorf("can't find module %q: %w", name, ErrUnknownModule)
	}
	return r.modules[i], nil
}

// IncludeDirs returns the header roots of all modules, one -I per module.
func (r *Registry) IncludeDirs() []string {
	dirs := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		dirs = append(dirs, m.IncludeDir)
	}
	return dirs
}
