// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depgraph computes the reported dependency set of a module at a
// dialect from the direct dependency sets observed by scanning.
//
// Header dependencies are taken as observed: the preprocessor already
// traced every nested include. Source dependencies are expanded
// transitively through the source dependencies of other modules at the
// same dialect, since a module reaching B's sources needs what B's
// sources need.
package depgraph

import (
	"fmt"
	"sort"
)

// Direct holds the direct dependencies of one module at one dialect.
type Direct struct {
	// Header is the set of modules reached from the module's headers.
	Header Set
	// Source is the set of modules reached from the module's sources.
	Source Set
}

// WithoutSelf returns a copy of d without module.
func (d Direct) WithoutSelf(module string) Direct {
	h := d.Header.Clone()
	s := d.Source.Clone()
	delete(h, module)
	delete(s, module)
	return Direct{Header: h, Source: s}
}

// Graph is the set of direct dependencies of every scanned
// (module, dialect) pair. Once built, it's read-only and safe for
// concurrent Closure calls.
type Graph struct {
	direct map[string]map[string]Direct // dialect label -> module -> Direct
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{direct: make(map[string]map[string]Direct)}
}

// Set records the direct dependencies of module at dialect.
// Self references are dropped.
// It must not be called concurrently with itself or Closure.
func (g *Graph) Set(module, dialect string, d Direct) {
	m, ok := g.direct[dialect]
	if !ok {
		m = make(map[string]Direct)
		g.direct[dialect] = m
	}
	m[module] = d.WithoutSelf(module)
}

// Lookup returns direct dependencies of module at dialect.
func (g *Graph) Lookup(module, dialect string) (Direct, bool) {
	d, ok := g.direct[dialect][module]
	return d, ok
}

// Modules returns modules recorded at dialect in sorted order.
func (g *Graph) Modules(dialect string) []string {
	var modules []string
	for m := range g.direct[dialect] {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	return modules
}

// Closure returns the sorted dependency list of module at dialect:
// its header dependencies plus its source dependencies expanded
// through other modules' source dependencies, without module itself.
func (g *Graph) Closure(module, dialect string) ([]string, error) {
	d, ok := g.Lookup(module, dialect)
	if !ok {
		return nil, fmt.Errorf("%s not scanned at %s", module, dialect)
	}
	return g.closure(module, dialect, d), nil
}

func (g *Graph) closure(module, dialect string, d Direct) []string {
	deps := d.Header.Clone()
	deps.Union(g.expand(module, dialect, nil))
	delete(deps, module)
	return deps.Sorted()
}

// ClosureAll returns Closure of every module recorded at dialect.
// Modules scanned only as source targets are included too.
func (g *Graph) ClosureAll(dialect string) map[string][]string {
	result := make(map[string][]string)
	for _, m := range g.Modules(dialect) {
		// m is recorded at dialect, so Closure can't fail.
		result[m], _ = g.Closure(m, dialect)
	}
	return result
}

// expand returns the source dependencies of module at dialect expanded
// depth first. expanding holds the modules on the current recursion path
// and is never modified; each recursive call gets its own copy.
// A target already on the path stays in the result but isn't recursed
// into, so cycles terminate. module may appear in its own result when it
// is on a cycle.
func (g *Graph) expand(module, dialect string, expanding Set) Set {
	d, ok := g.Lookup(module, dialect)
	if !ok {
		// skipped at this dialect (minimum dialect) or never scanned.
		return Set{}
	}
	result := d.Source.Clone()
	frontier := result.Clone()
	expanded := Set{}
	inner := expanding.With(module)
	for len(frontier) > 0 {
		target := frontier.Sorted()[0]
		delete(frontier, target)
		expanded.Add(target)
		if target == module || expanding.Has(target) {
			continue
		}
		for dep := range g.expand(target, dialect, inner) {
			if result.Has(dep) {
				continue
			}
			result.Add(dep)
			if !expanded.Has(dep) {
				frontier.Add(dep)
			}
		}
	}
	return result
}
