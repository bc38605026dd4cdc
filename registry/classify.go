// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type rootEntry struct {
	dir    string
	module string
}

// Classifier maps file paths to the module owning them.
type Classifier struct {
	// roots sorted by descending length, so the first match is the longest.
	roots []rootEntry
}

// NewClassifier creates a classifier for the include and source roots
// of every module in r.
func NewClassifier(r *Registry) *Classifier {
	c := &Classifier{}
	for _, m := range r.modules {
		c.roots = append(c.roots,
			rootEntry{dir: filepath.Clean(m.IncludeDir), module: m.Name},
			rootEntry{dir: filepath.Clean(m.SourceDir), module: m.Name})
	}
	sort.SliceStable(c.roots, func(i, j int) bool {
		if len(c.roots[i].dir) != len(c.roots[j].dir) {
			return len(c.roots[i].dir) > len(c.roots[j].dir)
		}
		return c.roots[i].dir < c.roots[j].dir
	})
	return c
}

// Owner returns the module owning fname.
// fname must be absolute; relative paths (e.g. missing headers reported
// with -MG) and paths outside every root are not owned.
func (c *Classifier) Owner(fname string) (string, bool) {
	if !filepath.IsAbs(fname) {
		return "", false
	}
	fname = filepath.Clean(fname)
	for _, r := range c.roots {
		if fname == r.dir {
			return r.module, true
		}
		if strings.HasPrefix(fname, r.dir) && fname[len(r.dir)] == os.PathSeparator {
			return r.module, true
		}
	}
	return "", false
}
