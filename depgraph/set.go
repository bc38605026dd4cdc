// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depgraph

import (
	"maps"
	"slices"
)

// Set is a set of module names.
type Set map[string]struct{}

// NewSet returns a set of names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add adds name to s.
func (s Set) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in s.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union adds all of o to s.
func (s Set) Union(o Set) {
	for n := range o {
		s[n] = struct{}{}
	}
}

// Clone returns a copy of s. Clone of nil is an empty set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	maps.Copy(c, s)
	return c
}

// With returns a copy of s with name added; s is not modified.
func (s Set) With(name string) Set {
	c := make(Set, len(s)+1)
	maps.Copy(c, s)
	c[name] = struct{}{}
	return c
}

// Sorted returns the names in s in sorted order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}
