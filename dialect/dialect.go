// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package dialect defines the C++ language-standard dialects a module is
// probed under.
package dialect

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// AssumeSymbol is the preprocessor symbol that tells conditionally
// compiled code which dialect to assume.
const AssumeSymbol = "BOOST_ASSUME_CXX"

// Dialect is a language-standard configuration.
// Dialects are ordered by Ordinal; a larger ordinal is a more recent standard.
type Dialect struct {
	Ordinal int
	// Label is the report key, e.g. "03" or "17".
	Label string
	// Flags select the dialect on the compiler command line.
	Flags []string
	// Defines are extra symbols (NAME or NAME=VALUE) for this dialect.
	Defines []string
}

// Less reports whether d is older than o.
func (d Dialect) Less(o Dialect) bool {
	return d.Ordinal < o.Ordinal
}

func (d Dialect) String() string {
	return "c++" + d.Label
}

func newDialect(ordinal int, label, std string) Dialect {
	return Dialect{
		Ordinal: ordinal,
		Label:   label,
		Flags:   []string{"-std=" + std},
		Defines: []string{AssumeSymbol + "=" + label},
	}
}

var (
	CXX03 = newDialect(0, "03", "c++98")
	CXX11 = newDialect(1, "11", "c++11")
	CXX14 = newDialect(2, "14", "c++14")
	CXX17 = newDialect(3, "17", "c++17")
	CXX20 = newDialect(4, "20", "c++2a")
)

// All returns the built-in dialects, oldest first.
func All() []Dialect {
	return []Dialect{CXX03, CXX11, CXX14, CXX17, CXX20}
}

// Parse parses a dialect name such as "03", "98", "c++11", "17", "2a" or
// "20" into one of the built-in dialects.
func Parse(s string) (Dialect, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "-std=")
	name = strings.TrimPrefix(name, "gnu++")
	name = strings.TrimPrefix(name, "c++")
	switch name {
	case "98", "03", "3":
		return CXX03, nil
	case "11", "0x":
		return CXX11, nil
	case "14", "1y":
		return CXX14, nil
	case "17", "1z":
		return CXX17, nil
	case "20", "2a":
		return CXX20, nil
	}
	return Dialect{}, fmt.Errorf("unknown dialect %q", s)
}

// ParseNumber converts a numeric standard year (3, 11, 98, 2017, ...) into a dialect.
func ParseNumber(n int) (Dialect, error) {
	if n >= 1998 {
		n %= 100
	}
	return Parse(strconv.Itoa(n))
}

// Sort sorts dialects oldest first.
func Sort(ds []Dialect) {
	slices.SortStableFunc(ds, func(a, b Dialect) int {
		return a.Ordinal - b.Ordinal
	})
}

// Select returns the dialects named in names, in dialect order.
// An empty names selects all of ds.
func Select(ds []Dialect, names []string) ([]Dialect, error) {
	if len(names) == 0 {
		return slices.Clone(ds), nil
	}
	var selected []Dialect
	for _, name := range names {
		want, err := Parse(name)
		if err != nil {
			// custom dialect tables may use their own labels.
			want = Dialect{Label: name}
		}
		i := slices.IndexFunc(ds, func(d Dialect) bool { return d.Label == want.Label })
		if i < 0 {
			return nil, fmt.Errorf("dialect %q not configured", name)
		}
		if !slices.ContainsFunc(selected, func(d Dialect) bool { return d.Label == ds[i].Label }) {
			selected = append(selected, ds[i])
		}
	}
	Sort(selected)
	return selected, nil
}
