// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package report holds and writes dependency maps.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/joaquintides/cdmap/dialect"
)

// Format is an output format.
type Format int

const (
	// JSON is `{"module": {"03": [...], ...}, ...}`.
	JSON Format = iota
	// Text is one line per module and dialect.
	Text
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case Text:
		return "text"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return JSON, nil
	case "text":
		return Text, nil
	}
	return JSON, fmt.Errorf("unknown format %q", s)
}

// Gap is a unit whose dependency list may miss entries.
type Gap struct {
	Module  string
	Dialect string
	// Errors are the failed probes of the unit.
	Errors []string
}

// Report is a dependency map: module -> dialect -> sorted module list.
type Report struct {
	// dialects in ordinal order.
	dialects []string
	modules  map[string]map[string][]string

	// Incomplete lists units with failed probes.
	Incomplete []Gap
}

// New creates an empty report for dialects.
func New(dialects []dialect.Dialect) *Report {
	ds := slices.Clone(dialects)
	dialect.Sort(ds)
	r := &Report{
		modules: make(map[string]map[string][]string),
	}
	for _, d := range ds {
		r.dialects = append(r.dialects, d.Label)
	}
	return r
}

// Set sets the dependency list of module at dialect.
// deps is copied and sorted.
func (r *Report) Set(module, dialect string, deps []string) {
	m, ok := r.modules[module]
	if !ok {
		m = make(map[string][]string)
		r.modules[module] = m
	}
	deps = slices.Clone(deps)
	if deps == nil {
		deps = []string{}
	}
	sort.Strings(deps)
	m[dialect] = deps
}

// AddModule adds module with no dialect entry.
// It's used for modules whose minimum dialect excludes every dialect.
func (r *Report) AddModule(module string) {
	if _, ok := r.modules[module]; ok {
		return
	}
	r.modules[module] = make(map[string][]string)
}

// Lookup returns the dependency list of module at dialect.
func (r *Report) Lookup(module, dialect string) ([]string, bool) {
	deps, ok := r.modules[module][dialect]
	return deps, ok
}

// Modules returns module names in sorted order.
func (r *Report) Modules() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// entries returns the dialect labels set for module, in order.
func (r *Report) entries(module string) []string {
	var labels []string
	for _, label := range r.dialects {
		if _, ok := r.modules[module][label]; ok {
			labels = append(labels, label)
		}
	}
	return labels
}

// WriteJSON writes r as JSON with sorted module keys and dialect keys
// in dialect order.
func (r *Report) WriteJSON(w io.Writer) error {
	bw := bufio.NewWriter(w)
	quote := func(s string) string {
		b, _ := json.Marshal(s)
		return string(b)
	}
	bw.WriteString("{")
	for i, module := range r.Modules() {
		if i > 0 {
			bw.WriteString(",")
		}
		fmt.Fprintf(bw, "\n  %s: {", quote(module))
		for j, label := range r.entries(module) {
			if j > 0 {
				bw.WriteString(",")
			}
			deps := r.modules[module][label]
			quoted := make([]string, 0, len(deps))
			for _, dep := range deps {
				quoted = append(quoted, quote(dep))
			}
			fmt.Fprintf(bw, "\n    %s: [%s]", quote(label), strings.Join(quoted, ","))
		}
		bw.WriteString("\n  }")
	}
	bw.WriteString("\n}\n")
	return bw.Flush()
}

// WriteText writes r as `module dialect: dep dep ...` lines.
func (r *Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, module := range r.Modules() {
		for _, label := range r.entries(module) {
			fmt.Fprintf(bw, "%s %s:", module, label)
			for _, dep := range r.modules[module][label] {
				fmt.Fprintf(bw, " %s", dep)
			}
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// Write writes r in format f.
func (r *Report) Write(w io.Writer, f Format) error {
	if f == Text {
		return r.WriteText(w)
	}
	return r.WriteJSON(w)
}

// WriteIncomplete writes the incomplete units, one per line.
func (r *Report) WriteIncomplete(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, g := range r.Incomplete {
		fmt.Fprintf(bw, "incomplete %s %s: %d failed probes\n", g.Module, g.Dialect, len(g.Errors))
		for _, e := range g.Errors {
			fmt.Fprintf(bw, "  %s\n", strings.ReplaceAll(strings.TrimSpace(e), "\n", "\n  "))
		}
	}
	return bw.Flush()
}

// WriteFile writes r to fname in format f.
// fname with ".zst" suffix is compressed with zstd.
func (r *Report) WriteFile(fname string, f Format) (err error) {
	file, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer func() {
		cerr := file.Close()
		if err == nil {
			err = cerr
		}
	}()
	if !strings.HasSuffix(fname, ".zst") {
		return r.Write(file, f)
	}
	zw, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	err = r.Write(zw, f)
	if err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
