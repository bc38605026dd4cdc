// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joaquintides/cdmap/depgraph"
	"github.com/joaquintides/cdmap/dialect"
	"github.com/joaquintides/cdmap/o11y/clog"
	"github.com/joaquintides/cdmap/probe"
	"github.com/joaquintides/cdmap/registry"
)

// DefaultBatchSize is the default number of headers per probe.
const DefaultBatchSize = 100

// Kind is the kind of a dependency edge.
type Kind int

const (
	// Header is a dependency reached from the module's headers.
	Header Kind = iota
	// Source is a dependency reached from the module's implementation files.
	Source
)

func (k Kind) String() string {
	if k == Source {
		return "source"
	}
	return "header"
}

// Edge is a dependency of module From on module To at Dialect.
type Edge struct {
	From, To string
	Dialect  string
	Kind     Kind
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s @%s (%s)", e.From, e.To, e.Dialect, e.Kind)
}

// Unit is a scan of one module under one dialect.
type Unit struct {
	// ID is unique per unit and names the unit's scratch directory.
	ID      string
	Module  string
	Dialect dialect.Dialect
}

func (u Unit) String() string {
	return fmt.Sprintf("%s@%s", u.Module, u.Dialect.Label)
}

// ProbeError is a failure of a unit on one input: a probe, or the
// walk or scratch file it needed.
type ProbeError struct {
	Unit  Unit
	Input string
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Unit, e.Input, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a unit.
type Result struct {
	Unit   Unit
	Direct depgraph.Direct
	// Probes is the number of compiler invocations.
	Probes int
	// Headers and Sources are the numbers of files probed.
	Headers, Sources int
	// Errors are failed inputs. Their files didn't contribute to Direct.
	Errors []*ProbeError
}

// Incomplete reports whether any input failed.
func (r Result) Incomplete() bool {
	return len(r.Errors) > 0
}

// Edges returns the dependency edges of the result, sorted by kind and target.
func (r Result) Edges() []Edge {
	var edges []Edge
	for _, to := range r.Direct.Header.Sorted() {
		edges = append(edges, Edge{From: r.Unit.Module, To: to, Dialect: r.Unit.Dialect.Label, Kind: Header})
	}
	for _, to := range r.Direct.Source.Sorted() {
		edges = append(edges, Edge{From: r.Unit.Module, To: to, Dialect: r.Unit.Dialect.Label, Kind: Source})
	}
	return edges
}

// Scanner scans units.
type Scanner struct {
	Registry   *registry.Registry
	Classifier *registry.Classifier
	Runner     probe.Runner

	// BatchSize is the maximum number of headers per probe.
	// Zero means DefaultBatchSize.
	BatchSize int
	// ExcludedDirs are directory names not descended into.
	// nil means DefaultExcludedDirs.
	ExcludedDirs []string
	// TempDir is where unit scratch directories are created.
	// Empty means os.TempDir().
	TempDir string
}

// New creates a scanner for modules in r probed by runner.
func New(r *registry.Registry, runner probe.Runner) *Scanner {
	return &Scanner{
		Registry:   r,
		Classifier: registry.NewClassifier(r),
		Runner:     runner,
	}
}

func (s *Scanner) batchSize() int {
	if s.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return s.BatchSize
}

func (s *Scanner) excludedDirs() []string {
	if s.ExcludedDirs == nil {
		return DefaultExcludedDirs
	}
	return s.ExcludedDirs
}

// Scan scans u.
// Failures on the unit's files (walk, scratch files, probes) are recorded
// in the result and don't stop the scan. It returns an error only for an
// unknown module or a canceled ctx.
func (s *Scanner) Scan(ctx context.Context, u Unit) (Result, error) {
	result := Result{
		Unit: u,
		Direct: depgraph.Direct{
			Header: depgraph.NewSet(),
			Source: depgraph.NewSet(),
		},
	}
	m, err := s.Registry.Lookup(u.Module)
	if err != nil {
		return result, err
	}
	logger := clog.FromContext(ctx)
	fail := func(input string, err error) {
		perr := &ProbeError{Unit: u, Input: input, Err: err}
		logger.Warningf("%v", perr)
		result.Errors = append(result.Errors, perr)
	}
	var headers, sources []string
	for _, root := range []string{m.IncludeDir, m.SourceDir} {
		h, src, err := walk(root, s.excludedDirs())
		if err != nil {
			fail(root, fmt.Errorf("walk: %w", err))
			return result, nil
		}
		headers = append(headers, h...)
		sources = append(sources, src...)
	}
	if logger.V(1) {
		for _, fname := range append(headers, sources...) {
			rel, err := filepath.Rel(s.Registry.LibsDir(), fname)
			if err != nil {
				rel = fname
			}
			logger.Debugf("%s %s", u, rel)
		}
	}
	result.Headers = len(headers)
	result.Sources = len(sources)
	if len(headers) == 0 && len(sources) == 0 {
		return result, nil
	}

	workDir, err := os.MkdirTemp(s.TempDir, "cdmap-"+u.ID+"-")
	if err != nil {
		fail(m.IncludeDir, fmt.Errorf("failed to create scratch dir: %w", err))
		return result, nil
	}
	defer os.RemoveAll(workDir)

	n := 0
	probeInto := func(input string, deps depgraph.Set) {
		req := probe.Request{
			ID:      fmt.Sprintf("%s-%d", u.ID, n),
			Input:   input,
			WorkDir: workDir,
			Dialect: u.Dialect,
		}
		n++
		result.Probes++
		files, err := s.Runner.Probe(ctx, req)
		if err != nil {
			fail(input, fmt.Errorf("probe: %w", err))
			return
		}
		for _, f := range files {
			owner, ok := s.Classifier.Owner(f)
			if !ok || owner == u.Module {
				continue
			}
			deps.Add(owner)
		}
	}

	batch := 0
	for start := 0; start < len(headers); start += s.batchSize() {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		end := min(start+s.batchSize(), len(headers))
		tu := filepath.Join(workDir, fmt.Sprintf("headers-%d.cpp", batch))
		batch++
		err := os.WriteFile(tu, aggregate(headers[start:end]), 0644)
		if err != nil {
			fail(tu, fmt.Errorf("failed to write batch: %w", err))
			continue
		}
		probeInto(tu, result.Direct.Header)
		os.Remove(tu)
	}
	for _, src := range sources {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		probeInto(src, result.Direct.Source)
	}
	clog.Debugf(ctx, "%s: headers=%d sources=%d probes=%d deps header=%d source=%d errors=%d",
		u, result.Headers, result.Sources, result.Probes,
		len(result.Direct.Header), len(result.Direct.Source), len(result.Errors))
	return result, nil
}

// aggregate returns a translation unit including every header.
func aggregate(headers []string) []byte {
	var buf bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&buf, "#include \"%s\"\n", filepath.ToSlash(h))
	}
	return buf.Bytes()
}
