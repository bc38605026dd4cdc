// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depmap computes the dependency map of a module collection.
//
// Every (module, dialect) pair allowed by the minimum dialect table is
// scanned as a unit on a bounded worker pool. Units return immutable
// results, collected by a single owner into the dependency graph. After
// every unit has finished, the closure of each module is computed per
// dialect and written into a report.
package depmap

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joaquintides/cdmap/depgraph"
	"github.com/joaquintides/cdmap/dialect"
	"github.com/joaquintides/cdmap/o11y/clog"
	"github.com/joaquintides/cdmap/registry"
	"github.com/joaquintides/cdmap/report"
	"github.com/joaquintides/cdmap/runtimex"
	"github.com/joaquintides/cdmap/scandeps"
	"github.com/joaquintides/cdmap/ui"
)

// Orchestrator runs units and builds the report.
type Orchestrator struct {
	Registry *registry.Registry
	Scanner  *scandeps.Scanner
	// Dialects to scan. Empty means dialect.All().
	Dialects    []dialect.Dialect
	MinDialects registry.MinDialects

	// Workers bounds concurrent units. Zero means runtimex.NumWorkers().
	Workers int

	// Modules restricts the report to the named modules.
	// Modules reached by their source dependencies are scanned too.
	// Empty reports every module.
	Modules []string

	// UI reports progress. nil reports nothing.
	UI ui.UI
}

type unitKey struct {
	module  string
	dialect string
}

func (o *Orchestrator) workers() int {
	if o.Workers <= 0 {
		return runtimex.NumWorkers()
	}
	return o.Workers
}

func (o *Orchestrator) dialects() []dialect.Dialect {
	ds := o.Dialects
	if len(ds) == 0 {
		ds = dialect.All()
	}
	ds = slices.Clone(ds)
	dialect.Sort(ds)
	return ds
}

func (o *Orchestrator) reportModules() ([]string, error) {
	if len(o.Modules) == 0 {
		return o.Registry.Names(), nil
	}
	var names []string
	for _, name := range o.Modules {
		_, err := o.Registry.Lookup(name)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func newUnit(module string, d dialect.Dialect) scandeps.Unit {
	return scandeps.Unit{
		ID:      uuid.New().String(),
		Module:  module,
		Dialect: d,
	}
}

// Run scans the units and returns the report.
// Failed probes don't fail the run; they are listed in the report's
// Incomplete units.
func (o *Orchestrator) Run(ctx context.Context) (*report.Report, error) {
	started := time.Now()
	modules, err := o.reportModules()
	if err != nil {
		return nil, err
	}
	dialects := o.dialects()
	p := newProgress(o.UI)

	var pending []scandeps.Unit
	queued := make(map[unitKey]bool)
	schedule := func(module string, d dialect.Dialect) {
		key := unitKey{module: module, dialect: d.Label}
		if queued[key] || !o.MinDialects.Allows(module, d) {
			return
		}
		queued[key] = true
		pending = append(pending, newUnit(module, d))
	}
	for _, m := range modules {
		for _, d := range dialects {
			schedule(m, d)
		}
	}

	g := depgraph.New()
	results := make(map[unitKey]scandeps.Result)
	for round := 0; len(pending) > 0; round++ {
		units := pending
		pending = nil
		clog.Infof(ctx, "round %d: %d units", round, len(units))
		p.add(len(units))
		done, err := o.runUnits(ctx, units, p)
		if err != nil {
			return nil, err
		}
		for _, res := range done {
			key := unitKey{module: res.Unit.Module, dialect: res.Unit.Dialect.Label}
			results[key] = res
			g.Set(res.Unit.Module, res.Unit.Dialect.Label, observed(res))
		}
		// Source dependencies are expanded through their targets,
		// so targets not scanned yet join the next round.
		for _, res := range done {
			for _, target := range observed(res).Source.Sorted() {
				schedule(target, res.Unit.Dialect)
			}
		}
	}

	rep := report.New(dialects)
	for _, m := range modules {
		rep.AddModule(m)
	}
	for _, d := range dialects {
		closures := g.ClosureAll(d.Label)
		for _, m := range modules {
			deps, ok := closures[m]
			if !ok {
				continue
			}
			rep.Set(m, d.Label, deps)
		}
	}
	rep.Incomplete = incomplete(results)
	clog.Infof(ctx, "%d units in %s: %d incomplete", len(results), time.Since(started), len(rep.Incomplete))
	p.finish(len(results), len(rep.Incomplete))
	return rep, nil
}

// observed returns the direct dependencies res contributes to the graph.
// A unit with a failed probe contributes empty sets; its partial
// findings are only listed with its gap.
func observed(res scandeps.Result) depgraph.Direct {
	if res.Incomplete() {
		return depgraph.Direct{Header: depgraph.NewSet(), Source: depgraph.NewSet()}
	}
	return res.Direct
}

// runUnits scans units on the worker pool and returns their results
// in no particular order.
func (o *Orchestrator) runUnits(ctx context.Context, units []scandeps.Unit, p *progress) ([]scandeps.Result, error) {
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers())
	resultc := make(chan scandeps.Result, len(units))
	for _, u := range units {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return context.Cause(gctx)
			}
			uctx := clog.NewSpan(gctx, map[string]string{
				"unit": u.String(),
				"id":   u.ID,
			})
			started := time.Now()
			res, err := o.Scanner.Scan(uctx, u)
			if err != nil {
				return fmt.Errorf("scan %s: %w", u, err)
			}
			if logger := clog.FromContext(uctx); logger.V(1) {
				for _, e := range res.Edges() {
					logger.Debugf("%s", e)
				}
			}
			p.step(res, time.Since(started))
			resultc <- res
			return nil
		})
	}
	err := eg.Wait()
	close(resultc)
	if err != nil {
		return nil, err
	}
	results := make([]scandeps.Result, 0, len(units))
	for res := range resultc {
		results = append(results, res)
	}
	return results, nil
}

// incomplete returns the gaps of results, by module then dialect order.
func incomplete(results map[unitKey]scandeps.Result) []report.Gap {
	var failed []scandeps.Result
	for _, res := range results {
		if res.Incomplete() {
			failed = append(failed, res)
		}
	}
	slices.SortFunc(failed, func(a, b scandeps.Result) int {
		return cmp.Or(
			cmp.Compare(a.Unit.Module, b.Unit.Module),
			cmp.Compare(a.Unit.Dialect.Ordinal, b.Unit.Dialect.Ordinal))
	})
	var gaps []report.Gap
	for _, res := range failed {
		gap := report.Gap{
			Module:  res.Unit.Module,
			Dialect: res.Unit.Dialect.Label,
		}
		for _, err := range res.Errors {
			gap.Errors = append(gap.Errors, err.Error())
		}
		gaps = append(gaps, gap)
	}
	return gaps
}
