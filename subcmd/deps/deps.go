// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package deps provides the `deps` subcommand.
package deps

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/joaquintides/cdmap/depgraph"
	"github.com/joaquintides/cdmap/depmap"
	"github.com/joaquintides/cdmap/scandeps"
	"github.com/joaquintides/cdmap/subcmd/cdflags"
	"github.com/joaquintides/cdmap/ui"
)

const usage = `list dependencies of a module

 $ cdmap deps -boost_root <dir> -std 17 [-D <symbol>]... <module>

Without -closure, prints the modules whose headers are included
by the module's headers ("From headers:") and by its source files
("From sources:"). With -closure, prints the dependency list as
reported by "cdmap map".
`

// Cmd returns the Command for the `deps` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "deps [flags] <module>",
		ShortDesc: "list dependencies of a module",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	opts    cdflags.Options
	closure bool
}

func (c *run) init() {
	envs := map[string]string{
		"BOOST_ROOT": os.Getenv("BOOST_ROOT"),
	}
	c.opts.RegisterFlags(&c.Flags, envs)
	c.Flags.BoolVar(&c.closure, "closure", false, "print the closed dependency list")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("want one module: %w", flag.ErrHelp)
	}
	module := args[0]
	if len(c.opts.Stds) != 1 || c.opts.All {
		return fmt.Errorf("want one -std: %w", flag.ErrHelp)
	}
	c.opts.InitLogging()
	setup, err := c.opts.Setup(ctx)
	if err != nil {
		return err
	}
	if _, err := setup.Registry.Lookup(module); err != nil {
		return err
	}
	d := setup.Dialects[0]
	if !setup.MinDialects.Allows(module, d) {
		return fmt.Errorf("%s requires %s or later", module, setup.MinDialects[module])
	}

	spin := ui.Default.NewSpinner()
	spin.Start("scanning %s at %s", module, d)
	if c.closure {
		o := &depmap.Orchestrator{
			Registry:    setup.Registry,
			Scanner:     setup.Scanner,
			Dialects:    setup.Dialects,
			MinDialects: setup.MinDialects,
			Modules:     []string{module},
		}
		rep, err := o.Run(ctx)
		spin.Stop(err)
		if err != nil {
			return err
		}
		deps, _ := rep.Lookup(module, d.Label)
		for _, dep := range deps {
			fmt.Println(dep)
		}
		return rep.WriteIncomplete(os.Stderr)
	}
	res, err := setup.Scanner.Scan(ctx, scandeps.Unit{
		ID:      uuid.New().String(),
		Module:  module,
		Dialect: d,
	})
	spin.Stop(err)
	if err != nil {
		return err
	}
	for _, perr := range res.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", perr)
	}
	return writeDirect(os.Stdout, res.Direct.WithoutSelf(module))
}

// writeDirect writes non-empty sections of d.
func writeDirect(w io.Writer, d depgraph.Direct) error {
	for _, section := range []struct {
		title string
		deps  depgraph.Set
	}{
		{title: "From headers:", deps: d.Header},
		{title: "From sources:", deps: d.Source},
	} {
		if len(section.deps) == 0 {
			continue
		}
		_, err := fmt.Fprintln(w, section.title)
		if err != nil {
			return err
		}
		for _, dep := range section.deps.Sorted() {
			_, err := fmt.Fprintln(w, dep)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
