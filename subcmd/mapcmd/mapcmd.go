// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package mapcmd provides the `map` subcommand.
package mapcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/joaquintides/cdmap/depmap"
	"github.com/joaquintides/cdmap/o11y/clog"
	"github.com/joaquintides/cdmap/probe"
	"github.com/joaquintides/cdmap/report"
	"github.com/joaquintides/cdmap/subcmd/cdflags"
	"github.com/joaquintides/cdmap/ui"
)

const usage = `compute the conditional dependency map

 $ cdmap map -boost_root <dir> [-manifest <mincxx.json>] [-std 17|-all] \
     [-D <symbol>]... [-compiler clang++] [-o <file>]

For every module and dialect, lists the modules it depends on:
modules whose headers it includes, plus modules reached through
source dependencies. Prints JSON to stdout unless -o is given;
-o <file>.zst writes zstd-compressed output.
`

// Cmd returns the Command for the `map` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "map [flags]",
		ShortDesc: "compute the conditional dependency map",
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
	jobs    int
	modules string
	format  string
	output  string
}

func (c *run) init() {
	envs := map[string]string{
		"BOOST_ROOT": os.Getenv("BOOST_ROOT"),
	}
	c.opts.RegisterFlags(&c.Flags, envs)
	c.Flags.IntVar(&c.jobs, "j", 0, "run N units in parallel. 0 means twice the number of CPUs")
	c.Flags.StringVar(&c.modules, "module", "", "comma separated modules to report. empty reports all modules")
	c.Flags.StringVar(&c.format, "format", "json", `output format. "json" or "text"`)
	c.Flags.StringVar(&c.output, "o", "", "output filename. empty writes to stdout")
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
	if len(args) != 0 {
		return fmt.Errorf("position arguments not expected: %w", flag.ErrHelp)
	}
	c.opts.InitLogging()
	format, err := report.ParseFormat(c.format)
	if err != nil {
		return fmt.Errorf("bad -format: %w", flag.ErrHelp)
	}
	setup, err := c.opts.Setup(ctx)
	if err != nil {
		return err
	}
	var modules []string
	if c.modules != "" {
		modules = strings.Split(c.modules, ",")
	}
	o := &depmap.Orchestrator{
		Registry:    setup.Registry,
		Scanner:     setup.Scanner,
		Dialects:    setup.Dialects,
		MinDialects: setup.MinDialects,
		Workers:     c.jobs,
		Modules:     modules,
		UI:          ui.Default,
	}
	rep, err := o.Run(ctx)
	clog.Debugf(ctx, "%s", probe.Semaphore.Stats())
	if err != nil {
		return err
	}
	if c.output == "" {
		err = rep.Write(os.Stdout, format)
	} else {
		err = rep.WriteFile(c.output, format)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if len(rep.Incomplete) > 0 {
		clog.Warningf(ctx, "%d units incomplete", len(rep.Incomplete))
		return rep.WriteIncomplete(os.Stderr)
	}
	return nil
}
