// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package modules provides the `modules` subcommand.
package modules

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/joaquintides/cdmap/registry"
)

const usage = `list modules of the collection

 $ cdmap modules -boost_root <dir> [-gitmodules] [-manifest <mincxx.json>]

Prints one module per line, with its minimum dialect if the
manifest declares one.
`

// Cmd returns the Command for the `modules` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "modules [flags]",
		ShortDesc: "list modules of the collection",
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

	boostRoot  string
	gitmodules bool
	manifest   string
	dirs       bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.boostRoot, "boost_root", os.Getenv("BOOST_ROOT"), "path to the module collection. can be set by $BOOST_ROOT")
	c.Flags.BoolVar(&c.gitmodules, "gitmodules", false, "discover modules from .gitmodules instead of listing libs/")
	c.Flags.StringVar(&c.manifest, "manifest", "", "JSON file with minimum dialect per module")
	c.Flags.BoolVar(&c.dirs, "dirs", false, "print include and source directories")
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
	var r *registry.Registry
	var err error
	if c.gitmodules {
		r, err = registry.DiscoverGitmodules(c.boostRoot)
	} else {
		r, err = registry.Discover(c.boostRoot)
	}
	if err != nil {
		return err
	}
	minDialects, err := registry.LoadMinDialects(c.manifest)
	if err != nil {
		return fmt.Errorf("bad manifest: %w", err)
	}
	return writeModules(os.Stdout, r, minDialects, c.dirs)
}

func writeModules(w io.Writer, r *registry.Registry, minDialects registry.MinDialects, dirs bool) error {
	for _, m := range r.Modules() {
		line := m.Name
		if d, ok := minDialects[m.Name]; ok {
			line += fmt.Sprintf(" >=%s", d.Label)
		}
		if dirs {
			line += fmt.Sprintf(" %s %s", m.IncludeDir, m.SourceDir)
		}
		_, err := fmt.Fprintln(w, line)
		if err != nil {
			return err
		}
	}
	return nil
}
