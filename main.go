// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// cdmap computes the conditional dependency map of a C++ module collection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"github.com/joaquintides/cdmap/o11y/clog"
	"github.com/joaquintides/cdmap/subcmd/deps"
	"github.com/joaquintides/cdmap/subcmd/help"
	"github.com/joaquintides/cdmap/subcmd/mapcmd"
	"github.com/joaquintides/cdmap/subcmd/modules"
	"github.com/joaquintides/cdmap/subcmd/version"
	"github.com/joaquintides/cdmap/ui"
)

const executableVersion = "v0.1.0"

func main() {
	os.Exit(cdmapMain())
}

func getApplication(ctx context.Context) *cli.Application {
	return &cli.Application{
		Name:  "cdmap",
		Title: "conditional dependency map of a C++ module collection",
		Context: func(context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			mapcmd.Cmd(),
			deps.Cmd(),
			modules.Cmd(),

			help.Cmd(),
			version.Cmd(executableVersion),
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{
			"BOOST_ROOT": {
				ShortDesc: "default path to the module collection (-boost_root)",
			},
		},
	}
}

func cdmapMain() int {
	ui.Init()
	defer ui.Restore()

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(out, "global flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer signals.HandleInterrupt(cancel)()
	ctx = clog.NewContext(ctx, clog.Default())

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	// Print build information to the log.
	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Debugf("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
	}

	return subcommands.Run(getApplication(ctx), flag.Args())
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
