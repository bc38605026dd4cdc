// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cdflags provides flags shared by subcommands scanning a
// module collection.
package cdflags

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/joaquintides/cdmap/cdmapconfig"
	"github.com/joaquintides/cdmap/dialect"
	"github.com/joaquintides/cdmap/execute"
	"github.com/joaquintides/cdmap/o11y/clog"
	"github.com/joaquintides/cdmap/probe"
	"github.com/joaquintides/cdmap/registry"
	"github.com/joaquintides/cdmap/scandeps"
	"github.com/joaquintides/cdmap/toolsupport/gccutil"
	"github.com/joaquintides/cdmap/toolsupport/shutil"
)

// DefaultCompiler is the compiler used without -compiler or config.
const DefaultCompiler = "clang++"

// stringList is a flag that can be repeated.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// commaList is a flag taking comma separated values, possibly repeated.
type commaList []string

func (l *commaList) String() string {
	return strings.Join(*l, ",")
}

func (l *commaList) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		*l = append(*l, s)
	}
	return nil
}

// Options are the collection and probe flags.
type Options struct {
	fs *flag.FlagSet

	BoostRoot  string
	Gitmodules bool
	Manifest   string
	Stds       commaList
	All        bool
	Defines    stringList
	Compiler   string
	Mode       string
	BatchSize  int
	Config     string
	Verbose    bool
	Quiet      bool

	// Executor runs compilers. nil runs them locally.
	Executor execute.Executor
}

// RegisterFlags registers flags for the options.
// envs provides defaults from the environment, e.g. BOOST_ROOT.
func (o *Options) RegisterFlags(fs *flag.FlagSet, envs map[string]string) {
	o.fs = fs
	fs.StringVar(&o.BoostRoot, "boost_root", envs["BOOST_ROOT"], "path to the module collection. can be set by $BOOST_ROOT")
	fs.BoolVar(&o.Gitmodules, "gitmodules", false, "discover modules from `path = libs/<name>` entries of .gitmodules instead of listing libs/")
	fs.StringVar(&o.Manifest, "manifest", "", "JSON file with minimum dialect per module, e.g. {\"json\": \"11\"}")
	fs.Var(&o.Stds, "std", "dialects to scan, e.g. 17 or 11,14 (can be repeated)")
	fs.BoolVar(&o.All, "all", false, "scan all dialects")
	fs.Var(&o.Defines, "D", "predefined preprocessor symbol NAME or NAME=VALUE (can be repeated)")
	fs.StringVar(&o.Compiler, "compiler", DefaultCompiler, "compiler command line")
	fs.StringVar(&o.Mode, "mode", gccutil.MakeRule.String(), `probe output. "make": dependency rules (-M -MG). "trace": include trace (-H)`)
	fs.IntVar(&o.BatchSize, "batch_size", scandeps.DefaultBatchSize, "maximum number of headers per probe")
	fs.StringVar(&o.Config, "config", "", "Starlark config file defining init(ctx)")
	fs.BoolVar(&o.Verbose, "v", false, "verbose mode. log every scanned file and probe")
	fs.BoolVar(&o.Quiet, "q", false, "quiet mode. log errors only")
}

// isSet reports whether the flag name was set on the command line.
func (o *Options) isSet(name string) bool {
	set := false
	if o.fs == nil {
		return false
	}
	o.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Flags returns the flags set on the command line, exposed to the config
// as ctx.flags.
func (o *Options) Flags() map[string]string {
	flags := make(map[string]string)
	if o.fs == nil {
		return flags
	}
	o.fs.Visit(func(f *flag.Flag) {
		flags[f.Name] = f.Value.String()
	})
	return flags
}

// InitLogging sets the log level from -v and -q.
func (o *Options) InitLogging() {
	level := log.InfoLevel
	switch {
	case o.Verbose:
		level = log.DebugLevel
	case o.Quiet:
		level = log.ErrorLevel
	}
	log.SetLevel(level)
	clog.Default().SetLevel(level)
}

// Setup is the environment built from the options.
type Setup struct {
	Registry    *registry.Registry
	Dialects    []dialect.Dialect
	MinDialects registry.MinDialects
	Compiler    *probe.Compiler
	Scanner     *scandeps.Scanner
}

// Setup validates the options and the environment.
// Command line flags override the config file.
func (o *Options) Setup(ctx context.Context) (*Setup, error) {
	cfg := &cdmapconfig.Config{}
	if o.Config != "" {
		var err error
		cfg, err = cdmapconfig.Load(ctx, o.Config, o.Flags())
		if err != nil {
			return nil, fmt.Errorf("bad config: %w", err)
		}
	}

	var reg *registry.Registry
	var err error
	if o.Gitmodules {
		reg, err = registry.DiscoverGitmodules(o.BoostRoot)
	} else {
		reg, err = registry.Discover(o.BoostRoot)
	}
	if err != nil {
		return nil, err
	}
	clog.Infof(ctx, "%d modules in %s", len(reg.Names()), reg.Root())

	dialects := cfg.Dialects
	if len(dialects) == 0 {
		dialects = dialect.All()
	}
	if !o.All {
		dialects, err = dialect.Select(dialects, o.Stds)
		if err != nil {
			return nil, fmt.Errorf("bad -std: %w", err)
		}
	}
	dialect.Sort(dialects)

	minDialects := registry.MinDialects{}
	maps.Copy(minDialects, cfg.MinDialects)
	manifest, err := registry.LoadMinDialects(o.Manifest)
	if err != nil {
		return nil, fmt.Errorf("bad manifest: %w", err)
	}
	maps.Copy(minDialects, manifest)

	compiler, err := o.compiler(cfg)
	if err != nil {
		return nil, err
	}
	mode := cfg.Mode
	if mode == "" || o.isSet("mode") {
		mode = o.Mode
	}
	m, ok := gccutil.ParseMode(mode)
	if !ok {
		return nil, fmt.Errorf("bad mode %q: %w", mode, flag.ErrHelp)
	}
	c := &probe.Compiler{
		Args:        compiler,
		Mode:        m,
		Defines:     slices.Concat(cfg.Defines, o.Defines),
		IncludeDirs: reg.IncludeDirs(),
		Executor:    o.Executor,
	}
	err = probe.CheckCompiler(ctx, c.Args, o.Executor)
	if err != nil {
		return nil, err
	}
	clog.Infof(ctx, "compiler %s mode=%s dialects=%s", shutil.Join(c.Args), m, labels(dialects))

	s := scandeps.New(reg, c)
	s.BatchSize = o.BatchSize
	if cfg.BatchSize > 0 && !o.isSet("batch_size") {
		s.BatchSize = cfg.BatchSize
	}
	if s.BatchSize <= 0 {
		return nil, fmt.Errorf("bad -batch_size %d: must be positive: %w", s.BatchSize, flag.ErrHelp)
	}
	s.ExcludedDirs = cfg.ExcludedDirs
	return &Setup{
		Registry:    reg,
		Dialects:    dialects,
		MinDialects: minDialects,
		Compiler:    c,
		Scanner:     s,
	}, nil
}

func (o *Options) compiler(cfg *cdmapconfig.Config) ([]string, error) {
	if len(cfg.Compiler) > 0 && !o.isSet("compiler") {
		return cfg.Compiler, nil
	}
	cmdline := strings.TrimSpace(o.Compiler)
	if cmdline == "" {
		return nil, fmt.Errorf("empty -compiler: %w", flag.ErrHelp)
	}
	args, err := shutil.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("bad -compiler %q: %w", o.Compiler, err)
	}
	return args, nil
}

func labels(ds []dialect.Dialect) string {
	var s []string
	for _, d := range ds {
		s = append(s, strconv.Quote(d.Label))
	}
	return strings.Join(s, ",")
}
