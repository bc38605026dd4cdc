// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package probe runs the compiler in dependency-listing mode and returns
// the files a translation unit pulls in.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joaquintides/cdmap/dialect"
	"github.com/joaquintides/cdmap/execute"
	"github.com/joaquintides/cdmap/execute/localexec"
	"github.com/joaquintides/cdmap/o11y/clog"
	"github.com/joaquintides/cdmap/runtimex"
	"github.com/joaquintides/cdmap/sync/semaphore"
	"github.com/joaquintides/cdmap/toolsupport/gccutil"
	"github.com/joaquintides/cdmap/toolsupport/makeutil"
	"github.com/joaquintides/cdmap/toolsupport/shutil"
)

// ErrCompilerNotFound is returned by CheckCompiler when the compiler
// can't be executed.
var ErrCompilerNotFound = errors.New("can't execute compiler")

// Semaphore bounds concurrent compiler processes.
var Semaphore = semaphore.New("probe", runtimex.NumWorkers())

// Request is one probe.
type Request struct {
	// ID identifies the probe; it's unique within WorkDir and names the
	// probe's scratch files.
	ID string
	// Input is the absolute path of the translation unit.
	Input string
	// WorkDir is a scratch directory owned by the caller's unit.
	WorkDir string
	// Dialect selects language standard flags and symbols.
	Dialect dialect.Dialect
}

// Runner runs probes.
type Runner interface {
	// Probe returns the files included by req.Input, transitively.
	Probe(ctx context.Context, req Request) ([]string, error)
}

// Compiler is a Runner invoking a gcc-compatible compiler driver.
type Compiler struct {
	// Args is the compiler command, e.g. ["clang++"] or ["ccache", "g++"].
	Args []string
	// Mode selects make rule or include trace output.
	Mode gccutil.Mode
	// Defines are user symbols added to every probe (NAME or NAME=VALUE).
	Defines []string
	// IncludeDirs are passed as -I, one per module.
	IncludeDirs []string
	// Env is the compiler's environment. nil inherits the current one.
	Env []string

	// Executor runs the compiler. nil uses local execution.
	Executor execute.Executor
}

func (c *Compiler) executor() execute.Executor {
	if c.Executor == nil {
		return localexec.LocalExec{}
	}
	return c.Executor
}

// ResponseFile returns the content of the @file for a probe.
// One argument per line, quoted as needed.
func (c *Compiler) ResponseFile(d dialect.Dialect, depfile string) []byte {
	defines := slices.Concat(d.Defines, c.Defines)
	args := gccutil.ProbeArgs(c.Mode, depfile, d.Flags, defines, c.IncludeDirs)
	var buf bytes.Buffer
	for _, arg := range args {
		buf.WriteString(shutil.Quote(arg))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Probe implements Runner.
func (c *Compiler) Probe(ctx context.Context, req Request) ([]string, error) {
	if len(c.Args) == 0 {
		return nil, fmt.Errorf("no compiler: %w", ErrCompilerNotFound)
	}
	rspfile := filepath.Join(req.WorkDir, req.ID+".rsp")
	depfile := req.ID + ".d"
	err := os.WriteFile(rspfile, c.ResponseFile(req.Dialect, filepath.Join(req.WorkDir, depfile)), 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to write response file: %w", err)
	}
	defer os.Remove(rspfile)
	if c.Mode == gccutil.MakeRule {
		defer os.Remove(filepath.Join(req.WorkDir, depfile))
	}

	cmd := &execute.Cmd{
		ID:   req.ID,
		Desc: fmt.Sprintf("probe %s", filepath.Base(req.Input)),
		Args: slices.Concat(c.Args, []string{"@" + rspfile, req.Input}),
		Env:  c.Env,
		Dir:  req.WorkDir,
	}
	wait, err := Semaphore.Do(ctx, func(ctx context.Context) error {
		return c.executor().Run(ctx, cmd)
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w\n%s", cmd.Desc, req.Dialect, err, tail(cmd.Stderr(), 10))
	}

	var files []string
	switch c.Mode {
	case gccutil.IncludeTrace:
		files, err = gccutil.ParseIncludeTrace(cmd.Stderr())
	default:
		files, err = makeutil.ParseDepsFile(ctx, os.DirFS(req.WorkDir), depfile)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read deps: %w", cmd.Desc, req.Dialect, err)
	}
	clog.Debugf(ctx, "%s %s: %d files (wait:%s run:%s)", cmd.Desc, req.Dialect, len(files), wait, cmd.Result().Duration)
	return files, nil
}

// CheckCompiler verifies that the compiler can be executed at all.
func CheckCompiler(ctx context.Context, args []string, exec execute.Executor) error {
	if len(args) == 0 {
		return fmt.Errorf("empty compiler command: %w", ErrCompilerNotFound)
	}
	if exec == nil {
		exec = localexec.LocalExec{}
	}
	cmd := &execute.Cmd{
		ID:   "check-compiler",
		Args: slices.Concat(args, []string{"-v"}),
	}
	err := exec.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", shutil.Join(args), ErrCompilerNotFound, err)
	}
	return nil
}

// tail returns the last n lines of b.
func tail(b []byte, n int) string {
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
