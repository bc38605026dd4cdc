// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute defines compiler invocations and how they are run.
package execute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joaquintides/cdmap/toolsupport/shutil"
)

// Executor runs a Cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// Cmd is a single compiler invocation.
type Cmd struct {
	// ID identifies the cmd in logs, e.g. "<unit uuid>-3".
	ID string

	// Desc is a short, human-readable description.
	// Example: "probe headers-2.cpp"
	Desc string

	// Args holds command line arguments, including the program.
	Args []string

	// Env is the environment of the process. nil inherits the current one.
	Env []string

	// Dir is the working directory of the cmd.
	Dir string

	stdout, stderr bytes.Buffer
	result         Result
}

// Result is the outcome of a finished Cmd.
type Result struct {
	ExitCode int
	Duration time.Duration
}

func (c *Cmd) String() string {
	return c.ID
}

// Command returns the command line, quoted for a shell.
func (c *Cmd) Command() string {
	return shutil.Join(c.Args)
}

// StdoutWriter resets and returns the stdout capture buffer.
func (c *Cmd) StdoutWriter() io.Writer {
	c.stdout.Reset()
	return &c.stdout
}

// StderrWriter resets and returns the stderr capture buffer.
func (c *Cmd) StderrWriter() io.Writer {
	c.stderr.Reset()
	return &c.stderr
}

// Stdout returns captured stdout.
func (c *Cmd) Stdout() []byte {
	return c.stdout.Bytes()
}

// Stderr returns captured stderr.
// Compilers write include traces (-H) here.
func (c *Cmd) Stderr() []byte {
	return c.stderr.Bytes()
}

// SetResult records the outcome of the cmd. Executors call it.
func (c *Cmd) SetResult(r Result) {
	c.result = r
}

// Result returns the outcome of the finished cmd.
func (c *Cmd) Result() Result {
	return c.result
}

// ExitError is returned when a cmd exits with non-zero status.
type ExitError struct {
	ExitCode int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit=%d", e.ExitCode)
}
