// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"github.com/joaquintides/cdmap/execute"
	"github.com/joaquintides/cdmap/o11y/clog"
	"github.com/joaquintides/cdmap/sync/semaphore"
)

// LocalExec implements execute.Executor interface that runs commands locally.
type LocalExec struct{}

// Run runs a cmd.
// It returns execute.ExitError if the cmd exits with non-zero status.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = cmd.Dir
	c.Stdout = cmd.StdoutWriter()
	c.Stderr = cmd.StderrWriter()
	s := time.Now()
	_, err := forkSema.Do(ctx, func(ctx context.Context) error {
		return c.Start()
	})
	if err != nil {
		return fmt.Errorf("failed to start %q: %w", cmd.Args[0], err)
	}
	err = c.Wait()
	code := exitCode(err)
	cmd.SetResult(execute.Result{ExitCode: code, Duration: time.Since(s)})
	logger := clog.FromContext(ctx)
	if logger.V(1) {
		logger.Debugf("%s exit=%d stdout=%d stderr=%d %s: %s", cmd.ID, code, len(cmd.Stdout()), len(cmd.Stderr()), cmd.Result().Duration, cmd.Command())
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if code != 0 {
		return execute.ExitError{ExitCode: code}
	}
	return nil
}

// forkSema bounds concurrent process creation.
var forkSema = semaphore.New("fork", runtime.NumCPU())

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return 1
	}
	if w, ok := eerr.ProcessState.Sys().(syscall.WaitStatus); ok {
		return w.ExitStatus()
	}
	return 1
}
