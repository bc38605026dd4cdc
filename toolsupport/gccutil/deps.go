// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc and gcc-compatible drivers
// (clang, clang++).
package gccutil

import "os"

// Mode selects how the compiler reports included files.
type Mode int

const (
	// MakeRule lists dependencies as a make rule (-M -MG -MF).
	MakeRule Mode = iota
	// IncludeTrace preprocesses and traces each include on stderr (-E -H).
	IncludeTrace
)

// String returns flag value of the mode.
func (m Mode) String() string {
	switch m {
	case MakeRule:
		return "make"
	case IncludeTrace:
		return "trace"
	}
	return "unknown"
}

// ParseMode parses a mode name given by String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "make", "":
		return MakeRule, true
	case "trace":
		return IncludeTrace, true
	}
	return MakeRule, false
}

// ModeArgs returns the flags that select mode.
// depfile is where MakeRule writes its rule; it is ignored by IncludeTrace,
// which discards the preprocessed output.
func ModeArgs(mode Mode, depfile string) []string {
	switch mode {
	case IncludeTrace:
		return []string{"-E", "-H", "-o", os.DevNull}
	default:
		return []string{"-M", "-MG", "-MF", depfile}
	}
}

// ProbeArgs returns the flags for one probe in the order the compiler
// should see them: mode flags, dialect flags, defines, include dirs.
func ProbeArgs(mode Mode, depfile string, dialectFlags, defines, includeDirs []string) []string {
	args := ModeArgs(mode, depfile)
	args = append(args, dialectFlags...)
	for _, d := range defines {
		args = append(args, "-D"+d)
	}
	for _, dir := range includeDirs {
		args = append(args, "-I"+dir)
	}
	return args
}
