// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides shell-like command line splitting and quoting.
package shutil

import "strings"

// Join joins a command line args to a single string.
// Args containing whitespace, quotes or backslashes are double-quoted
// with backslash escapes, which is also the syntax gcc and clang accept
// in @response files.
func Join(args []string) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(Quote(arg))
	}
	return sb.String()
}

// Quote quotes arg if needed.
func Quote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\r\"'\\") {
		return arg
	}
	var sb strings.Builder
	sb.Grow(len(arg) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(arg); i++ {
		switch arg[i] {
		case '"', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(arg[i])
	}
	sb.WriteByte('"')
	return sb.String()
}
