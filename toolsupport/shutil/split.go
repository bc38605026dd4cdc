// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import (
	"errors"
	"fmt"
	"strings"
)

// Split splits a compiler command line such as `ccache "g++-12" -m32`.
//
// Blanks separate args. Double quotes group and honor backslash escapes,
// which makes Split the inverse of Join. Single quotes group literally.
// Commands are executed directly, so shell metachars and leading
// VAR=value assignments are rejected.
func Split(cmdline string) ([]string, error) {
	var args []string
	var sb strings.Builder
	inArg := false
	var quote rune
	escaped := false
	for _, ch := range cmdline {
		switch {
		case escaped:
			sb.WriteRune(ch)
			escaped = false
		case quote == '\'':
			if ch == '\'' {
				quote = 0
				continue
			}
			sb.WriteRune(ch)
		case quote == '"':
			switch ch {
			case '"':
				quote = 0
			case '\\':
				escaped = true
			default:
				sb.WriteRune(ch)
			}
		case ch == ' ' || ch == '\t' || ch == '\n':
			if inArg {
				args = append(args, sb.String())
				sb.Reset()
				inArg = false
			}
		case ch == '\\':
			inArg = true
			escaped = true
		case ch == '"' || ch == '\'':
			inArg = true
			quote = ch
		case strings.ContainsRune(";&|<>$`#*?", ch):
			return nil, fmt.Errorf("shell metachar %q in %q", ch, cmdline)
		default:
			inArg = true
			sb.WriteRune(ch)
		}
	}
	switch {
	case escaped:
		return nil, errors.New("trailing backslash")
	case quote != 0:
		return nil, fmt.Errorf("unterminated %c quote in %q", quote, cmdline)
	}
	if inArg {
		args = append(args, sb.String())
	}
	if len(args) > 0 && isAssignment(args[0]) {
		return nil, fmt.Errorf("env assignment %q is not a command", args[0])
	}
	return args, nil
}

func isAssignment(arg string) bool {
	name, _, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return false
	}
	for i, ch := range name {
		switch {
		case ch == '_', ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z':
		case i > 0 && ch >= '0' && ch <= '9':
		default:
			return false
		}
	}
	return true
}
