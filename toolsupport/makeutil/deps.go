// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make.
package makeutil

import (
	"context"
	"io/fs"

	"github.com/joaquintides/cdmap/o11y/clog"
)

// ParseDepsFile parses *.d file in fname on fsys.
func ParseDepsFile(ctx context.Context, fsys fs.FS, fname string) ([]string, error) {
	if fname == "" {
		return nil, nil
	}
	b, err := fs.ReadFile(fsys, fname)
	if err != nil {
		return nil, err
	}
	deps := ParseDeps(b)
	clog.Debugf(ctx, "deps %s => %d inputs", fname, len(deps))
	return deps, nil
}

// ParseDeps parses deps and returns a list of inputs of all rules,
// deduplicated in order of appearance.
func ParseDeps(b []byte) []string {
	// deps contents
	// <output>: <input> ...
	// <input> is space separated
	// '\'+newline is space
	// '\'+space is escaped space (not separator)
	// '$$' is '$'
	// -MP style phony rules (`<input>:` without inputs) add nothing.
	var inputs []string
	seen := make(map[string]bool)
	for _, line := range logicalLines(b) {
		i := ruleSeparator(line)
		if i < 0 {
			continue
		}
		for s := line[i+1:]; len(s) > 0; {
			var token string
			token, s = nextToken(s)
			if token == "" || seen[token] {
				continue
			}
			seen[token] = true
			inputs = append(inputs, token)
		}
	}
	return inputs
}

// logicalLines splits b into lines, joining '\'+newline continuations.
func logicalLines(b []byte) [][]byte {
	var lines [][]byte
	var cur []byte
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '\\' && i+1 < len(b) && b[i+1] == '\n':
			cur = append(cur, ' ')
			i++
		case b[i] == '\\' && i+2 < len(b) && b[i+1] == '\r' && b[i+2] == '\n':
			cur = append(cur, ' ')
			i += 2
		case b[i] == '\\' && i+1 < len(b):
			cur = append(cur, b[i], b[i+1])
			i++
		case b[i] == '\r':
		case b[i] == '\n':
			lines = append(lines, cur)
			cur = nil
		default:
			cur = append(cur, b[i])
		}
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// ruleSeparator returns index of the ':' separating targets from inputs.
// A ':' followed by a non-space (e.g. "C:\boost") is part of a path
// unless no other separator is present.
func ruleSeparator(line []byte) int {
	first := -1
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ':':
			if i+1 == len(line) || line[i+1] == ' ' || line[i+1] == '\t' {
				return i
			}
			if first < 0 {
				first = i
			}
		}
	}
	return first
}

func nextToken(s []byte) (string, []byte) {
	// skip spaces
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	var token []byte
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			i++
			switch s[i] {
			case ' ', '#':
				token = append(token, s[i])
			default:
				token = append(token, '\\', s[i])
			}
		case s[i] == '$' && i+1 < len(s) && s[i+1] == '$':
			token = append(token, '$')
			i++
		case s[i] == ' ' || s[i] == '\t':
			return string(token), s[i+1:]
		default:
			token = append(token, s[i])
		}
	}
	return string(token), nil
}
