// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// maxTraceLine is the longest include trace line accepted.
const maxTraceLine = 1024 * 1024

// ParseIncludeTrace parses the include trace printed by -H (gcc, clang)
// or --trace-includes (clang) and returns the included files.
//
// Each traced include is a line of one or more dots for the nesting
// depth, a space and the path:
//
//	. /boost/libs/config/include/boost/config.hpp
//	.. /boost/libs/config/include/boost/config/user.hpp
//
// Other lines (diagnostics, "Multiple include guards may be useful for:")
// are ignored. A line too long to scan is an error, since dropping the
// rest of the trace would under-report includes.
func ParseIncludeTrace(b []byte) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	s := bufio.NewScanner(bytes.NewReader(b))
	s.Buffer(make([]byte, 0, 64*1024), maxTraceLine)
	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		depth := 0
		for depth < len(line) && line[depth] == '.' {
			depth++
		}
		if depth == 0 || depth >= len(line) || line[depth] != ' ' {
			continue
		}
		fname := line[depth+1:]
		if fname == "" || seen[fname] {
			continue
		}
		seen[fname] = true
		files = append(files, fname)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse include trace: %w", err)
	}
	return files, nil
}
