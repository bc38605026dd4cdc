// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joaquintides/cdmap/dialect"
)

// MinDialects maps module name to the lowest dialect at which the module
// is usable. Modules without entry are usable at every dialect.
type MinDialects map[string]dialect.Dialect

// Allows reports whether module is usable at d.
func (m MinDialects) Allows(module string, d dialect.Dialect) bool {
	min, ok := m[module]
	if !ok {
		return true
	}
	return !d.Less(min)
}

// LoadMinDialects loads a JSON manifest such as
//
//	{"asio": "11", "beast": 11, "json": "c++11"}
//
// An empty fname returns an empty table.
func LoadMinDialects(fname string) (MinDialects, error) {
	if fname == "" {
		return MinDialects{}, nil
	}
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("can't find %s: %w", fname, err)
	}
	m, err := ParseMinDialects(buf)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", fname, err)
	}
	return m, nil
}

// ParseMinDialects parses the JSON manifest in buf.
func ParseMinDialects(buf []byte) (MinDialects, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, err
	}
	m := make(MinDialects, len(raw))
	for module, v := range raw {
		d, err := parseMinDialect(v)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", module, err)
		}
		m[module] = d
	}
	return m, nil
}

func parseMinDialect(v json.RawMessage) (dialect.Dialect, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return dialect.ParseNumber(n)
		}
		return dialect.Parse(s)
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return dialect.Dialect{}, fmt.Errorf("want string or number, got %s", v)
	}
	return dialect.ParseNumber(n)
}
