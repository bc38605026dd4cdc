// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// DefaultExcludedDirs are implementation-detail directory names
	// never descended into.
	DefaultExcludedDirs = []string{"aux_", "detail", "impl", "preprocessed"}

	headerExts = []string{".h", ".hpp", ".hh", ".h+", ".h++"}
	sourceExts = []string{".c", ".cpp", ".cc", ".c+", ".c++"}
)

type fileKind int

const (
	otherFile fileKind = iota
	headerFile
	sourceFile
)

func kindOf(fname string) fileKind {
	ext := strings.ToLower(filepath.Ext(fname))
	switch {
	case slices.Contains(headerExts, ext):
		return headerFile
	case slices.Contains(sourceExts, ext):
		return sourceFile
	}
	return otherFile
}

// walk collects recognized headers and sources under root, in lexical
// order, skipping excluded directories. A missing root is empty.
func walk(root string, excluded []string) (headers, sources []string, err error) {
	err = filepath.WalkDir(root, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			if fname == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if fname != root && slices.Contains(excluded, d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		switch kindOf(fname) {
		case headerFile:
			headers = append(headers, fname)
		case sourceFile:
			sources = append(sources, fname)
		}
		return nil
	})
	return headers, sources, err
}
