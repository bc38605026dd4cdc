// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package version

import (
	"bytes"
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteVersion(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.24.2",
		Deps: []*debug.Module{
			{Path: "go.starlark.net", Version: "v0.0.0-20250417143717-f57e51f710eb"},
		},
		Settings: []debug.BuildSetting{
			{Key: "-trimpath", Value: "true"},
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.modified", Value: "false"},
		},
	}
	for _, tc := range []struct {
		name string
		bi   *debug.BuildInfo
		deps bool
		want string
	}{
		{
			name: "no buildinfo",
			want: "cdmap v1\n",
		},
		{
			name: "vcs",
			bi:   bi,
			want: "cdmap v1\ngo\tgo1.24.2\nbuild\tvcs.revision=abc123\nbuild\tvcs.modified=false\n",
		},
		{
			name: "deps",
			bi:   bi,
			deps: true,
			want: "cdmap v1\ngo\tgo1.24.2\nbuild\tvcs.revision=abc123\nbuild\tvcs.modified=false\ndep\tgo.starlark.net\tv0.0.0-20250417143717-f57e51f710eb\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeVersion(&buf, "cdmap v1", tc.bi, tc.deps)
			if diff := cmp.Diff(tc.want, buf.String()); diff != "" {
				t.Errorf("writeVersion diff -want +got:\n%s", diff)
			}
		})
	}
}
