// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestParseDeps(t *testing.T) {
	for _, tc := range []struct {
		name     string
		depsfile []byte
		want     []string
	}{
		{
			name:     "simple",
			depsfile: []byte("foo.o:\tbar baz qux"),
			want: []string{
				"bar",
				"baz",
				"qux",
			},
		},
		{
			name:     "spaceinname",
			depsfile: []byte(`foo\ bar.o: baz\ qux`),
			want: []string{
				"baz qux",
			},
		},
		{
			name:     "newlinewhitespaces",
			depsfile: []byte("foo.o :\tbar\\\n\tbaz\\\r\n  qux"),
			want: []string{
				"bar",
				"baz",
				"qux",
			},
		},
		{
			name:     "backslashes",
			depsfile: []byte("foo\\bar.o: baz\\qux\\\n  quux\\corge"),
			want: []string{
				`baz\qux`,
				`quux\corge`,
			},
		},
		{
			name:     "windows-drive",
			depsfile: []byte("compiler_in.o: C:\\boost\\libs\\core\\include\\boost\\ref.hpp \\\n C:/boost/libs/config/include/boost/config.hpp\n"),
			want: []string{
				`C:\boost\libs\core\include\boost\ref.hpp`,
				"C:/boost/libs/config/include/boost/config.hpp",
			},
		},
		{
			name:     "missing-generated",
			depsfile: []byte("compiler_in.o: /tmp/cdmap/compiler_in.cpp \\\n  /boost/libs/asio/include/boost/asio.hpp gen/config.h\n"),
			want: []string{
				"/tmp/cdmap/compiler_in.cpp",
				"/boost/libs/asio/include/boost/asio.hpp",
				"gen/config.h",
			},
		},
		{
			name:     "dedup-and-dollar",
			depsfile: []byte("a.o: x$$y.h x$$y.h \\#z.h"),
			want: []string{
				"x$y.h",
				"#z.h",
			},
		},
		{
			name:     "empty",
			depsfile: []byte(""),
			want:     nil,
		},
		{
			name: "rust-multi",
			depsfile: []byte(`clang_x64_for_rust_host_build_tools/obj/third_party/rust/unicode_ident/v1/lib/libunicode_ident-unicode_ident-1.rlib: ../../third_party/rust/unicode_ident/v1/crate/src/lib.rs ../../third_party/rust/unicode_ident/v1/crate/src/tables.rs

../../third_party/rust/unicode_ident/v1/crate/src/lib.rs:
../../third_party/rust/unicode_ident/v1/crate/src/tables.rs:
`),
			want: []string{
				"../../third_party/rust/unicode_ident/v1/crate/src/lib.rs",
				"../../third_party/rust/unicode_ident/v1/crate/src/tables.rs",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDeps(tc.depsfile)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseDeps(%q) -want +got:\n%s", tc.depsfile, diff)
			}
		})
	}
}

func TestParseDepsFile(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"unit.d": &fstest.MapFile{
			Data: []byte("unit.o: /boost/libs/core/include/boost/core/ref.hpp\n"),
		},
	}
	got, err := ParseDepsFile(ctx, fsys, "unit.d")
	if err != nil {
		t.Fatalf("ParseDepsFile(ctx, fsys, %q)=_, %v; want nil err", "unit.d", err)
	}
	want := []string{"/boost/libs/core/include/boost/core/ref.hpp"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDepsFile -want +got:\n%s", diff)
	}

	_, err = ParseDepsFile(ctx, fsys, "missing.d")
	if err == nil {
		t.Errorf("ParseDepsFile(ctx, fsys, %q)=_, nil; want err", "missing.d")
	}
	got, err = ParseDepsFile(ctx, fsys, "")
	if err != nil || got != nil {
		t.Errorf("ParseDepsFile(ctx, fsys, \"\")=%q, %v; want nil, nil", got, err)
	}
}
