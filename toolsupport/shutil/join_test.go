// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import "testing"

func TestJoin(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{
			args: []string{"clang++", "-std=c++17", "-M"},
			want: "clang++ -std=c++17 -M",
		},
		{
			args: []string{"-I/boost root/libs/asio/include"},
			want: `"-I/boost root/libs/asio/include"`,
		},
		{
			args: []string{`-DFOO="bar"`},
			want: `"-DFOO=\"bar\""`,
		},
		{
			args: []string{`C:\boost\libs\core\include`},
			want: `"C:\\boost\\libs\\core\\include"`,
		},
		{
			args: []string{"", "x"},
			want: `"" x`,
		},
	} {
		got := Join(tc.args)
		if got != tc.want {
			t.Errorf("Join(%q)=%q; want %q", tc.args, got, tc.want)
		}
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	args := []string{"ccache", "clang++-10", "-std=c++2a", "-I/tmp/with space", `-DV="1.86"`, `C:\boost\libs`, "", "it's"}
	got, err := Split(Join(args))
	if err != nil {
		t.Fatalf("Split(Join(%q))=_, %v", args, err)
	}
	if len(got) != len(args) {
		t.Fatalf("Split(Join(%q))=%q; want %q", args, got, args)
	}
	for i := range args {
		if got[i] != args[i] {
			t.Errorf("Split(Join(%q))[%d]=%q; want %q", args, i, got[i], args[i])
		}
	}
}
