// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestTermUI_PrintLines(t *testing.T) {
	for _, tc := range []struct {
		name string
		msgs []string
		want string
	}{
		{
			name: "replace",
			msgs: []string{"[1/3] core@11"},
			want: "\r\033[K[1/3] core@11",
		},
		{
			name: "replace2",
			msgs: []string{"[1/3] core@11", "[2/3] util@11"},
			want: "\r\033[K\033[A\r\033[K[1/3] core@11\n[2/3] util@11",
		},
		{
			name: "newline",
			msgs: []string{"\n", "3 units\n"},
			want: "3 units\n",
		},
		{
			name: "skipEmpty",
			msgs: []string{"\n", "", "a", "b"},
			want: "a\nb",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			u := &TermUI{w: &buf, width: 80}
			u.PrintLines(tc.msgs...)
			if got := buf.String(); got != tc.want {
				t.Errorf("PrintLines(%q)=%q; want %q", tc.msgs, got, tc.want)
			}
		})
	}
}

func TestTermUI_fit(t *testing.T) {
	u := &TermUI{width: 20}
	long := "[12/345] 1m02.00s multiprecision@20 probes:12345"

	got := u.fit(long)
	if w := ansi.StringWidth(got); w >= u.width {
		t.Errorf("fit(%q)=%q; width=%d, want <%d", long, got, w, u.width)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("fit(%q)=%q; want ... suffix", long, got)
	}

	got = u.fit(long + "\n")
	if !strings.HasSuffix(got, "...\n") {
		t.Errorf("fit(%q)=%q; want trailing newline kept", long+"\n", got)
	}

	multi := long + "\n" + long
	if got := u.fit(multi); got != multi {
		t.Errorf("fit(%q)=%q; want unchanged", multi, got)
	}

	short := "core@11"
	if got := u.fit(short); got != short {
		t.Errorf("fit(%q)=%q; want unchanged", short, got)
	}

	colored := "\033[31;1m" + long + "\033[0m"
	got = u.fit(colored)
	if w := ansi.StringWidth(got); w >= u.width {
		t.Errorf("fit(colored)=%q; width=%d, want <%d", got, w, u.width)
	}
	if !strings.HasPrefix(got, "\033[31;1m") {
		t.Errorf("fit(colored)=%q; want escape sequence kept", got)
	}
}
