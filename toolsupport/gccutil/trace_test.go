// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joaquintides/cdmap/toolsupport/gccutil"
)

func TestParseIncludeTrace(t *testing.T) {
	trace := []byte(`. /boost/libs/config/include/boost/config.hpp
.. /boost/libs/config/include/boost/config/user.hpp
... /usr/include/c++/10/cstddef
/tmp/cdmap-1/hdr.cpp:3:10: warning: something
.. /boost/libs/config/include/boost/config/user.hpp
Multiple include guards may be useful for:
/usr/include/c++/10/cstddef
. /boost root/libs/core/include/boost/ref.hpp` + "\r\n")
	want := []string{
		"/boost/libs/config/include/boost/config.hpp",
		"/boost/libs/config/include/boost/config/user.hpp",
		"/usr/include/c++/10/cstddef",
		"/boost root/libs/core/include/boost/ref.hpp",
	}
	got, err := gccutil.ParseIncludeTrace(trace)
	if err != nil {
		t.Fatalf("ParseIncludeTrace=_, %v; want nil err", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseIncludeTrace -want +got:\n%s", diff)
	}
}

func TestParseIncludeTrace_longLine(t *testing.T) {
	trace := ". /boost/libs/config/include/boost/config.hpp\n" +
		". /" + strings.Repeat("x", 2*1024*1024) + ".hpp\n" +
		". /boost/libs/core/include/boost/ref.hpp\n"
	got, err := gccutil.ParseIncludeTrace([]byte(trace))
	if err == nil {
		t.Errorf("ParseIncludeTrace=%d files, nil; want err", len(got))
	}
}
