// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimex_test

import (
	"testing"

	"github.com/joaquintides/cdmap/runtimex"
)

func TestNumWorkers(t *testing.T) {
	n := runtimex.NumCPU()
	if n <= 0 {
		t.Fatalf("NumCPU()=%d; want >0", n)
	}
	if got, want := runtimex.NumWorkers(), 2*n; got != want {
		t.Errorf("NumWorkers()=%d; want %d", got, want)
	}
}
