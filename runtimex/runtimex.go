// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runtimex reports the parallelism available to cdmap.
package runtimex

import (
	"runtime"
	"sync"
)

// probesPerCPU oversubscribes CPUs, since units mostly wait on
// compiler processes.
const probesPerCPU = 2

var numCPU = sync.OnceValue(func() int {
	if n := activeProcessors(); n > 0 {
		return n
	}
	return runtime.NumCPU()
})

// NumCPU returns the number of logical CPUs usable by the process.
// Unlike runtime.NumCPU, it counts every processor group on Windows.
func NumCPU() int {
	return numCPU()
}

// NumWorkers returns the default number of concurrent units.
func NumWorkers() int {
	return NumCPU() * probesPerCPU
}
