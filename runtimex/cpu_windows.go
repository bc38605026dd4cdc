// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package runtimex

import "golang.org/x/sys/windows"

// activeProcessors counts processors of all groups.
// runtime.NumCPU only sees the current group (up to 64).
func activeProcessors() int {
	return int(windows.GetActiveProcessorCount(windows.ALL_PROCESSOR_GROUPS))
}
