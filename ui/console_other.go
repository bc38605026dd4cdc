// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !windows

package ui

// Init initializes the console. ANSI escape sequences need no setup here.
func Init() {}

// Restore restores the console settings.
func Restore() {}
