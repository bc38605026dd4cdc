// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps scans one module under one dialect by probing the
// compiler, and classifies the files it pulls in by owning module.
//
// Public headers of the module are probed in batches: a synthetic
// translation unit includes up to BatchSize headers by absolute path,
// which amortizes compiler start-up over many headers. Implementation
// files are probed one at a time so that every file they pull in is
// attributed to the module's sources.
//
// Headers in implementation-detail directories (detail, impl, aux_,
// preprocessed) are not probed directly; they still count when a public
// header includes them.
//
// The resulting sets depend only on the files probed, not on the batch
// size nor the walk order.
package scandeps
