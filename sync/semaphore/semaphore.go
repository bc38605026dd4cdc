// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package semaphore provides named counting semaphores that bound
// concurrent subprocesses and account how long callers waited.
package semaphore

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// Semaphore is a named counting semaphore.
type Semaphore struct {
	name string
	n    int
	w    *semaphore.Weighted

	inUse    atomic.Int64
	waiting  atomic.Int64
	requests atomic.Int64
	waitTime atomic.Int64 // nanoseconds
}

// New creates a semaphore with name and capacity n.
// A capacity less than 1 is treated as 1.
func New(name string, n int) *Semaphore {
	if n < 1 {
		n = 1
	}
	return &Semaphore{
		name: name,
		n:    n,
		w:    semaphore.NewWeighted(int64(n)),
	}
}

// Acquire waits for a slot.
// It returns a func to release the slot, and how long it waited.
func (s *Semaphore) Acquire(ctx context.Context) (func(), time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return func() {}, 0, err
	}
	started := time.Now()
	s.waiting.Add(1)
	err := s.w.Acquire(ctx, 1)
	s.waiting.Add(-1)
	wait := time.Since(started)
	if err != nil {
		return func() {}, wait, err
	}
	s.requests.Add(1)
	s.waitTime.Add(int64(wait))
	s.inUse.Add(1)
	var released atomic.Bool
	return func() {
		if released.Swap(true) {
			return
		}
		s.inUse.Add(-1)
		s.w.Release(1)
	}, wait, nil
}

// Do runs f while holding a slot, and reports how long it waited for it.
func (s *Semaphore) Do(ctx context.Context, f func(ctx context.Context) error) (time.Duration, error) {
	release, wait, err := s.Acquire(ctx)
	if err != nil {
		return wait, err
	}
	defer release()
	return wait, f(ctx)
}

// Stats is a snapshot of semaphore usage.
type Stats struct {
	Name     string
	Capacity int
	InUse    int
	Waiting  int
	Requests int
	WaitTime time.Duration
}

func (st Stats) String() string {
	return fmt.Sprintf("%s: cap=%d in_use=%d waiting=%d requests=%d wait=%s", st.Name, st.Capacity, st.InUse, st.Waiting, st.Requests, st.WaitTime)
}

// Stats returns the current usage of the semaphore.
func (s *Semaphore) Stats() Stats {
	return Stats{
		Name:     s.name,
		Capacity: s.n,
		InUse:    int(s.inUse.Load()),
		Waiting:  int(s.waiting.Load()),
		Requests: int(s.requests.Load()),
		WaitTime: time.Duration(s.waitTime.Load()),
	}
}
