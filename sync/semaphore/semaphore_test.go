// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package semaphore_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/joaquintides/cdmap/sync/semaphore"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		n    int
		want int
	}{
		{n: 4, want: 4},
		{n: 1, want: 1},
		{n: 0, want: 1},
		{n: -2, want: 1},
	} {
		s := semaphore.New("probe", tc.n)
		if got := s.Stats().Capacity; got != tc.want {
			t.Errorf("New(%d).Stats().Capacity=%d; want %d", tc.n, got, tc.want)
		}
	}
}

func TestAcquire(t *testing.T) {
	ctx := context.Background()
	s := semaphore.New(t.Name(), 2)

	var releases []func()
	for i := range 2 {
		release, _, err := s.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
		releases = append(releases, release)
	}
	ignoreWait := cmpopts.IgnoreFields(semaphore.Stats{}, "WaitTime")
	want := semaphore.Stats{Name: t.Name(), Capacity: 2, InUse: 2, Requests: 2}
	if diff := cmp.Diff(want, s.Stats(), ignoreWait); diff != "" {
		t.Errorf("Stats diff -want +got:\n%s", diff)
	}

	func() {
		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, _, err := s.Acquire(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Acquire on full semaphore=%v; want %v", err, context.DeadlineExceeded)
		}
	}()
	if diff := cmp.Diff(want, s.Stats(), ignoreWait); diff != "" {
		t.Errorf("Stats after timeout diff -want +got:\n%s", diff)
	}

	releases[0]()
	releases[0]()
	want.InUse = 1
	if diff := cmp.Diff(want, s.Stats(), ignoreWait); diff != "" {
		t.Errorf("Stats after double release diff -want +got:\n%s", diff)
	}
	releases[1]()
	want.InUse = 0
	if diff := cmp.Diff(want, s.Stats(), ignoreWait); diff != "" {
		t.Errorf("Stats after release diff -want +got:\n%s", diff)
	}
}

func TestDo(t *testing.T) {
	ctx := context.Background()
	const n = 3
	s := semaphore.New(t.Name(), n)

	var cur, peak atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Do(ctx, func(ctx context.Context) error {
				v := cur.Add(1)
				for {
					p := peak.Load()
					if v <= p || peak.CompareAndSwap(p, v) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				cur.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("Do=%v; want nil", err)
			}
		}()
	}
	wg.Wait()
	if p := peak.Load(); p > n {
		t.Errorf("peak concurrency=%d; want <=%d", p, n)
	}
	st := s.Stats()
	if st.Requests != 20 || st.InUse != 0 || st.Waiting != 0 {
		t.Errorf("Stats=%v; want 20 requests, none in use or waiting", st)
	}
}

func TestDo_error(t *testing.T) {
	ctx := context.Background()
	s := semaphore.New(t.Name(), 1)
	errFail := errors.New("compiler failed")
	_, err := s.Do(ctx, func(context.Context) error {
		return errFail
	})
	if !errors.Is(err, errFail) {
		t.Errorf("Do=%v; want %v", err, errFail)
	}
	if st := s.Stats(); st.InUse != 0 {
		t.Errorf("InUse=%d after failed f; want 0", st.InUse)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	called := false
	_, err = s.Do(canceled, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Errorf("Do(canceled)=%v called=%t; want %v, not called", err, called, context.Canceled)
	}
}
