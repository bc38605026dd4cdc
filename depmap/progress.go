// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depmap

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/joaquintides/cdmap/scandeps"
	"github.com/joaquintides/cdmap/ui"
)

type progress struct {
	ui      ui.UI
	started time.Time
	total   atomic.Int64
	done    atomic.Int64
	probes  atomic.Int64
}

func newProgress(u ui.UI) *progress {
	return &progress{
		ui:      u,
		started: time.Now(),
	}
}

func (p *progress) add(n int) {
	p.total.Add(int64(n))
}

// step reports a finished unit.
func (p *progress) step(res scandeps.Result, d time.Duration) {
	if p.ui == nil {
		return
	}
	done := p.done.Add(1)
	probes := p.probes.Add(int64(res.Probes))
	msg := fmt.Sprintf("[%d/%d] %s %s probes:%d", done, p.total.Load(), ui.FormatDuration(time.Since(p.started)), res.Unit, probes)
	if res.Incomplete() {
		msg = ui.Render(ui.Red, msg)
	}
	if d >= ui.DurationThreshold {
		msg += fmt.Sprintf(" (%s)", ui.FormatDuration(d))
	}
	p.ui.PrintLines(msg)
}

func (p *progress) finish(units, incomplete int) {
	if p.ui == nil {
		return
	}
	msg := fmt.Sprintf("%d units, %d probes in %s", units, p.probes.Load(), ui.FormatDuration(time.Since(p.started)))
	if incomplete > 0 {
		p.ui.Warningf("%s, %d incomplete", msg, incomplete)
		return
	}
	p.ui.Infof("%s", msg)
}
