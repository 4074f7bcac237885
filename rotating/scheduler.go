// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package rotating

import (
	"context"
	"time"
)

// scheduledRefresh is an armed background refresh. At most one exists per
// provider; installing new credentials cancels the previous one before
// arming the next.
type scheduledRefresh struct {
	timer  *time.Timer
	cancel context.CancelFunc
}

// armSchedulerLocked arms a background refresh for expiration minus the
// background buffer. Deadlines already in the past fire immediately.
func (p *Provider) armSchedulerLocked(expiration time.Time) {
	p.armRetryLocked(time.Until(expiration.Add(-p.backgroundBuffer)))
}

// armRetryLocked arms a background refresh after the given delay, replacing
// any previously armed one. No-op unless the provider is running.
func (p *Provider) armRetryLocked(delay time.Duration) {
	p.cancelSchedulerLocked()
	if p.status != StatusRunning {
		return
	}
	if delay < 0 {
		delay = 0
	}
	ctx, cancel := context.WithCancel(p.baseCtx)
	timer := time.AfterFunc(delay, func() {
		p.backgroundRefresh(ctx)
	})
	p.sched = &scheduledRefresh{timer: timer, cancel: cancel}
	p.logger.V(1).Info("scheduled background credentials refresh",
		"delay", delay,
		"roleSessionName", p.roleSessionName)
}

// cancelSchedulerLocked drops the armed refresh, if any. A fire racing with
// cancellation observes its cancelled context and never starts a refresh.
func (p *Provider) cancelSchedulerLocked() {
	if p.sched == nil {
		return
	}
	p.sched.timer.Stop()
	p.sched.cancel()
	p.sched = nil
}

// backgroundRefresh is the scheduler's fire entry point. It spawns a refresh
// without marking the store pending, so callers keep receiving the held
// credentials while it runs. An on-demand refresh that has taken over, a
// cancelled fire, or a provider that is no longer running all make this a
// no-op.
func (p *Provider) backgroundRefresh(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil || p.status != StatusRunning {
		return
	}
	if p.state != statePresent || p.pendingOp != nil || p.backgroundOp != nil {
		return
	}
	op := newRefreshOp()
	p.backgroundOp = op
	p.wg.Add(1)
	go p.runBackgroundRefresh(ctx, op)
}
