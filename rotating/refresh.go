// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package rotating

import (
	"context"
	"time"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

// refreshOp is a single in-flight refresh. Concurrent callers that cannot use
// the held credentials all wait on the same op and observe the same outcome.
type refreshOp struct {
	done  chan struct{}
	creds credentials.ExpiringCredentials
	err   error
}

func newRefreshOp() *refreshOp {
	return &refreshOp{done: make(chan struct{})}
}

// complete resolves the op with fresh credentials. Must be called at most
// once, and never after fail.
func (op *refreshOp) complete(creds credentials.ExpiringCredentials) {
	op.creds = creds
	close(op.done)
}

// fail resolves the op with an error.
func (op *refreshOp) fail(err error) {
	op.err = err
	close(op.done)
}

// wait blocks until the op resolves or the caller's context is done.
func (op *refreshOp) wait(ctx context.Context) (credentials.ExpiringCredentials, error) {
	select {
	case <-op.done:
		return op.creds, op.err
	case <-ctx.Done():
		return credentials.ExpiringCredentials{}, ctx.Err()
	}
}

// runOnDemandRefresh executes a refresh initiated from GetCredentials. On
// success the new credentials are installed and the scheduler is re-armed; on
// failure the store is marked missing so the next GetCredentials attempts a
// fresh refresh instead of reusing a stale pending op.
func (p *Provider) runOnDemandRefresh(op *refreshOp) {
	defer p.wg.Done()

	creds, err := p.retriever.GetCredentials(p.baseCtx)

	p.mu.Lock()
	p.pendingOp = nil
	if err != nil {
		if p.baseCtx.Err() != nil {
			err = credentials.ErrRefreshCancelled
		}
		p.state = stateMissing
		p.metrics.observeRefresh(triggerOnDemand, false)
		p.logger.Error(err, "on-demand credentials refresh failed",
			"roleSessionName", p.roleSessionName)
		p.mu.Unlock()
		op.fail(err)
		return
	}
	p.installLocked(creds)
	p.metrics.observeRefresh(triggerOnDemand, true)
	p.mu.Unlock()
	op.complete(creds)
}

// runBackgroundRefresh executes a refresh initiated by the scheduler. The
// held credentials stay current for the whole duration: callers keep reading
// them, and a failure leaves them intact and re-arms a retry. The error
// reaches only GetCredentials callers that joined this refresh.
func (p *Provider) runBackgroundRefresh(ctx context.Context, op *refreshOp) {
	defer p.wg.Done()

	creds, err := p.retriever.GetCredentials(ctx)

	p.mu.Lock()
	p.backgroundOp = nil
	if err != nil {
		if ctx.Err() != nil {
			err = credentials.ErrRefreshCancelled
		}
		p.metrics.observeRefresh(triggerBackground, false)
		p.scheduleRetryLocked(err)
		p.mu.Unlock()
		op.fail(err)
		return
	}
	p.installLocked(creds)
	p.metrics.observeRefresh(triggerBackground, true)
	p.mu.Unlock()
	op.complete(creds)
}

// scheduleRetryLocked re-arms the scheduler after a failed background
// refresh: a short retry while the held credentials are still valid, a long
// one once they have already expired.
func (p *Provider) scheduleRetryLocked(err error) {
	if p.status != StatusRunning || p.state != statePresent {
		return
	}
	stillValid := p.current.Expiration == nil || p.current.Expiration.After(time.Now())
	if stillValid {
		p.logger.Info("background credentials refresh failed, credentials still valid",
			"error", err,
			"retryIn", p.validRetryInterval,
			"roleSessionName", p.roleSessionName)
		p.armRetryLocked(p.validRetryInterval)
		return
	}
	p.logger.Error(err, "background credentials refresh failed, credentials already expired",
		"retryIn", p.invalidRetryInterval,
		"roleSessionName", p.roleSessionName)
	p.armRetryLocked(p.invalidRetryInterval)
}
