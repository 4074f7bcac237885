// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package rotating implements a long-lived provider of short-lived AWS
// credentials. The provider fetches an initial credential set at
// construction, refreshes it in the background before it expires, coalesces
// concurrent on-demand refreshes into a single retriever call, and shuts down
// idempotently.
package rotating

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amzn/smoke-aws-credentials/credentials"
)

const (
	// DefaultExpirationBuffer is the staleness threshold at which
	// GetCredentials stops returning the held credentials and forces a
	// refresh.
	DefaultExpirationBuffer = 120 * time.Second
	// DefaultBackgroundBuffer is the lead time before expiration at which
	// the background refresh fires.
	DefaultBackgroundBuffer = 300 * time.Second
	// DefaultValidRetryInterval is the delay before retrying a failed
	// background refresh while the held credentials are still valid.
	DefaultValidRetryInterval = 60 * time.Second
	// DefaultInvalidRetryInterval is the delay before retrying a failed
	// background refresh once the held credentials have already expired.
	DefaultInvalidRetryInterval = 3600 * time.Second

	// subscriberBuffer is the per-subscriber channel depth. Subscribers
	// that fall further behind miss updates rather than blocking installs.
	subscriberBuffer = 16
)

// Options configures a Provider.
type Options struct {
	// ExpirationBuffer overrides DefaultExpirationBuffer.
	ExpirationBuffer time.Duration
	// BackgroundBuffer overrides DefaultBackgroundBuffer.
	BackgroundBuffer time.Duration
	// ValidRetryInterval overrides DefaultValidRetryInterval.
	ValidRetryInterval time.Duration
	// InvalidRetryInterval overrides DefaultInvalidRetryInterval.
	InvalidRetryInterval time.Duration
	// RoleSessionName is attached to log lines for correlation. Optional.
	RoleSessionName string
	// Logger receives refresh boundary and failure logs. Defaults to a
	// discarding logger.
	Logger *logr.Logger
	// Registerer, when set, receives the provider's refresh counters.
	Registerer prometheus.Registerer
}

// Provider supplies short-lived AWS credentials and keeps them fresh by
// refreshing from its Retriever before they expire. All methods are safe for
// concurrent use.
type Provider struct {
	retriever       credentials.Retriever
	logger          logr.Logger
	roleSessionName string
	metrics         *providerMetrics

	expirationBuffer     time.Duration
	backgroundBuffer     time.Duration
	validRetryInterval   time.Duration
	invalidRetryInterval time.Duration

	// baseCtx bounds every refresh the provider initiates; cancelled on
	// shutdown.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	status  Status
	state   stateKind
	current credentials.ExpiringCredentials
	// pendingOp is the in-flight on-demand refresh; non-nil iff state is
	// statePending.
	pendingOp *refreshOp
	// backgroundOp is the in-flight background refresh. It never marks the
	// store pending.
	backgroundOp *refreshOp
	sched        *scheduledRefresh
	subscribers  []chan credentials.ExpiringCredentials

	shutdownOnce sync.Once
	wg           sync.WaitGroup
	stopped      chan struct{}
}

// New constructs a Provider, synchronously fetching the initial credentials
// from the retriever so that construction either succeeds with usable
// credentials or fails with the retriever's error. The returned provider is
// not rotating yet; call Start.
func New(ctx context.Context, retriever credentials.Retriever, opts Options) (*Provider, error) {
	creds, err := retriever.GetCredentials(ctx)
	if err != nil {
		return nil, err
	}

	logger := logr.Discard()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	p := &Provider{
		retriever:            retriever,
		logger:               logger,
		roleSessionName:      opts.RoleSessionName,
		metrics:              newProviderMetrics(opts.Registerer),
		expirationBuffer:     durationOrDefault(opts.ExpirationBuffer, DefaultExpirationBuffer),
		backgroundBuffer:     durationOrDefault(opts.BackgroundBuffer, DefaultBackgroundBuffer),
		validRetryInterval:   durationOrDefault(opts.ValidRetryInterval, DefaultValidRetryInterval),
		invalidRetryInterval: durationOrDefault(opts.InvalidRetryInterval, DefaultInvalidRetryInterval),
		baseCtx:              baseCtx,
		cancel:               cancel,
		status:               StatusInitialized,
		state:                statePresent,
		current:              creds,
		stopped:              make(chan struct{}),
	}
	p.logger.V(1).Info("obtained initial credentials",
		"expiration", creds.Expiration,
		"roleSessionName", p.roleSessionName)
	return p, nil
}

func durationOrDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Start transitions the provider to running and arms the first background
// refresh iff the initial credentials carry an expiration. Calling Start in
// any other state is a no-op.
func (p *Provider) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusInitialized {
		return
	}
	p.status = StatusRunning
	if p.state == statePresent && p.current.Expiration != nil {
		p.armSchedulerLocked(*p.current.Expiration)
	}
}

// Status returns the provider's lifecycle status.
func (p *Provider) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// GetCredentials returns credentials that are not within the expiration
// buffer. Fresh held credentials return immediately without blocking on I/O;
// stale ones force a refresh, with all concurrent stale callers joined to a
// single retriever call. An error from a refresh this call initiated or
// joined is returned as-is.
func (p *Provider) GetCredentials(ctx context.Context) (credentials.ExpiringCredentials, error) {
	p.mu.Lock()
	if p.status == StatusShuttingDown || p.status == StatusStopped {
		p.mu.Unlock()
		return credentials.ExpiringCredentials{}, credentials.ErrShutDown
	}

	// Fast path: the held credentials are outside the expiration buffer.
	if p.state == statePresent && !p.current.IsExpired(p.expirationBuffer) {
		creds := p.current
		p.mu.Unlock()
		return creds, nil
	}

	// The held credentials are stale. Join a background refresh already in
	// flight rather than starting a second retriever call.
	if op := p.backgroundOp; op != nil {
		p.mu.Unlock()
		return op.wait(ctx)
	}

	// Join an on-demand refresh already in flight.
	if op := p.pendingOp; op != nil {
		p.mu.Unlock()
		return op.wait(ctx)
	}

	// Start a new on-demand refresh. The armed background refresh, if any,
	// is superseded.
	p.cancelSchedulerLocked()
	op := newRefreshOp()
	p.pendingOp = op
	p.state = statePending
	p.wg.Add(1)
	go p.runOnDemandRefresh(op)
	p.mu.Unlock()
	return op.wait(ctx)
}

// CurrentCredentials returns the most recently installed credentials without
// blocking on I/O, even while a refresh is in flight. It fails only after
// shutdown has begun.
func (p *Provider) CurrentCredentials() (credentials.ExpiringCredentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusShuttingDown || p.status == StatusStopped {
		return credentials.ExpiringCredentials{}, credentials.ErrShutDown
	}
	return p.current, nil
}

// Subscribe returns a channel receiving every credential set installed after
// the call. Sends never block: a subscriber that falls behind misses updates.
// The channel is closed when the provider stops.
func (p *Provider) Subscribe() <-chan credentials.ExpiringCredentials {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan credentials.ExpiringCredentials, subscriberBuffer)
	if p.status == StatusStopped {
		close(ch)
		return ch
	}
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// installLocked makes creds the current value, publishes them to subscribers,
// and re-arms the background refresh when they carry an expiration.
func (p *Provider) installLocked(creds credentials.ExpiringCredentials) {
	p.current = creds
	p.state = statePresent
	p.logger.V(1).Info("installed rotated credentials",
		"expiration", creds.Expiration,
		"roleSessionName", p.roleSessionName)
	for _, ch := range p.subscribers {
		select {
		case ch <- creds:
		default:
			p.logger.V(1).Info("subscriber channel is full, dropping credentials update")
		}
	}
	if creds.Expiration != nil {
		p.armSchedulerLocked(*creds.Expiration)
	} else {
		p.cancelSchedulerLocked()
	}
}

// Shutdown stops the provider: it cancels the armed scheduler and any
// in-flight refresh, drains refresh goroutines (bounded by ctx), shuts the
// retriever down exactly once, and transitions to StatusStopped, releasing
// every Wait caller. Shutdown is idempotent; concurrent and repeated calls
// all return after the provider has stopped. Only a retriever shutdown error
// is returned, and it does not prevent the transition to StatusStopped.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.status = StatusShuttingDown
		p.cancelSchedulerLocked()
		p.mu.Unlock()

		// Cancel in-flight refreshes; their waiters observe
		// ErrRefreshCancelled.
		p.cancel()

		drained := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-ctx.Done():
			p.logger.Info("timed out draining in-flight refreshes during shutdown")
		}

		err = p.retriever.Shutdown(ctx)

		p.mu.Lock()
		p.status = StatusStopped
		for _, ch := range p.subscribers {
			close(ch)
		}
		p.subscribers = nil
		p.mu.Unlock()
		close(p.stopped)
	})
	<-p.stopped
	return err
}

// Wait blocks until the provider has stopped. It never returns if Shutdown is
// never called.
func (p *Provider) Wait() {
	<-p.stopped
}
