// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package rotating

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_CancelledFireNeverRefreshes(t *testing.T) {
	retriever := sequenceRetriever(ok(keyedCreds("k1", 10*time.Hour)))

	p, err := New(context.Background(), retriever, Options{})
	require.NoError(t, err)
	p.Start()

	p.mu.Lock()
	p.armRetryLocked(20 * time.Millisecond)
	p.cancelSchedulerLocked()
	require.Nil(t, p.sched)
	p.mu.Unlock()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), retriever.calls.Load(), "cancelled fire must not invoke the retriever")

	shutdownProvider(t, p)
}

func TestScheduler_PastDeadlineFiresImmediately(t *testing.T) {
	k1 := keyedCreds("k1", 50*time.Millisecond)
	k2 := keyedCreds("k2", 10*time.Hour)
	retriever := sequenceRetriever(ok(k1), ok(k2))

	// The deadline expiration-backgroundBuffer is already past at Start.
	p, err := New(context.Background(), retriever, Options{
		ExpirationBuffer: 10 * time.Millisecond,
		BackgroundBuffer: 10 * time.Second,
	})
	require.NoError(t, err)
	p.Start()

	require.Eventually(t, func() bool {
		current, err := p.CurrentCredentials()
		return err == nil && current.AccessKeyID == "k2"
	}, 2*time.Second, 10*time.Millisecond)

	shutdownProvider(t, p)
}

func TestScheduler_RearmedOnInstall(t *testing.T) {
	k1 := keyedCreds("k1", 200*time.Millisecond)
	k2 := keyedCreds("k2", 400*time.Millisecond)
	k3 := keyedCreds("k3", 10*time.Hour)
	retriever := sequenceRetriever(ok(k1), ok(k2), ok(k3))

	p, err := New(context.Background(), retriever, Options{
		ExpirationBuffer: 50 * time.Millisecond,
		BackgroundBuffer: 150 * time.Millisecond,
	})
	require.NoError(t, err)
	p.Start()

	// Each install arms the next refresh; the chain walks k1 -> k2 -> k3.
	require.Eventually(t, func() bool {
		current, err := p.CurrentCredentials()
		return err == nil && current.AccessKeyID == "k3"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(3), retriever.calls.Load())

	shutdownProvider(t, p)
}

func TestScheduler_OnDemandSupersedesArmedRefresh(t *testing.T) {
	k1 := keyedCreds("k1", 300*time.Millisecond)
	k2 := keyedCreds("k2", 10*time.Hour)
	retriever := sequenceRetriever(ok(k1), ok(k2))

	p, err := New(context.Background(), retriever, Options{
		// k1 is immediately inside the expiration buffer while the
		// background refresh is armed but far away.
		ExpirationBuffer: 10 * time.Second,
		BackgroundBuffer: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	p.Start()

	got, err := p.GetCredentials(context.Background())
	require.NoError(t, err)
	require.Equal(t, "k2", got.AccessKeyID)

	// The superseded scheduler task never fires a second refresh for k1.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(2), retriever.calls.Load())

	shutdownProvider(t, p)
}
