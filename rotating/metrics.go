// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package rotating

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	triggerOnDemand   = "on_demand"
	triggerBackground = "background"
)

// providerMetrics counts refreshes by trigger and outcome. When no registerer
// is configured the counters are kept unregistered.
type providerMetrics struct {
	refreshes *prometheus.CounterVec
}

func newProviderMetrics(r prometheus.Registerer) *providerMetrics {
	return &providerMetrics{
		refreshes: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Namespace: "aws_credentials",
			Name:      "refreshes_total",
			Help:      "Credential refreshes performed by the rotating provider.",
		}, []string{"trigger", "outcome"}),
	}
}

func (m *providerMetrics) observeRefresh(trigger string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.refreshes.WithLabelValues(trigger, outcome).Inc()
}
