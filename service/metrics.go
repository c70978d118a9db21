// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package service

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
	outcomeError   = "error"
)

type metrics struct {
	runs    *prometheus.CounterVec
	latency prometheus.Histogram
}

func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs",
			Help:      "Number of script runs by outcome",
		}, []string{"method", "outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time spent evaluating a script",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.runs),
		registerer.Register(m.latency),
	)
	return m, errs.Err
}

func (m *metrics) observe(method, outcome string, seconds float64) {
	m.runs.WithLabelValues(method, outcome).Inc()
	m.latency.Observe(seconds)
}
