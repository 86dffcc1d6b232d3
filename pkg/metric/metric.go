// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all metrics for the ad bridge
type Metrics struct {
	registry *prometheus.Registry

	// Registry metrics
	AdsTracked  prometheus.Gauge
	AdsDisposed prometheus.Counter

	// Dispatch metrics
	EventsDispatched *prometheus.CounterVec
	EventsDropped    prometheus.Counter
	DispatchLatency  prometheus.Histogram

	// Inbound request metrics
	RequestsProcessed *prometheus.CounterVec
}

// NewMetrics creates a new metrics instance backed by its own registry
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		AdsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adbridge",
			Name:      "registry_ads_tracked",
			Help:      "Number of currently tracked ads",
		}),
		AdsDisposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adbridge",
			Name:      "registry_ads_disposed_total",
			Help:      "Total number of ads untracked and disposed",
		}),
		EventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adbridge",
			Name:      "dispatch_events_total",
			Help:      "Total number of ad events sent on the event channel",
		}, []string{"event"}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adbridge",
			Name:      "dispatch_events_dropped_total",
			Help:      "Total number of events dropped because their ad was no longer tracked",
		}),
		DispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "adbridge",
			Name:      "dispatch_latency_seconds",
			Help:      "Time to encode and send one ad event",
			Buckets:   prometheus.DefBuckets,
		}),
		RequestsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adbridge",
			Name:      "requests_processed_total",
			Help:      "Total number of inbound bridge requests processed",
		}, []string{"method", "status"}),
	}

	collectors := []prometheus.Collector{
		m.AdsTracked,
		m.AdsDisposed,
		m.EventsDispatched,
		m.EventsDropped,
		m.DispatchLatency,
		m.RequestsProcessed,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Registry returns the prometheus registry for exposition
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// NoOp returns a metrics instance that is registered nowhere
func NoOp() *Metrics {
	m, _ := NewMetrics()
	return m
}
