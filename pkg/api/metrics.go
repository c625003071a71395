// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	parses   *prometheus.CounterVec
	editOps  *prometheus.CounterVec
	cache    *prometheus.CounterVec
	requests *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		parses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "metricq_parse_total",
			Help: "Total targets parsed by result",
		}, []string{"result"}),
		editOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "metricq_edit_ops_total",
			Help: "Total editor operations by operation and result",
		}, []string{"op", "result"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "metricq_parse_cache_total",
			Help: "Parse cache lookups by result",
		}, []string{"result"}), // "hit" or "miss"
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "metricq_request_duration_seconds",
			Help:    "REST request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
		}, []string{"path", "code"}),
	}
}
