package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdmissionsTotal counts admission decisions by outcome
	// (allowed, access_denied, quota_exceeded, rate_limited).
	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_admissions_total",
			Help: "Total admission decisions",
		},
		[]string{"outcome"},
	)

	// UpstreamFailuresTotal counts backend call failures by mapped code.
	UpstreamFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_upstream_failures_total",
			Help: "Total reasoning backend failures",
		},
		[]string{"code"},
	)

	// UsageWriteFailuresTotal counts usage records that could not be
	// persisted. The recorder never fails the caller, so this counter is
	// the operational signal for systemic write problems.
	UsageWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_usage_write_failures_total",
			Help: "Total usage record writes that failed",
		},
	)

	// ChatDuration tracks end-to-end chat call latency.
	ChatDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_chat_duration_seconds",
			Help:    "Chat call latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)
