package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchAttempts counts upstream attempts by vendor and outcome
	// (success, or one of the internal failure codes).
	DispatchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llm_gateway",
		Subsystem: "dispatch",
		Name:      "attempts_total",
		Help:      "Upstream dispatch attempts by vendor and outcome.",
	}, []string{"vendor", "outcome"})

	// DispatchDuration observes end-to-end attempt latency per vendor.
	DispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "llm_gateway",
		Subsystem: "dispatch",
		Name:      "duration_seconds",
		Help:      "Upstream attempt duration by vendor.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"vendor"})

	// ProbeResults counts connectivity probes by vendor and result
	// (reachable, unreachable).
	ProbeResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "llm_gateway",
		Subsystem: "probe",
		Name:      "results_total",
		Help:      "Connectivity probe results by vendor.",
	}, []string{"vendor", "result"})

	// QuotaUsedRatio exports the last computed used_ratio per model id.
	QuotaUsedRatio = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "llm_gateway",
		Subsystem: "quota",
		Name:      "used_ratio",
		Help:      "Quota used ratio (0-100) per model.",
	}, []string{"model_id"})
)

// RecordDispatch bumps the attempt counter and the latency histogram.
func RecordDispatch(vendorTag string, outcome string, seconds float64) {
	DispatchAttempts.WithLabelValues(vendorTag, outcome).Inc()
	DispatchDuration.WithLabelValues(vendorTag).Observe(seconds)
}

// RecordProbe bumps the probe counter.
func RecordProbe(vendorTag string, reachable bool) {
	result := "unreachable"
	if reachable {
		result = "reachable"
	}
	ProbeResults.WithLabelValues(vendorTag, result).Inc()
}
