package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	inboundInstructions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "embedctl",
			Subsystem: "dispatch",
			Name:      "instructions_total",
			Help:      "Inbound protocol instructions by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
	outboundMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "embedctl",
			Subsystem: "messenger",
			Name:      "outbound_total",
			Help:      "Protocol messages posted to the parent, by event type.",
		},
		[]string{"event"},
	)
	dimensionChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "embedctl",
			Subsystem: "watcher",
			Name:      "dimension_changes_total",
			Help:      "Dimension-changed events emitted by the watcher.",
		},
	)
	watcherAborts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "embedctl",
			Subsystem: "watcher",
			Name:      "runaway_aborts_total",
			Help:      "Watcher loops stopped by the runaway change cap.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "embedctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "embedctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			inboundInstructions,
			outboundMessages,
			dimensionChanges,
			watcherAborts,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordInstruction(method, outcome string) {
	RegisterMetrics()
	inboundInstructions.WithLabelValues(method, outcome).Inc()
}

func RecordOutbound(event string) {
	RegisterMetrics()
	outboundMessages.WithLabelValues(event).Inc()
}

func RecordDimensionChange() {
	RegisterMetrics()
	dimensionChanges.Inc()
}

func RecordWatcherAbort() {
	RegisterMetrics()
	watcherAborts.Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
