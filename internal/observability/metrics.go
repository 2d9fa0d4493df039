package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	ticksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stagehand",
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Total scheduler ticks.",
		},
	)
	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "stagehand",
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Scheduler tick duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	stagesAttached = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stagehand",
			Subsystem: "scheduler",
			Name:      "stages_attached",
			Help:      "Stages currently attached to the traversal chain.",
		},
	)
	stagesPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stagehand",
			Subsystem: "scheduler",
			Name:      "stages_pending",
			Help:      "Stages awaiting deferred attach completion.",
		},
	)
	stagesDetaching = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stagehand",
			Subsystem: "scheduler",
			Name:      "stages_detaching",
			Help:      "Stages awaiting detach completion.",
		},
	)
	stageSwaps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stagehand",
			Subsystem: "scheduler",
			Name:      "stage_swaps_total",
			Help:      "Completed stage attach/detach transitions.",
		},
		[]string{"direction", "strategy"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stagehand",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stagehand",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ticksTotal, tickDuration,
			stagesAttached, stagesPending, stagesDetaching,
			stageSwaps,
			httpRequests, httpDuration,
		)
	})
}

// RecordTick captures one completed scheduler tick and the holding-area sizes
// it settled on.
func RecordTick(duration time.Duration, attached, pending, detaching int) {
	RegisterMetrics()
	ticksTotal.Inc()
	tickDuration.Observe(duration.Seconds())
	stagesAttached.Set(float64(attached))
	stagesPending.Set(float64(pending))
	stagesDetaching.Set(float64(detaching))
}

// RecordSwap captures one completed attach or detach transition.
// Direction is "attach" or "detach".
func RecordSwap(direction, strategy string) {
	RegisterMetrics()
	stageSwaps.WithLabelValues(direction, strategy).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
