package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	centerOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coordctl",
			Subsystem: "center",
			Name:      "ops_total",
			Help:      "Coordination center operations.",
		},
		[]string{"center", "op", "outcome"},
	)
	centerOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coordctl",
			Subsystem: "center",
			Name:      "op_duration_seconds",
			Help:      "Coordination center operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"center", "op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(centerOps, centerOpDuration)
	})
}

func RecordCenterOp(center, op string, err error, duration time.Duration) {
	RegisterMetrics()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	centerOps.WithLabelValues(center, op, outcome).Inc()
	centerOpDuration.WithLabelValues(center, op).Observe(duration.Seconds())
}
