package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConnGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: ModuleDBridge,
			Subsystem: LabelClient,
			Name:      "connections",
			Help:      "Number of open connections.",
		})

	ExecuteTotalCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ModuleDBridge,
			Subsystem: LabelClient,
			Name:      "execute_total",
			Help:      "Counter of executed statements.",
		}, []string{LblType, LblResult})

	ExecuteDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ModuleDBridge,
			Subsystem: LabelClient,
			Name:      "execute_duration_seconds",
			Help:      "Bucketed histogram of statement execution time (s).",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 29), // 0.5ms ~ 1.5days
		}, []string{LblType})
)
