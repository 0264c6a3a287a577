package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "queuetrace",
		Name:      "imports_total",
		Help:      "Import attempts by result.",
	}, []string{"result"})

	testsImportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "queuetrace",
		Name:      "tests_imported_total",
		Help:      "Test records accepted across all imports.",
	})

	historyOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "queuetrace",
		Name:      "history_operations_total",
		Help:      "Undo/redo operations by result.",
	}, []string{"op", "result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "queuetrace",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and path.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)
