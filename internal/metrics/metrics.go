package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quality_panel_source_loads_total",
		Help: "Per-month source loads by dataset and outcome.",
	}, []string{"dataset", "status"})

	DatasetRows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quality_panel_dataset_rows",
		Help: "Rows in the currently loaded datasets.",
	}, []string{"dataset"})

	DashboardSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quality_panel_dashboard_seconds",
		Help:    "Time spent building one dashboard.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	DashboardOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quality_panel_dashboard_outcomes_total",
		Help: "Dashboard renders by outcome.",
	}, []string{"outcome"})
)
