// Package telemetry holds the prometheus collectors for round trips and the
// fault counting service. All methods are safe on a nil *Collectors.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #region collectors
// Collectors groups the metrics recorded by this module.
type Collectors struct {
	// Results counts metric evaluations by metric id and host status code.
	Results *prometheus.CounterVec
	// Ratio observes the false-label ratio of successful evaluations.
	Ratio *prometheus.HistogramVec
	// CountDuration observes fault counting latency by service status.
	CountDuration *prometheus.HistogramVec
}

// NewCollectors registers the collectors with reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		Results: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "falselabel_metric_results_total",
				Help: "Metric evaluations at end of decompression, by metric and status code.",
			},
			[]string{"metric", "status"},
		),
		Ratio: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "falselabel_ratio",
				Help:    "False-label ratio of successful evaluations.",
				Buckets: []float64{0, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"metric"},
		),
		CountDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "falselabel_count_faults_duration_seconds",
				Help:    "Wall-clock duration of fault counting calls.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
			},
			[]string{"status"},
		),
	}
}

// #endregion collectors

// #region record
// RecordResult counts one evaluation and observes its value when present.
func (c *Collectors) RecordResult(metricID string, status int, value float64, present bool) {
	if c == nil {
		return
	}
	c.Results.WithLabelValues(metricID, strconv.Itoa(status)).Inc()
	if present {
		c.Ratio.WithLabelValues(metricID).Observe(value)
	}
}

// ObserveCount records the duration of one fault counting call.
func (c *Collectors) ObserveCount(d time.Duration, status int) {
	if c == nil {
		return
	}
	c.CountDuration.WithLabelValues(strconv.Itoa(status)).Observe(d.Seconds())
}

// #endregion record
