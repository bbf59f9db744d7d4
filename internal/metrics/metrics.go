// Package metrics exposes monitor state as Prometheus collectors with an
// optional HTTP listener.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the monitor's Prometheus metrics. Each Collector owns its
// registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	totalUnits    prometheus.Gauge
	matchingUnits prometheus.Gauge
	probeFailures prometheus.Counter

	scalingStarted   prometheus.Counter
	scalingCompleted prometheus.Counter
	scalingFailed    prometheus.Counter
	scalingInFlight  prometheus.Gauge
	scalingDuration  prometheus.Histogram

	chargesTotal  prometheus.Counter
	refundsTotal  prometheus.Counter
	chargedAmount prometheus.Counter
}

// NewCollector creates and registers the monitor metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		totalUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scalewatch_units_total",
			Help: "Total application units reported by the last probe",
		}),
		matchingUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scalewatch_units_matching",
			Help: "Matching application units reported by the last probe",
		}),
		probeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scalewatch_probe_failures_total",
			Help: "Total number of failed capacity probes",
		}),
		scalingStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scalewatch_scaling_started_total",
			Help: "Total number of scaling operations started",
		}),
		scalingCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scalewatch_scaling_completed_total",
			Help: "Total number of scaling operations completed",
		}),
		scalingFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scalewatch_scaling_failed_total",
			Help: "Total number of scaling operations failed",
		}),
		scalingInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scalewatch_scaling_in_flight",
			Help: "Whether a scaling operation is currently in flight (0 or 1)",
		}),
		scalingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scalewatch_scaling_duration_seconds",
			Help:    "End to end duration of scaling operations in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		chargesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scalewatch_charges_total",
			Help: "Total number of successful payment charges",
		}),
		refundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scalewatch_refunds_total",
			Help: "Total number of compensating refunds issued",
		}),
		chargedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scalewatch_charged_amount_total",
			Help: "Cumulative amount charged, in the configured currency",
		}),
	}

	c.registry.MustRegister(
		c.totalUnits,
		c.matchingUnits,
		c.probeFailures,
		c.scalingStarted,
		c.scalingCompleted,
		c.scalingFailed,
		c.scalingInFlight,
		c.scalingDuration,
		c.chargesTotal,
		c.refundsTotal,
		c.chargedAmount,
	)
	return c
}

// RecordProbe updates the unit gauges after a successful probe.
func (c *Collector) RecordProbe(total, matching int) {
	c.totalUnits.Set(float64(total))
	c.matchingUnits.Set(float64(matching))
}

// RecordProbeFailure counts a failed probe.
func (c *Collector) RecordProbeFailure() {
	c.probeFailures.Inc()
}

// RecordScalingStarted marks a scaling operation in flight.
func (c *Collector) RecordScalingStarted() {
	c.scalingStarted.Inc()
	c.scalingInFlight.Set(1)
}

// RecordScalingCompleted records a successful scaling operation.
func (c *Collector) RecordScalingCompleted(duration time.Duration) {
	c.scalingCompleted.Inc()
	c.scalingDuration.Observe(duration.Seconds())
	c.scalingInFlight.Set(0)
}

// RecordScalingFailed records a failed scaling operation.
func (c *Collector) RecordScalingFailed() {
	c.scalingFailed.Inc()
	c.scalingInFlight.Set(0)
}

// RecordCharge records a successful payment charge.
func (c *Collector) RecordCharge(amount float64) {
	c.chargesTotal.Inc()
	c.chargedAmount.Add(amount)
}

// RecordRefund records a compensating refund.
func (c *Collector) RecordRefund() {
	c.refundsTotal.Inc()
}

// Handler returns an HTTP handler serving this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP listener exposing /metrics on addr. It blocks until
// the listener fails.
func (c *Collector) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return http.ListenAndServe(addr, mux)
}
