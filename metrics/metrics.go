// Package metrics exposes the coordinator's Prometheus instrumentation:
// task submission/retry/blacklist/abort counters and phase-duration
// histograms, scraped by cmd/jobcoordd's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the coordinator's Prometheus collectors. The zero value
// is not usable; construct with NewCollector.
type Collector struct {
	submitted   *prometheus.CounterVec
	retried     *prometheus.CounterVec
	blacklisted *prometheus.CounterVec
	aborted     *prometheus.CounterVec
	phaseSecs   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg. Pass
// prometheus.DefaultRegisterer for normal process-wide use, or a fresh
// prometheus.NewRegistry() in tests to avoid duplicate-registration panics
// across test runs.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disco_tasks_submitted_total",
			Help: "Number of tasks submitted to the worker pool, by phase.",
		}, []string{"phase"}),
		retried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disco_tasks_retried_total",
			Help: "Number of tasks resubmitted after a retriable data error, by phase.",
		}, []string{"phase"}),
		blacklisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disco_partitions_blacklisted_total",
			Help: "Number of node blacklist entries recorded, by phase.",
		}, []string{"phase"}),
		aborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disco_jobs_aborted_total",
			Help: "Number of phases aborted due to exceeding the failure-rate cap, by phase.",
		}, []string{"phase"}),
		phaseSecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "disco_phase_duration_seconds",
			Help:    "Wall-clock duration of a phase run, by phase.",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
	}
	reg.MustRegister(c.submitted, c.retried, c.blacklisted, c.aborted, c.phaseSecs)
	return c
}

func (c *Collector) ObserveSubmit(phaseTag string)    { c.submitted.WithLabelValues(phaseTag).Inc() }
func (c *Collector) ObserveRetry(phaseTag string)     { c.retried.WithLabelValues(phaseTag).Inc() }
func (c *Collector) ObserveBlacklist(phaseTag string) { c.blacklisted.WithLabelValues(phaseTag).Inc() }
func (c *Collector) ObserveAbort(phaseTag string)     { c.aborted.WithLabelValues(phaseTag).Inc() }

func (c *Collector) ObservePhaseDuration(phaseTag string, seconds float64) {
	c.phaseSecs.WithLabelValues(phaseTag).Observe(seconds)
}
