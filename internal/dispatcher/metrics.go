// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/juju/juju-dashboard/core/severity"
)

const metricsNamespace = "juju_dashboard"

// Collector is a prometheus.Collector that collects metrics about the
// dispatcher and the store it owns.
type Collector struct {
	mutations     *prometheus.CounterVec
	deltasApplied prometheus.Counter
	models        *prometheus.GaugeVec
}

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "store_mutations_total",
				Help:      "The number of mutations applied to the store.",
			}, []string{"operation"},
		),
		deltasApplied: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "deltas_applied_total",
				Help:      "The number of watcher deltas merged into the store.",
			},
		),
		models: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "models",
				Help:      "The number of models of each severity.",
			}, []string{"severity"},
		),
	}
}

func (c *Collector) setModels(counts map[severity.Severity]int) {
	for _, s := range severity.All() {
		c.models.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.mutations.Describe(ch)
	c.deltasApplied.Describe(ch)
	c.models.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mutations.Collect(ch)
	c.deltasApplied.Collect(ch)
	c.models.Collect(ch)
}
