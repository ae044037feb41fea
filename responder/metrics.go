/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package responder

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the responder's prometheus surface. It is a thin registry
// wrapper in the shape of ptp/sptp/stats.PrometheusExporter: a dedicated
// prometheus.Registry rather than the global one, so multiple responders in
// one process (e.g. under test) never collide on metric names.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	nacksTotal        *prometheus.CounterVec
	discoveryMutes    prometheus.Counter
	queueDepth        prometheus.Gauge
	overflowPagesSent prometheus.Counter
}

// NewMetrics builds and registers the responder's counters and gauges.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdm_responder_requests_total",
			Help: "RDM requests handled, by command class.",
		}, []string{"command_class"}),
		nacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdm_responder_nacks_total",
			Help: "RDM requests answered with NackReason, by reason.",
		}, []string{"reason"}),
		discoveryMutes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdm_responder_discovery_mutes_total",
			Help: "DISC_MUTE requests accepted.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rdm_responder_queue_depth",
			Help: "Current depth of the queued-message FIFO.",
		}),
		overflowPagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdm_responder_overflow_pages_total",
			Help: "AckOverflow continuation pages transmitted.",
		}),
	}
	m.registry.MustRegister(m.requestsTotal, m.nacksTotal, m.discoveryMutes, m.queueDepth, m.overflowPagesSent)
	return m
}

// Registry exposes the underlying registry so callers can mount it behind
// promhttp.HandlerFor, the same way PrometheusExporter.Start does.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeRequest(commandClass string) {
	m.requestsTotal.WithLabelValues(commandClass).Inc()
}

func (m *Metrics) observeNack(reason string) {
	m.nacksTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeMute() {
	m.discoveryMutes.Inc()
}

func (m *Metrics) setQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) observeOverflowPage() {
	m.overflowPagesSent.Inc()
}
