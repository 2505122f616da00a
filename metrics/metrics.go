// Package metrics exposes Prometheus counters for the webhook pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline outcomes recorded by ObserveOutcome.
const (
	OutcomeDuplicate = "duplicate"
	OutcomeGated     = "gated"
	OutcomeNoPhone   = "no_phone"
	OutcomeProcessed = "processed"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// Metrics owns its registry so tests can build as many as they need.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	messages *prometheus.CounterVec
	relays   *prometheus.CounterVec
	grants   *prometheus.CounterVec
	users    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_messages_total",
			Help: "Inbound webhook messages by pipeline outcome.",
		}, []string{"outcome"}),
		relays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_attempts_total",
			Help: "Relay attempts by result.",
		}, []string{"result"}),
		grants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "access_grants_created_total",
			Help: "Newly inserted access grants by axis.",
		}, []string{"axis"}),
		users: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "users_created_total",
			Help: "Users created from inbound messages.",
		}),
	}
	m.registry.MustRegister(
		m.messages, m.relays, m.grants, m.users,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRelay(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.relays.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveGrant(axis string) {
	if m == nil {
		return
	}
	m.grants.WithLabelValues(axis).Inc()
}

func (m *Metrics) ObserveUserCreated() {
	if m == nil {
		return
	}
	m.users.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
