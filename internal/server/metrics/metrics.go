// Package metrics holds the Prometheus counters exported by the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess            = "success"
	ResultConflict           = "conflict"
	ResultInvalid            = "invalid"
	ResultInvalidCredentials = "invalid_credentials"
	ResultThrottled          = "throttled"
	ResultError              = "error"
)

// Transport labels.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Metrics contains the authkeeper counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	SignupsTotal        *prometheus.CounterVec
	LoginsTotal         *prometheus.CounterVec
	GateRejectionsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the counters on a private registry, together with the
// standard Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		SignupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authkeeper_signups_total",
				Help: "Total number of signup attempts by result",
			},
			[]string{"result"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authkeeper_logins_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"},
		),
		GateRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authkeeper_gate_rejections_total",
				Help: "Total number of requests rejected by the authentication gate",
			},
			[]string{"transport"},
		),
		registry: registry,
	}

	registry.MustRegister(m.SignupsTotal, m.LoginsTotal, m.GateRejectionsTotal)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Signup(result string) {
	if m == nil {
		return
	}
	m.SignupsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) GateRejected(transport string) {
	if m == nil {
		return
	}
	m.GateRejectionsTotal.WithLabelValues(transport).Inc()
}
