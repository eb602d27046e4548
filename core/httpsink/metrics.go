package httpsink

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors the transport reports into. All
// methods are nil-safe so the transport can run unmetered.
type Metrics struct {
	// Responses counts committed responses by outcome (content, error,
	// not_found, redirect, listing, not_modified, aborted,
	// contract_violation).
	Responses *prometheus.CounterVec

	// BodyBytes counts response body bytes written to clients.
	BodyBytes prometheus.Counter

	// ActiveStreams tracks in-flight streamed (DataSource) deliveries.
	ActiveStreams prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "libhttp_responses_total",
				Help: "Committed responses by outcome",
			},
			[]string{"outcome"},
		),
		BodyBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "libhttp_response_body_bytes_total",
				Help: "Response body bytes written",
			},
		),
		ActiveStreams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "libhttp_active_streams",
				Help: "In-flight streamed deliveries",
			},
		),
	}
	reg.MustRegister(m.Responses, m.BodyBytes, m.ActiveStreams)
	return m
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.Responses.WithLabelValues(outcome).Inc()
}

func (m *Metrics) addBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.BodyBytes.Add(float64(n))
}

func (m *Metrics) streamStarted() {
	if m == nil {
		return
	}
	m.ActiveStreams.Inc()
}

func (m *Metrics) streamDone() {
	if m == nil {
		return
	}
	m.ActiveStreams.Dec()
}
