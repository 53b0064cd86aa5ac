package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts probe responses by protocol class and captive verdict,
// plus accept actions. Counters only; captive state itself lives in the
// acceptance store.
type Metrics struct {
	registry  *prometheus.Registry
	responses *prometheus.CounterVec
	accepts   prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	responses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "captive_responses_total",
		Help: "Probe responses served, by protocol class and captive verdict.",
	}, []string{"class", "captive"})

	accepts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "captive_accepts_total",
		Help: "Accept actions recorded.",
	})

	reg.MustRegister(responses, accepts)

	return &Metrics{
		registry:  reg,
		responses: responses,
		accepts:   accepts,
	}
}

func (m *Metrics) MarkResponse(class string, captive bool) {
	verdict := "false"
	if captive {
		verdict = "true"
	}
	m.responses.WithLabelValues(class, verdict).Inc()
}

func (m *Metrics) MarkAccept() {
	m.accepts.Inc()
}

// Handler exposes the registry in prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
