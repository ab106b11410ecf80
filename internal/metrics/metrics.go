// Package metrics holds the Prometheus collectors for outbound datasource fetches and
// text generations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	generations   *prometheus.CounterVec
	enrichments   *prometheus.CounterVec
	chatMessages  prometheus.Counter
}

// New registers the collectors on a fresh registry, together with the Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "datasource_fetches_total",
			Help: "Outbound datasource fetches by kind and outcome",
		}, []string{"datasource", "outcome"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "datasource_fetch_duration_seconds",
			Help:    "Duration of outbound datasource fetches",
			Buckets: prometheus.DefBuckets,
		}, []string{"datasource"}),
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_generations_total",
			Help: "Text generation calls by model and outcome",
		}, []string{"model", "outcome"}),
		enrichments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_enrichments_total",
			Help: "Chat prompts by how they were enriched (data, error_note, none)",
		}, []string{"result"}),
		chatMessages: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat turns handled",
		}),
	}
}

func outcome(ok bool) string {
	if ok {
		return OutcomeOK
	}
	return OutcomeError
}

func (m *Metrics) ObserveFetch(datasource string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(datasource, outcome(ok)).Inc()
	m.fetchDuration.WithLabelValues(datasource).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveGeneration(model string, ok bool) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(model, outcome(ok)).Inc()
}

func (m *Metrics) ObserveEnrichment(result string) {
	if m == nil {
		return
	}
	m.enrichments.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveChat() {
	if m == nil {
		return
	}
	m.chatMessages.Inc()
}
