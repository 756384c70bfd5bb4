// Package metrics exposes Prometheus counters for ledger activity, advisory
// calls and state saves.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartbudget"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder owns a private registry. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	registry *prometheus.Registry

	mutations *prometheus.CounterVec
	advisory  *prometheus.CounterVec
	saves     *prometheus.CounterVec
}

// New builds a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_mutations_total",
			Help:      "Ledger mutations applied, by operation.",
		}, []string{"op"}),
		advisory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_requests_total",
			Help:      "Advisory gateway calls, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_saves_total",
			Help:      "State blob saves, by outcome.",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(
		r.mutations,
		r.advisory,
		r.saves,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Mutation counts one applied ledger operation.
func (r *Recorder) Mutation(op string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(op).Inc()
}

// Advisory counts one advisory call.
func (r *Recorder) Advisory(kind string, err error) {
	if r == nil {
		return
	}
	r.advisory.WithLabelValues(kind, outcome(err)).Inc()
}

// Save counts one state save.
func (r *Recorder) Save(err error) {
	if r == nil {
		return
	}
	r.saves.WithLabelValues(outcome(err)).Inc()
}

// RegisterNetWorth exposes the current net worth in UYU, read on every
// scrape.
func (r *Recorder) RegisterNetWorth(read func() float64) error {
	if r == nil {
		return nil
	}
	return r.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "net_worth_uyu",
		Help:      "Sum of all account balances converted to UYU.",
	}, read))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
