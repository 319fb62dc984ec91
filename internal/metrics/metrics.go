// Package metrics exposes Prometheus collectors for the command pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/expensecmd/internal/command"
)

const namespace = "expensecmd"

// Metrics holds the pipeline collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	groupsCreated   prometheus.Counter
	expensesCreated prometheus.Counter
	expenseCents    prometheus.Counter

	knownTags map[string]bool
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		knownTags: map[string]bool{command.TagUnknown: true},
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands processed, by intent tag and outcome.",
		}, []string{"tag", "outcome"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent processing a command, by outcome.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"outcome"}),
		groupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_created_total",
			Help:      "Groups created by commands, explicitly or on first use.",
		}),
		expensesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_created_total",
			Help:      "Expenses created by commands.",
		}),
		expenseCents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expense_amount_cents_total",
			Help:      "Sum of expense amounts created by commands, in cents.",
		}),
	}
	for _, tag := range command.Describe().Tags() {
		m.knownTags[tag] = true
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.commands,
		m.commandDuration,
		m.groupsCreated,
		m.expensesCreated,
		m.expenseCents,
	)
	return m
}

// CommandProcessed records one finished command. Tag is empty when the
// command never reached a recognized intent; tags outside the schema are
// folded into "unknown".
func (m *Metrics) CommandProcessed(tag, outcome string, elapsed time.Duration) {
	switch {
	case tag == "":
		tag = "none"
	case !m.knownTags[tag]:
		tag = command.TagUnknown
	}
	m.commands.WithLabelValues(tag, outcome).Inc()
	m.commandDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// GroupCreated counts a newly created group.
func (m *Metrics) GroupCreated() {
	m.groupsCreated.Inc()
}

// ExpenseCreated counts a newly created expense and its amount.
func (m *Metrics) ExpenseCreated(amountCents int64) {
	m.expensesCreated.Inc()
	m.expenseCents.Add(float64(amountCents))
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
