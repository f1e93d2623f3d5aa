package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics collects engine-level counters shared across domain services.
type Metrics struct {
	Registry *prometheus.Registry

	CalculationsRun     *prometheus.CounterVec
	RedlineTransitions  *prometheus.CounterVec
	PayrollAggregations prometheus.Counter
	AuditWriteFailures  prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		CalculationsRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groundwork",
			Name:      "calculations_total",
			Help:      "Earnings calculations executed, by outcome.",
		}, []string{"outcome"}),
		RedlineTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groundwork",
			Name:      "redline_transitions_total",
			Help:      "Redline workflow transitions, by target status.",
		}, []string{"status"}),
		PayrollAggregations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundwork",
			Name:      "payroll_aggregations_total",
			Help:      "Payroll period aggregations executed.",
		}),
		AuditWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundwork",
			Name:      "audit_write_failures_total",
			Help:      "Audit log writes that failed and were only logged.",
		}),
	}

	reg.MustRegister(
		m.CalculationsRun,
		m.RedlineTransitions,
		m.PayrollAggregations,
		m.AuditWriteFailures,
	)
	return m
}
