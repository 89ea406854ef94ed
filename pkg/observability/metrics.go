package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/espalier/pkg/domain"
)

// Metrics bundles the Prometheus collectors for collection updates. Feed it
// through Hooks() into a Controller and expose the registry via promhttp.
type Metrics struct {
	OpsApplied        *prometheus.CounterVec
	Batches           prometheus.Counter
	BatchOps          prometheus.Histogram
	Reconciles        prometheus.Counter
	ReconcileDuration prometheus.Histogram
	ReconcileOps      prometheus.Histogram
}

// NewMetrics creates and registers the collectors. A nil registerer uses the
// Prometheus default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		OpsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_ops_applied_total",
				Help: "Total structural and content ops applied, by kind",
			},
			[]string{"kind"},
		),
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "espalier_batches_total",
			Help: "Total completed update batches",
		}),
		BatchOps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "espalier_batch_ops",
			Help:    "Ops carried per update batch",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		Reconciles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "espalier_reconciles_total",
			Help: "Total reconciliation runs",
		}),
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "espalier_reconcile_duration_seconds",
			Help:    "Duration of reconciliation runs",
			Buckets: prometheus.DefBuckets,
		}),
		ReconcileOps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "espalier_reconcile_ops",
			Help:    "Script length per reconciliation run",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
	}

	reg.MustRegister(
		m.OpsApplied,
		m.Batches,
		m.BatchOps,
		m.Reconciles,
		m.ReconcileDuration,
		m.ReconcileOps,
	)
	return m
}

// Hooks returns UpdateHooks that feed the collectors. The hooks only touch
// their own collectors, so they can be combined with logging in one struct
// by the caller if needed.
func (m *Metrics) Hooks() domain.UpdateHooks {
	return domain.UpdateHooks{
		OnOp: func(e *domain.OpEvent) {
			m.OpsApplied.WithLabelValues(string(e.Op.Kind)).Inc()
		},
		OnBatchEnd: func(e *domain.BatchEvent) {
			m.Batches.Inc()
			m.BatchOps.Observe(float64(e.Ops))
		},
		OnReconcile: func(e *domain.ReconcileEvent) {
			m.Reconciles.Inc()
			m.ReconcileDuration.Observe(e.Duration.Seconds())
			m.ReconcileOps.Observe(float64(len(e.Script)))
		},
	}
}
