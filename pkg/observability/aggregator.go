package observability

import (
	"log/slog"

	"github.com/aretw0/espalier/pkg/domain"
)

// CombineHooks merges several hook sets into one. Each event runs the
// callbacks in argument order; unset callbacks are skipped. Use it to feed
// metrics and logging from the same Controller without the collectors
// knowing about each other.
func CombineHooks(hooks ...domain.UpdateHooks) domain.UpdateHooks {
	var begins, ends []func(*domain.BatchEvent)
	var ops []func(*domain.OpEvent)
	var reconciles []func(*domain.ReconcileEvent)

	for _, h := range hooks {
		if h.OnBatchBegin != nil {
			begins = append(begins, h.OnBatchBegin)
		}
		if h.OnOp != nil {
			ops = append(ops, h.OnOp)
		}
		if h.OnBatchEnd != nil {
			ends = append(ends, h.OnBatchEnd)
		}
		if h.OnReconcile != nil {
			reconciles = append(reconciles, h.OnReconcile)
		}
	}

	// Callbacks without subscribers stay nil, so the engine keeps skipping
	// them entirely.
	var combined domain.UpdateHooks
	if len(begins) > 0 {
		combined.OnBatchBegin = func(e *domain.BatchEvent) {
			for _, fn := range begins {
				fn(e)
			}
		}
	}
	if len(ops) > 0 {
		combined.OnOp = func(e *domain.OpEvent) {
			for _, fn := range ops {
				fn(e)
			}
		}
	}
	if len(ends) > 0 {
		combined.OnBatchEnd = func(e *domain.BatchEvent) {
			for _, fn := range ends {
				fn(e)
			}
		}
	}
	if len(reconciles) > 0 {
		combined.OnReconcile = func(e *domain.ReconcileEvent) {
			for _, fn := range reconciles {
				fn(e)
			}
		}
	}
	return combined
}

// LogHooks returns hooks that log batch and reconcile events through logger
// at debug level. Per-op logging stays on the Controller's own logger.
func LogHooks(logger *slog.Logger) domain.UpdateHooks {
	return domain.UpdateHooks{
		OnBatchEnd: func(e *domain.BatchEvent) {
			logger.Debug("batch settled", "ops", e.Ops)
		},
		OnReconcile: func(e *domain.ReconcileEvent) {
			logger.Debug("reconcile finished",
				"ops", len(e.Script),
				"sections", e.Sections,
				"rows", e.Rows,
				"duration", e.Duration,
			)
		},
	}
}
