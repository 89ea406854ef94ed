package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/observability"
)

func TestCombineHooksFansOut(t *testing.T) {
	var first, second []string
	a := domain.UpdateHooks{
		OnOp:        func(*domain.OpEvent) { first = append(first, "op") },
		OnReconcile: func(*domain.ReconcileEvent) { first = append(first, "reconcile") },
	}
	b := domain.UpdateHooks{
		OnOp: func(*domain.OpEvent) { second = append(second, "op") },
	}

	combined := observability.CombineHooks(a, b)
	combined.OnOp(&domain.OpEvent{})
	combined.OnReconcile(&domain.ReconcileEvent{})

	assert.Equal(t, []string{"op", "reconcile"}, first)
	assert.Equal(t, []string{"op"}, second)
}

func TestCombineHooksLeavesUnusedCallbacksNil(t *testing.T) {
	combined := observability.CombineHooks(domain.UpdateHooks{
		OnOp: func(*domain.OpEvent) {},
	})

	assert.NotNil(t, combined.OnOp)
	assert.Nil(t, combined.OnBatchBegin)
	assert.Nil(t, combined.OnBatchEnd)
	assert.Nil(t, combined.OnReconcile)

	// Combining nothing yields the zero value.
	assert.Equal(t, domain.UpdateHooks{}, observability.CombineHooks())
}

func TestCombinedMetricsAndLogging(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := espalier.NewSnapshotController(nil,
		espalier.WithHooks[domain.SectionSnapshot, domain.RowSnapshot](
			observability.CombineHooks(m.Hooks(), observability.LogHooks(logger)),
		))

	_, err := c.Ensure([]domain.SectionSnapshot{{ID: "a"}})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "reconcile finished")
	assert.Contains(t, buf.String(), "batch settled")
	assert.Equal(t, uint64(1), histogramSampleCount(t, reg, "espalier_reconcile_ops"))
}
