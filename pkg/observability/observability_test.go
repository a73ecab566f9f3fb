package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_ObserveGateway(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveGateway(domain.SubmissionResult{Outcome: domain.OutcomeSucceeded, Weak: true, Reason: domain.ReasonUnstructured2xx}, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayResults.WithLabelValues("succeeded", domain.ReasonUnstructured2xx, "true")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GatewayLatency))
}

func TestHooks_LogAndCount(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	hooks := Hooks(logger, m)
	ctx := context.Background()
	base := domain.EventBase{FunnelID: "qualifier"}

	hooks.OnStepEnter(ctx, &domain.StepEvent{EventBase: base, Index: 1, Kind: domain.StepChoice})
	hooks.OnResult(ctx, &domain.SubmissionEvent{
		EventBase: base,
		Fields:    3,
		Result:    &domain.SubmissionResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonTransport},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepVisits.WithLabelValues("qualifier", "1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("qualifier", "failed", domain.ReasonTransport)))
	assert.Contains(t, buf.String(), "step_enter")
	assert.Contains(t, buf.String(), "reason=transport")
}

func TestChain(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnSubmit: func(context.Context, *domain.SubmissionEvent) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnSubmit:    func(context.Context, *domain.SubmissionEvent) { order = append(order, "b") },
		OnStepEnter: func(context.Context, *domain.StepEvent) { order = append(order, "enter") },
	}

	hooks := Chain(a, domain.LifecycleHooks{}, b)
	hooks.OnSubmit(context.Background(), &domain.SubmissionEvent{})
	hooks.OnStepEnter(context.Background(), &domain.StepEvent{})

	assert.Equal(t, []string{"a", "b", "enter"}, order)
	assert.Nil(t, hooks.OnResult)
}
