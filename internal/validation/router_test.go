package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

type spyValidator struct {
	name  string
	stage string
	err   error
	calls int
}

func (s *spyValidator) Name() string  { return s.name }
func (s *spyValidator) Stage() string { return s.stage }

func (s *spyValidator) Validate(context.Context, *models.Signal) error {
	s.calls++
	return s.err
}

func passingSignal(t *testing.T, st *store.MemoryStore) *models.Signal {
	t.Helper()
	now := time.Now()
	seedMarket(t, st, "BTCUSD", now)
	return testSignal(now)
}

func TestRouterAcceptsCleanSignal(t *testing.T) {
	st := store.NewMemoryStore()
	sig := passingSignal(t, st)
	r := NewRouter(testConfig(), st)

	verdict := r.Validate(context.Background(), sig)
	require.True(t, verdict.Accepted())
	assert.Equal(t, "All checks passed", verdict.Reason)
	assert.True(t, verdict.Details["data_check"])
	for _, check := range []string{
		"compliance_check", "time_check", "risk_check", "stop_loss_check",
		"strategy_check", "goal_check", "liquidity_check",
		"consistency_check", "cost_check",
	} {
		assert.True(t, verdict.Details[check], check)
	}
}

func TestRouterDataSanity(t *testing.T) {
	st := store.NewMemoryStore()
	r := NewRouter(testConfig(), st)
	now := time.Now()

	cases := []struct {
		name   string
		mutate func(*models.Signal)
		reason string
	}{
		{"missing timestamp", func(s *models.Signal) { s.Timestamp = 0 }, "Missing timestamp"},
		{"stale timestamp", func(s *models.Signal) { s.Timestamp = now.Add(-5 * time.Minute).Unix() }, "Timestamp not fresh"},
		{"empty symbol", func(s *models.Signal) { s.Symbol = "" }, "Invalid symbol"},
		{"non-positive size", func(s *models.Signal) { s.Size = 0 }, "Invalid size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sig := testSignal(now)
			tc.mutate(sig)
			verdict := r.Validate(context.Background(), sig)
			require.False(t, verdict.Accepted())
			assert.Equal(t, tc.reason, verdict.Reason)
			assert.False(t, verdict.Details["data_check"])
		})
	}
}

func TestRouterShortCircuitsOnFirstFailure(t *testing.T) {
	first := &spyValidator{name: "first", stage: "First failed"}
	second := &spyValidator{
		name:  "second",
		stage: "Second failed",
		err:   models.NewCheckFailure("second", "nope"),
	}
	third := &spyValidator{name: "third", stage: "Third failed"}
	r := NewRouterWithValidators(first, second, third)

	verdict := r.Validate(context.Background(), testSignal(time.Now()))
	require.False(t, verdict.Accepted())
	assert.Equal(t, "Second failed: nope", verdict.Reason)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Zero(t, third.calls, "chain must stop at the first failure")
	assert.True(t, verdict.Details["first"])
	assert.False(t, verdict.Details["second"])
	_, ran := verdict.Details["third"]
	assert.False(t, ran)
}

func TestRouterReportsEarlierOfTwoViolations(t *testing.T) {
	st := store.NewMemoryStore()
	sig := passingSignal(t, st)
	// Violate both risk (leverage) and stop-loss (too tight). The verdict
	// must carry the risk reason because risk runs first.
	sig.Leverage = 50
	sig.StopLoss = 99.9

	r := NewRouter(testConfig(), st)
	verdict := r.Validate(context.Background(), sig)
	require.False(t, verdict.Accepted())
	assert.Contains(t, verdict.Reason, "Risk validation failed")
	assert.False(t, verdict.Details["risk_check"])
	_, ran := verdict.Details["stop_loss_check"]
	assert.False(t, ran)
}

func TestRouterStageLabeledReason(t *testing.T) {
	st := store.NewMemoryStore()
	sig := passingSignal(t, st)
	sig.StopLoss = 99.5

	r := NewRouter(testConfig(), st)
	verdict := r.Validate(context.Background(), sig)
	require.False(t, verdict.Accepted())
	assert.Contains(t, verdict.Reason, "Stop-loss validation failed: ")
	assert.Contains(t, verdict.Reason, "below minimum")
}

func TestRouterVerdictIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	sig := passingSignal(t, st)
	r := NewRouter(testConfig(), st)

	first := r.Validate(context.Background(), sig)
	second := r.Validate(context.Background(), sig)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Reason, second.Reason)
	assert.Equal(t, first.Details, second.Details)
}
