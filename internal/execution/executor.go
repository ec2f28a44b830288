package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/repository"
	"TradeGate/internal/latency"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/store"
)

// Operation names used for latency measurement. The enclosing
// order_execution span wraps the whole state machine; broker_execution
// covers only the dispatch, so both a pure-dispatch and a total latency
// are observable.
const (
	OpOrderExecution  = "order_execution"
	OpBrokerExecution = "broker_execution"
)

// ExecutorConfig holds order executor limits.
type ExecutorConfig struct {
	MaxOrderSize  float64
	OutcomeTTL    time.Duration
	ErrorLogDepth int
}

func (c ExecutorConfig) withDefaults() ExecutorConfig {
	if c.MaxOrderSize == 0 {
		c.MaxOrderSize = 100_000
	}
	if c.OutcomeTTL == 0 {
		c.OutcomeTTL = 24 * time.Hour
	}
	if c.ErrorLogDepth == 0 {
		c.ErrorLogDepth = 1000
	}
	return c
}

// OrderExecutor runs the per-order state machine: Received -> Validated ->
// Dispatched -> Succeeded|Failed. Every invocation produces exactly one
// ExecutionOutcome, persisted once and folded into the per-symbol
// aggregates.
type OrderExecutor struct {
	cfg     ExecutorConfig
	broker  repository.Broker
	monitor *latency.Monitor
	store   store.Store
	metrics repository.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

// NewOrderExecutor creates an executor over the given broker capability.
func NewOrderExecutor(
	cfg ExecutorConfig,
	broker repository.Broker,
	monitor *latency.Monitor,
	st store.Store,
	metrics repository.Metrics,
	lgr *logger.Logger,
) *OrderExecutor {
	return &OrderExecutor{
		cfg:     cfg.withDefaults(),
		broker:  broker,
		monitor: monitor,
		store:   st,
		metrics: metrics,
		logger:  lgr,
		now:     time.Now,
	}
}

// Execute performs the final validity check, dispatches to the broker, and
// records the outcome. The returned error reports why the order failed;
// the outcome is recorded either way.
func (e *OrderExecutor) Execute(ctx context.Context, sig *models.Signal) (*models.ExecutionOutcome, error) {
	total := e.monitor.Start(OpOrderExecution)

	// Received -> Validated
	if err := e.validateOrder(sig); err != nil {
		e.metrics.RecordError("invalid_order")
		e.monitor.End(ctx, OpOrderExecution, total)
		outcome := e.buildOutcome(sig, 0, err)
		e.recordOutcome(ctx, outcome)
		return outcome, err
	}

	// Validated -> Dispatched
	dispatch := e.monitor.Start(OpBrokerExecution)
	dispatchErr := e.broker.PlaceOrder(ctx, sig.Kind, sig.Size, sig.Symbol)
	dispatchLatency := e.monitor.End(ctx, OpBrokerExecution, dispatch)

	// Dispatched -> Succeeded | Failed
	outcome := e.buildOutcome(sig, dispatchLatency, dispatchErr)
	e.recordOutcome(ctx, outcome)
	e.monitor.End(ctx, OpOrderExecution, total)

	if dispatchErr != nil {
		e.logger.Error("order dispatch failed",
			logger.String("symbol", sig.Symbol),
			logger.String("kind", string(sig.Kind)),
			logger.Error(dispatchErr))
		return outcome, dispatchErr
	}

	e.logger.Debug("order executed",
		logger.String("symbol", sig.Symbol),
		logger.String("kind", string(sig.Kind)),
		logger.Duration("latency", dispatchLatency))
	return outcome, nil
}

// validateOrder re-validates the order parameters just before dispatch:
// a known kind, a positive size, a non-empty symbol, and a size within the
// configured maximum.
func (e *OrderExecutor) validateOrder(sig *models.Signal) error {
	if !sig.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", models.ErrInvalidOrder, sig.Kind)
	}
	if sig.Size <= 0 {
		return fmt.Errorf("%w: size %.4f", models.ErrInvalidOrder, sig.Size)
	}
	if sig.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", models.ErrInvalidOrder)
	}
	if sig.Size > e.cfg.MaxOrderSize {
		return fmt.Errorf("%w: size %.4f exceeds max order size %.4f",
			models.ErrInvalidOrder, sig.Size, e.cfg.MaxOrderSize)
	}
	return nil
}

func (e *OrderExecutor) buildOutcome(sig *models.Signal, dispatchLatency time.Duration, err error) *models.ExecutionOutcome {
	outcome := &models.ExecutionOutcome{
		ID:        uuid.NewString(),
		Symbol:    sig.Symbol,
		Kind:      sig.Kind,
		Size:      sig.Size,
		Latency:   dispatchLatency,
		Success:   err == nil,
		Timestamp: e.now().Unix(),
	}
	if err != nil {
		outcome.Error = err.Error()
	}
	return outcome
}

// recordOutcome persists the outcome once and folds it into the per-symbol
// aggregates. Metrics persistence is non-critical: store failures are
// logged and swallowed.
func (e *OrderExecutor) recordOutcome(ctx context.Context, outcome *models.ExecutionOutcome) {
	e.metrics.RecordExecution(outcome.Symbol, outcome.Success)

	payload, _ := json.Marshal(outcome)
	if err := e.store.SetWithTTL(ctx, models.KeyTradeState(outcome.ID), string(payload), e.cfg.OutcomeTTL); err != nil {
		e.logger.Warn("outcome not persisted",
			logger.String("symbol", outcome.Symbol), logger.Error(err))
	}

	if outcome.Success {
		e.incrCounter(ctx, models.KeyExecSuccess(outcome.Symbol))
		e.updateAvgLatency(ctx, outcome)
	} else {
		e.incrCounter(ctx, models.KeyExecFailures(outcome.Symbol))
		e.appendErrorLog(ctx, outcome)
	}
}

func (e *OrderExecutor) incrCounter(ctx context.Context, key string) {
	count, _, err := store.GetInt(ctx, e.store, key)
	if err != nil {
		e.logger.Warn("counter read failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := e.store.SetWithTTL(ctx, key, store.FormatInt(count+1), e.cfg.OutcomeTTL); err != nil {
		e.logger.Warn("counter write failed", logger.String("key", key), logger.Error(err))
	}
}

// updateAvgLatency folds the new measurement into the persisted running
// mean: new_avg = (old_avg*old_count + v) / (old_count+1).
func (e *OrderExecutor) updateAvgLatency(ctx context.Context, outcome *models.ExecutionOutcome) {
	key := models.KeyExecAvgLatency(outcome.Symbol)
	countKey := key + ":count"

	avg, _, err := store.GetFloat(ctx, e.store, key)
	if err != nil {
		e.logger.Warn("avg latency read failed", logger.String("key", key), logger.Error(err))
		return
	}
	count, _, err := store.GetInt(ctx, e.store, countKey)
	if err != nil {
		e.logger.Warn("avg latency count read failed", logger.String("key", countKey), logger.Error(err))
		return
	}

	ms := float64(outcome.Latency) / float64(time.Millisecond)
	newAvg := (avg*float64(count) + ms) / float64(count+1)

	if err := e.store.SetWithTTL(ctx, key, store.FormatFloat(newAvg), e.cfg.OutcomeTTL); err != nil {
		e.logger.Warn("avg latency write failed", logger.String("key", key), logger.Error(err))
		return
	}
	_ = e.store.SetWithTTL(ctx, countKey, store.FormatInt(count+1), e.cfg.OutcomeTTL)
}

func (e *OrderExecutor) appendErrorLog(ctx context.Context, outcome *models.ExecutionOutcome) {
	entry, _ := json.Marshal(map[string]interface{}{
		"symbol":    outcome.Symbol,
		"kind":      outcome.Kind,
		"size":      outcome.Size,
		"error":     outcome.Error,
		"timestamp": outcome.Timestamp,
	})
	if err := e.store.ListPush(ctx, models.KeyExecutionErrors, string(entry)); err != nil {
		e.logger.Warn("error log append failed", logger.Error(err))
		return
	}
	_ = e.store.ListTrim(ctx, models.KeyExecutionErrors, 0, int64(e.cfg.ErrorLogDepth)-1)
	_ = e.store.Expire(ctx, models.KeyExecutionErrors, e.cfg.OutcomeTTL)
}

// Stats derives the per-symbol execution statistics from the persisted
// counters.
func (e *OrderExecutor) Stats(ctx context.Context, symbol string) (*models.ExecutionStats, error) {
	success, _, err := store.GetInt(ctx, e.store, models.KeyExecSuccess(symbol))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	failures, _, err := store.GetInt(ctx, e.store, models.KeyExecFailures(symbol))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	avg, _, err := store.GetFloat(ctx, e.store, models.KeyExecAvgLatency(symbol))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	stats := &models.ExecutionStats{
		Symbol:       symbol,
		SuccessCount: success,
		FailureCount: failures,
		AvgLatencyMS: avg,
	}
	if total := success + failures; total > 0 {
		stats.SuccessRate = float64(success) / float64(total) * 100
	}
	return stats, nil
}
