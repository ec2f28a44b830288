package validation

import (
	"context"
	"slices"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// StrategyFilter rejects stale signals, non-positive prices, and exact
// duplicates of previously seen signals for the symbol. Duplicate detection
// compares the serialized signal against a bounded recent history in the
// store; a history read failure does not gate safety, so it passes open.
type StrategyFilter struct {
	maxWindow    time.Duration
	historyDepth int
	store        store.Store
	now          func() time.Time
}

func NewStrategyFilter(cfg Config, st store.Store) *StrategyFilter {
	cfg = cfg.withDefaults()
	return &StrategyFilter{
		maxWindow:    cfg.MaxTimeWindow,
		historyDepth: cfg.RecentHistoryDepth,
		store:        st,
		now:          time.Now,
	}
}

func (f *StrategyFilter) Name() string  { return "strategy_check" }
func (f *StrategyFilter) Stage() string { return "Strategy validation failed" }

func (f *StrategyFilter) Validate(ctx context.Context, sig *models.Signal) error {
	age := f.now().Unix() - sig.Timestamp
	if age > int64(f.maxWindow.Seconds()) {
		return models.NewCheckFailure(f.Name(),
			"signal age %ds exceeds window %s", age, f.maxWindow)
	}

	if sig.EntryPrice <= 0 {
		return models.NewCheckFailure(f.Name(), "non-positive entry price %.4f", sig.EntryPrice)
	}
	if sig.ExitPrice < 0 {
		return models.NewCheckFailure(f.Name(), "negative exit price %.4f", sig.ExitPrice)
	}

	// The recent history is recorded by the orchestrator when a signal is
	// forwarded; validating the same signal twice against the same store
	// state stays idempotent.
	recent, err := f.store.ListRange(ctx, models.KeyRecentSignals(sig.Symbol), 0, int64(f.historyDepth)-1)
	if err == nil && slices.Contains(recent, sig.Fingerprint()) {
		return models.NewCheckFailure(f.Name(), "duplicate signal for %s", sig.Symbol)
	}
	return nil
}
