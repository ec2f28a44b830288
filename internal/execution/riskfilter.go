package execution

import (
	"context"
	"fmt"
	"sync"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// RiskFilters gates an accepted signal a second time, close to execution,
// against order size and recorded daily loss. Limits are hot-reloadable.
type RiskFilters struct {
	mu           sync.RWMutex
	maxOrderSize float64
	maxDailyLoss float64
	store        store.Store
}

// NewRiskFilters creates the pre-execution risk gate. Zero limits fall back
// to defaults (max order size 100000, max daily loss 0.05).
func NewRiskFilters(maxOrderSize, maxDailyLoss float64, st store.Store) *RiskFilters {
	if maxOrderSize == 0 {
		maxOrderSize = 100_000
	}
	if maxDailyLoss == 0 {
		maxDailyLoss = 0.05
	}
	return &RiskFilters{
		maxOrderSize: maxOrderSize,
		maxDailyLoss: maxDailyLoss,
		store:        st,
	}
}

// Apply vetoes the signal when size exceeds the max order size or the
// symbol's recorded daily loss is at or above the max daily loss fraction.
// The daily-loss read gates a safety check: a store failure fails closed.
func (r *RiskFilters) Apply(ctx context.Context, sig *models.Signal) error {
	r.mu.RLock()
	maxSize, maxLoss := r.maxOrderSize, r.maxDailyLoss
	r.mu.RUnlock()

	if sig.Size > maxSize {
		return fmt.Errorf("%w: size %.4f exceeds max order size %.4f",
			models.ErrInvalidOrder, sig.Size, maxSize)
	}

	loss, _, err := store.GetFloat(ctx, r.store, models.KeyDailyLoss(sig.Symbol))
	if err != nil {
		return fmt.Errorf("%w: daily loss for %s: %v", models.ErrStoreUnavailable, sig.Symbol, err)
	}
	if loss >= maxLoss {
		return fmt.Errorf("%w: daily loss %.4f at or above limit %.4f for %s",
			models.ErrInvalidOrder, loss, maxLoss, sig.Symbol)
	}
	return nil
}

// UpdateLimits hot-reloads both limits. Non-positive values are rejected
// and the prior limits stay active.
func (r *RiskFilters) UpdateLimits(maxOrderSize, maxDailyLoss float64) error {
	if maxOrderSize <= 0 || maxDailyLoss <= 0 {
		return fmt.Errorf("%w: max_order_size=%.4f max_daily_loss=%.4f",
			models.ErrLimitUpdateRejected, maxOrderSize, maxDailyLoss)
	}

	r.mu.Lock()
	r.maxOrderSize = maxOrderSize
	r.maxDailyLoss = maxDailyLoss
	r.mu.Unlock()
	return nil
}

// Limits returns the active limits.
func (r *RiskFilters) Limits() (maxOrderSize, maxDailyLoss float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxOrderSize, r.maxDailyLoss
}
