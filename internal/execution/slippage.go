package execution

import (
	"context"
	"fmt"
	"math"
	"sync"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// SlippageController rejects executions whose expected-vs-actual price
// deviation exceeds the configured limit in basis points, and records the
// observed slippage otherwise. The limit is hot-reloadable.
type SlippageController struct {
	mu     sync.RWMutex
	maxBPS float64
	store  store.Store
}

// NewSlippageController creates the slippage gate. A zero limit falls back
// to the default 50 bps.
func NewSlippageController(maxBPS float64, st store.Store) *SlippageController {
	if maxBPS == 0 {
		maxBPS = 50
	}
	return &SlippageController{maxBPS: maxBPS, store: st}
}

// Check computes |actual-expected|/expected in basis points and rejects
// when it exceeds the limit (strictly greater: a deviation exactly at the
// limit passes). Passing observations are recorded per symbol; recording
// failures never veto.
func (s *SlippageController) Check(ctx context.Context, symbol string, expected, actual float64) error {
	if expected <= 0 {
		return fmt.Errorf("%w: non-positive expected price %.4f", models.ErrInvalidOrder, expected)
	}

	s.mu.RLock()
	maxBPS := s.maxBPS
	s.mu.RUnlock()

	bps := math.Abs(actual-expected) / expected * 10_000
	if bps > maxBPS {
		return fmt.Errorf("%w: slippage %.2f bps exceeds limit %.2f bps for %s",
			models.ErrInvalidOrder, bps, maxBPS, symbol)
	}

	_ = s.store.ListPush(ctx, models.KeySlippage(symbol), store.FormatFloat(bps))
	return nil
}

// UpdateLimit hot-reloads the limit. Non-positive values are rejected and
// the prior limit stays active.
func (s *SlippageController) UpdateLimit(maxBPS float64) error {
	if maxBPS <= 0 {
		return fmt.Errorf("%w: max_slippage_bps=%.2f", models.ErrLimitUpdateRejected, maxBPS)
	}

	s.mu.Lock()
	s.maxBPS = maxBPS
	s.mu.Unlock()
	return nil
}

// Limit returns the active limit in basis points.
func (s *SlippageController) Limit() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxBPS
}
