package validation

import (
	"context"
	"strconv"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// CostAnalysis rejects signals whose commission percentage or projected
// slippage cost exceeds the configured bounds. The slippage projection uses
// the last observed slippage for the symbol; absent observations project to
// zero cost and pass.
type CostAnalysis struct {
	maxCommissionPct float64
	maxSlippageBPS   float64
	store            store.Store
}

func NewCostAnalysis(cfg Config, st store.Store) *CostAnalysis {
	cfg = cfg.withDefaults()
	return &CostAnalysis{
		maxCommissionPct: cfg.MaxCommissionPct,
		maxSlippageBPS:   cfg.MaxSlippageBPS,
		store:            st,
	}
}

func (c *CostAnalysis) Name() string  { return "cost_check" }
func (c *CostAnalysis) Stage() string { return "Cost validation failed" }

func (c *CostAnalysis) Validate(ctx context.Context, sig *models.Signal) error {
	commission, _, err := store.GetFloat(ctx, c.store, models.KeyCommission(sig.Symbol))
	if err == nil && commission > c.maxCommissionPct {
		return models.NewCheckFailure(c.Name(),
			"commission %.4f%% exceeds maximum %.4f%%", commission, c.maxCommissionPct)
	}

	observedBPS := c.lastObservedSlippageBPS(ctx, sig.Symbol)
	notional := sig.Size * sig.EntryPrice
	projectedCost := notional * observedBPS / 10_000
	maxCost := notional * c.maxSlippageBPS / 10_000
	if projectedCost > maxCost {
		return models.NewCheckFailure(c.Name(),
			"projected slippage cost %.4f exceeds allowed %.4f for %s", projectedCost, maxCost, sig.Symbol)
	}
	return nil
}

func (c *CostAnalysis) lastObservedSlippageBPS(ctx context.Context, symbol string) float64 {
	entries, err := c.store.ListRange(ctx, models.KeySlippage(symbol), 0, 0)
	if err != nil || len(entries) == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(entries[0], 64)
	if err != nil {
		return 0
	}
	return f
}
