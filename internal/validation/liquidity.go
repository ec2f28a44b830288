package validation

import (
	"context"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// LiquidityValidator rejects signals whose size is large relative to the
// known market depth. Unknown or zero depth is a rejection. The comparison
// direction follows the historical behavior: reject when size/depth exceeds
// the configured ratio.
type LiquidityValidator struct {
	minRatio float64
	store    store.Store
}

func NewLiquidityValidator(cfg Config, st store.Store) *LiquidityValidator {
	cfg = cfg.withDefaults()
	return &LiquidityValidator{minRatio: cfg.MinLiquidityRatio, store: st}
}

func (l *LiquidityValidator) Name() string  { return "liquidity_check" }
func (l *LiquidityValidator) Stage() string { return "Liquidity validation failed" }

func (l *LiquidityValidator) Validate(ctx context.Context, sig *models.Signal) error {
	depth, ok, err := store.GetFloat(ctx, l.store, models.KeyMarketDepth(sig.Symbol))
	if err != nil || !ok || depth <= 0 {
		return models.NewCheckFailure(l.Name(), "market depth unknown for %s", sig.Symbol)
	}

	ratio := sig.Size / depth
	if ratio > l.minRatio {
		return models.NewCheckFailure(l.Name(),
			"size/depth ratio %.4f exceeds %.4f for %s", ratio, l.minRatio, sig.Symbol)
	}
	return nil
}
