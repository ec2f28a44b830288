package validation

import (
	"context"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// RiskAssessor enforces leverage and portfolio exposure limits. The exposure
// read gates a safety check, so a store failure fails closed.
type RiskAssessor struct {
	maxLeverage float64
	maxExposure float64
	store       store.Store
}

func NewRiskAssessor(cfg Config, st store.Store) *RiskAssessor {
	cfg = cfg.withDefaults()
	return &RiskAssessor{
		maxLeverage: cfg.MaxLeverage,
		maxExposure: cfg.MaxExposure,
		store:       st,
	}
}

func (r *RiskAssessor) Name() string  { return "risk_check" }
func (r *RiskAssessor) Stage() string { return "Risk validation failed" }

func (r *RiskAssessor) Validate(ctx context.Context, sig *models.Signal) error {
	leverage := sig.Leverage
	if leverage == 0 {
		leverage = 1
	}
	if leverage > r.maxLeverage {
		return models.NewCheckFailure(r.Name(),
			"leverage %.2f exceeds maximum %.2f", leverage, r.maxLeverage)
	}

	exposure, _, err := store.GetFloat(ctx, r.store, models.KeyPortfolioExposure(sig.Symbol))
	if err != nil {
		return models.NewCheckFailure(r.Name(), "exposure unavailable for %s", sig.Symbol)
	}

	projected := exposure + sig.Size*leverage
	if projected > r.maxExposure {
		return models.NewCheckFailure(r.Name(),
			"projected exposure %.4f exceeds maximum %.4f for %s", projected, r.maxExposure, sig.Symbol)
	}
	return nil
}
