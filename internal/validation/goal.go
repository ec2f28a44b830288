package validation

import (
	"context"
	"math"

	"TradeGate/internal/domain/models"
)

// GoalAlignment rejects signals whose reward/risk ratio is implausible:
// zero risk (stop equals entry) or a ratio beyond the configured maximum.
type GoalAlignment struct {
	maxRiskReward float64
}

func NewGoalAlignment(cfg Config) *GoalAlignment {
	cfg = cfg.withDefaults()
	return &GoalAlignment{maxRiskReward: cfg.MaxRiskReward}
}

func (g *GoalAlignment) Name() string  { return "goal_check" }
func (g *GoalAlignment) Stage() string { return "Goal alignment failed" }

func (g *GoalAlignment) Validate(_ context.Context, sig *models.Signal) error {
	if sig.EntryPrice <= 0 {
		return models.NewCheckFailure(g.Name(), "missing entry price")
	}
	if sig.StopLoss <= 0 {
		return models.NewCheckFailure(g.Name(), "missing stop loss")
	}
	if sig.TakeProfit <= 0 {
		return models.NewCheckFailure(g.Name(), "missing take profit")
	}

	var risk, reward float64
	switch sig.Kind {
	case models.Sell:
		risk = sig.StopLoss - sig.EntryPrice
		reward = sig.EntryPrice - sig.TakeProfit
	default:
		risk = sig.EntryPrice - sig.StopLoss
		reward = sig.TakeProfit - sig.EntryPrice
	}

	risk = math.Abs(risk)
	reward = math.Abs(reward)

	if risk == 0 {
		return models.NewCheckFailure(g.Name(), "zero risk: stop loss equals entry price")
	}
	ratio := reward / risk
	if ratio > g.maxRiskReward {
		return models.NewCheckFailure(g.Name(),
			"risk-reward ratio %.2f exceeds maximum %.2f", ratio, g.maxRiskReward)
	}
	return nil
}
