package validation

import (
	"context"
	"math"

	"TradeGate/internal/domain/models"
)

// StopLossChecker rejects signals whose stop-loss sits too close to entry.
// The ratio is direction-aware: (entry-stop)/entry for Buy, the inverse for
// Sell.
type StopLossChecker struct {
	minRatio float64
}

func NewStopLossChecker(cfg Config) *StopLossChecker {
	cfg = cfg.withDefaults()
	return &StopLossChecker{minRatio: cfg.MinStopLossRatio}
}

func (s *StopLossChecker) Name() string  { return "stop_loss_check" }
func (s *StopLossChecker) Stage() string { return "Stop-loss validation failed" }

func (s *StopLossChecker) Validate(_ context.Context, sig *models.Signal) error {
	if sig.EntryPrice <= 0 {
		return models.NewCheckFailure(s.Name(), "missing entry price")
	}
	if sig.StopLoss <= 0 {
		return models.NewCheckFailure(s.Name(), "missing stop loss")
	}

	var ratio float64
	switch sig.Kind {
	case models.Buy:
		ratio = (sig.EntryPrice - sig.StopLoss) / sig.EntryPrice
	case models.Sell:
		ratio = (sig.StopLoss - sig.EntryPrice) / sig.EntryPrice
	default:
		return models.NewCheckFailure(s.Name(), "unknown signal kind %q", sig.Kind)
	}

	if math.Abs(ratio) < s.minRatio {
		return models.NewCheckFailure(s.Name(),
			"stop-loss ratio %.4f below minimum %.4f", ratio, s.minRatio)
	}
	return nil
}
