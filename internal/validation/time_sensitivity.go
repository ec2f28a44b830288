package validation

import (
	"context"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// TimeSensitivity rejects signals whose timestamp drifts too far from the
// last known market timestamp for the symbol. An unknown market timestamp
// is a rejection, not a pass.
type TimeSensitivity struct {
	maxDrift time.Duration
	store    store.Store
}

func NewTimeSensitivity(cfg Config, st store.Store) *TimeSensitivity {
	cfg = cfg.withDefaults()
	return &TimeSensitivity{maxDrift: cfg.MaxTimestampDrift, store: st}
}

func (t *TimeSensitivity) Name() string  { return "time_check" }
func (t *TimeSensitivity) Stage() string { return "Time validation failed" }

func (t *TimeSensitivity) Validate(ctx context.Context, sig *models.Signal) error {
	market, ok, err := store.GetInt(ctx, t.store, models.KeyMarketTimestamp(sig.Symbol))
	if err != nil || !ok {
		return models.NewCheckFailure(t.Name(), "no market timestamp for %s", sig.Symbol)
	}

	drift := sig.Timestamp - market
	if drift < 0 {
		drift = -drift
	}
	if time.Duration(drift)*time.Second > t.maxDrift {
		return models.NewCheckFailure(t.Name(),
			"timestamp drift %ds exceeds %s for %s", drift, t.maxDrift, sig.Symbol)
	}
	return nil
}
