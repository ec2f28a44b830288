package validation

import (
	"context"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// Consistency rejects signals that oppose an open position for the symbol
// or pile onto a symbol that already has too many recent signals queued.
// The open-position read gates a safety check and fails closed.
type Consistency struct {
	maxRecent int
	store     store.Store
}

func NewConsistency(cfg Config, st store.Store) *Consistency {
	cfg = cfg.withDefaults()
	return &Consistency{maxRecent: cfg.MaxRecentSignals, store: st}
}

func (c *Consistency) Name() string  { return "consistency_check" }
func (c *Consistency) Stage() string { return "Consistency validation failed" }

func (c *Consistency) Validate(ctx context.Context, sig *models.Signal) error {
	position, ok, err := c.store.Get(ctx, models.KeyOpenPosition(sig.Symbol))
	if err != nil {
		return models.NewCheckFailure(c.Name(), "open position unavailable for %s", sig.Symbol)
	}
	if ok {
		kind, perr := models.ParseSignalKind(position)
		if perr == nil && kind != sig.Kind {
			return models.NewCheckFailure(c.Name(),
				"open %s position conflicts with %s signal for %s", kind, sig.Kind, sig.Symbol)
		}
	}

	recent, err := c.store.ListRange(ctx, models.KeyRecentSignals(sig.Symbol), 0, int64(c.maxRecent))
	if err != nil {
		return models.NewCheckFailure(c.Name(), "recent signal history unavailable for %s", sig.Symbol)
	}
	if len(recent) >= c.maxRecent {
		return models.NewCheckFailure(c.Name(),
			"%d recent signals already queued for %s", len(recent), sig.Symbol)
	}
	return nil
}
