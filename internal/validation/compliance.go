package validation

import (
	"context"
	"slices"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// Compliance rejects signals for regions outside the allow-list and symbols
// in a region's restricted set. A store failure on the restricted-set read
// fails closed: compliance gates are never silently passed.
type Compliance struct {
	allowedRegions []string
	store          store.Store
}

func NewCompliance(cfg Config, st store.Store) *Compliance {
	return &Compliance{allowedRegions: cfg.AllowedRegions, store: st}
}

func (c *Compliance) Name() string  { return "compliance_check" }
func (c *Compliance) Stage() string { return "Compliance validation failed" }

func (c *Compliance) Validate(ctx context.Context, sig *models.Signal) error {
	if len(c.allowedRegions) > 0 && !slices.Contains(c.allowedRegions, sig.Region) {
		return models.NewCheckFailure(c.Name(), "region %q not allowed", sig.Region)
	}

	if sig.Region == "" {
		return nil
	}

	restricted, err := c.store.ListRange(ctx, models.KeyRestrictedSymbols(sig.Region), 0, -1)
	if err != nil {
		return models.NewCheckFailure(c.Name(), "restricted set unavailable for region %q", sig.Region)
	}
	if slices.Contains(restricted, sig.Symbol) {
		return models.NewCheckFailure(c.Name(), "symbol %s restricted in region %q", sig.Symbol, sig.Region)
	}
	return nil
}
