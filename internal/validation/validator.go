package validation

import (
	"context"

	"TradeGate/internal/domain/models"
)

// Validator is one independent business-rule check in the admission chain.
// Implementations are side-effect-free on the Signal itself; failures are
// reported as *models.CheckFailure and recovered at the router boundary.
type Validator interface {
	// Name keys the per-check outcome map of the verdict.
	Name() string

	// Stage labels the rejection reason, e.g. "Risk validation failed".
	Stage() string

	Validate(ctx context.Context, sig *models.Signal) error
}
