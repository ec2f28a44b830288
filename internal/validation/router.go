package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

// freshnessWindow bounds how far a signal timestamp may sit from the wall
// clock before the data-sanity pass rejects it.
const freshnessWindow = 60 * time.Second

// Router runs an ordered, fixed sequence of validators against one signal
// and short-circuits on the first failure. Order is significant: when two
// checks are simultaneously violated, the verdict always reports the
// earlier one.
type Router struct {
	validators []Validator
	now        func() time.Time
}

// NewRouter builds the default admission chain: data-sanity first, then
// Compliance, TimeSensitivity, Risk, StopLoss, Strategy, GoalAlignment,
// Liquidity, Consistency, CostAnalysis.
func NewRouter(cfg Config, st store.Store) *Router {
	cfg = cfg.withDefaults()
	return &Router{
		validators: []Validator{
			NewCompliance(cfg, st),
			NewTimeSensitivity(cfg, st),
			NewRiskAssessor(cfg, st),
			NewStopLossChecker(cfg),
			NewStrategyFilter(cfg, st),
			NewGoalAlignment(cfg),
			NewLiquidityValidator(cfg, st),
			NewConsistency(cfg, st),
			NewCostAnalysis(cfg, st),
		},
		now: time.Now,
	}
}

// NewRouterWithValidators builds a router over an explicit chain; tests use
// it to inject spies.
func NewRouterWithValidators(validators ...Validator) *Router {
	return &Router{validators: validators, now: time.Now}
}

// Validate runs the chain once and produces a single verdict. Check
// failures never abort the pipeline; they become the verdict.
func (r *Router) Validate(ctx context.Context, sig *models.Signal) *models.ValidationVerdict {
	details := make(map[string]bool, len(r.validators)+1)

	if reason := r.validateData(sig, details); reason != "" {
		details["data_check"] = false
		return models.RejectedVerdict(reason, details)
	}
	details["data_check"] = true

	for _, v := range r.validators {
		if err := v.Validate(ctx, sig); err != nil {
			details[v.Name()] = false
			return models.RejectedVerdict(rejectionReason(v, err), details)
		}
		details[v.Name()] = true
	}

	return models.ValidVerdict(details)
}

// validateData is the initial data-sanity pass: timestamp freshness, a
// non-empty symbol, and a positive size. It returns a rejection reason or
// the empty string.
func (r *Router) validateData(sig *models.Signal, details map[string]bool) string {
	if sig.Timestamp == 0 {
		return "Missing timestamp"
	}
	if sig.Age(r.now()) > freshnessWindow {
		details["timestamp_freshness"] = false
		return "Timestamp not fresh"
	}
	if sig.Symbol == "" {
		details["symbol_valid"] = false
		return "Invalid symbol"
	}
	if sig.Size <= 0 {
		details["size_valid"] = false
		return "Invalid size"
	}
	return ""
}

func rejectionReason(v Validator, err error) string {
	var failure *models.CheckFailure
	if errors.As(err, &failure) {
		return fmt.Sprintf("%s: %s", v.Stage(), failure.Reason)
	}
	return fmt.Sprintf("%s: %v", v.Stage(), err)
}
