package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the admission and execution pipelines.
var (
	// ErrMissingField marks a required attribute absent from input.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidOrder marks semantically invalid order parameters.
	ErrInvalidOrder = errors.New("invalid order parameters")

	// ErrLimitUpdateRejected is returned for non-positive new thresholds;
	// the prior limits stay active.
	ErrLimitUpdateRejected = errors.New("limit update rejected")

	// ErrStoreUnavailable wraps shared-state store I/O failures.
	ErrStoreUnavailable = errors.New("state store unavailable")
)

// CheckFailure is a validator's business-rule violation. It is recovered at
// the router boundary and converted into a verdict, never propagated.
type CheckFailure struct {
	Check  string
	Reason string
}

func (f *CheckFailure) Error() string {
	return f.Reason
}

// NewCheckFailure builds a CheckFailure for the named check.
func NewCheckFailure(check, format string, a ...interface{}) *CheckFailure {
	return &CheckFailure{Check: check, Reason: fmt.Sprintf(format, a...)}
}

// BrokerError is a dispatch failure from the execution capability.
type BrokerError struct {
	Broker string
	Err    error
}

func (e *BrokerError) Error() string {
	return fmt.Sprintf("broker %s: %v", e.Broker, e.Err)
}

func (e *BrokerError) Unwrap() error {
	return e.Err
}
