package models

// VerdictStatus is the Router's accept/reject decision for one signal.
type VerdictStatus string

const (
	StatusValid    VerdictStatus = "valid"
	StatusRejected VerdictStatus = "reject"
)

// ValidationVerdict is the result of running the validation chain once.
// Status is Rejected if and only if at least one entry in Details is false;
// Reason always corresponds to the first failing check in declared order.
type ValidationVerdict struct {
	Status  VerdictStatus   `json:"status"`
	Reason  string          `json:"reason"`
	Details map[string]bool `json:"details"`
}

// ValidVerdict builds an accepting verdict with the given per-check details.
func ValidVerdict(details map[string]bool) *ValidationVerdict {
	return &ValidationVerdict{
		Status:  StatusValid,
		Reason:  "All checks passed",
		Details: details,
	}
}

// RejectedVerdict builds a rejecting verdict with the given reason.
func RejectedVerdict(reason string, details map[string]bool) *ValidationVerdict {
	return &ValidationVerdict{
		Status:  StatusRejected,
		Reason:  reason,
		Details: details,
	}
}

// Accepted reports whether the signal may proceed to execution.
func (v *ValidationVerdict) Accepted() bool {
	return v.Status == StatusValid
}
