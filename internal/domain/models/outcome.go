package models

import "time"

// ExecutionOutcome is the result of one order executor invocation. It is
// created at the end of execution, persisted once, and never mutated;
// aggregated statistics are derived from it afterwards.
type ExecutionOutcome struct {
	ID        string        `json:"id"`
	Symbol    string        `json:"symbol"`
	Kind      SignalKind    `json:"kind"`
	Size      float64       `json:"size"`
	Latency   time.Duration `json:"latency_ns"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Timestamp int64         `json:"timestamp"` // epoch seconds
}

// ExecutionStats aggregates outcomes for one symbol.
type ExecutionStats struct {
	Symbol       string  `json:"symbol"`
	SuccessCount int64   `json:"success_count"`
	FailureCount int64   `json:"failure_count"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// LatencyStats is the persisted cumulative view for one named operation.
type LatencyStats struct {
	Operation string  `json:"operation"`
	Count     int64   `json:"count"`
	SumMS     float64 `json:"sum_ms"`
	MinMS     float64 `json:"min_ms"`
	MaxMS     float64 `json:"max_ms"`
	AvgMS     float64 `json:"avg_ms"`
}
