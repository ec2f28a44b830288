package models

// Requests for the ingestion HTTP endpoints. Defined in domain for consistency and reuse.

// SubmitSignalRequest is the inbound signal-shaped payload.
type SubmitSignalRequest struct {
	Symbol        string  `json:"symbol" validate:"required"`
	Kind          string  `json:"kind" validate:"required,oneof=BUY SELL"`
	Size          float64 `json:"size" validate:"required,gt=0"`
	Timestamp     int64   `json:"timestamp"`
	EntryPrice    float64 `json:"entry_price" validate:"gte=0"`
	ExitPrice     float64 `json:"exit_price" validate:"gte=0"`
	StopLoss      float64 `json:"stop_loss" validate:"gte=0"`
	TakeProfit    float64 `json:"take_profit" validate:"gte=0"`
	ExpectedPrice float64 `json:"expected_price" validate:"gte=0"`
	Leverage      float64 `json:"leverage" default:"1" validate:"gte=0"`
	Region        string  `json:"region"`
}

// SubmitSignalResponse acknowledges an enqueued signal.
type SubmitSignalResponse struct {
	ID     string `json:"id"`
	Queued bool   `json:"queued"`
	Symbol string `json:"symbol"`
}

// ExecutionStatsRequest selects one symbol's execution statistics.
type ExecutionStatsRequest struct {
	Symbol string `param:"symbol" validate:"required"`
}

// LatencyStatsRequest selects one operation's cumulative latency statistics.
type LatencyStatsRequest struct {
	Operation string `param:"operation" validate:"required"`
}
