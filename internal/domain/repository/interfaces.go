package repository

import (
	"context"

	"TradeGate/internal/domain/models"
)

// SignalStream is an external source of trade signals (remote strategy
// agents, usually over a websocket feed).
type SignalStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Signal, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Broker is the execution capability a validated order is dispatched to.
// Venue protocol details live behind this interface.
type Broker interface {
	Name() string
	PlaceOrder(ctx context.Context, kind models.SignalKind, size float64, symbol string) error
}

// AuditSink receives verdicts and outcomes for durable auditing. Writes are
// fire-and-forget from the pipeline's point of view.
type AuditSink interface {
	AuditVerdict(ctx context.Context, signal *models.Signal, verdict *models.ValidationVerdict) error
	AuditOutcome(ctx context.Context, outcome *models.ExecutionOutcome) error
	Close() error
}

// Metrics records pipeline counters and timings.
type Metrics interface {
	RecordVerdict(status, check string)
	RecordExecution(symbol string, success bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordQueueDepth(queue string, depth int)
}
