package repository

import (
	"context"
	"sync"
	"time"

	"TradeGate/internal/domain/models"
	drepo "TradeGate/internal/domain/repository"
	"TradeGate/pkg/kafka"
	"TradeGate/pkg/logger"
)

// KafkaAudit publishes verdicts and outcomes to the audit topic, keyed by
// symbol. It satisfies drepo.AuditSink; callers treat failures as
// fire-and-forget.
type KafkaAudit struct {
	publisher *kafka.Publisher
	topic     string
}

// NewKafkaAudit creates a Kafka-backed audit sink.
func NewKafkaAudit(publisher *kafka.Publisher, topic string) *KafkaAudit {
	return &KafkaAudit{publisher: publisher, topic: topic}
}

func (a *KafkaAudit) AuditVerdict(ctx context.Context, sig *models.Signal, verdict *models.ValidationVerdict) error {
	return a.publisher.Publish(ctx, a.topic, []byte(sig.Symbol), map[string]interface{}{
		"type":    "verdict",
		"symbol":  sig.Symbol,
		"kind":    sig.Kind,
		"size":    sig.Size,
		"status":  verdict.Status,
		"reason":  verdict.Reason,
		"details": verdict.Details,
		"ts":      time.Now().Unix(),
	})
}

func (a *KafkaAudit) AuditOutcome(ctx context.Context, outcome *models.ExecutionOutcome) error {
	return a.publisher.Publish(ctx, a.topic, []byte(outcome.Symbol), map[string]interface{}{
		"type":       "outcome",
		"id":         outcome.ID,
		"symbol":     outcome.Symbol,
		"kind":       outcome.Kind,
		"size":       outcome.Size,
		"latency_ms": float64(outcome.Latency) / float64(time.Millisecond),
		"success":    outcome.Success,
		"error":      outcome.Error,
		"ts":         outcome.Timestamp,
	})
}

func (a *KafkaAudit) Close() error {
	return a.publisher.Close()
}

// ClickHouseAudit buffers outcomes and flushes them to the outcome
// repository on size or interval. Verdict audits are a no-op here; only
// outcomes reach the durable table.
type ClickHouseAudit struct {
	repo          *OutcomeRepository
	batchSize     int
	flushInterval time.Duration
	logger        *logger.Logger

	mu     sync.Mutex
	buf    []*models.ExecutionOutcome
	done   chan struct{}
	closed sync.Once
}

// NewClickHouseAudit creates the batching sink and starts its flush loop.
func NewClickHouseAudit(repo *OutcomeRepository, batchSize int, flushInterval time.Duration, lgr *logger.Logger) *ClickHouseAudit {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	a := &ClickHouseAudit{
		repo:          repo,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        lgr,
		buf:           make([]*models.ExecutionOutcome, 0, batchSize),
		done:          make(chan struct{}),
	}
	go a.flushLoop()
	return a
}

func (a *ClickHouseAudit) AuditVerdict(context.Context, *models.Signal, *models.ValidationVerdict) error {
	return nil
}

func (a *ClickHouseAudit) AuditOutcome(ctx context.Context, outcome *models.ExecutionOutcome) error {
	a.mu.Lock()
	a.buf = append(a.buf, outcome)
	full := len(a.buf) >= a.batchSize
	a.mu.Unlock()
	if full {
		a.flush(ctx)
	}
	return nil
}

func (a *ClickHouseAudit) flushLoop() {
	ticker := time.NewTicker(a.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.flush(context.Background())
		}
	}
}

func (a *ClickHouseAudit) flush(ctx context.Context) {
	a.mu.Lock()
	if len(a.buf) == 0 {
		a.mu.Unlock()
		return
	}
	batch := a.buf
	a.buf = make([]*models.ExecutionOutcome, 0, a.batchSize)
	a.mu.Unlock()

	if err := a.repo.StoreBatch(ctx, batch); err != nil {
		a.logger.Warn("outcome batch flush failed",
			logger.Int("batch", len(batch)), logger.Error(err))
	}
}

// Close flushes the remaining buffer and stops the loop.
func (a *ClickHouseAudit) Close() error {
	a.closed.Do(func() { close(a.done) })
	a.flush(context.Background())
	return nil
}

// MultiSink fans audit writes out to every configured sink. The first
// error is returned after all sinks have been attempted.
type MultiSink struct {
	sinks []drepo.AuditSink
}

// NewMultiSink composes sinks; nil entries are skipped.
func NewMultiSink(sinks ...drepo.AuditSink) *MultiSink {
	out := make([]drepo.AuditSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiSink{sinks: out}
}

func (m *MultiSink) AuditVerdict(ctx context.Context, sig *models.Signal, verdict *models.ValidationVerdict) error {
	var first error
	for _, s := range m.sinks {
		if err := s.AuditVerdict(ctx, sig, verdict); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiSink) AuditOutcome(ctx context.Context, outcome *models.ExecutionOutcome) error {
	var first error
	for _, s := range m.sinks {
		if err := s.AuditOutcome(ctx, outcome); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NopSink discards all audit writes. It stands in when neither Kafka nor
// ClickHouse is configured.
type NopSink struct{}

func (NopSink) AuditVerdict(context.Context, *models.Signal, *models.ValidationVerdict) error {
	return nil
}
func (NopSink) AuditOutcome(context.Context, *models.ExecutionOutcome) error { return nil }
func (NopSink) Close() error                                                 { return nil }
