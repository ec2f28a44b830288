package latency

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"TradeGate/internal/domain/models"
	"TradeGate/internal/domain/repository"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/store"
)

// ringSize bounds the in-memory sample window per operation.
const ringSize = 100

// Token marks the start of one measured operation.
type Token struct {
	start time.Time
}

// Config holds monitor thresholds.
type Config struct {
	Threshold time.Duration // high-latency threshold
	StatsTTL  time.Duration // retention of persisted cumulative stats
}

func (c Config) withDefaults() Config {
	if c.Threshold == 0 {
		c.Threshold = 100 * time.Millisecond
	}
	if c.StatsTTL == 0 {
		c.StatsTTL = time.Hour
	}
	return c
}

// Monitor wraps named operations with latency measurement. It keeps a
// bounded in-memory ring of recent samples per operation and folds every
// sample into persisted cumulative statistics. Each Monitor is owned by a
// single consumption loop; the rings take no lock.
type Monitor struct {
	cfg     Config
	store   store.Store
	metrics repository.Metrics
	logger  *logger.Logger
	samples map[string][]time.Duration
	now     func() time.Time
}

// NewMonitor creates a latency monitor over the given store. Every sample
// is also observed on the operation duration histogram.
func NewMonitor(cfg Config, st store.Store, rec repository.Metrics, lgr *logger.Logger) *Monitor {
	return &Monitor{
		cfg:     cfg.withDefaults(),
		store:   st,
		metrics: rec,
		logger:  lgr,
		samples: make(map[string][]time.Duration),
		now:     time.Now,
	}
}

// Start captures a start instant for operation. It has no side effect.
func (m *Monitor) Start(_ string) Token {
	return Token{start: m.now()}
}

// End computes the elapsed duration, appends it to the operation's ring,
// flags threshold violations, and updates the persisted cumulative stats.
// Store failures are metrics-persistence failures: logged and swallowed,
// never blocking signal flow.
func (m *Monitor) End(ctx context.Context, operation string, token Token) time.Duration {
	elapsed := m.now().Sub(token.start)

	ring := append(m.samples[operation], elapsed)
	if len(ring) > ringSize {
		ring = ring[len(ring)-ringSize:]
	}
	m.samples[operation] = ring

	m.metrics.RecordLatency(operation, elapsed.Seconds())
	if elapsed > m.cfg.Threshold {
		m.recordHighLatency(ctx, operation, elapsed)
	}
	m.persistCumulative(ctx, operation, elapsed)

	return elapsed
}

// Average returns the mean of the in-memory ring for operation.
func (m *Monitor) Average(operation string) (time.Duration, bool) {
	ring := m.samples[operation]
	if len(ring) == 0 {
		return 0, false
	}
	var total time.Duration
	for _, d := range ring {
		total += d
	}
	return total / time.Duration(len(ring)), true
}

// Percentile returns the nearest-rank percentile of the in-memory ring:
// index floor(p*n) on a sorted copy, clamped to the valid range.
func (m *Monitor) Percentile(operation string, p float64) (time.Duration, bool) {
	ring := m.samples[operation]
	if len(ring) == 0 {
		return 0, false
	}
	sorted := make([]time.Duration, len(ring))
	copy(sorted, ring)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(p * float64(len(sorted)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx], true
}

// Samples returns a copy of the in-memory ring, oldest first.
func (m *Monitor) Samples(operation string) []time.Duration {
	ring := m.samples[operation]
	out := make([]time.Duration, len(ring))
	copy(out, ring)
	return out
}

// Stats reads the persisted cumulative statistics for operation.
func (m *Monitor) Stats(ctx context.Context, operation string) (*models.LatencyStats, error) {
	count, _, err := store.GetInt(ctx, m.store, models.KeyLatencyCount(operation))
	if err != nil {
		return nil, err
	}
	sum, _, err := store.GetFloat(ctx, m.store, models.KeyLatencySum(operation))
	if err != nil {
		return nil, err
	}
	min, ok, err := store.GetFloat(ctx, m.store, models.KeyLatencyMin(operation))
	if err != nil {
		return nil, err
	}
	if !ok {
		min = 0
	}
	max, _, err := store.GetFloat(ctx, m.store, models.KeyLatencyMax(operation))
	if err != nil {
		return nil, err
	}

	stats := &models.LatencyStats{
		Operation: operation,
		Count:     count,
		SumMS:     sum,
		MinMS:     min,
		MaxMS:     max,
	}
	if count > 0 {
		stats.AvgMS = sum / float64(count)
	}
	return stats, nil
}

// Reset clears the in-memory rings and the persisted keys for all
// operations.
func (m *Monitor) Reset(ctx context.Context) error {
	m.samples = make(map[string][]time.Duration)
	return m.store.DeleteByPrefix(ctx, models.KeyLatencyPrefix)
}

func (m *Monitor) recordHighLatency(ctx context.Context, operation string, elapsed time.Duration) {
	event, _ := json.Marshal(map[string]interface{}{
		"operation":    operation,
		"latency_ms":   float64(elapsed) / float64(time.Millisecond),
		"threshold_ms": float64(m.cfg.Threshold) / float64(time.Millisecond),
		"timestamp":    m.now().Unix(),
	})
	if err := m.store.ListPush(ctx, models.KeyHighLatency, string(event)); err != nil {
		m.logger.Warn("high latency event not persisted",
			logger.String("operation", operation), logger.Error(err))
		return
	}
	_ = m.store.Expire(ctx, models.KeyHighLatency, m.cfg.StatsTTL)
}

func (m *Monitor) persistCumulative(ctx context.Context, operation string, elapsed time.Duration) {
	ms := float64(elapsed) / float64(time.Millisecond)

	count, _, err := store.GetInt(ctx, m.store, models.KeyLatencyCount(operation))
	if err != nil {
		m.logger.Warn("latency stats read failed",
			logger.String("operation", operation), logger.Error(err))
		return
	}
	sum, _, _ := store.GetFloat(ctx, m.store, models.KeyLatencySum(operation))
	min, ok, _ := store.GetFloat(ctx, m.store, models.KeyLatencyMin(operation))
	if !ok {
		min = math.MaxFloat64
	}
	max, _, _ := store.GetFloat(ctx, m.store, models.KeyLatencyMax(operation))

	ttl := m.cfg.StatsTTL
	writes := map[string]string{
		models.KeyLatencyCount(operation): store.FormatInt(count + 1),
		models.KeyLatencySum(operation):   store.FormatFloat(sum + ms),
		models.KeyLatencyMin(operation):   store.FormatFloat(math.Min(min, ms)),
		models.KeyLatencyMax(operation):   store.FormatFloat(math.Max(max, ms)),
		models.KeyLatency(operation):      store.FormatFloat((sum + ms) / float64(count+1)),
	}
	for key, value := range writes {
		if err := m.store.SetWithTTL(ctx, key, value, ttl); err != nil {
			m.logger.Warn("latency stats write failed",
				logger.String("operation", operation), logger.Error(err))
			return
		}
	}
}
