package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TradeGate/internal/domain/models"
)

// outcomeSchema is idempotent; ReplacingMergeTree collapses duplicate ids
// if an outcome ever gets written twice.
const outcomeSchema = `
CREATE TABLE IF NOT EXISTS %s (
    id         String,
    ts         DateTime,
    symbol     LowCardinality(String),
    kind       LowCardinality(String),
    size       Float64,
    latency_ms Float64,
    success    UInt8,
    error      String
) ENGINE = ReplacingMergeTree()
ORDER BY (symbol, ts, id)
TTL ts + INTERVAL 90 DAY
`

// OutcomeRepository persists execution outcomes to ClickHouse for durable
// audit. It is a sink only: the hot path never reads from it.
type OutcomeRepository struct {
	db    *sql.DB
	table string
}

// NewOutcomeRepository creates a ClickHouse outcome repository.
func NewOutcomeRepository(db *sql.DB, table string) *OutcomeRepository {
	return &OutcomeRepository{db: db, table: table}
}

// Init ensures the outcome table exists.
func (r *OutcomeRepository) Init(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(outcomeSchema, r.table))
	if err != nil {
		return fmt.Errorf("init outcome table: %w", err)
	}
	return nil
}

// Store inserts one outcome.
func (r *OutcomeRepository) Store(ctx context.Context, o *models.ExecutionOutcome) error {
	q := fmt.Sprintf("INSERT INTO %s (id, ts, symbol, kind, size, latency_ms, success, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", r.table)
	_, err := r.db.ExecContext(ctx, q, outcomeArgs(o)...)
	return err
}

// StoreBatch inserts outcomes in chunks to keep round-trips bounded.
func (r *OutcomeRepository) StoreBatch(ctx context.Context, outcomes []*models.ExecutionOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	const chunkSize = 1000
	for start := 0; start < len(outcomes); start += chunkSize {
		end := start + chunkSize
		if end > len(outcomes) {
			end = len(outcomes)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, o := range outcomes[start:end] {
			if o == nil || o.ID == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, outcomeArgs(o)...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (id, ts, symbol, kind, size, latency_ms, success, error) VALUES %s", r.table, strings.Join(values, ","))
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// Query returns recent outcomes for a symbol, newest first.
func (r *OutcomeRepository) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.ExecutionOutcome, error) {
	q := fmt.Sprintf("SELECT id, ts, symbol, kind, size, latency_ms, success, error FROM %s WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", r.table)
	rows, err := r.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []*models.ExecutionOutcome
	for rows.Next() {
		var (
			o         models.ExecutionOutcome
			ts        time.Time
			kind      string
			latencyMS float64
			success   uint8
		)
		if err := rows.Scan(&o.ID, &ts, &o.Symbol, &kind, &o.Size, &latencyMS, &success, &o.Error); err != nil {
			return nil, err
		}
		o.Timestamp = ts.Unix()
		o.Kind = models.SignalKind(kind)
		o.Latency = time.Duration(latencyMS * float64(time.Millisecond))
		o.Success = success == 1
		outcomes = append(outcomes, &o)
	}
	return outcomes, rows.Err()
}

// Health pings the underlying pool.
func (r *OutcomeRepository) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func outcomeArgs(o *models.ExecutionOutcome) []interface{} {
	success := uint8(0)
	if o.Success {
		success = 1
	}
	return []interface{}{
		o.ID,
		time.Unix(o.Timestamp, 0),
		o.Symbol,
		string(o.Kind),
		o.Size,
		float64(o.Latency) / float64(time.Millisecond),
		success,
		o.Error,
	}
}
