package usecase

import (
	"context"
	"errors"

	"TradeGate/internal/domain/models"
	drepo "TradeGate/internal/domain/repository"
	"TradeGate/internal/service/ratelimit"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/queue"
)

// SignalCollector collects signals from the strategy feed and feeds them
// into the inbound queue. Backpressure is bounded by the queue: when it is
// full the collector drops the signal rather than stalling the feed. A
// per-symbol token bucket throttles feeds that misbehave before they
// reach the queue.
type SignalCollector struct {
	stream    drepo.SignalStream
	inbound   *queue.Queue[*models.Signal]
	metrics   drepo.Metrics
	logger    *logger.Logger
	limiter   *ratelimit.Limiter
	maxPerSec float64
}

// NewSignalCollector creates a new SignalCollector instance. maxPerSec
// bounds per-symbol intake; zero disables throttling.
func NewSignalCollector(stream drepo.SignalStream, inbound *queue.Queue[*models.Signal], maxPerSec float64, metrics drepo.Metrics, lgr *logger.Logger) *SignalCollector {
	return &SignalCollector{
		stream:    stream,
		inbound:   inbound,
		metrics:   metrics,
		logger:    lgr,
		limiter:   ratelimit.New(),
		maxPerSec: maxPerSec,
	}
}

// IsConnected returns true if the signal stream is connected.
func (c *SignalCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *SignalCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	sigCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, sigCh, errCh)
	return nil
}

// consume drains the stream's channel pair. The feed client closes both
// channels after a read error, so a closed channel means the stream is dead
// and must be reopened with a fresh pair; receiving from the retired
// channels again would spin on the zero value forever.
func (c *SignalCollector) consume(ctx context.Context, sigCh <-chan *models.Signal, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				// Wait for the signal channel to close too.
				errCh = nil
				continue
			}
			if err == nil {
				continue
			}
			c.metrics.RecordError("stream")
			c.logger.Warn("feed stream error", logger.Error(err))
			if sigCh, errCh, ok = c.reopen(ctx); !ok {
				return
			}
		case sig, ok := <-sigCh:
			if !ok {
				if sigCh, errCh, ok = c.reopen(ctx); !ok {
					return
				}
				continue
			}
			if sig == nil {
				continue
			}
			if c.maxPerSec > 0 && !c.limiter.Allow(sig.Symbol, c.maxPerSec, c.maxPerSec) {
				c.metrics.RecordError("feed_throttled")
				continue
			}
			if err := c.inbound.TryPush(sig); err != nil {
				if errors.Is(err, queue.ErrFull) {
					c.metrics.RecordError("inbound_full")
					c.logger.Warn("inbound queue full, dropping signal",
						logger.String("symbol", sig.Symbol))
					continue
				}
				if errors.Is(err, queue.ErrClosed) {
					return
				}
			}
			c.metrics.RecordQueueDepth("inbound", c.inbound.Len())
		}
	}
}

// reopen re-establishes the stream and returns a fresh channel pair. It
// keeps retrying until the context is cancelled; Reconnect itself waits the
// configured delay between attempts.
func (c *SignalCollector) reopen(ctx context.Context) (<-chan *models.Signal, <-chan error, bool) {
	for ctx.Err() == nil {
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("reconnect")
			c.logger.Warn("feed reconnect failed", logger.Error(err))
			continue
		}
		sigCh, errCh := c.stream.Read(ctx)
		return sigCh, errCh, true
	}
	return nil, nil, false
}

// Stop closes the feed connection.
func (c *SignalCollector) Stop() error { return c.stream.Close() }
