package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/logger"
	"TradeGate/pkg/metrics"
	"TradeGate/pkg/queue"
)

// stubStream mirrors the feed client's channel contract: Read hands out the
// current pair, a read failure emits the error and closes both, and
// Reconnect replaces them with a fresh pair.
type stubStream struct {
	mu         sync.Mutex
	sigCh      chan *models.Signal
	errCh      chan error
	connectErr error
	connects   atomic.Int32
	reconnects atomic.Int32
	closed     atomic.Bool
}

func newStubStream() *stubStream {
	return &stubStream{
		sigCh: make(chan *models.Signal, 16),
		errCh: make(chan error, 1),
	}
}

func (s *stubStream) send(sig *models.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sigCh <- sig
}

func (s *stubStream) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sigCh)
}

func (s *stubStream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errCh <- err
	close(s.errCh)
	close(s.sigCh)
}

func (s *stubStream) Connect(context.Context) error {
	s.connects.Add(1)
	return s.connectErr
}

func (s *stubStream) Subscribe(context.Context) error { return nil }

func (s *stubStream) Read(context.Context) (<-chan *models.Signal, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sigCh, s.errCh
}

func (s *stubStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects.Add(1)
	s.sigCh = make(chan *models.Signal, 16)
	s.errCh = make(chan error, 1)
	return nil
}

func (s *stubStream) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *stubStream) IsConnected() bool { return !s.closed.Load() }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestCollectorForwardsSignals(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := newStubStream()
	inbound := queue.New[*models.Signal](16)
	c := NewSignalCollector(stream, inbound, 0, metrics.Nop(), logger.Nop())

	require.NoError(t, c.Start(ctx))
	stream.send(&models.Signal{Symbol: "BTCUSD", Kind: models.Buy, Size: 1})

	waitFor(t, func() bool { return inbound.Len() == 1 })
	sig, ok := inbound.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, "BTCUSD", sig.Symbol)
}

func TestCollectorConnectFailure(t *testing.T) {
	stream := newStubStream()
	stream.connectErr = errors.New("dial refused")
	c := NewSignalCollector(stream, queue.New[*models.Signal](1), 0, metrics.Nop(), logger.Nop())

	assert.Error(t, c.Start(context.Background()))
}

func TestCollectorReconnectsOnStreamError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := newStubStream()
	c := NewSignalCollector(stream, queue.New[*models.Signal](1), 0, metrics.Nop(), logger.Nop())
	require.NoError(t, c.Start(ctx))

	stream.fail(errors.New("read: connection reset"))
	waitFor(t, func() bool { return stream.reconnects.Load() == 1 })
}

func TestCollectorResumesAfterStreamFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := newStubStream()
	inbound := queue.New[*models.Signal](16)
	c := NewSignalCollector(stream, inbound, 0, metrics.Nop(), logger.Nop())
	require.NoError(t, c.Start(ctx))

	// The client tears down its channel pair on a read error. The collector
	// has to pick up the replacement pair or the feed stays dead.
	stream.fail(errors.New("read: connection reset"))
	waitFor(t, func() bool { return stream.reconnects.Load() == 1 })

	stream.send(&models.Signal{Symbol: "ETHUSD", Kind: models.Sell, Size: 2})
	waitFor(t, func() bool { return inbound.Len() == 1 })

	sig, ok := inbound.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, "ETHUSD", sig.Symbol)
}

func TestCollectorDropsWhenQueueFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := newStubStream()
	inbound := queue.New[*models.Signal](1)
	c := NewSignalCollector(stream, inbound, 0, metrics.Nop(), logger.Nop())
	require.NoError(t, c.Start(ctx))

	stream.send(&models.Signal{Symbol: "BTCUSD", Kind: models.Buy, Size: 1})
	stream.send(&models.Signal{Symbol: "BTCUSD", Kind: models.Buy, Size: 2})

	waitFor(t, func() bool { return stream.pending() == 0 })
	assert.Equal(t, 1, inbound.Len(), "overflow is dropped, the feed is never stalled")
}

func TestCollectorThrottlesPerSymbol(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := newStubStream()
	inbound := queue.New[*models.Signal](16)
	c := NewSignalCollector(stream, inbound, 2, metrics.Nop(), logger.Nop())
	require.NoError(t, c.Start(ctx))

	for i := 0; i < 6; i++ {
		stream.send(&models.Signal{Symbol: "BTCUSD", Kind: models.Buy, Size: float64(i + 1)})
	}

	waitFor(t, func() bool { return stream.pending() == 0 })
	assert.LessOrEqual(t, inbound.Len(), 3, "burst beyond the bucket is throttled")
	assert.GreaterOrEqual(t, inbound.Len(), 2)
}

func TestCollectorStopClosesStream(t *testing.T) {
	stream := newStubStream()
	c := NewSignalCollector(stream, queue.New[*models.Signal](1), 0, metrics.Nop(), logger.Nop())

	assert.True(t, c.IsConnected())
	require.NoError(t, c.Stop())
	assert.True(t, stream.closed.Load())
	assert.False(t, c.IsConnected())
}
