package execution

import (
	"context"
	"time"

	"TradeGate/internal/domain/models"
)

// SimBroker fills every order after a small simulated dispatch delay. It is
// the default capability when no venue adapter is configured; FailFn lets
// tests and drills inject dispatch failures.
type SimBroker struct {
	Delay  time.Duration
	FailFn func(symbol string) error
}

func NewSimBroker() *SimBroker {
	return &SimBroker{Delay: time.Millisecond}
}

func (b *SimBroker) Name() string { return "sim" }

func (b *SimBroker) PlaceOrder(ctx context.Context, kind models.SignalKind, size float64, symbol string) error {
	if b.FailFn != nil {
		if err := b.FailFn(symbol); err != nil {
			return &models.BrokerError{Broker: b.Name(), Err: err}
		}
	}
	if b.Delay > 0 {
		select {
		case <-time.After(b.Delay):
		case <-ctx.Done():
			return &models.BrokerError{Broker: b.Name(), Err: ctx.Err()}
		}
	}
	return nil
}
