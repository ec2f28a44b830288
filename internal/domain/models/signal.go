package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SignalKind is the trade direction of a signal.
type SignalKind string

const (
	Buy  SignalKind = "BUY"
	Sell SignalKind = "SELL"
)

// Valid reports whether the kind is one of the two known directions.
func (k SignalKind) Valid() bool {
	return k == Buy || k == Sell
}

// ParseSignalKind parses the wire representation of a signal kind.
func ParseSignalKind(s string) (SignalKind, error) {
	switch SignalKind(s) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown signal kind %q", s)
	}
}

// Signal is a proposed trade instruction flowing through validation and
// execution. A Signal is immutable once created: every stage reads it and
// either forwards it unchanged or discards it with a reason.
type Signal struct {
	Symbol    string     `json:"symbol"`
	Kind      SignalKind `json:"kind"`
	Size      float64    `json:"size"`
	Timestamp int64      `json:"timestamp"` // epoch seconds

	// Optional fields consumed by specific validators. Zero means absent.
	EntryPrice    float64 `json:"entry_price,omitempty"`
	ExitPrice     float64 `json:"exit_price,omitempty"`
	StopLoss      float64 `json:"stop_loss,omitempty"`
	TakeProfit    float64 `json:"take_profit,omitempty"`
	ExpectedPrice float64 `json:"expected_price,omitempty"`
	Leverage      float64 `json:"leverage,omitempty"`
	Region        string  `json:"region,omitempty"`
}

// Age returns the absolute distance between the signal timestamp and now.
func (s *Signal) Age(now time.Time) time.Duration {
	d := now.Unix() - s.Timestamp
	if d < 0 {
		d = -d
	}
	return time.Duration(d) * time.Second
}

// Fingerprint is the serialized identity used for duplicate detection.
func (s *Signal) Fingerprint() string {
	b, _ := json.Marshal(s)
	return string(b)
}
