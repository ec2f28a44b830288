package store

import (
	"context"
	"strconv"
	"time"
)

// Store is the shared state store consumed by the validation and execution
// pipelines: key-value with TTL, list push/range/trim, publish-subscribe and
// prefix deletion. Per-key operations are atomic; multi-key sequences are
// not transactional.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetWithTTL stores value under key. A non-positive ttl means no expiry.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// ListPush prepends value to the list at key.
	ListPush(ctx context.Context, key, value string) error

	// ListRange returns list elements between start and stop inclusive.
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ListTrim keeps only list elements between start and stop inclusive.
	ListTrim(ctx context.Context, key string, start, stop int64) error

	// Expire refreshes the TTL of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Publish sends message to all subscribers of channel.
	Publish(ctx context.Context, channel, message string) error

	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	Close() error
}

// GetFloat reads a float64 value from the store.
func GetFloat(ctx context.Context, s Store, key string) (float64, bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// GetInt reads an int64 value from the store.
func GetInt(ctx context.Context, s Store, key string) (int64, bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// FormatFloat renders a float64 the way the store expects it.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatInt renders an int64 the way the store expects it.
func FormatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
