package ports

import (
	"context"
	"time"
)

// KeyValueStore is a small durable key/value capability (used for singleton records).
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// SetIfAbsent writes value only when key is missing and reports whether it wrote.
	SetIfAbsent(ctx context.Context, key string, value string) (bool, error)
	Delete(ctx context.Context, key string) error
}
