package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by KV.Get when the key has never been written.
	ErrNotFound = errors.New("store: key not found")

	// ErrMalformed is returned when a stored value cannot be decoded.
	ErrMalformed = errors.New("store: malformed value")
)

// KV is the durable key-value store the service persists its state in.
// Implementations must be safe for concurrent use: the heartbeat writer,
// the command dispatcher and the ops server share one instance.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
