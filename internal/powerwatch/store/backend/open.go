// Package backend picks a store.KV implementation from an address string.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store/memory"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store/redis"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store/sqlite"
)

var ErrUnsupportedScheme = errors.New("store: unsupported address scheme")

// Open connects to the store at addr:
//
//	redis://[user:pass@]host:port/db, rediss://…   Redis
//	sqlite://path/to/file.db                       local SQLite file
//	memory://                                      process memory (tests, dry runs)
func Open(ctx context.Context, addr string) (store.KV, error) {
	scheme, rest, ok := strings.Cut(addr, "://")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, addr)
	}

	switch strings.ToLower(scheme) {
	case "redis", "rediss":
		kv, err := redis.Open(ctx, addr)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case "sqlite":
		if rest == "" {
			return nil, fmt.Errorf("store: sqlite address needs a path: %q", addr)
		}
		kv, err := sqlite.Open(ctx, rest)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}
