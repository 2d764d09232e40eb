package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dbpkg "github.com/BrandonDHaskell/powerwatch/internal/db"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
)

// KVStore implements store.KV on the kv table.  Reads go straight to the
// pool; writes are queued on the single-writer worker.
type KVStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
	owned  bool
}

// NewKVStore uses a database and worker owned by the caller.  Close is a
// no-op for stores built this way.
func NewKVStore(db *sql.DB, writer *dbpkg.Worker) *KVStore {
	return &KVStore{db: db, writer: writer}
}

// Open opens (and migrates) the database at path and returns a store that
// owns both the connection and its writer.
func Open(ctx context.Context, path string) (*KVStore, error) {
	conn, err := dbpkg.Open(ctx, dbpkg.Config{Path: path})
	if err != nil {
		return nil, err
	}
	return &KVStore{db: conn, writer: dbpkg.NewWorker(conn), owned: true}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
SELECT value FROM kv WHERE key = ?;
`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("Get %s: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO kv(key, value, updated_at_ms) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at_ms = excluded.updated_at_ms;
`, key, value, nowMs); err != nil {
			return fmt.Errorf("Set %s: %w", key, err)
		}
		return nil
	})
}

func (s *KVStore) Close() error {
	if !s.owned {
		return nil
	}
	s.writer.Close()
	return s.db.Close()
}
