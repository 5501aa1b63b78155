package repository

import (
	"context"
	"time"

	"oyna-console/internal/model"
)

// KeyValueRepository persists per-browser console state in a SQL database.
type KeyValueRepository interface {
	// Get returns nil, nil when the key is absent or expired at now.
	Get(ctx context.Context, key string, now time.Time) (*model.StoredValue, error)

	// Put inserts or replaces a value. A zero expiresAt never expires.
	Put(ctx context.Context, key, value string, expiresAt time.Time) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes entries whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	Ping(ctx context.Context) error

	Close() error
}
