package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"oyna-console/internal/logging"
	"oyna-console/internal/model"
)

// dialect holds the statements that differ between SQL engines.
// Timestamps are stored as unix milliseconds; expires_at 0 means no expiry.
type dialect struct {
	name   string
	schema []string
	get    string
	upsert string
	remove string
	sweep  string
}

// SQLKeyValueRepository implements KeyValueRepository on database/sql.
type SQLKeyValueRepository struct {
	db  *sql.DB
	d   dialect
	log logging.Logger
}

func newSQLKeyValueRepository(db *sql.DB, d dialect, log logging.Logger) *SQLKeyValueRepository {
	if log == nil {
		log = logging.Nop()
	}
	return &SQLKeyValueRepository{
		db:  db,
		d:   d,
		log: log.With("component", "repository", "driver", d.name),
	}
}

// Migrate creates the state table when it does not exist.
func (r *SQLKeyValueRepository) Migrate(ctx context.Context) error {
	for _, stmt := range r.d.schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create %s tables: %w", r.d.name, err)
		}
	}
	return nil
}

// Get retrieves a live value by key.
func (r *SQLKeyValueRepository) Get(ctx context.Context, key string, now time.Time) (*model.StoredValue, error) {
	var (
		value     string
		expiresAt int64
		updatedAt int64
	)

	err := r.db.QueryRowContext(ctx, r.d.get, key, now.UnixMilli()).Scan(&value, &expiresAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get state %q: %w", key, err)
	}

	sv := &model.StoredValue{
		Key:       key,
		Value:     value,
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}
	if expiresAt > 0 {
		sv.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	}
	return sv, nil
}

// Put inserts or replaces a value.
func (r *SQLKeyValueRepository) Put(ctx context.Context, key, value string, expiresAt time.Time) error {
	var exp int64
	if !expiresAt.IsZero() {
		exp = expiresAt.UnixMilli()
	}

	if _, err := r.db.ExecContext(ctx, r.d.upsert, key, value, exp, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to put state %q: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (r *SQLKeyValueRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.d.remove, key); err != nil {
		return fmt.Errorf("failed to delete state %q: %w", key, err)
	}
	return nil
}

// DeleteExpired removes every entry that expired at or before now.
func (r *SQLKeyValueRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.d.sweep, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired state: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		r.log.Info(ctx, "expired state removed", "rows", deleted)
	}
	return deleted, nil
}

// Ping checks the database connection.
func (r *SQLKeyValueRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLKeyValueRepository) Close() error {
	return r.db.Close()
}

var _ KeyValueRepository = (*SQLKeyValueRepository)(nil)
