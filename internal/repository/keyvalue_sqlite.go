package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"oyna-console/internal/logging"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{`
	CREATE TABLE IF NOT EXISTS console_state (
		state_key TEXT PRIMARY KEY,
		state_value TEXT NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	)`,
		`CREATE INDEX IF NOT EXISTS idx_console_state_expires ON console_state(expires_at)`,
	},
	get: `SELECT state_value, expires_at, updated_at FROM console_state
		WHERE state_key = ? AND (expires_at = 0 OR expires_at > ?)`,
	upsert: `INSERT INTO console_state (state_key, state_value, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(state_key) DO UPDATE SET
			state_value = excluded.state_value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
	remove: `DELETE FROM console_state WHERE state_key = ?`,
	sweep:  `DELETE FROM console_state WHERE expires_at > 0 AND expires_at <= ?`,
}

// NewSQLiteKeyValueRepository opens (or creates) the SQLite database at path.
// Use ":memory:" for a throwaway database.
func NewSQLiteKeyValueRepository(ctx context.Context, path string, log logging.Logger) (*SQLKeyValueRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer; one connection also keeps :memory: alive
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	repo := newSQLKeyValueRepository(db, sqliteDialect, log)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	repo.log.Info(ctx, "state store ready", "path", path)
	return repo, nil
}
