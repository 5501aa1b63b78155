package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"oyna-console/internal/logging"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{`
	CREATE TABLE IF NOT EXISTS console_state (
		state_key VARCHAR(255) NOT NULL PRIMARY KEY,
		state_value MEDIUMTEXT NOT NULL,
		expires_at BIGINT NOT NULL DEFAULT 0,
		updated_at BIGINT NOT NULL,
		INDEX idx_console_state_expires (expires_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	},
	get: "SELECT state_value, expires_at, updated_at FROM console_state " +
		"WHERE state_key = ? AND (expires_at = 0 OR expires_at > ?)",
	upsert: "INSERT INTO console_state (state_key, state_value, expires_at, updated_at) VALUES (?, ?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE state_value = VALUES(state_value), expires_at = VALUES(expires_at), updated_at = VALUES(updated_at)",
	remove: "DELETE FROM console_state WHERE state_key = ?",
	sweep:  "DELETE FROM console_state WHERE expires_at > 0 AND expires_at <= ?",
}

// NewMySQLKeyValueRepository connects to MySQL and creates the state table.
func NewMySQLKeyValueRepository(ctx context.Context, dsn string, log logging.Logger) (*SQLKeyValueRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	repo := newSQLKeyValueRepository(db, mysqlDialect, log)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}
