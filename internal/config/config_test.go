package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 5*time.Minute, cfg.Gate.TTL)
	assert.Equal(t, 3, cfg.Gate.MaxAttempts)
	assert.Equal(t, []string{"admin", "superadmin", "moderator"}, cfg.Session.AdminRoles)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORAGE_TYPE", " Redis ")
	t.Setenv("GATE_CODE", "4821")
	t.Setenv("API_BASE_URL", "https://api.oyna.gg")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "4821", cfg.Gate.Code)
	assert.Equal(t, "https://api.oyna.gg", cfg.API.BaseURL)
	assert.Equal(t, "localhost:6380", cfg.Cache.RedisAddress())
}

func TestLoad_UnknownStorage(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "mongodb")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}

func TestValidate_ProductionSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidate_ProductionOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "s3cret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_ALLOWED_ORIGINS")

	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://console.oyna.gg, *")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://console.oyna.gg")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://console.oyna.gg"}, cfg.Server.AllowedOrigins)
}

func TestDSNs(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 3306, Name: "oyna", User: "u", Password: "p"}
	assert.Equal(t, "u:p@tcp(db:3306)/oyna?parseTime=true", db.DSN())

	pg := PostgresConfig{Host: "pg", Port: 5432, Name: "oyna", User: "u", Password: "p", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@pg:5432/oyna?sslmode=disable", pg.DSN())
}
