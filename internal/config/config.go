package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all console configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Log      LogConfig
	API      APIConfig
	Gate     GateConfig
	Session  SessionConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Postgres PostgresConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	StaticDir       string        `envconfig:"SERVER_STATIC_DIR" default:"./static"`
	AllowedOrigins  []string      `envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"oyna-console"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`  // debug, info, warn, error
	Format string `envconfig:"LOG_FORMAT" default:"text"` // text or json
}

// APIConfig points the console at the remote Oyna.gg REST API.
type APIConfig struct {
	BaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:3000/api"`
	Timeout time.Duration `envconfig:"API_TIMEOUT" default:"15s"`
}

// GateConfig holds PIN gate settings for sensitive sections.
type GateConfig struct {
	Code        string        `envconfig:"GATE_CODE" default:""`
	TTL         time.Duration `envconfig:"GATE_TTL" default:"5m"`
	MaxAttempts int           `envconfig:"GATE_MAX_ATTEMPTS" default:"3"`
	Redirect    string        `envconfig:"GATE_REDIRECT" default:"/console/dashboard"`
}

// SessionConfig holds cookie and descriptor settings.
type SessionConfig struct {
	Secret           string        `envconfig:"SESSION_SECRET" default:"change-me"`
	DescriptorCookie string        `envconfig:"SESSION_DESCRIPTOR_COOKIE" default:"oyna_user"`
	ClientCookie     string        `envconfig:"SESSION_CLIENT_COOKIE" default:"oyna_cid"`
	TTL              time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	Secure           bool          `envconfig:"SESSION_SECURE" default:"false"`
	AdminRoles       []string      `envconfig:"SESSION_ADMIN_ROLES" default:"admin,superadmin,moderator"`
}

// StorageConfig selects the backend for per-browser persisted state.
type StorageConfig struct {
	Type       string        `envconfig:"STORAGE_TYPE" default:"memory"` // memory, redis, sqlite, mysql, postgres
	TTL        time.Duration `envconfig:"STORAGE_TTL" default:"720h"`
	SQLitePath string        `envconfig:"STORAGE_SQLITE_PATH" default:"./data/console.db"`
	SweepEvery time.Duration `envconfig:"STORAGE_SWEEP_INTERVAL" default:"10m"`
}

// CacheConfig holds Redis settings.
type CacheConfig struct {
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix     string `envconfig:"REDIS_KEY_PREFIX" default:"oyna:console"`
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	Name     string `envconfig:"DB_NAME" default:"oyna_console"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASS" default:""`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `envconfig:"PG_HOST" default:"localhost"`
	Port     int    `envconfig:"PG_PORT" default:"5432"`
	Name     string `envconfig:"PG_NAME" default:"oyna_console"`
	User     string `envconfig:"PG_USER" default:"postgres"`
	Password string `envconfig:"PG_PASS" default:""`
	SSLMode  string `envconfig:"PG_SSLMODE" default:"disable"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the MySQL data source name.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

var storageTypes = map[string]bool{
	"memory":   true,
	"redis":    true,
	"sqlite":   true,
	"mysql":    true,
	"postgres": true,
}

// Validate checks settings that envconfig cannot express.
// A missing or malformed gate code is not an error here: the gate fails closed at runtime.
func (c *Config) Validate() error {
	c.Storage.Type = strings.ToLower(strings.TrimSpace(c.Storage.Type))
	if !storageTypes[c.Storage.Type] {
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.Gate.MaxAttempts < 1 {
		return fmt.Errorf("GATE_MAX_ATTEMPTS must be positive, got %d", c.Gate.MaxAttempts)
	}
	if c.App.IsProduction() && c.Session.Secret == "change-me" {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	if c.App.IsProduction() && anyOrigin(c.Server.AllowedOrigins) {
		return fmt.Errorf("SERVER_ALLOWED_ORIGINS must list the console origins in production")
	}
	return nil
}

// anyOrigin reports whether origins lets every site make credentialed requests.
func anyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
