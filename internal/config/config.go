package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"local"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	Database DatabaseConfig
	Sim      SimConfig
	LLM      LLMConfig
	Otel     OtelConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"simengine"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"simengine"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// SimConfig holds run-orchestration defaults: the feed algorithm and
// per-action-kind generator used when a RunConfig doesn't override them,
// and the action-history backend selection.
type SimConfig struct {
	DefaultFeedAlgorithm    string `env:"SIM_FEED_ALGORITHM_DEFAULT" envDefault:"chronological"`
	DefaultLikeAlgorithm    string `env:"SIM_LIKE_ALGORITHM_DEFAULT" envDefault:"deterministic"`
	DefaultCommentAlgorithm string `env:"SIM_COMMENT_ALGORITHM_DEFAULT" envDefault:"random_simple"`
	DefaultFollowAlgorithm  string `env:"SIM_FOLLOW_ALGORITHM_DEFAULT" envDefault:"random_simple"`
	HistoryBackend          string `env:"SIM_HISTORY_BACKEND" envDefault:"memory"` // "memory" or "redis"
	RedisAddr               string `env:"SIM_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB                 int    `env:"SIM_REDIS_DB" envDefault:"0"`
}

// LLMConfig holds structured-completion provider configuration for the
// LLM-backed action generator (§4.6/§9 "opaque policy oracle").
type LLMConfig struct {
	// GoogleAPIKey enables the Gemini API backend. Empty disables the
	// LLM generator entirely; callers must fall back to another algorithm.
	GoogleAPIKey string `env:"GOOGLE_API_KEY" envDefault:""`

	Model           string        `env:"LLM_MODEL" envDefault:"gemini-3-flash-preview"`
	Timeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
	MaxRetries      int           `env:"LLM_MAX_RETRIES" envDefault:"3"`
	InitialBackoff  time.Duration `env:"LLM_INITIAL_BACKOFF" envDefault:"1s"`
	MaxBackoff      time.Duration `env:"LLM_MAX_BACKOFF" envDefault:"60s"`
	NetworkDisabled bool          `env:"LLM_NETWORK_DISABLED" envDefault:"false"`
}

// IsEnabled returns true if the LLM generator can make real calls.
func (l *LLMConfig) IsEnabled() bool {
	if l.NetworkDisabled {
		return false
	}
	return l.GoogleAPIKey != ""
}

// NewConfig loads configuration from environment variables.
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("db_host", cfg.Database.Host),
		slog.String("feed_algorithm_default", cfg.Sim.DefaultFeedAlgorithm),
		slog.Bool("llm_enabled", cfg.LLM.IsEnabled()),
	)

	return cfg, nil
}
