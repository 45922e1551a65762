package config

import (
	"time"

	"github.com/maxviazov/community-hub-service/internal/logger"
)

type Config struct {
	App         AppConfig           `mapstructure:"app"`
	Logger      logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	Postgres    PostgresConfig      `mapstructure:"postgres"`
	Collections Collections         `mapstructure:"collections"`
	Feed        FeedConfig          `mapstructure:"feed"`
	Auth        AuthConfig          `mapstructure:"auth"`
	Email       EmailConfig         `mapstructure:"email"`
	Storage     StorageConfig       `mapstructure:"storage"`
	Telemetry   TelemetryConfig     `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name" validate:"required"`
	Version         string        `mapstructure:"version"`
	Env             string        `mapstructure:"env"`
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL         string        `mapstructure:"base_url" validate:"omitempty,url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PostgresConfig holds connection and pool tuning. Pool durations are in seconds.
type PostgresConfig struct {
	Host              string `mapstructure:"host" validate:"required"`
	Port              int    `mapstructure:"port" validate:"required"`
	User              string `mapstructure:"user" validate:"required"`
	Password          string `mapstructure:"password" validate:"required"`
	DBName            string `mapstructure:"db" validate:"required"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
	Migrate           bool   `mapstructure:"migrate"`
}

// Collections names the table behind every document collection.
// It is passed explicitly into repositories and services so tests can use fixture names.
type Collections struct {
	Events             string `mapstructure:"events" validate:"required,sqlident"`
	EventRegistrations string `mapstructure:"event_registrations" validate:"required,sqlident"`
	Registrations      string `mapstructure:"registrations" validate:"required,sqlident"`
	CoreTeam           string `mapstructure:"core_team" validate:"required,sqlident"`
	EmailLogs          string `mapstructure:"email_logs" validate:"required,sqlident"`
	Activities         string `mapstructure:"activities" validate:"required,sqlident"`
	Admins             string `mapstructure:"admins" validate:"required,sqlident"`
}

// FeedConfig bounds the read-side fan-out against the connection pool.
type FeedConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency" validate:"min=1"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	AdminToken string        `mapstructure:"admin_token" validate:"required"`
	Issuer     string        `mapstructure:"issuer"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type EmailConfig struct {
	APIKey    string `mapstructure:"api_key"`
	From      string `mapstructure:"from"`
	BatchSize int    `mapstructure:"batch_size" validate:"min=1,max=100"`
}

type StorageConfig struct {
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"min=1"`
}

type TelemetryConfig struct {
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}
