package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var sqlIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// secretKeys are never expected in the YAML file, only in APP_* environment variables.
var secretKeys = []string{
	"postgres.user",
	"postgres.password",
	"postgres.db",
	"auth.jwt_secret",
	"auth.admin_token",
	"email.api_key",
	"storage.access_key",
	"storage.secret_key",
}

// Load reads the YAML file at path (skipped when path is empty), applies APP_* environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validate(c *Config) error {
	v := validator.New()
	if err := v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlIdent.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register sqlident validation: %w", err)
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "community-hub-service")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.base_url", "http://localhost:3000")
	v.SetDefault("app.shutdown_timeout", 10*time.Second)

	// logger keys default to empty; logger.New fills them per environment
	for _, key := range []string{"level", "format", "output_target", "time_field", "time_format", "service_name", "service_version", "env", "stacktrace_min_level"} {
		v.SetDefault("logger."+key, "")
	}
	v.SetDefault("logger.with_caller", false)
	v.SetDefault("logger.stacktrace", false)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.max_conn_lifetime", 3600)
	v.SetDefault("postgres.max_conn_idle_time", 300)
	v.SetDefault("postgres.health_check_period", 30)
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("collections.events", "events")
	v.SetDefault("collections.event_registrations", "event_registrations")
	v.SetDefault("collections.registrations", "registrations")
	v.SetDefault("collections.core_team", "core_team")
	v.SetDefault("collections.email_logs", "email_logs")
	v.SetDefault("collections.activities", "activities")
	v.SetDefault("collections.admins", "admins")

	v.SetDefault("feed.max_concurrency", 8)
	v.SetDefault("feed.query_timeout", 5*time.Second)

	v.SetDefault("auth.issuer", "community-hub-service")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)

	v.SetDefault("email.from", "")
	v.SetDefault("email.batch_size", 100)

	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.max_upload_bytes", 5<<20)

	v.SetDefault("telemetry.endpoint", "")
}
