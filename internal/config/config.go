package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// devJWTSecret signs tokens when ENV=development and no JWT_SECRET is set.
const devJWTSecret = "frontdesk-development-secret-do-not-use"

type Config struct {
	Port                  string   `mapstructure:"PORT"`
	Env                   string   `mapstructure:"ENV"`
	DatabaseURL           string   `mapstructure:"DATABASE_URL"`
	DBMaxConns            int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns            int32    `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir         string   `mapstructure:"MIGRATIONS_DIR"`
	JWTSecret             string   `mapstructure:"JWT_SECRET"`
	AccessTokenTTLMinutes int      `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	CORSOrigins           []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS          float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst        int      `mapstructure:"RATE_LIMIT_BURST"`
	RedisURL              string   `mapstructure:"REDIS_URL"`
	KafkaBrokers          []string `mapstructure:"KAFKA_BROKERS"`
	KafkaHandoverTopic    string   `mapstructure:"KAFKA_HANDOVER_TOPIC"`
	ExportArchiveBucket   string   `mapstructure:"EXPORT_ARCHIVE_BUCKET"`
	ExportSeedPlaceholder bool     `mapstructure:"EXPORT_SEED_PLACEHOLDER"`
	ClinicTimezone        string   `mapstructure:"CLINIC_TIMEZONE"`
	BootstrapAdminUser    string   `mapstructure:"BOOTSTRAP_ADMIN_USERNAME"`
	BootstrapAdminPass    string   `mapstructure:"BOOTSTRAP_ADMIN_PASSWORD"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 30)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("KAFKA_HANDOVER_TOPIC", "handover-log")
	v.SetDefault("EXPORT_SEED_PLACEHOLDER", true)
	v.SetDefault("CLINIC_TIMEZONE", "UTC")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "MIGRATIONS_DIR",
		"JWT_SECRET", "ACCESS_TOKEN_TTL_MINUTES", "CORS_ORIGINS",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REDIS_URL",
		"KAFKA_BROKERS", "KAFKA_HANDOVER_TOPIC", "EXPORT_ARCHIVE_BUCKET",
		"EXPORT_SEED_PLACEHOLDER", "CLINIC_TIMEZONE",
		"BOOTSTRAP_ADMIN_USERNAME", "BOOTSTRAP_ADMIN_PASSWORD",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.IsDev() {
		log.Println("WARNING: JWT_SECRET is not set; using the built-in development signing key.")
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// splitList turns a comma separated env value into a trimmed slice.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AccessTokenTTL is the lifetime of tokens issued by the login endpoints.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// Location resolves CLINIC_TIMEZONE. Shift dates and times are wall-clock
// values in this location.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.ClinicTimezone)
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must not be the development key in production")
	}
	if c.AccessTokenTTLMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL_MINUTES must be positive, got %d", c.AccessTokenTTLMinutes)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("CLINIC_TIMEZONE %q: %w", c.ClinicTimezone, err)
	}
	if (c.BootstrapAdminUser == "") != (c.BootstrapAdminPass == "") {
		return fmt.Errorf("BOOTSTRAP_ADMIN_USERNAME and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	return nil
}
