package config

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENVIRONMENT"`
	LogLevel        string   `mapstructure:"LOG_LEVEL"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir   string   `mapstructure:"MIGRATIONS_DIR"`
	RedisURL        string   `mapstructure:"REDIS_URL"`
	SessionTTLHours int      `mapstructure:"SESSION_TTL_HOURS"`
	JWTSecret       string   `mapstructure:"JWT_SECRET"`
	DevAuthEnabled  bool     `mapstructure:"DEV_AUTH_ENABLED"`
	FieldKey        string   `mapstructure:"FIELD_KEY"`
	NotifyURL       string   `mapstructure:"NOTIFY_URL"`
	NotifySecret    string   `mapstructure:"NOTIFY_SECRET"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit       string   `mapstructure:"BODY_LIMIT"`
}

// Load reads configuration from the given env file (".env" when empty) and
// from the process environment. Environment variables win over file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 16)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("SESSION_TTL_HOURS", 72)
	v.SetDefault("DEV_AUTH_ENABLED", false)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("BODY_LIMIT", "1M")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENVIRONMENT")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("MIGRATIONS_DIR")
	v.BindEnv("REDIS_URL")
	v.BindEnv("SESSION_TTL_HOURS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("DEV_AUTH_ENABLED")
	v.BindEnv("FIELD_KEY")
	v.BindEnv("NOTIFY_URL")
	v.BindEnv("NOTIFY_SECRET")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("BODY_LIMIT")

	// Try reading the env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() && cfg.DevAuthEnabled {
		log.Println("WARNING: ====================================================")
		log.Println("WARNING: DEV_AUTH_ENABLED is on - requests are not")
		log.Println("WARNING: authenticated and receive clinician access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: ====================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SessionTTL returns the Redis session expiry. The Postgres and memory
// stores keep sessions until deleted and ignore this value.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret must be set and the dev auth stub must be off. FIELD_KEY, when
// present, must decode to a 32-byte AES-256 key.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when ENVIRONMENT=%q", c.Env)
		}
		if c.DevAuthEnabled {
			return fmt.Errorf("DEV_AUTH_ENABLED must be false when ENVIRONMENT=%q", c.Env)
		}
	}

	if c.FieldKey != "" {
		keyBytes, err := base64.StdEncoding.DecodeString(c.FieldKey)
		if err != nil {
			return fmt.Errorf("FIELD_KEY is not valid base64: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("FIELD_KEY must be 32 bytes when decoded, got %d", len(keyBytes))
		}
	}

	if c.NotifySecret != "" && c.NotifyURL == "" {
		return fmt.Errorf("NOTIFY_SECRET is set but NOTIFY_URL is empty")
	}

	return nil
}
