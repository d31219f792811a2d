package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	Debug           bool          `mapstructure:"DEBUG"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	SecretKey       string        `mapstructure:"SECRET_KEY"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	AllowedHosts    []string      `mapstructure:"ALLOWED_HOSTS"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	MediaRoot       string        `mapstructure:"MEDIA_ROOT"`
	MigrationsDir   string        `mapstructure:"MIGRATIONS_DIR"`
}

// devSecretKey is the fallback signing key. Validate rejects it in production.
const devSecretKey = "dev-insecure-secret-key"

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("SECRET_KEY", devSecretKey)
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "24h")
	v.SetDefault("ALLOWED_HOSTS", "localhost,127.0.0.1")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("MIGRATIONS_DIR", "migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DEBUG")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("SECRET_KEY")
	v.BindEnv("ACCESS_TOKEN_TTL")
	v.BindEnv("REFRESH_TOKEN_TTL")
	v.BindEnv("ALLOWED_HOSTS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("MEDIA_ROOT")
	v.BindEnv("MIGRATIONS_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.AllowedHosts == nil {
		if hosts := v.GetString("ALLOWED_HOSTS"); hosts != "" {
			cfg.AllowedHosts = strings.Split(hosts, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
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

// Validate checks that the configuration is safe to run. Production refuses
// the built-in signing key and refuses DEBUG mode.
func (c *Config) Validate() error {
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", c.AccessTokenTTL)
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL (%s) must exceed ACCESS_TOKEN_TTL (%s)",
			c.RefreshTokenTTL, c.AccessTokenTTL)
	}
	if c.IsProduction() {
		if c.SecretKey == devSecretKey || c.SecretKey == "" {
			return fmt.Errorf("SECRET_KEY must be set to a non-default value in production")
		}
		if c.Debug {
			return fmt.Errorf("DEBUG must be disabled in production")
		}
	}
	return nil
}
