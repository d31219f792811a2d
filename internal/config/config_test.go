package config

import (
	"testing"
	"time"
)

func baseConfig() *Config {
	return &Config{
		Port:            "8000",
		Env:             "development",
		DatabaseURL:     "postgres://localhost/hms",
		SecretKey:       devSecretKey,
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func TestValidate_DevDefaults(t *testing.T) {
	cfg := baseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("dev config with defaults should validate: %v", err)
	}
}

func TestValidate_ProductionRejectsDefaultSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for default SECRET_KEY in production")
	}
}

func TestValidate_ProductionRejectsDebug(t *testing.T) {
	cfg := baseConfig()
	cfg.Env = "production"
	cfg.SecretKey = "a-real-secret"
	cfg.Debug = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for DEBUG in production")
	}
}

func TestValidate_ProductionWithRealSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.Env = "production"
	cfg.SecretKey = "a-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("production config with real secret should validate: %v", err)
	}
}

func TestValidate_TokenLifetimes(t *testing.T) {
	cfg := baseConfig()
	cfg.AccessTokenTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero ACCESS_TOKEN_TTL")
	}

	cfg = baseConfig()
	cfg.RefreshTokenTTL = 5 * time.Minute
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when refresh lifetime does not exceed access lifetime")
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hms_test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected 15m access token lifetime, got %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 24*time.Hour {
		t.Errorf("expected 24h refresh token lifetime, got %s", cfg.RefreshTokenTTL)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}
