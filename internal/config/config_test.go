package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8081" {
		t.Errorf("Expected default port 8081, got %s", cfg.Port)
	}
	if cfg.Database.Path != "./data/storefront.db" {
		t.Errorf("Expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour {
		t.Errorf("Expected 1h connection lifetime, got %v", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Cache.Enabled() {
		t.Error("Cache should be disabled without REDIS_ADDR")
	}
	if cfg.Auth.Enabled() {
		t.Error("Auth should be disabled without JWT_SECRET")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("ROUTE_PREFIX", "/functions/v1/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Port)
	}
	if !cfg.Auth.Required || !cfg.Auth.Enabled() {
		t.Error("Expected auth to be required and enabled")
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Expected cache TTL 30s, got %v", cfg.Cache.TTL)
	}
	if cfg.RoutePrefix != "/functions/v1" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.RoutePrefix)
	}
}

func TestLoad_AuthRequiredWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AUTH_REQUIRED", "true")

	if _, err := Load(); err == nil {
		t.Error("Expected error when auth is required without a secret")
	}
}

func TestDatabaseConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*DatabaseConfig)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *DatabaseConfig) {}, wantErr: false},
		{name: "empty path", modify: func(c *DatabaseConfig) { c.Path = "" }, wantErr: true},
		{name: "no connections", modify: func(c *DatabaseConfig) { c.MaxOpenConns = 0 }, wantErr: true},
		{name: "short lifetime", modify: func(c *DatabaseConfig) { c.ConnMaxLifetime = time.Second }, wantErr: true},
		{name: "missing migrations dir", modify: func(c *DatabaseConfig) { c.MigrationsPath = "/does/not/exist" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDatabaseConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAdaptConfigForServerless(t *testing.T) {
	t.Setenv("EFS_MOUNT_PATH", "")

	cfg := &Config{Database: DefaultDatabaseConfig(), Log: LogConfig{Format: "text"}}
	adapted := AdaptConfigForServerless(cfg, &ServerlessConfig{IsLambda: true, Stage: "prod"})

	if adapted.Database.Path != "/tmp/storefront.db" {
		t.Errorf("Expected database in /tmp, got %s", adapted.Database.Path)
	}
	if adapted.Log.Format != "json" {
		t.Errorf("Expected json logs in Lambda, got %s", adapted.Log.Format)
	}

	local := &Config{Database: DefaultDatabaseConfig()}
	if got := AdaptConfigForServerless(local, &ServerlessConfig{}); got.Database.Path != "./data/storefront.db" {
		t.Errorf("Server mode should keep the configured path, got %s", got.Database.Path)
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	logger := LogConfig{Level: "debug", Format: "json"}.NewLogger()
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Error("Expected JSON formatter")
	}

	fallback := LogConfig{Level: "bogus"}.NewLogger()
	if fallback.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level fallback, got %v", fallback.GetLevel())
	}
}
