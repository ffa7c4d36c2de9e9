package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestConfig(t *testing.T) (*ConnectionConfig, func()) {
	tempDir, err := os.MkdirTemp("", "connection_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	config := &ConnectionConfig{
		DatabasePath:    filepath.Join(tempDir, "nested", "storefront.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
		Logger:          logger,
	}

	return config, func() { os.RemoveAll(tempDir) }
}

func TestConnectionManager_ConnectAndClose(t *testing.T) {
	config, cleanup := newTestConfig(t)
	defer cleanup()

	cm := NewConnectionManager(config)
	if cm.GetDB() != nil {
		t.Error("GetDB() should return nil before Connect")
	}

	if err := cm.Connect(); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	if err := cm.Connect(); err == nil {
		t.Error("Second Connect() should fail")
	}

	if err := cm.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() failed: %v", err)
	}

	if err := ValidateSchema(cm.GetDB(), config.Logger); err != nil {
		t.Errorf("ValidateSchema() failed: %v", err)
	}

	if err := cm.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	if err := cm.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() should fail after Close")
	}
}

func TestConnectionManager_WithoutMigrations(t *testing.T) {
	config, cleanup := newTestConfig(t)
	defer cleanup()
	config.AutoMigrate = false

	cm := NewConnectionManager(config)
	if err := cm.Connect(); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	defer cm.Close()

	if err := ValidateSchema(cm.GetDB(), config.Logger); err == nil {
		t.Error("ValidateSchema() should fail on an unmigrated database")
	}
}

func TestMigrationManager_UpStatusRollback(t *testing.T) {
	config, cleanup := newTestConfig(t)
	defer cleanup()

	if err := os.MkdirAll(filepath.Dir(config.DatabasePath), 0755); err != nil {
		t.Fatalf("Failed to create database dir: %v", err)
	}

	mm := NewMigrationManager(config.DatabasePath, "", config.Logger)

	if err := mm.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() failed: %v", err)
	}

	// Running again is a no-op
	if err := mm.RunMigrations(); err != nil {
		t.Fatalf("Second RunMigrations() failed: %v", err)
	}

	status, err := mm.GetMigrationStatus()
	if err != nil {
		t.Fatalf("GetMigrationStatus() failed: %v", err)
	}
	if status.Version != 1 || status.Dirty || !status.Applied {
		t.Errorf("Unexpected status: %+v", status)
	}

	if err := mm.RollbackMigration(); err != nil {
		t.Fatalf("RollbackMigration() failed: %v", err)
	}

	if err := mm.RollbackMigration(); err == nil {
		t.Error("RollbackMigration() should fail with nothing applied")
	}
}

func TestMigrationManager_FileSource(t *testing.T) {
	config, cleanup := newTestConfig(t)
	defer cleanup()

	migrationsDir, err := filepath.Abs("../../migrations")
	if err != nil {
		t.Fatalf("Failed to resolve migrations dir: %v", err)
	}
	config.MigrationsPath = migrationsDir

	cm := NewConnectionManager(config)
	if err := cm.Connect(); err != nil {
		t.Fatalf("Connect() with file migrations failed: %v", err)
	}
	defer cm.Close()

	if err := ValidateSchema(cm.GetDB(), config.Logger); err != nil {
		t.Errorf("ValidateSchema() failed: %v", err)
	}
}

func TestDSN(t *testing.T) {
	got := DSN("/tmp/x.db")
	want := "/tmp/x.db?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	if got != want {
		t.Errorf("DSN() = %s, want %s", got, want)
	}
}
