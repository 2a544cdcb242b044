package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fleetledger/internal/config"
)

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		bt    BackendType
		valid bool
	}{
		{SQLiteBackend, true},
		{MemoryBackend, true},
		{BackendType("sheets"), false},
		{BackendType(""), false},
	}

	for _, tt := range tests {
		if got := tt.bt.IsValid(); got != tt.valid {
			t.Errorf("BackendType(%q).IsValid() = %v, want %v", tt.bt, got, tt.valid)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil app config")
	}

	appCfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/fleet.db",
		AMQPURL:      "amqp://localhost",
		AMQPExchange: "records",
		AMQPQueue:    "record_sync",
	}
	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend {
		t.Errorf("Type = %v, want sqlite", cfg.Type)
	}
	if cfg.SQLiteDBPath != "/tmp/fleet.db" {
		t.Errorf("SQLiteDBPath = %q", cfg.SQLiteDBPath)
	}

	appCfg.DataBackend = "cloud"
	if _, err := FromAppConfig(appCfg); err == nil {
		t.Error("expected error for unknown backend type")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Type: SQLiteBackend}
	if err := cfg.Validate(); err == nil {
		t.Error("sqlite backend without a DB path should be invalid")
	}

	cfg.SQLiteDBPath = "/tmp/fleet.db"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory backend should validate without extras: %v", err)
	}
}

func TestFactory_CreateMemoryBackend(t *testing.T) {
	factory := NewFactory(nil)

	result, err := factory.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if result.Backend == nil {
		t.Fatal("expected a backend instance")
	}
	if result.Cleanup != nil {
		t.Error("memory backend should not need cleanup")
	}
}

func TestFactory_CreateSQLiteBackend(t *testing.T) {
	factory := NewFactory(nil)

	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "fleet.db"),
	}
	result, err := factory.CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if result.Backend == nil {
		t.Fatal("expected a backend instance")
	}
	if result.Cleanup == nil {
		t.Fatal("sqlite backend should provide cleanup")
	}
	if err := result.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}
