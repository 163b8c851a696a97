package backend

import (
	"strings"
	"testing"

	"padaria/internal/config"
)

func TestConfigValidate(t *testing.T) {
	t.Run("invalid type names the valid ones", func(t *testing.T) {
		err := Config{Type: "postgres"}.Validate()
		if err == nil {
			t.Fatal("Validate should reject an unknown backend type")
		}
		for _, want := range []string{"sqlite", "memory"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q should list valid type %q", err, want)
			}
		}
	})

	t.Run("sqlite requires a database path", func(t *testing.T) {
		if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
			t.Error("Validate should require SQLiteDBPath for the sqlite backend")
		}
		if err := (Config{Type: SQLiteBackend, SQLiteDBPath: "./data/padaria.db"}).Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("memory needs no snapshot path", func(t *testing.T) {
		if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestFromAppConfig(t *testing.T) {
	t.Run("nil config rejected", func(t *testing.T) {
		if _, err := FromAppConfig(nil); err == nil {
			t.Error("FromAppConfig should reject a nil config")
		}
	})

	t.Run("invalid backend rejected", func(t *testing.T) {
		if _, err := FromAppConfig(&config.Config{DataBackend: "redis"}); err == nil {
			t.Error("FromAppConfig should reject an unknown backend")
		}
	})

	t.Run("fields mapped", func(t *testing.T) {
		appCfg := &config.Config{
			DataBackend:        "sqlite",
			SQLiteDBPath:       "./data/padaria.db",
			AMQPURL:            "amqp://localhost:5672",
			AMQPExchange:       "padaria",
			AMQPQueue:          "sync_pedidos",
			MemorySnapshotPath: "./data/pedidos.json",
		}

		cfg, err := FromAppConfig(appCfg)
		if err != nil {
			t.Fatalf("FromAppConfig() error = %v", err)
		}
		if cfg.Type != SQLiteBackend {
			t.Errorf("Type = %q, want sqlite", cfg.Type)
		}
		if cfg.SQLiteDBPath != appCfg.SQLiteDBPath || cfg.AMQPURL != appCfg.AMQPURL {
			t.Error("sqlite fields should map through unchanged")
		}
		if cfg.SnapshotPath != appCfg.MemorySnapshotPath {
			t.Errorf("SnapshotPath = %q, want %q", cfg.SnapshotPath, appCfg.MemorySnapshotPath)
		}
	})
}
