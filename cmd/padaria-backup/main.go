package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"padaria/internal/backend"
	"padaria/internal/cli"
	"padaria/internal/core"
)

// padaria-backup writes a JSON snapshot of every order to the backup
// directory. The file is the same shape the import endpoint accepts, so a
// backup can be restored through the web app.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	orders, err := result.Backend.ListOrders(ctx)
	if err != nil {
		logger.Error("Failed to list orders", "error", err)
		os.Exit(1)
	}

	payload, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		logger.Error("Failed to encode backup", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
		logger.Error("Failed to create backup directory", "error", err, "dir", cfg.BackupDir)
		os.Exit(1)
	}

	filename := "backup_pedidos_" + core.FormatDay(time.Now()) + ".json"
	path := filepath.Join(cfg.BackupDir, filename)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		logger.Error("Failed to write backup file", "error", err, "path", path)
		os.Exit(1)
	}

	logger.Info("Backup written", "path", path, "orders", len(orders))
}
