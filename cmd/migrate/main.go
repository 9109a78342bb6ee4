// cmd/migrate/main.go
package main

import (
	"context"
	"os"

	"expense-tracker/internal/config"
	"expense-tracker/internal/logger"
	"expense-tracker/internal/storage/postgres"
	"expense-tracker/internal/storage/sqlite"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		dir := cfg.MigrationsDir
		if dir == "" {
			log.Info("Applying embedded migrations")
		} else {
			log.Info("Applying migrations", "dir", dir)
		}
		if err := postgres.Migrate(ctx, cfg.DBConn, dir); err != nil {
			log.Error("Migrations failed", "error", err)
			os.Exit(1)
		}
	case config.BackendSQLite:
		log.Info("Applying migrations", "db_path", cfg.SQLitePath)
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Error("Migrations failed", "error", err)
			os.Exit(1)
		}
		if err := s.Close(); err != nil {
			log.Error("Closing sqlite database failed", "error", err)
			os.Exit(1)
		}
	default:
		log.Info("Nothing to migrate", "backend", cfg.StorageBackend)
		return
	}

	log.Info("✅ Migrations applied")
}
