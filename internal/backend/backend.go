// Package backend wires storage, the categoriser and event publishing into
// an ExpenseService according to config. The API server, the bot and the CLI
// all start through here.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expense-tracker/internal/amqp"
	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/config"
	"expense-tracker/internal/service"
	"expense-tracker/internal/storage"
	"expense-tracker/internal/storage/memory"
	"expense-tracker/internal/storage/postgres"
	"expense-tracker/internal/storage/sqlite"
)

type Backend struct {
	Service *service.ExpenseService
	Storage storage.ExpenseStorage
	Events  *amqp.Client

	cleanup []func()
}

// New opens the configured storage and, when AMQP_URL is set, the event
// publisher. A broker that cannot be reached is logged and skipped.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = slog.Default()
	}
	b := &Backend{}

	rules, err := categorizer.FromFile(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	if cfg.RulesFile != "" {
		log.Info("Loaded categorisation rules", "file", cfg.RulesFile, "rules", len(rules.Mappings()))
	}

	store, closeStore, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	b.Storage = store
	b.onClose(closeStore)

	var events service.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, log)
		if err != nil {
			log.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			log.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			b.Events = client
			events = client
			b.onClose(func() { client.Close() })
		}
	}

	b.Service = service.New(store, rules, events, log)
	return b, nil
}

func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (storage.ExpenseStorage, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.DBConn, cfg.DBConnectAttempts, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Initialized postgres backend")
		return postgres.NewStorage(pool), pool.Close, nil

	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info("Initialized sqlite backend", "db_path", cfg.SQLitePath)
		return s, func() { s.Close() }, nil

	case config.BackendMemory:
		log.Info("Initialized memory backend")
		return memory.NewStorage(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func (b *Backend) onClose(fn func()) {
	b.cleanup = append(b.cleanup, fn)
}

// Close releases resources in reverse order of acquisition.
func (b *Backend) Close() {
	for i := len(b.cleanup) - 1; i >= 0; i-- {
		b.cleanup[i]()
	}
	b.cleanup = nil
}
