package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"expense-tracker/internal/backend"
	"expense-tracker/internal/commands"
	"expense-tracker/internal/config"
	"expense-tracker/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := commands.NewRootCommand(openBackend)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func openBackend(ctx context.Context) (*commands.Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// Logs go to stderr so command output stays clean.
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	be, err := backend.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	env := &commands.Env{Service: be.Service, Close: be.Close}
	if be.Events != nil {
		env.Events = be.Events
	}
	return env, nil
}
