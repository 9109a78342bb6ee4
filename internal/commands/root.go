// Package commands implements the expensectl command line.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"expense-tracker/internal/amqp"
	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/importer"
)

// Service is the subset of the expense service the CLI drives.
type Service interface {
	ImportFile(ctx context.Context, r io.Reader) (*importer.Result, error)
	ListAnomalies(ctx context.Context) ([]domain.Expense, error)
	GetDashboard(ctx context.Context, year, month int) (*domain.DashboardSummary, error)
	Rules() []categorizer.Rule
}

// EventSource streams published events.
type EventSource interface {
	Consume(ctx context.Context, handler func(*amqp.Event) error) error
}

// Env is what a command runs against. Events is nil when no broker is
// configured.
type Env struct {
	Service Service
	Events  EventSource
	Close   func()
}

// Opener builds an Env for one command invocation.
type Opener func(ctx context.Context) (*Env, error)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "expensectl",
		Short: "Import, inspect and summarise expenses",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newImportCommand(open),
		newDashboardCommand(open),
		newAnomaliesCommand(open),
		newRulesCommand(open),
		newEventsCommand(open),
	)

	return rootCmd
}

// withEnv opens an Env, runs fn and closes it again.
func withEnv(cmd *cobra.Command, open Opener, fn func(ctx context.Context, env *Env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := open(ctx)
	if err != nil {
		return err
	}
	if env.Close != nil {
		defer env.Close()
	}
	return fn(ctx, env)
}
