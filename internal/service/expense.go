// Package service is the entry point the HTTP API, the bot and the CLI share.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"expense-tracker/internal/amqp"
	"expense-tracker/internal/anomaly"
	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/dashboard"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/importer"
	"expense-tracker/internal/record"
	"expense-tracker/internal/storage"
)

// EventPublisher receives a notification after each successful write.
// Publishing failures are logged and never fail the write.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.Event) error
}

type ExpenseService struct {
	store       storage.ExpenseStorage
	categorizer *categorizer.Categorizer
	builder     *record.Builder
	detector    *anomaly.Detector
	importer    *importer.Importer
	dashboard   *dashboard.Aggregator
	events      EventPublisher
	log         *slog.Logger
}

// New wires the pipeline over store. events may be nil.
func New(store storage.ExpenseStorage, c *categorizer.Categorizer, events EventPublisher, log *slog.Logger) *ExpenseService {
	if log == nil {
		log = slog.Default()
	}
	builder := record.NewBuilder(c)
	detector := anomaly.NewDetector(store, log)
	return &ExpenseService{
		store:       store,
		categorizer: c,
		builder:     builder,
		detector:    detector,
		importer:    importer.New(builder, store, detector, log),
		dashboard:   dashboard.NewAggregator(store),
		events:      events,
		log:         log.With("component", "service"),
	}
}

// AddExpense validates, categorises and stores one expense, then flags it
// against its category average (itself included). Other rows in the
// category keep their flags.
//
// Once the row is stored the call succeeds. If flagging fails the error is
// logged and the row is returned unflagged; the next import into its
// category reconciles it.
func (s *ExpenseService) AddExpense(ctx context.Context, in domain.ExpenseInput) (domain.Expense, error) {
	e, err := s.builder.Build(in)
	if err != nil {
		return domain.Expense{}, err
	}

	saved, err := s.store.Insert(ctx, e)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	flag, err := s.detector.EvaluateOnInsert(ctx, saved)
	if err != nil {
		s.log.ErrorContext(ctx, "anomaly check failed, expense left unflagged", "id", saved.ID, "error", err)
	} else if flag {
		if err := s.store.UpdateAnomalies(ctx, map[int64]bool{saved.ID: true}); err != nil {
			s.log.ErrorContext(ctx, "flag expense failed, expense left unflagged", "id", saved.ID, "error", err)
		} else {
			saved.Anomaly = true
		}
	}

	s.log.InfoContext(ctx, "expense added",
		"id", saved.ID,
		"vendor", saved.VendorName,
		"category", saved.Category,
		"amount", saved.Amount.StringFixed(2),
		"anomaly", saved.Anomaly,
	)
	s.publish(ctx, amqp.NewExpenseCreated(saved.ID, saved.Category, saved.Anomaly))
	return saved, nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	list, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return list, nil
}

// DeleteExpense removes one expense. Anomaly flags of the remaining rows in
// its category are not recomputed.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	s.log.InfoContext(ctx, "expense deleted", "id", id)
	s.publish(ctx, amqp.NewExpenseDeleted(id))
	return nil
}

// ImportFile bulk-loads a CSV stream. See importer.Importer.Import.
func (s *ExpenseService) ImportFile(ctx context.Context, r io.Reader) (*importer.Result, error) {
	res, err := s.importer.Import(ctx, r)
	if err != nil {
		return res, fmt.Errorf("import: %w", err)
	}
	s.publish(ctx, amqp.NewImportCompleted(res.RunID.String(), res.SavedCount(), len(res.Skipped)))
	return res, nil
}

func (s *ExpenseService) ListAnomalies(ctx context.Context) ([]domain.Expense, error) {
	list, err := s.store.FindAnomalies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list anomalies: %w", err)
	}
	return list, nil
}

func (s *ExpenseService) GetDashboard(ctx context.Context, year, month int) (*domain.DashboardSummary, error) {
	return s.dashboard.Get(ctx, year, month)
}

// Rules returns the active categorisation rules in match order.
func (s *ExpenseService) Rules() []categorizer.Rule {
	return s.categorizer.Mappings()
}

func (s *ExpenseService) publish(ctx context.Context, ev *amqp.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.ErrorContext(ctx, "failed to publish event", "type", ev.Type, "error", err)
	}
}
