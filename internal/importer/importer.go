// Package importer loads expenses from CSV files.
//
// The first record is a header and is always discarded. Each later record is
// date, amount, vendor name and an optional description. A bad row is skipped
// and reported; it never fails the run.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expense-tracker/internal/dateparse"
	"expense-tracker/internal/domain"
)

const (
	colDate = iota
	colAmount
	colVendor
	colDescription
)

const minColumns = colVendor + 1

// Builder validates and categorises a row.
type Builder interface {
	Build(in domain.ExpenseInput) (domain.Expense, error)
}

// Store persists a built row.
type Store interface {
	Insert(ctx context.Context, e domain.Expense) (domain.Expense, error)
}

// Reconciler recomputes anomaly flags for a whole category.
type Reconciler interface {
	ReevaluateCategory(ctx context.Context, category string) (map[int64]bool, error)
}

// RowError describes a skipped record. Line is 1-based in the input.
type RowError struct {
	Line int      `json:"line"`
	Row  []string `json:"row,omitempty"`
	Err  error    `json:"-"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Reason is the error text, for serialisation.
func (e RowError) Reason() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

type Result struct {
	RunID   uuid.UUID
	Saved   []domain.Expense
	Skipped []RowError
}

func (r *Result) SavedCount() int { return len(r.Saved) }

type Importer struct {
	builder    Builder
	store      Store
	reconciler Reconciler
	log        *slog.Logger
}

func New(builder Builder, store Store, reconciler Reconciler, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{
		builder:    builder,
		store:      store,
		reconciler: reconciler,
		log:        log.With("component", "importer"),
	}
}

// Import reads every record from r. Only a failure of the underlying reader
// or a cancelled ctx aborts the run; rows saved before that point stay saved.
//
// After all rows are read, each category that received a row is reconciled
// once, in the order the categories were first seen, and the returned Saved
// rows carry the reconciled flags. A reconciliation failure is logged and
// leaves that category's flags as they were.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Result, error) {
	res := &Result{RunID: uuid.New()}
	log := im.log.With("run_id", res.RunID.String())

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var categories []string
	seen := make(map[string]struct{})

	first := true
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if err != nil && !errors.As(err, &parseErr) {
			return res, fmt.Errorf("read csv: %w", err)
		}

		if first {
			first = false
			continue
		}

		if parseErr != nil {
			im.skip(log, res, RowError{
				Line: parseErr.StartLine,
				Row:  record,
				Err:  fmt.Errorf("%w: %v", domain.ErrMalformedRow, parseErr.Err),
			})
			continue
		}

		line, _ := reader.FieldPos(0)
		saved, err := im.importRow(ctx, record)
		if err != nil {
			im.skip(log, res, RowError{Line: line, Row: record, Err: err})
			continue
		}

		res.Saved = append(res.Saved, saved)
		if _, ok := seen[saved.Category]; !ok {
			seen[saved.Category] = struct{}{}
			categories = append(categories, saved.Category)
		}
	}

	for _, category := range categories {
		flags, err := im.reconciler.ReevaluateCategory(ctx, category)
		if err != nil {
			log.Error("reconcile category failed", "category", category, "error", err)
			continue
		}
		for i := range res.Saved {
			if flag, ok := flags[res.Saved[i].ID]; ok {
				res.Saved[i].Anomaly = flag
			}
		}
	}

	log.Info("import finished",
		"saved", len(res.Saved),
		"skipped", len(res.Skipped),
		"categories", len(categories),
	)
	return res, nil
}

func (im *Importer) importRow(ctx context.Context, record []string) (domain.Expense, error) {
	if len(record) < minColumns {
		return domain.Expense{}, fmt.Errorf("%w: expected at least %d columns, got %d", domain.ErrMalformedRow, minColumns, len(record))
	}

	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(FixEncoding(record[i]))
	}

	date, err := dateparse.Parse(field(colDate))
	if err != nil {
		return domain.Expense{}, err
	}

	amount, err := decimal.NewFromString(field(colAmount))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("%w: amount %q is not a number", domain.ErrMalformedRow, field(colAmount))
	}

	e, err := im.builder.Build(domain.ExpenseInput{
		Date:        date,
		Amount:      amount,
		VendorName:  field(colVendor),
		Description: field(colDescription),
	})
	if err != nil {
		return domain.Expense{}, err
	}

	saved, err := im.store.Insert(ctx, e)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("save row: %w", err)
	}
	return saved, nil
}

func (im *Importer) skip(log *slog.Logger, res *Result, rowErr RowError) {
	log.Warn("skipping csv row", "line", rowErr.Line, "reason", rowErr.Reason())
	res.Skipped = append(res.Skipped, rowErr)
}
