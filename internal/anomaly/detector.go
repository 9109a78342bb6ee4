// Package anomaly flags expenses whose amount is far above their category
// average.
//
// The flag is stored on each row and reflects the average at the time of the
// last evaluation. Inserting into a category does not re-flag older rows;
// ReevaluateCategory does.
package anomaly

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/domain"
)

// Multiplier is how many times the category average an amount must exceed
// to be flagged.
var Multiplier = decimal.NewFromInt(3)

// Store is the subset of storage the detector needs.
type Store interface {
	CategoryStats(ctx context.Context, category string) (domain.CategoryStats, error)
	FindByCategory(ctx context.Context, category string) ([]domain.Expense, error)
	UpdateAnomalies(ctx context.Context, flags map[int64]bool) error
}

type Detector struct {
	store Store
	log   *slog.Logger
}

func NewDetector(store Store, log *slog.Logger) *Detector {
	if log == nil {
		log = slog.Default()
	}
	return &Detector{store: store, log: log.With("component", "anomaly")}
}

// IsAnomalous reports amount > Multiplier * (sum/count), evaluated as
// amount*count > Multiplier*sum so a repeating mean cannot tip the boundary.
// An empty category or a zero sum never flags.
func IsAnomalous(amount decimal.Decimal, stats domain.CategoryStats) bool {
	if stats.Count <= 0 || stats.Sum.IsZero() {
		return false
	}
	return amount.Mul(decimal.NewFromInt(stats.Count)).GreaterThan(stats.Sum.Mul(Multiplier))
}

// EvaluateOnInsert computes the flag for e, which must already be persisted
// so that it counts toward its own category average.
func (d *Detector) EvaluateOnInsert(ctx context.Context, e domain.Expense) (bool, error) {
	stats, err := d.store.CategoryStats(ctx, e.Category)
	if err != nil {
		return false, fmt.Errorf("category stats %q: %w", e.Category, err)
	}
	return IsAnomalous(e.Amount, stats), nil
}

// ReevaluateCategory recomputes the flag for every row in category against
// the current average and persists the flags that changed. It returns the
// flag of every row in the category keyed by id.
func (d *Detector) ReevaluateCategory(ctx context.Context, category string) (map[int64]bool, error) {
	stats, err := d.store.CategoryStats(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("category stats %q: %w", category, err)
	}
	if stats.Count == 0 {
		return map[int64]bool{}, nil
	}

	rows, err := d.store.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("load category %q: %w", category, err)
	}

	flags := make(map[int64]bool, len(rows))
	changed := make(map[int64]bool)
	for _, e := range rows {
		flag := IsAnomalous(e.Amount, stats)
		flags[e.ID] = flag
		if flag != e.Anomaly {
			changed[e.ID] = flag
		}
	}

	if len(changed) > 0 {
		if err := d.store.UpdateAnomalies(ctx, changed); err != nil {
			return nil, fmt.Errorf("update anomaly flags %q: %w", category, err)
		}
	}

	d.log.Debug("category reconciled",
		"category", category,
		"average", stats.Average().StringFixed(2),
		"rows", len(rows),
		"changed", len(changed),
	)
	return flags, nil
}
