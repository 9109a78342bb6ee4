// internal/storage/storage.go
package storage

import (
	"context"

	"expense-tracker/internal/domain"
)

// ExpenseStorage persists expenses. Implementations serialise their own
// access; callers hold no locks.
//
// Lists are returned in insertion order. SumByCategory orders categories by
// their first inserted row within the month; TopVendorsBySpend orders by total
// descending with ties broken by first insertion.
type ExpenseStorage interface {
	// Insert stores e and returns it with ID and CreatedAt assigned.
	Insert(ctx context.Context, e domain.Expense) (domain.Expense, error)
	// DeleteByID returns domain.ErrNotFound when no row has id.
	DeleteByID(ctx context.Context, id int64) error
	FindAll(ctx context.Context) ([]domain.Expense, error)
	FindAnomalies(ctx context.Context) ([]domain.Expense, error)
	FindByCategory(ctx context.Context, category string) ([]domain.Expense, error)
	// CategoryStats is the zero value when the category has no rows.
	CategoryStats(ctx context.Context, category string) (domain.CategoryStats, error)
	// UpdateAnomalies sets the anomaly flag for each id in flags. Unknown ids
	// are ignored.
	UpdateAnomalies(ctx context.Context, flags map[int64]bool) error
	SumByCategory(ctx context.Context, year, month int) (domain.CategoryTotals, error)
	TopVendorsBySpend(ctx context.Context, limit int) ([]domain.VendorTotal, error)
}
