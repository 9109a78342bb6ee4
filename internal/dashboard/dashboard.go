// Package dashboard builds the monthly spending overview.
package dashboard

import (
	"context"
	"fmt"

	"expense-tracker/internal/domain"
)

// TopVendorLimit caps the vendor ranking.
const TopVendorLimit = 5

type Store interface {
	SumByCategory(ctx context.Context, year, month int) (domain.CategoryTotals, error)
	TopVendorsBySpend(ctx context.Context, limit int) ([]domain.VendorTotal, error)
	FindAnomalies(ctx context.Context) ([]domain.Expense, error)
}

type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Get returns the summary for year/month. Category totals cover only that
// month; the vendor ranking and the anomaly list cover all time.
func (a *Aggregator) Get(ctx context.Context, year, month int) (*domain.DashboardSummary, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12, got %d", domain.ErrValidation, month)
	}

	totals, err := a.store.SumByCategory(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	if totals == nil {
		totals = domain.CategoryTotals{}
	}

	vendors, err := a.store.TopVendorsBySpend(ctx, TopVendorLimit)
	if err != nil {
		return nil, fmt.Errorf("top vendors: %w", err)
	}
	if vendors == nil {
		vendors = []domain.VendorTotal{}
	}

	anomalies, err := a.store.FindAnomalies(ctx)
	if err != nil {
		return nil, fmt.Errorf("anomalies: %w", err)
	}
	if anomalies == nil {
		anomalies = []domain.Expense{}
	}

	return &domain.DashboardSummary{
		Year:                  year,
		Month:                 month,
		MonthlyCategoryTotals: totals,
		TopVendors:            vendors,
		Anomalies:             anomalies,
		AnomalyCount:          len(anomalies),
	}, nil
}
