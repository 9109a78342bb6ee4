package memory

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/domain"
)

func expense(date string, amount, vendor, category string) domain.Expense {
	d, err := civil.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return domain.Expense{
		Date:       d,
		Amount:     decimal.RequireFromString(amount),
		VendorName: vendor,
		Category:   category,
	}
}

func seed(t *testing.T, s *Storage, rows ...domain.Expense) []domain.Expense {
	t.Helper()
	out := make([]domain.Expense, 0, len(rows))
	for _, r := range rows {
		saved, err := s.Insert(context.Background(), r)
		require.NoError(t, err)
		out = append(out, saved)
	}
	return out
}

func TestInsert_AssignsIDAndCreatedAt(t *testing.T) {
	s := NewStorage()
	saved := seed(t, s,
		expense("2024-03-01", "10", "Uber", "Transport"),
		expense("2024-03-02", "20", "Ola", "Transport"),
	)
	assert.Equal(t, int64(1), saved[0].ID)
	assert.Equal(t, int64(2), saved[1].ID)
	assert.False(t, saved[0].CreatedAt.IsZero())
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	saved := seed(t, s,
		expense("2024-03-01", "10", "Uber", "Transport"),
		expense("2024-03-02", "20", "Ola", "Transport"),
	)

	require.NoError(t, s.DeleteByID(ctx, saved[0].ID))
	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, saved[1].ID, all[0].ID)

	assert.ErrorIs(t, s.DeleteByID(ctx, saved[0].ID), domain.ErrNotFound)
	assert.ErrorIs(t, s.DeleteByID(ctx, 999), domain.ErrNotFound)
}

func TestFindAll_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	seed(t, s, expense("2024-03-01", "10", "Uber", "Transport"))

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	all[0].VendorName = "changed"

	again, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Uber", again[0].VendorName)
}

func TestCategoryStatsAndUpdateAnomalies(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	saved := seed(t, s,
		expense("2024-03-01", "10", "Uber", "Transport"),
		expense("2024-03-02", "20", "Ola", "Transport"),
		expense("2024-03-02", "99", "Swiggy", "Food"),
	)

	stats, err := s.CategoryStats(ctx, "Transport")
	require.NoError(t, err)
	assert.True(t, stats.Sum.Equal(decimal.NewFromInt(30)), "sum %s", stats.Sum)
	assert.Equal(t, int64(2), stats.Count)
	assert.True(t, stats.Average().Equal(decimal.NewFromInt(15)))

	none, err := s.CategoryStats(ctx, "Health")
	require.NoError(t, err)
	assert.Zero(t, none.Count)

	require.NoError(t, s.UpdateAnomalies(ctx, map[int64]bool{saved[2].ID: true, 42: true}))
	anomalies, err := s.FindAnomalies(ctx)
	require.NoError(t, err)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "Swiggy", anomalies[0].VendorName)

	byCat, err := s.FindByCategory(ctx, "Transport")
	require.NoError(t, err)
	assert.Len(t, byCat, 2)
}

func TestSumByCategory(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	seed(t, s,
		expense("2024-03-01", "10.50", "Uber", "Transport"),
		expense("2024-02-28", "500", "Swiggy", "Food"),
		expense("2024-03-03", "5", "Swiggy", "Food"),
		expense("2024-03-04", "30", "Ola", "Transport"),
	)

	totals, err := s.SumByCategory(ctx, 2024, 3)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Transport", totals[0].Category)
	assert.Equal(t, "40.5", totals[0].Total.String())
	assert.Equal(t, "Food", totals[1].Category)
	assert.Equal(t, "5", totals[1].Total.String())

	empty, err := s.SumByCategory(ctx, 2023, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTopVendorsBySpend(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	seed(t, s,
		expense("2024-03-01", "10", "A", "Other"),
		expense("2024-03-01", "30", "B", "Other"),
		expense("2024-03-01", "20", "C", "Other"),
		expense("2024-03-01", "20", "A", "Other"),
		expense("2024-03-01", "5", "D", "Other"),
		expense("2024-03-01", "4", "E", "Other"),
		expense("2024-03-01", "3", "F", "Other"),
	)

	top, err := s.TopVendorsBySpend(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 5)

	names := make([]string, len(top))
	for i, v := range top {
		names[i] = v.VendorName
	}
	// A and B tie at 30; A was inserted first.
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, names)
	assert.Equal(t, "30", top[0].Total.String())
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStorage()
	_, err := s.Insert(ctx, expense("2024-03-01", "10", "A", "Other"))
	assert.ErrorIs(t, err, context.Canceled)
}
