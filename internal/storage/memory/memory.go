// Package memory is an in-process ExpenseStorage. Data does not survive a
// restart; it backs tests and the "memory" storage backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/domain"
	"expense-tracker/internal/storage"
)

var _ storage.ExpenseStorage = (*Storage)(nil)

type Storage struct {
	mu     sync.RWMutex
	rows   []domain.Expense
	nextID int64
	now    func() time.Time
}

func NewStorage() *Storage {
	return &Storage{nextID: 1, now: time.Now}
}

func (s *Storage) Insert(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	if err := ctx.Err(); err != nil {
		return domain.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID
	s.nextID++
	e.CreatedAt = s.now().UTC()
	s.rows = append(s.rows, e)
	return e, nil
}

func (s *Storage) DeleteByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Storage) FindAll(ctx context.Context) ([]domain.Expense, error) {
	return s.filter(ctx, func(domain.Expense) bool { return true })
}

func (s *Storage) FindAnomalies(ctx context.Context) ([]domain.Expense, error) {
	return s.filter(ctx, func(e domain.Expense) bool { return e.Anomaly })
}

func (s *Storage) FindByCategory(ctx context.Context, category string) ([]domain.Expense, error) {
	return s.filter(ctx, func(e domain.Expense) bool { return e.Category == category })
}

// filter returns copies so callers cannot mutate stored rows.
func (s *Storage) filter(ctx context.Context, keep func(domain.Expense) bool) ([]domain.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Expense, 0, len(s.rows))
	for _, e := range s.rows {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Storage) CategoryStats(ctx context.Context, category string) (domain.CategoryStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.CategoryStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.CategoryStats{Sum: decimal.Zero}
	for _, e := range s.rows {
		if e.Category == category {
			stats.Sum = stats.Sum.Add(e.Amount)
			stats.Count++
		}
	}
	return stats, nil
}

func (s *Storage) UpdateAnomalies(ctx context.Context, flags map[int64]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		if flag, ok := flags[s.rows[i].ID]; ok {
			s.rows[i].Anomaly = flag
		}
	}
	return nil
}

func (s *Storage) SumByCategory(ctx context.Context, year, month int) (domain.CategoryTotals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := domain.CategoryTotals{}
	index := make(map[string]int)
	for _, e := range s.rows {
		if e.Date.Year != year || int(e.Date.Month) != month {
			continue
		}
		i, ok := index[e.Category]
		if !ok {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, domain.CategoryTotal{Category: e.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(e.Amount)
	}
	return totals, nil
}

func (s *Storage) TopVendorsBySpend(ctx context.Context, limit int) ([]domain.VendorTotal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	vendors := []domain.VendorTotal{}
	index := make(map[string]int)
	for _, e := range s.rows {
		i, ok := index[e.VendorName]
		if !ok {
			i = len(vendors)
			index[e.VendorName] = i
			vendors = append(vendors, domain.VendorTotal{VendorName: e.VendorName, Total: decimal.Zero})
		}
		vendors[i].Total = vendors[i].Total.Add(e.Amount)
	}

	sort.SliceStable(vendors, func(i, j int) bool {
		return vendors[i].Total.GreaterThan(vendors[j].Total)
	})
	if limit >= 0 && len(vendors) > limit {
		vendors = vendors[:limit]
	}
	return vendors, nil
}
