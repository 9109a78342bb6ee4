// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"expense-tracker/internal/domain"
	"expense-tracker/internal/storage"
)

var _ storage.ExpenseStorage = (*Storage)(nil)

const expenseColumns = `id, date, amount, vendor_name, description, category, is_anomaly, created_at`

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Insert(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO expenses (date, amount, vendor_name, description, category, is_anomaly)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, dateValue(e.Date), e.Amount, e.VendorName, e.Description, e.Category, e.Anomaly).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (s *Storage) DeleteByID(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM expenses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Storage) FindAll(ctx context.Context) ([]domain.Expense, error) {
	return s.query(ctx, "SELECT "+expenseColumns+" FROM expenses ORDER BY id")
}

func (s *Storage) FindAnomalies(ctx context.Context) ([]domain.Expense, error) {
	return s.query(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE is_anomaly ORDER BY id")
}

func (s *Storage) FindByCategory(ctx context.Context, category string) ([]domain.Expense, error) {
	return s.query(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE category = $1 ORDER BY id", category)
}

func (s *Storage) query(ctx context.Context, sql string, args ...any) ([]domain.Expense, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var (
			e    domain.Expense
			date time.Time
		)
		if err := rows.Scan(&e.ID, &date, &e.Amount, &e.VendorName, &e.Description, &e.Category, &e.Anomaly, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date = civil.DateOf(date)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *Storage) CategoryStats(ctx context.Context, category string) (domain.CategoryStats, error) {
	var stats domain.CategoryStats
	err := s.db.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM expenses WHERE category = $1", category,
	).Scan(&stats.Sum, &stats.Count)
	if err != nil {
		return domain.CategoryStats{}, fmt.Errorf("category stats: %w", err)
	}
	return stats, nil
}

func (s *Storage) UpdateAnomalies(ctx context.Context, flags map[int64]bool) error {
	if len(flags) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for id, flag := range flags {
		batch.Queue("UPDATE expenses SET is_anomaly = $1 WHERE id = $2", flag, id)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("update anomaly flags: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Storage) SumByCategory(ctx context.Context, year, month int) (domain.CategoryTotals, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	rows, err := s.db.Query(ctx, `
		SELECT category, SUM(amount)
		FROM expenses
		WHERE date >= $1 AND date < $2
		GROUP BY category
		ORDER BY MIN(id)
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	totals := domain.CategoryTotals{}
	for rows.Next() {
		var t domain.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (s *Storage) TopVendorsBySpend(ctx context.Context, limit int) ([]domain.VendorTotal, error) {
	rows, err := s.db.Query(ctx, `
		SELECT vendor_name, SUM(amount) AS total
		FROM expenses
		GROUP BY vendor_name
		ORDER BY total DESC, MIN(id)
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top vendors: %w", err)
	}
	defer rows.Close()

	vendors := []domain.VendorTotal{}
	for rows.Next() {
		var v domain.VendorTotal
		if err := rows.Scan(&v.VendorName, &v.Total); err != nil {
			return nil, fmt.Errorf("scan vendor total: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func dateValue(d civil.Date) time.Time {
	return d.In(time.UTC)
}
