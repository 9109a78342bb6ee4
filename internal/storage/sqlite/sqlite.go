// Package sqlite is a single-file ExpenseStorage on modernc.org/sqlite.
// Amounts are stored as integer cents and dates as YYYY-MM-DD text.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"expense-tracker/internal/domain"
	"expense-tracker/internal/storage"
)

var _ storage.ExpenseStorage = (*Storage)(nil)

const expenseColumns = `id, date, amount_cents, vendor_name, description, category, is_anomaly, created_at`

type Storage struct {
	db *sql.DB
}

// Open creates the database file if needed and applies migrations.
func Open(dbPath string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite would otherwise return SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) Insert(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	e.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (date, amount_cents, vendor_name, description, category, is_anomaly, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.Date.String(), toCents(e.Amount), e.VendorName, e.Description, e.Category, e.Anomaly, e.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return domain.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Expense{}, fmt.Errorf("insert expense id: %w", err)
	}
	e.ID = id
	return e, nil
}

func (s *Storage) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Storage) FindAll(ctx context.Context) ([]domain.Expense, error) {
	return s.query(ctx, "SELECT "+expenseColumns+" FROM expenses ORDER BY id")
}

func (s *Storage) FindAnomalies(ctx context.Context) ([]domain.Expense, error) {
	return s.query(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE is_anomaly = 1 ORDER BY id")
}

func (s *Storage) FindByCategory(ctx context.Context, category string) ([]domain.Expense, error) {
	return s.query(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE category = ? ORDER BY id", category)
}

func (s *Storage) query(ctx context.Context, query string, args ...any) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var (
			e         domain.Expense
			date      string
			cents     int64
			createdAt string
		)
		if err := rows.Scan(&e.ID, &date, &cents, &e.VendorName, &e.Description, &e.Category, &e.Anomaly, &createdAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = civil.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %d: bad date %q: %w", e.ID, date, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("expense %d: bad created_at %q: %w", e.ID, createdAt, err)
		}
		e.Amount = fromCents(cents)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *Storage) CategoryStats(ctx context.Context, category string) (domain.CategoryStats, error) {
	var sum, count int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0), COUNT(*) FROM expenses WHERE category = ?", category,
	).Scan(&sum, &count)
	if err != nil {
		return domain.CategoryStats{}, fmt.Errorf("category stats: %w", err)
	}
	return domain.CategoryStats{Sum: fromCents(sum), Count: count}, nil
}

func (s *Storage) UpdateAnomalies(ctx context.Context, flags map[int64]bool) error {
	if len(flags) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE expenses SET is_anomaly = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	for id, flag := range flags {
		if _, err := stmt.ExecContext(ctx, flag, id); err != nil {
			return fmt.Errorf("update anomaly flag %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Storage) SumByCategory(ctx context.Context, year, month int) (domain.CategoryTotals, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	from := civil.DateOf(start)
	to := civil.DateOf(start.AddDate(0, 1, 0))

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents)
		FROM expenses
		WHERE date >= ? AND date < ?
		GROUP BY category
		ORDER BY MIN(id)
	`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	totals := domain.CategoryTotals{}
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, domain.CategoryTotal{Category: category, Total: fromCents(cents)})
	}
	return totals, rows.Err()
}

func (s *Storage) TopVendorsBySpend(ctx context.Context, limit int) ([]domain.VendorTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vendor_name, SUM(amount_cents) AS total
		FROM expenses
		GROUP BY vendor_name
		ORDER BY total DESC, MIN(id)
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top vendors: %w", err)
	}
	defer rows.Close()

	vendors := []domain.VendorTotal{}
	for rows.Next() {
		var (
			vendor string
			cents  int64
		)
		if err := rows.Scan(&vendor, &cents); err != nil {
			return nil, fmt.Errorf("scan vendor total: %w", err)
		}
		vendors = append(vendors, domain.VendorTotal{VendorName: vendor, Total: fromCents(cents)})
	}
	return vendors, rows.Err()
}

func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
