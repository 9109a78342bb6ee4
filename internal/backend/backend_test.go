package backend

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/config"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/storage/memory"
	"expense-tracker/internal/storage/sqlite"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNew_Memory(t *testing.T) {
	b, err := New(context.Background(), config.Config{StorageBackend: config.BackendMemory}, quiet)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &memory.Storage{}, b.Storage)
	assert.Nil(t, b.Events)
	require.NotNil(t, b.Service)
}

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.db")
	b, err := New(ctx, config.Config{StorageBackend: config.BackendSQLite, SQLitePath: path}, quiet)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &sqlite.Storage{}, b.Storage)

	e, err := b.Service.AddExpense(ctx, domain.ExpenseInput{
		Date:       civil.Date{Year: 2024, Month: 3, Day: 5},
		Amount:     decimal.NewFromInt(10),
		VendorName: "Uber",
	})
	require.NoError(t, err)
	assert.Equal(t, "Transport", e.Category)
}

func TestNew_RulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - keyword: acme\n    category: Tools\n"), 0o644))

	b, err := New(context.Background(), config.Config{StorageBackend: config.BackendMemory, RulesFile: path}, quiet)
	require.NoError(t, err)
	defer b.Close()

	rules := b.Service.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "Tools", rules[0].Category)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), config.Config{StorageBackend: "mongo"}, quiet)
	assert.ErrorContains(t, err, "unsupported storage backend")

	_, err = New(context.Background(), config.Config{StorageBackend: config.BackendMemory, RulesFile: "/nonexistent/rules.yaml"}, quiet)
	assert.ErrorContains(t, err, "load rules")
}

func TestClose_ReverseOrder(t *testing.T) {
	var order []int
	b := &Backend{}
	b.onClose(func() { order = append(order, 1) })
	b.onClose(func() { order = append(order, 2) })
	b.Close()
	b.Close()
	assert.Equal(t, []int{2, 1}, order)
}
