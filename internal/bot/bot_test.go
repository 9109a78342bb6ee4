package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/service"
	"expense-tracker/internal/storage/memory"
)

func newBot() *Bot {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := New(service.New(memory.NewStorage(), categorizer.Default(), nil, quiet), quiet)
	b.now = func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }
	return b
}

func TestHelp(t *testing.T) {
	b := newBot()
	assert.Equal(t, helpText, b.HandleText(context.Background(), "/start"))
	assert.Equal(t, helpText, b.HandleText(context.Background(), "/help@expense_bot"))
	assert.Contains(t, b.HandleText(context.Background(), "/unknown"), "Unknown command")
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	b := newBot()

	reply := b.HandleText(ctx, "/add 05/03/2024 250.5 Swiggy;  team lunch")
	assert.Equal(t, "✅ Saved #1: 2024-03-05 250.50 at Swiggy → Food", reply)

	list := b.HandleText(ctx, "/list")
	assert.Contains(t, list, "#1 2024-03-05 250.50 Swiggy [Food]")
}

func TestAdd_Errors(t *testing.T) {
	ctx := context.Background()
	b := newBot()

	assert.Contains(t, b.HandleText(ctx, "/add 2024-03-05 10"), "Usage: /add")
	assert.Contains(t, b.HandleText(ctx, "/add yesterday 10 Uber"), "invalid date format")
	assert.Contains(t, b.HandleText(ctx, "/add 2024-03-05 ten Uber"), "not a number")
	assert.Contains(t, b.HandleText(ctx, "/add 2024-03-05 -4 Uber"), "amount must be positive")
}

func TestAdd_FlagsAnomaly(t *testing.T) {
	ctx := context.Background()
	b := newBot()
	for i := 0; i < 4; i++ {
		b.HandleText(ctx, "/add 2024-03-05 10 Uber")
	}
	reply := b.HandleText(ctx, "/add 2024-03-05 100 Ola")
	assert.Contains(t, reply, "Unusually high for Transport")

	assert.Contains(t, b.HandleText(ctx, "/anomalies"), "#5 2024-03-05 100.00 Ola [Transport] ⚠️")
}

func TestList_Empty(t *testing.T) {
	assert.Equal(t, "No expenses yet", newBot().HandleText(context.Background(), "/list"))
}

func TestList_Limit(t *testing.T) {
	ctx := context.Background()
	b := newBot()
	for i := 0; i < ListLimit+3; i++ {
		b.HandleText(ctx, fmt.Sprintf("/add 2024-03-05 %d Uber", i+1))
	}
	reply := b.HandleText(ctx, "/list")
	assert.Contains(t, reply, fmt.Sprintf("(%d of %d)", ListLimit, ListLimit+3))
	assert.NotContains(t, reply, "#1 ")
	assert.Contains(t, reply, fmt.Sprintf("#%d ", ListLimit+3))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	b := newBot()
	b.HandleText(ctx, "/add 2024-03-05 10 Uber")

	assert.Equal(t, "✅ Deleted #1", b.HandleText(ctx, "/delete #1"))
	assert.Equal(t, "Expense #1 not found", b.HandleText(ctx, "/delete 1"))
	assert.Equal(t, "Usage: /delete <id>", b.HandleText(ctx, "/delete abc"))
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	b := newBot()
	b.HandleText(ctx, "/add 2024-03-05 10 Uber")
	b.HandleText(ctx, "/add 2024-02-05 20 Swiggy")

	current := b.HandleText(ctx, "/dashboard")
	assert.Contains(t, current, "📊 2024-03")
	assert.Contains(t, current, "Transport: 10.00")
	assert.NotContains(t, current, "Food:")
	assert.Contains(t, current, "1. Swiggy — 20.00")

	feb := b.HandleText(ctx, "/dashboard 2024-02")
	assert.Contains(t, feb, "Food: 20.00")

	empty := b.HandleText(ctx, "/dashboard 2023-01")
	assert.Contains(t, empty, "No spending this month")

	assert.Equal(t, "Usage: /dashboard [YYYY-MM]", b.HandleText(ctx, "/dashboard March"))
}

func TestRules(t *testing.T) {
	reply := newBot().HandleText(context.Background(), "/rules")
	assert.Contains(t, reply, "swiggy → Food")
	assert.Contains(t, reply, "amazon → Shopping")
}

func TestHandleDocument(t *testing.T) {
	ctx := context.Background()
	b := newBot()
	csv := "date,amount,vendor_name\n2024-03-01,10,Uber\nbad,1,x\n2024-03-02,12,Ola\n"

	reply := b.HandleDocument(ctx, "march.csv", strings.NewReader(csv))
	assert.Contains(t, reply, "Imported 2 expenses from march.csv")
	assert.Contains(t, reply, "Skipped 1 rows:")
	assert.Contains(t, reply, "line 3: invalid date format")

	require.Contains(t, b.HandleText(ctx, "/list"), "(2 of 2)")
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "/add 2024-03-05 10 Uber", SanitizeInput("  /add 2024-03-05\t10\n Uber "))
}
