// Package bot turns Telegram messages into expense service calls. It has no
// Telegram dependency; cmd/bot owns the transport.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/dateparse"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/importer"
	val "expense-tracker/internal/validator"
)

// ListLimit caps how many expenses /list prints.
const ListLimit = 20

const helpText = "💸 Expense tracker\n\n" +
	"Commands:\n" +
	"/add <date> <amount> <vendor>[; description] — add an expense\n" +
	"   e.g. /add 05/03/2024 250.50 Swiggy; team lunch\n" +
	"/list — latest expenses\n" +
	"/delete <id> — delete an expense\n" +
	"/anomalies — flagged expenses\n" +
	"/dashboard [YYYY-MM] — monthly summary\n" +
	"/rules — categorisation rules\n\n" +
	"Send a CSV file (date,amount,vendor_name,description) to import it."

type Service interface {
	AddExpense(ctx context.Context, in domain.ExpenseInput) (domain.Expense, error)
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	ImportFile(ctx context.Context, r io.Reader) (*importer.Result, error)
	ListAnomalies(ctx context.Context) ([]domain.Expense, error)
	GetDashboard(ctx context.Context, year, month int) (*domain.DashboardSummary, error)
	Rules() []categorizer.Rule
}

type Bot struct {
	svc Service
	log *slog.Logger
	now func() time.Time
}

func New(svc Service, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{svc: svc, log: log.With("component", "bot"), now: time.Now}
}

type dashboardArgs struct {
	Month string `validate:"omitempty,yearmonth"`
}

// HandleText answers a text message. Errors are rendered into the reply.
func (b *Bot) HandleText(ctx context.Context, raw string) string {
	text := SanitizeInput(importer.FixEncoding(raw))
	cmd, args, _ := strings.Cut(text, " ")
	// Commands addressed to the bot in groups look like /add@my_bot.
	cmd, _, _ = strings.Cut(cmd, "@")

	var (
		reply string
		err   error
	)
	switch cmd {
	case "/start", "/help":
		reply = helpText
	case "/add":
		reply, err = b.add(ctx, args)
	case "/list":
		reply, err = b.list(ctx)
	case "/delete":
		reply, err = b.delete(ctx, args)
	case "/anomalies":
		reply, err = b.anomalies(ctx)
	case "/dashboard":
		reply, err = b.dashboard(ctx, args)
	case "/rules":
		reply = b.rules()
	default:
		reply = "Unknown command. Send /help"
	}

	if err != nil {
		b.log.Warn("Command failed", "command", cmd, "error", err)
		return "❌ Error: " + err.Error()
	}
	return reply
}

// HandleDocument imports a CSV file sent to the bot.
func (b *Bot) HandleDocument(ctx context.Context, name string, r io.Reader) string {
	res, err := b.svc.ImportFile(ctx, r)
	if err != nil {
		b.log.Error("Import failed", "file", name, "error", err)
		return "❌ Import failed: " + err.Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Imported %d expenses from %s", res.SavedCount(), name)
	flagged := 0
	for _, e := range res.Saved {
		if e.Anomaly {
			flagged++
		}
	}
	if flagged > 0 {
		fmt.Fprintf(&sb, "\n⚠️ %d flagged as anomalies", flagged)
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nSkipped %d rows:", len(res.Skipped))
		for i, s := range res.Skipped {
			if i == 5 {
				fmt.Fprintf(&sb, "\n…and %d more", len(res.Skipped)-5)
				break
			}
			fmt.Fprintf(&sb, "\n  line %d: %s", s.Line, s.Reason())
		}
	}
	return sb.String()
}

// add parses "<date> <amount> <vendor>[; description]".
func (b *Bot) add(ctx context.Context, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return "Usage: /add <date> <amount> <vendor>[; description]", nil
	}

	date, err := dateparse.Parse(fields[0])
	if err != nil {
		return "", err
	}
	amount, err := decimal.NewFromString(fields[1])
	if err != nil {
		return "", fmt.Errorf("amount %q is not a number", fields[1])
	}

	rest := strings.Join(fields[2:], " ")
	vendor, description, _ := strings.Cut(rest, ";")

	e, err := b.svc.AddExpense(ctx, domain.ExpenseInput{
		Date:        date,
		Amount:      amount,
		VendorName:  vendor,
		Description: description,
	})
	if err != nil {
		return "", err
	}

	reply := fmt.Sprintf("✅ Saved #%d: %s %s at %s → %s", e.ID, e.Date, e.Amount.StringFixed(2), e.VendorName, e.Category)
	if e.Anomaly {
		reply += "\n⚠️ Unusually high for " + e.Category
	}
	return reply, nil
}

func (b *Bot) list(ctx context.Context) (string, error) {
	all, err := b.svc.ListExpenses(ctx)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "No expenses yet", nil
	}

	start := 0
	if len(all) > ListLimit {
		start = len(all) - ListLimit
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧾 Expenses (%d of %d):", len(all)-start, len(all))
	for _, e := range all[start:] {
		sb.WriteString("\n")
		sb.WriteString(formatExpense(e))
	}
	return sb.String(), nil
}

func (b *Bot) delete(ctx context.Context, args string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(args), "#"), 10, 64)
	if err != nil || id <= 0 {
		return "Usage: /delete <id>", nil
	}
	if err := b.svc.DeleteExpense(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("Expense #%d not found", id), nil
		}
		return "", err
	}
	return fmt.Sprintf("✅ Deleted #%d", id), nil
}

func (b *Bot) anomalies(ctx context.Context) (string, error) {
	list, err := b.svc.ListAnomalies(ctx)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "No anomalies 🎉", nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ Anomalies (%d):", len(list))
	for _, e := range list {
		sb.WriteString("\n")
		sb.WriteString(formatExpense(e))
	}
	return sb.String(), nil
}

func (b *Bot) dashboard(ctx context.Context, args string) (string, error) {
	req := dashboardArgs{Month: strings.TrimSpace(args)}
	if err := val.Validate.Struct(req); err != nil {
		return "Usage: /dashboard [YYYY-MM]", nil
	}

	year, month := b.now().Year(), int(b.now().Month())
	if req.Month != "" {
		t, _ := time.Parse("2006-01", req.Month)
		year, month = t.Year(), int(t.Month())
	}

	d, err := b.svc.GetDashboard(ctx, year, month)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %04d-%02d", d.Year, d.Month)
	if len(d.MonthlyCategoryTotals) == 0 {
		sb.WriteString("\nNo spending this month")
	}
	for _, t := range d.MonthlyCategoryTotals {
		fmt.Fprintf(&sb, "\n  %s: %s", t.Category, t.Total.StringFixed(2))
	}
	if len(d.TopVendors) > 0 {
		sb.WriteString("\n\n🏆 Top vendors:")
		for i, v := range d.TopVendors {
			fmt.Fprintf(&sb, "\n  %d. %s — %s", i+1, v.VendorName, v.Total.StringFixed(2))
		}
	}
	fmt.Fprintf(&sb, "\n\n⚠️ Anomalies: %d", d.AnomalyCount)
	return sb.String(), nil
}

func (b *Bot) rules() string {
	var sb strings.Builder
	sb.WriteString("📚 Rules (keyword → category):")
	for _, r := range b.svc.Rules() {
		fmt.Fprintf(&sb, "\n  %s → %s", r.Keyword, r.Category)
	}
	return sb.String()
}

func formatExpense(e domain.Expense) string {
	s := fmt.Sprintf("#%d %s %s %s [%s]", e.ID, e.Date, e.Amount.StringFixed(2), e.VendorName, e.Category)
	if e.Anomaly {
		s += " ⚠️"
	}
	return s
}

// SanitizeInput replaces every whitespace rune with a plain space and
// collapses runs of spaces.
func SanitizeInput(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			sb.WriteRune(' ')
		} else {
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
