// internal/handler/expense.go
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/dateparse"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/importer"
	val "expense-tracker/internal/validator"
)

// ExpenseService is what the HTTP layer needs from the service package.
type ExpenseService interface {
	AddExpense(ctx context.Context, in domain.ExpenseInput) (domain.Expense, error)
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	ImportFile(ctx context.Context, r io.Reader) (*importer.Result, error)
	ListAnomalies(ctx context.Context) ([]domain.Expense, error)
	GetDashboard(ctx context.Context, year, month int) (*domain.DashboardSummary, error)
	Rules() []categorizer.Rule
}

type ExpenseHandler struct {
	svc            ExpenseService
	maxUploadBytes int64
	log            *slog.Logger
	now            func() time.Time
}

func NewExpenseHandler(svc ExpenseService, maxUploadBytes int64, log *slog.Logger) *ExpenseHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ExpenseHandler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		log:            log.With("component", "handler"),
		now:            time.Now,
	}
}

// RegisterRoutes mounts the expense API under /api.
func (h *ExpenseHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	{
		expenses := api.Group("/expenses")
		expenses.POST("", h.AddExpense)
		expenses.GET("", h.ListExpenses)
		expenses.DELETE("/:id", h.DeleteExpense)
		expenses.POST("/upload-csv", h.UploadCSV)
		expenses.GET("/anomalies", h.ListAnomalies)
		expenses.GET("/dashboard", h.Dashboard)

		api.GET("/categories/rules", h.Rules)
	}
}

type ExpenseRequest struct {
	Date        string          `json:"date" validate:"required,expensedate"`
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	VendorName  string          `json:"vendorName" validate:"required,notblank,max=255"`
	Description string          `json:"description" validate:"max=1000"`
	Category    string          `json:"category" validate:"max=100"`
}

type skippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type UploadResponse struct {
	Message  string           `json:"message"`
	RunID    string           `json:"runId"`
	Count    int              `json:"count"`
	Expenses []domain.Expense `json:"expenses"`
	Skipped  []skippedRow     `json:"skipped"`
}

// AddExpense handles POST /api/expenses.
func (h *ExpenseHandler) AddExpense(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := dateparse.Parse(req.Date)
	if err != nil {
		h.writeError(c, err)
		return
	}

	expense, err := h.svc.AddExpense(c.Request.Context(), domain.ExpenseInput{
		Date:        date,
		Amount:      req.Amount,
		VendorName:  req.VendorName,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	list, err := h.svc.ListExpenses(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteExpense handles DELETE /api/expenses/:id.
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	if err := h.svc.DeleteExpense(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadCSV handles POST /api/expenses/upload-csv with a multipart "file"
// field. Bad rows are reported in "skipped" and do not fail the request.
func (h *ExpenseHandler) UploadCSV(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer f.Close()

	res, err := h.svc.ImportFile(c.Request.Context(), f)
	if err != nil {
		h.log.Error("Import failed", "file", header.Filename, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skipped := make([]skippedRow, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		skipped = append(skipped, skippedRow{Line: s.Line, Reason: s.Reason()})
	}
	saved := res.Saved
	if saved == nil {
		saved = []domain.Expense{}
	}

	h.log.Info("CSV uploaded", "file", header.Filename, "saved", res.SavedCount(), "skipped", len(skipped))
	c.JSON(http.StatusOK, UploadResponse{
		Message:  "Uploaded successfully",
		RunID:    res.RunID.String(),
		Count:    res.SavedCount(),
		Expenses: saved,
		Skipped:  skipped,
	})
}

func (h *ExpenseHandler) ListAnomalies(c *gin.Context) {
	list, err := h.svc.ListAnomalies(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Dashboard handles GET /api/expenses/dashboard?year=&month=. A missing or
// zero year or month means the current one.
func (h *ExpenseHandler) Dashboard(c *gin.Context) {
	now := h.now()

	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.svc.GetDashboard(c.Request.Context(), year, month)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ExpenseHandler) Rules(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Rules())
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n == 0 {
		return fallback, nil
	}
	return n, nil
}

func (h *ExpenseHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidDateFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
	default:
		_ = c.Error(err)
		h.log.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func validateStruct(v any) error {
	err := val.Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid input: %w", err)
	}
	errs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, fieldErrorToString(e))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "expensedate":
		return fmt.Sprintf("%s must be YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY or DD-MM-YYYY", e.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s is too long", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
