package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/categorizer"
	"expense-tracker/internal/domain"
	"expense-tracker/internal/service"
	"expense-tracker/internal/storage/memory"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func setup(t *testing.T) (*gin.Engine, *ExpenseHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.New(memory.NewStorage(), categorizer.Default(), nil, quiet)
	h := NewExpenseHandler(svc, 1<<20, quiet)
	h.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	r := gin.New()
	h.RegisterRoutes(r)
	return r, h
}

func do(r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func upload(t *testing.T, r http.Handler, field, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "expenses.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/expenses/upload-csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAddExpense(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/expenses", `{"date":"05/03/2024","amount":250.5,"vendorName":"Swiggy","description":"dinner"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode[map[string]any](t, w)
	assert.Equal(t, "2024-03-05", got["date"])
	assert.Equal(t, "Food", got["category"])
	assert.Equal(t, "Swiggy", got["vendorName"])
	assert.Equal(t, false, got["anomaly"])
	assert.NotZero(t, got["id"])
}

func TestAddExpense_CategoryOverride(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/expenses", `{"date":"2024-03-05","amount":"12.00","vendorName":"Swiggy","category":"Work"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Work", decode[map[string]any](t, w)["category"])
}

func TestAddExpense_BadInput(t *testing.T) {
	r, _ := setup(t)
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `{"date":`, "Invalid JSON"},
		{"missing vendor", `{"date":"2024-03-05","amount":10}`, "vendorName is required"},
		{"blank vendor", `{"date":"2024-03-05","amount":10,"vendorName":"  "}`, "vendorName must not be blank"},
		{"negative amount", `{"date":"2024-03-05","amount":-1,"vendorName":"Uber"}`, "amount must be greater than 0"},
		{"zero amount", `{"date":"2024-03-05","amount":0,"vendorName":"Uber"}`, "amount is required"},
		{"bad date", `{"date":"2024/03/05","amount":10,"vendorName":"Uber"}`, "date must be"},
		{"amount rounds to zero", `{"date":"2024-03-05","amount":0.001,"vendorName":"Uber"}`, "amount must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/expenses", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode[map[string]string](t, w)["error"], tt.message)
		})
	}
}

func TestListAndDelete(t *testing.T) {
	r, _ := setup(t)
	w := do(r, http.MethodPost, "/api/expenses", `{"date":"2024-03-05","amount":10,"vendorName":"Uber"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int64(decode[map[string]any](t, w)["id"].(float64))

	w = do(r, http.MethodGet, "/api/expenses", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = do(r, http.MethodDelete, "/api/expenses/"+jsonNumber(id), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, "/api/expenses/"+jsonNumber(id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/api/expenses/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/expenses", "")
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestUploadCSV(t *testing.T) {
	r, _ := setup(t)

	csv := "date,amount,vendor_name,description\n" +
		"2024-03-01,10,Uber,ride\n" +
		"not-a-date,5,Ola,\n" +
		"2024-03-02,20,Swiggy,lunch\n"
	w := upload(t, r, "file", csv)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message  string           `json:"message"`
		RunID    string           `json:"runId"`
		Count    int              `json:"count"`
		Expenses []map[string]any `json:"expenses"`
		Skipped  []skippedRow     `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Uploaded successfully", resp.Message)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Expenses, 2)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, 3, resp.Skipped[0].Line)
	assert.Contains(t, resp.Skipped[0].Reason, "invalid date format")
}

func TestUploadCSV_MissingFile(t *testing.T) {
	r, _ := setup(t)
	w := upload(t, r, "attachment", "x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file is required", decode[map[string]string](t, w)["error"])
}

func TestDashboard(t *testing.T) {
	r, _ := setup(t)
	do(r, http.MethodPost, "/api/expenses", `{"date":"2024-03-05","amount":10,"vendorName":"Uber"}`)
	do(r, http.MethodPost, "/api/expenses", `{"date":"2024-02-05","amount":99,"vendorName":"Swiggy"}`)

	// Defaults to the handler's current month, March 2024.
	w := do(r, http.MethodGet, "/api/expenses/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Year                  int               `json:"year"`
		Month                 int               `json:"month"`
		MonthlyCategoryTotals map[string]string `json:"monthlyCategoryTotals"`
		TopVendors            []map[string]any  `json:"topVendors"`
		AnomalyCount          int               `json:"anomalyCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, 3, got.Month)
	assert.Equal(t, map[string]string{"Transport": "10"}, got.MonthlyCategoryTotals)
	assert.Len(t, got.TopVendors, 2)

	w = do(r, http.MethodGet, "/api/expenses/dashboard?year=2024&month=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, map[string]string{"Food": "99"}, got.MonthlyCategoryTotals)

	w = do(r, http.MethodGet, "/api/expenses/dashboard?month=13", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/expenses/dashboard?month=march", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnomaliesAndRules(t *testing.T) {
	r, _ := setup(t)
	for i := 0; i < 4; i++ {
		do(r, http.MethodPost, "/api/expenses", `{"date":"2024-03-05","amount":10,"vendorName":"Uber"}`)
	}
	do(r, http.MethodPost, "/api/expenses", `{"date":"2024-03-05","amount":100,"vendorName":"Ola"}`)

	w := do(r, http.MethodGet, "/api/expenses/anomalies", "")
	require.Equal(t, http.StatusOK, w.Code)
	anomalies := decode[[]map[string]any](t, w)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "Ola", anomalies[0]["vendorName"])

	w = do(r, http.MethodGet, "/api/categories/rules", "")
	require.Equal(t, http.StatusOK, w.Code)
	rules := decode[[]categorizer.Rule](t, w)
	require.NotEmpty(t, rules)
	assert.Equal(t, categorizer.Rule{Keyword: "swiggy", Category: "Food"}, rules[0])
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewExpenseHandler(nil, 0, quiet)
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrInvalidDateFormat, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		h.writeError(c, tc.err)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
