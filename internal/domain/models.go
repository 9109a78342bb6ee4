// internal/domain/models.go
package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// OtherCategory is assigned when no rule matches a vendor.
const OtherCategory = "Other"

// Expense is a single spending record.
//
// Anomaly is a cached value: it reflects the category average at the time of
// the last evaluation (insert or category reconciliation), not the live one.
type Expense struct {
	ID          int64           `json:"id,omitempty"`
	Date        civil.Date      `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	VendorName  string          `json:"vendorName"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Anomaly     bool            `json:"anomaly"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ExpenseInput is what a caller supplies for a new expense. Category is an
// optional manual override.
type ExpenseInput struct {
	Date        civil.Date
	Amount      decimal.Decimal
	VendorName  string
	Description string
	Category    string
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// CategoryTotals keeps the order produced by storage and marshals to a JSON
// object in that order.
type CategoryTotals []CategoryTotal

func (ct CategoryTotals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range ct {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Category)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.Total)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the total for category and whether it is present.
func (ct CategoryTotals) Get(category string) (decimal.Decimal, bool) {
	for _, t := range ct {
		if t.Category == category {
			return t.Total, true
		}
	}
	return decimal.Zero, false
}

type VendorTotal struct {
	VendorName string          `json:"vendorName"`
	Total      decimal.Decimal `json:"total"`
}

// DashboardSummary is the monthly overview returned to clients.
type DashboardSummary struct {
	Year                  int            `json:"year"`
	Month                 int            `json:"month"`
	MonthlyCategoryTotals CategoryTotals `json:"monthlyCategoryTotals"`
	TopVendors            []VendorTotal  `json:"topVendors"`
	Anomalies             []Expense      `json:"anomalies"`
	AnomalyCount          int            `json:"anomalyCount"`
}

// CategoryStats is the exact sum and row count of one category. Comparisons
// against the mean use these directly so no rounded quotient is involved.
type CategoryStats struct {
	Sum   decimal.Decimal
	Count int64
}

// Average is Sum/Count, or zero for an empty category. It is for display.
func (s CategoryStats) Average() decimal.Decimal {
	if s.Count == 0 {
		return decimal.Zero
	}
	return s.Sum.Div(decimal.NewFromInt(s.Count))
}
