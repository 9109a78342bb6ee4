// Package record turns caller-supplied fields into a validated, categorised
// domain.Expense ready for storage.
package record

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/domain"
)

// Classifier picks a category for a vendor name.
type Classifier interface {
	Categorize(vendorName string) string
}

type Builder struct {
	classifier Classifier
}

func NewBuilder(c Classifier) *Builder {
	return &Builder{classifier: c}
}

// Build validates in and returns an unsaved Expense. ID, CreatedAt and the
// anomaly flag are left for storage and the detector.
func (b *Builder) Build(in domain.ExpenseInput) (domain.Expense, error) {
	if in.Date.IsZero() {
		return domain.Expense{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if !in.Date.IsValid() {
		return domain.Expense{}, fmt.Errorf("%w: date %s is not a calendar date", domain.ErrValidation, in.Date)
	}

	amount := in.Amount.Round(2)
	if !amount.GreaterThan(decimal.Zero) {
		return domain.Expense{}, fmt.Errorf("%w: amount must be positive, got %s", domain.ErrValidation, in.Amount)
	}

	vendor := strings.TrimSpace(in.VendorName)
	if vendor == "" {
		return domain.Expense{}, fmt.Errorf("%w: vendor name is required", domain.ErrValidation)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = b.classifier.Categorize(vendor)
	}

	return domain.Expense{
		Date:        in.Date,
		Amount:      amount,
		VendorName:  vendor,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
	}, nil
}
