package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Month  string          `validate:"omitempty,yearmonth"`
	Vendor string          `validate:"required,notblank"`
	Date   string          `validate:"required,expensedate"`
	Amount decimal.Decimal `validate:"required,gt=0"`
}

func failedTags(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "unexpected error %v", err)
	out := make(map[string]string)
	for _, e := range verrs {
		out[e.Field()] = e.Tag()
	}
	return out
}

func TestValidate_OK(t *testing.T) {
	err := Validate.Struct(sample{
		Month:  "2024-03",
		Vendor: "Uber",
		Date:   "05/03/2024",
		Amount: decimal.RequireFromString("0.01"),
	})
	assert.NoError(t, err)
}

func TestValidate_Failures(t *testing.T) {
	err := Validate.Struct(sample{
		Month:  "2024-13",
		Vendor: "   ",
		Date:   "yesterday",
		Amount: decimal.NewFromInt(-3),
	})
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"Month":  "yearmonth",
		"Vendor": "notblank",
		"Date":   "expensedate",
		"Amount": "gt",
	}, failedTags(t, err))
}

func TestValidate_ZeroAmountIsRequired(t *testing.T) {
	err := Validate.Struct(sample{Vendor: "Uber", Date: "2024-03-05"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"Amount": "required"}, failedTags(t, err))
}
