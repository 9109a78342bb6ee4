// Package dateparse reads the calendar date formats accepted for manual entry
// and CSV import.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"expense-tracker/internal/domain"
)

// Layout is one accepted date shape: three fixed-width numeric fields joined
// by Sep. Year, Month and Day are field positions.
type Layout struct {
	Name  string
	Sep   string
	Year  int
	Month int
	Day   int
}

// Layouts are tried in order. A string valid under both day-first and
// month-first ("05/03/2024") resolves day-first.
var Layouts = []Layout{
	{Name: "YYYY-MM-DD", Sep: "-", Year: 0, Month: 1, Day: 2},
	{Name: "DD/MM/YYYY", Sep: "/", Year: 2, Month: 1, Day: 0},
	{Name: "MM/DD/YYYY", Sep: "/", Year: 2, Month: 0, Day: 1},
	{Name: "DD-MM-YYYY", Sep: "-", Year: 2, Month: 1, Day: 0},
}

// Parse returns the first successful interpretation of text under Layouts.
//
// A day of 1-31 past the end of its month is moved to the month's last day,
// so 31/04/2024 is 2024-04-30 and 30/02/2023 is 2023-02-28. Months outside
// 1-12 and days outside 1-31 are rejected.
func Parse(text string) (civil.Date, error) {
	s := strings.TrimSpace(text)
	if s != "" {
		for _, l := range Layouts {
			if d, ok := l.parse(s); ok {
				return d, nil
			}
		}
	}
	return civil.Date{}, fmt.Errorf("%w: %q", domain.ErrInvalidDateFormat, text)
}

func (l Layout) parse(s string) (civil.Date, bool) {
	parts := strings.Split(s, l.Sep)
	if len(parts) != 3 {
		return civil.Date{}, false
	}

	year, ok := field(parts[l.Year], 4)
	if !ok || year < 1 {
		return civil.Date{}, false
	}
	month, ok := field(parts[l.Month], 2)
	if !ok || month < 1 || month > 12 {
		return civil.Date{}, false
	}
	day, ok := field(parts[l.Day], 2)
	if !ok || day < 1 || day > 31 {
		return civil.Date{}, false
	}

	if last := daysIn(year, time.Month(month)); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: time.Month(month), Day: day}, true
}

// field reads exactly width ASCII digits.
func field(s string, width int) (int, bool) {
	if len(s) != width {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
