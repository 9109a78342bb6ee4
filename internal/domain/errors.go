package domain

import "errors"

var (
	// ErrValidation marks bad manual input: non-positive amount, blank vendor, missing date.
	ErrValidation = errors.New("validation error")
	// ErrInvalidDateFormat is returned when a date string matches none of the accepted layouts.
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrMalformedRow marks an import row with the wrong shape or a non-numeric amount.
	ErrMalformedRow = errors.New("malformed row")
	// ErrNotFound is returned when deleting an expense id that does not exist.
	ErrNotFound = errors.New("not found")
)
