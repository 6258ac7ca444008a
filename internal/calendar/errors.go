package calendar

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no day in the calendar
	ErrNotFound = errors.New("not found")

	// ErrInvalidDate is returned for an impossible day, month or date
	ErrInvalidDate = errors.New("invalid date")

	// ErrUnsorted is returned by NewValidated when dates are out of order or repeated
	ErrUnsorted = errors.New("days are not in ascending date order")

	// ErrInconsistentDay is returned by NewValidated when a record's fields disagree with its date
	ErrInconsistentDay = errors.New("day record is inconsistent")
)
