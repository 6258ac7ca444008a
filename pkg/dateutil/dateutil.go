package dateutil

import (
	"fmt"
	"time"

	"cloudeng.io/datetime"
)

// Date returns midnight UTC of the given calendar date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// Truncate drops clock time and location, keeping the calendar date
func Truncate(date time.Time) time.Time {
	return Date(date.Year(), date.Month(), date.Day())
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// Before reports whether date1 falls on an earlier calendar day than date2
func Before(date1, date2 time.Time) bool {
	return Truncate(date1).Before(Truncate(date2))
}

// ValidDate reports whether year-month-day is a real Gregorian date
func ValidDate(year int, month time.Month, day int) bool {
	if month < time.January || month > time.December || day < 1 {
		return false
	}
	return day <= datetime.DaysInMonth(year, datetime.Month(month))
}

// DaysInMonth returns the number of days in the month
func DaysInMonth(year int, month time.Month) int {
	return datetime.DaysInMonth(year, datetime.Month(month))
}

// DaysInYear returns 366 for leap years and 365 otherwise
func DaysInYear(year int) int {
	if datetime.IsLeap(year) {
		return 366
	}
	return 365
}

// YearDays returns every date of the year in order, at midnight UTC
func YearDays(year int) []time.Time {
	return EachDay(Date(year, time.January, 1), Date(year, time.December, 31))
}

// EachDay returns every date from..to inclusive
func EachDay(from, to time.Time) []time.Time {
	from, to = Truncate(from), Truncate(to)
	if to.Before(from) {
		return nil
	}

	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ParseDate parses date string in various formats
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05-0700",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return Truncate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", dateStr)
}
