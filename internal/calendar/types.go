package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloudeng.io/datetime"
)

// Month is a calendar month, January = 1
type Month int

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

// Months lists all months in calendar order
var Months = []Month{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

// MonthFromInt converts a 1-based month number
func MonthFromInt(n int) (Month, error) {
	if n < int(January) || n > int(December) {
		return 0, fmt.Errorf("month %d out of range 1..12: %w", n, ErrInvalidDate)
	}
	return Month(n), nil
}

// MonthFromTime converts a time.Month
func MonthFromTime(m time.Month) Month {
	return Month(m)
}

// ParseMonth parses a numeric month ("1", "01") or an English month name or
// prefix ("jan", "January").
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty month: %w", ErrInvalidDate)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return MonthFromInt(n)
	}
	m, err := datetime.ParseMonth(s)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, ErrInvalidDate)
	}
	return Month(m), nil
}

// Time returns the time.Month for m
func (m Month) Time() time.Month {
	return time.Month(m)
}

// Int returns the 1-based month number
func (m Month) Int() int {
	return int(m)
}

// Valid reports whether m is one of the twelve months
func (m Month) Valid() bool {
	return m >= January && m <= December
}

// Next returns the following month, December wraps to January
func (m Month) Next() Month {
	if m == December {
		return January
	}
	return m + 1
}

// Prev returns the preceding month, January wraps to December
func (m Month) Prev() Month {
	if m == January {
		return December
	}
	return m - 1
}

func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return time.Month(m).String()
}

// DayType classifies a calendar day. The numeric values are the ranking
// Working < Weekend < PreHoliday < Holiday.
type DayType int

const (
	DayTypeWorking DayType = iota + 1
	DayTypeWeekend
	DayTypePreHoliday
	DayTypeHoliday
)

// IsWorkday reports whether the day counts as a work day.
// Pre-holiday (shortened) days are work days.
func (t DayType) IsWorkday() bool {
	return t == DayTypeWorking || t == DayTypePreHoliday
}

func (t DayType) String() string {
	switch t {
	case DayTypeWorking:
		return "working"
	case DayTypeWeekend:
		return "weekend"
	case DayTypePreHoliday:
		return "pre-holiday"
	case DayTypeHoliday:
		return "holiday"
	default:
		return fmt.Sprintf("DayType(%d)", int(t))
	}
}

// ParseDayType parses a classification name. "workday" and "shortened" are
// accepted as aliases for working and pre-holiday.
func ParseDayType(s string) (DayType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "working", "workday":
		return DayTypeWorking, nil
	case "weekend":
		return DayTypeWeekend, nil
	case "pre-holiday", "preholiday", "shortened":
		return DayTypePreHoliday, nil
	case "holiday":
		return DayTypeHoliday, nil
	default:
		return 0, fmt.Errorf("unknown day type %q", s)
	}
}

// MarshalText encodes the type by name
func (t DayType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name
func (t *DayType) UnmarshalText(text []byte) error {
	v, err := ParseDayType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DayNumber is a day of month in the range 1..31
type DayNumber int

// NewDayNumber validates n
func NewDayNumber(n int) (DayNumber, error) {
	if n < 1 || n > 31 {
		return 0, fmt.Errorf("day %d out of range 1..31: %w", n, ErrInvalidDate)
	}
	return DayNumber(n), nil
}

// Int returns the wrapped day of month
func (d DayNumber) Int() int {
	return int(d)
}

// Day is a classified calendar day
type Day struct {
	Date  time.Time `json:"date"`
	Day   DayNumber `json:"day"`
	Month Month     `json:"month"`
	Year  int       `json:"year"`
	Type  DayType   `json:"type"`
}

// NewDay builds a day record from all of its fields. Keeping day, month and
// year consistent with date is the caller's job.
func NewDay(date time.Time, day DayNumber, month Month, year int, dayType DayType) Day {
	return Day{
		Date:  date,
		Day:   day,
		Month: month,
		Year:  year,
		Type:  dayType,
	}
}

// DayOf builds a day record taking day, month and year from date
func DayOf(date time.Time, dayType DayType) Day {
	return NewDay(
		time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		DayNumber(date.Day()),
		MonthFromTime(date.Month()),
		date.Year(),
		dayType,
	)
}

// IsWorkday reports whether the day counts as a work day
func (d Day) IsWorkday() bool {
	return d.Type.IsWorkday()
}

func (d Day) String() string {
	return fmt.Sprintf("%s %s", d.Date.Format("2006-01-02"), d.Type)
}
