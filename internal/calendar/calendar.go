package calendar

import (
	"fmt"
	"time"

	"github.com/username/production-calendar/pkg/dateutil"
)

// Calendar is an immutable, date-ordered sequence of classified days for one
// year. All methods are read-only, so a Calendar can be shared between
// goroutines without locking.
type Calendar struct {
	year int
	days []Day
}

// MonthStats counts the days of each classification in a month
type MonthStats struct {
	Month       Month
	Days        int
	Working     int
	Weekends    int
	PreHolidays int
	Holidays    int
}

// WorkDays returns the number of working and pre-holiday days
func (s MonthStats) WorkDays() int {
	return s.Working + s.PreHolidays
}

// New creates a calendar for year from days. days must be sorted by date
// with no duplicates; this is not checked, use NewValidated for that.
func New(year int, days []Day) *Calendar {
	owned := make([]Day, len(days))
	copy(owned, days)

	return &Calendar{
		year: year,
		days: owned,
	}
}

// NewValidated is New with the ordering and consistency precondition checked
func NewValidated(year int, days []Day) (*Calendar, error) {
	for i, d := range days {
		if d.Year != year || d.Date.Year() != year {
			return nil, fmt.Errorf("%s belongs to year %d, calendar year is %d: %w",
				d.Date.Format("2006-01-02"), d.Date.Year(), year, ErrInconsistentDay)
		}
		if d.Month != MonthFromTime(d.Date.Month()) || d.Day.Int() != d.Date.Day() {
			return nil, fmt.Errorf("%s has month %d day %d: %w",
				d.Date.Format("2006-01-02"), d.Month, d.Day, ErrInconsistentDay)
		}
		if d.Type < DayTypeWorking || d.Type > DayTypeHoliday {
			return nil, fmt.Errorf("%s has unknown %v: %w",
				d.Date.Format("2006-01-02"), d.Type, ErrInconsistentDay)
		}
		if i > 0 && !dateutil.Before(days[i-1].Date, d.Date) {
			return nil, fmt.Errorf("%s follows %s: %w",
				d.Date.Format("2006-01-02"), days[i-1].Date.Format("2006-01-02"), ErrUnsorted)
		}
	}

	return New(year, days), nil
}

// Year returns the calendar year
func (c *Calendar) Year() int {
	return c.year
}

// DayCount returns the number of day records
func (c *Calendar) DayCount() int {
	return len(c.days)
}

// WorkDayCount returns the number of working and pre-holiday days
func (c *Calendar) WorkDayCount() int {
	count := 0
	for _, d := range c.days {
		if d.IsWorkday() {
			count++
		}
	}
	return count
}

// Days returns a copy of all day records
func (c *Calendar) Days() []Day {
	days := make([]Day, len(c.days))
	copy(days, c.days)
	return days
}

// GetDay returns the record for date. Only the calendar date is compared,
// clock time and location are ignored.
func (c *Calendar) GetDay(date time.Time) (Day, error) {
	i, err := c.IndexOf(date)
	if err != nil {
		return Day{}, err
	}
	return c.days[i], nil
}

// IndexOf returns the zero-based position of date in the calendar
func (c *Calendar) IndexOf(date time.Time) (int, error) {
	for i, d := range c.days {
		if dateutil.IsSameDay(d.Date, date) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("day %s: %w", date.Format("2006-01-02"), ErrNotFound)
}

// PreviousWorkDay returns the closest work day strictly before day/month of
// the calendar year.
func (c *Calendar) PreviousWorkDay(day int, month Month) (Day, error) {
	if !month.Valid() || !dateutil.ValidDate(c.year, month.Time(), day) {
		return Day{}, fmt.Errorf("%04d-%02d-%02d: %w", c.year, int(month), day, ErrInvalidDate)
	}

	target := dateutil.Date(c.year, month.Time(), day)
	index, err := c.IndexOf(target)
	if err != nil {
		return Day{}, err
	}

	for i := index - 1; i >= 0; i-- {
		if c.days[i].IsWorkday() {
			return c.days[i], nil
		}
	}

	return Day{}, fmt.Errorf("previous work day before %s: %w", target.Format("2006-01-02"), ErrNotFound)
}

// DaysInMonth returns the days whose date falls in month
func (c *Calendar) DaysInMonth(month Month) []Day {
	return c.filter(func(d Day) bool {
		return inMonth(d, month)
	})
}

// WorkDaysInMonth returns the work days whose date falls in month
func (c *Calendar) WorkDaysInMonth(month Month) []Day {
	return c.filter(func(d Day) bool {
		return inMonth(d, month) && d.IsWorkday()
	})
}

// CountWorkDaysInMonth returns len(WorkDaysInMonth(month))
func (c *Calendar) CountWorkDaysInMonth(month Month) int {
	return c.count(func(d Day) bool {
		return inMonth(d, month) && d.IsWorkday()
	})
}

// CountWorkDaysInMonthBefore counts work days of month up to and including day
func (c *Calendar) CountWorkDaysInMonthBefore(month Month, day DayNumber) int {
	return c.count(func(d Day) bool {
		return inMonth(d, month) && d.Date.Day() <= day.Int() && d.IsWorkday()
	})
}

// CountWorkDaysInMonthAfter counts work days of month strictly after day
func (c *Calendar) CountWorkDaysInMonthAfter(month Month, day DayNumber) int {
	return c.count(func(d Day) bool {
		return inMonth(d, month) && d.Date.Day() > day.Int() && d.IsWorkday()
	})
}

// MonthStats returns per-classification counts for month
func (c *Calendar) MonthStats(month Month) MonthStats {
	stats := MonthStats{Month: month}
	for _, d := range c.days {
		if !inMonth(d, month) {
			continue
		}
		stats.Days++
		switch d.Type {
		case DayTypeWorking:
			stats.Working++
		case DayTypeWeekend:
			stats.Weekends++
		case DayTypePreHoliday:
			stats.PreHolidays++
		case DayTypeHoliday:
			stats.Holidays++
		}
	}
	return stats
}

func (c *Calendar) filter(keep func(Day) bool) []Day {
	var days []Day
	for _, d := range c.days {
		if keep(d) {
			days = append(days, d)
		}
	}
	return days
}

func (c *Calendar) count(match func(Day) bool) int {
	n := 0
	for _, d := range c.days {
		if match(d) {
			n++
		}
	}
	return n
}

func inMonth(d Day, month Month) bool {
	return d.Date.Month() == month.Time()
}
