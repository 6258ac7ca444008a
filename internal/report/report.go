// Package report summarizes a production calendar per month: day counts by
// classification, work days up to and after a given day, and the working
// time norm in hours.
package report

import (
	"github.com/shopspring/decimal"
	"github.com/username/production-calendar/internal/calendar"
)

var (
	five = decimal.NewFromInt(5)
	one  = decimal.NewFromInt(1)
)

// MonthSummary describes one month of the calendar
type MonthSummary struct {
	Month       calendar.Month
	Days        int
	WorkDays    int
	Weekends    int
	PreHolidays int
	Holidays    int

	// AsOf is the day the before/after split is taken at, 0 when not requested
	AsOf           calendar.DayNumber
	WorkDaysBefore int // up to and including AsOf
	WorkDaysAfter  int // strictly after AsOf

	NormHours decimal.Decimal
}

// Report is a set of month summaries for one calendar year
type Report struct {
	Year      int
	Days      int
	WorkDays  int
	WeekHours decimal.Decimal
	NormHours decimal.Decimal
	Months    []MonthSummary
}

// DayHours is the norm for a single day: a fifth of the working week, one
// hour less on a pre-holiday day, nothing on weekends and holidays
func DayHours(dayType calendar.DayType, weekHours decimal.Decimal) decimal.Decimal {
	switch dayType {
	case calendar.DayTypeWorking:
		return weekHours.Div(five)
	case calendar.DayTypePreHoliday:
		hours := weekHours.Div(five).Sub(one)
		if hours.IsNegative() {
			return decimal.Zero
		}
		return hours
	default:
		return decimal.Zero
	}
}

// NormHours sums DayHours over days
func NormHours(days []calendar.Day, weekHours decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(DayHours(d.Type, weekHours))
	}
	return total
}

// Summarize builds the summary of month. asOf may be zero to skip the
// before/after split.
func Summarize(cal *calendar.Calendar, month calendar.Month, asOf calendar.DayNumber, weekHours decimal.Decimal) MonthSummary {
	stats := cal.MonthStats(month)

	summary := MonthSummary{
		Month:       month,
		Days:        stats.Days,
		WorkDays:    cal.CountWorkDaysInMonth(month),
		Weekends:    stats.Weekends,
		PreHolidays: stats.PreHolidays,
		Holidays:    stats.Holidays,
		NormHours:   NormHours(cal.DaysInMonth(month), weekHours),
	}

	if asOf > 0 {
		summary.AsOf = asOf
		summary.WorkDaysBefore = cal.CountWorkDaysInMonthBefore(month, asOf)
		summary.WorkDaysAfter = cal.CountWorkDaysInMonthAfter(month, asOf)
	}

	return summary
}

// Build summarizes the given months, or the whole year when months is empty
func Build(cal *calendar.Calendar, months []calendar.Month, asOf calendar.DayNumber, weekHours decimal.Decimal) Report {
	if len(months) == 0 {
		months = calendar.Months
	}

	r := Report{
		Year:      cal.Year(),
		Days:      cal.DayCount(),
		WorkDays:  cal.WorkDayCount(),
		WeekHours: weekHours,
		NormHours: NormHours(cal.Days(), weekHours),
		Months:    make([]MonthSummary, 0, len(months)),
	}

	for _, m := range months {
		r.Months = append(r.Months, Summarize(cal, m, asOf, weekHours))
	}

	return r
}
