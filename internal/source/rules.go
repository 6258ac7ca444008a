package source

import (
	"context"
	"fmt"
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// RulesOptions configures a Rules source
type RulesOptions struct {
	// Country selects a predefined holiday set: "us" or "" for none
	Country string

	// Holidays and PreHolidays are explicit dates added on top of Country
	Holidays    []time.Time
	PreHolidays []time.Time

	// AutoPreHoliday shortens the working day right before a weekday holiday
	AutoPreHoliday bool
}

// Rules classifies days from weekday rules and a holiday calendar
type Rules struct {
	business       *cal.BusinessCalendar
	holidays       map[string]bool
	preHolidays    map[string]bool
	autoPreHoliday bool
	logger         *zap.Logger
}

// NewRules creates a new Rules source
func NewRules(opts RulesOptions, logger *zap.Logger) (*Rules, error) {
	business := cal.NewBusinessCalendar()

	switch opts.Country {
	case "":
	case "us":
		business.AddHoliday(
			us.NewYear,
			us.MlkDay,
			us.PresidentsDay,
			us.MemorialDay,
			us.Juneteenth,
			us.IndependenceDay,
			us.LaborDay,
			us.ColumbusDay,
			us.VeteransDay,
			us.ThanksgivingDay,
			us.ChristmasDay,
		)
	default:
		return nil, fmt.Errorf("unsupported holiday country %q", opts.Country)
	}

	r := &Rules{
		business:       business,
		holidays:       make(map[string]bool, len(opts.Holidays)),
		preHolidays:    make(map[string]bool, len(opts.PreHolidays)),
		autoPreHoliday: opts.AutoPreHoliday,
		logger:         logger,
	}
	for _, d := range opts.Holidays {
		r.holidays[dateKey(d)] = true
	}
	for _, d := range opts.PreHolidays {
		r.preHolidays[dateKey(d)] = true
	}

	return r, nil
}

// Load classifies every day of year
func (r *Rules) Load(_ context.Context, year int) ([]calendar.Day, error) {
	dates := dateutil.YearDays(year)
	days := make([]calendar.Day, 0, len(dates))

	for _, date := range dates {
		days = append(days, calendar.DayOf(date, r.classify(date)))
	}

	if r.autoPreHoliday {
		for i := 0; i < len(days)-1; i++ {
			next := days[i+1]
			if days[i].Type == calendar.DayTypeWorking &&
				next.Type == calendar.DayTypeHoliday &&
				dateutil.IsWeekday(next.Date) {
				days[i].Type = calendar.DayTypePreHoliday
			}
		}
	}

	r.logger.Debug("Classified year from rules",
		zap.Int("year", year),
		zap.Int("days", len(days)))

	return days, nil
}

func (r *Rules) classify(date time.Time) calendar.DayType {
	key := dateKey(date)
	if r.holidays[key] {
		return calendar.DayTypeHoliday
	}
	if actual, observed, _ := r.business.IsHoliday(date); actual || observed {
		return calendar.DayTypeHoliday
	}
	if dateutil.IsWeekend(date) {
		return calendar.DayTypeWeekend
	}
	if r.preHolidays[key] {
		return calendar.DayTypePreHoliday
	}
	return calendar.DayTypeWorking
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
