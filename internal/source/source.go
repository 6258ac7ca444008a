// Package source classifies the days of a year. Each Source produces a
// complete, date-ordered slice of calendar.Day that calendar.NewValidated
// accepts.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/internal/config"
	"github.com/username/production-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// Source loads classified days for a year
type Source interface {
	Load(ctx context.Context, year int) ([]calendar.Day, error)
}

// Composite implements Source with fallback strategy
type Composite struct {
	primary  Source
	fallback Source
	logger   *zap.Logger
}

// NewComposite creates a new Composite
func NewComposite(primary, fallback Source, logger *zap.Logger) *Composite {
	return &Composite{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Load tries the primary source and falls back on error
func (c *Composite) Load(ctx context.Context, year int) ([]calendar.Day, error) {
	days, err := c.primary.Load(ctx, year)
	if err == nil {
		return days, nil
	}

	c.logger.Warn("Primary source failed, falling back",
		zap.Int("year", year),
		zap.Error(err))

	days, fallbackErr := c.fallback.Load(ctx, year)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary and fallback both failed: primary=%w, fallback=%v", err, fallbackErr)
	}
	return days, nil
}

// Load builds the calendar for year from src
func Load(ctx context.Context, src Source, year int) (*calendar.Calendar, error) {
	days, err := src.Load(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load days for %d: %w", year, err)
	}

	cal, err := calendar.NewValidated(year, days)
	if err != nil {
		return nil, fmt.Errorf("source returned a broken calendar for %d: %w", year, err)
	}
	return cal, nil
}

// New builds the source configured in cfg. stored serves the database
// source and may be nil when no database is configured.
func New(cfg *config.CalendarConfig, stored Source, logger *zap.Logger) (Source, error) {
	primary, err := byName(cfg.Source, cfg, stored, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Fallback == "" {
		return primary, nil
	}

	fallback, err := byName(cfg.Fallback, cfg, stored, logger)
	if err != nil {
		return nil, err
	}
	return NewComposite(primary, fallback, logger), nil
}

func byName(name string, cfg *config.CalendarConfig, stored Source, logger *zap.Logger) (Source, error) {
	switch name {
	case config.SourceDatabase:
		if stored == nil {
			return nil, fmt.Errorf("database source requires storage.database")
		}
		return stored, nil
	case config.SourceRules:
		opts := RulesOptions{
			Country:        cfg.Country,
			AutoPreHoliday: cfg.AutoPreHoliday,
		}
		for _, s := range cfg.Holidays {
			d, err := dateutil.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("calendar.holidays: %w", err)
			}
			opts.Holidays = append(opts.Holidays, d)
		}
		for _, s := range cfg.PreHolidays {
			d, err := dateutil.ParseDate(s)
			if err != nil {
				return nil, fmt.Errorf("calendar.pre_holidays: %w", err)
			}
			opts.PreHolidays = append(opts.PreHolidays, d)
		}
		return NewRules(opts, logger)
	case config.SourceFile:
		return NewFile(cfg.File, logger), nil
	case config.SourceXMLCalendar:
		return NewXMLCalendar(cfg.XMLCalendarURL, logger), nil
	case config.SourceIsDayOff:
		return NewIsDayOff(cfg.IsDayOffURL, cfg.GetCacheTTL(), logger), nil
	default:
		return nil, fmt.Errorf("unknown calendar source: %s", name)
	}
}

// defaultType classifies a day with no other information: weekends are
// Weekend, everything else Working
func defaultType(date time.Time) calendar.DayType {
	if dateutil.IsWeekend(date) {
		return calendar.DayTypeWeekend
	}
	return calendar.DayTypeWorking
}

// nonWorkingType is Weekend on Saturday and Sunday and Holiday otherwise
func nonWorkingType(date time.Time) calendar.DayType {
	if dateutil.IsWeekend(date) {
		return calendar.DayTypeWeekend
	}
	return calendar.DayTypeHoliday
}
