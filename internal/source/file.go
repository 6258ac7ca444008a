package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// File implements Source using a local text file.
//
// Format: one day per line, "YYYY-MM-DD type [working_hours] [note]", where
// type is working, weekend, pre-holiday or holiday (workday and shortened are
// accepted too). Lines starting with # are comments. Days absent from the
// file are Weekend on Saturday and Sunday and Working otherwise.
//
//	2024-01-01 holiday 0 New Year
//	2024-02-22 shortened 7
type File struct {
	filePath string
	logger   *zap.Logger
}

// NewFile creates a new File source
func NewFile(filePath string, logger *zap.Logger) *File {
	return &File{
		filePath: filePath,
		logger:   logger,
	}
}

// Load reads the file and classifies every day of year
func (f *File) Load(_ context.Context, year int) ([]calendar.Day, error) {
	file, err := os.Open(f.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	overrides, err := f.parse(file, year)
	if err != nil {
		return nil, err
	}

	dates := dateutil.YearDays(year)
	days := make([]calendar.Day, 0, len(dates))
	for _, date := range dates {
		dayType, ok := overrides[dateKey(date)]
		if !ok {
			dayType = defaultType(date)
		}
		days = append(days, calendar.DayOf(date, dayType))
	}

	f.logger.Info("Calendar file loaded",
		zap.String("file", f.filePath),
		zap.Int("year", year),
		zap.Int("listed_days", len(overrides)))

	return days, nil
}

// parse returns the listed day types of year keyed by date
func (f *File) parse(r io.Reader, year int) (map[string]calendar.DayType, error) {
	overrides := make(map[string]calendar.DayType)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			f.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		date, err := time.Parse("2006-01-02", parts[0])
		if err != nil {
			f.logger.Warn("Failed to parse date", zap.String("date", parts[0]), zap.Error(err))
			continue
		}
		if date.Year() != year {
			continue
		}

		dayType, err := calendar.ParseDayType(parts[1])
		if err != nil {
			f.logger.Warn("Unknown day type", zap.String("type", parts[1]))
			continue
		}

		overrides[dateKey(date)] = dayType
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading calendar file: %w", err)
	}

	return overrides, nil
}
