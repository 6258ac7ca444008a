package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

const defaultHTTPTimeout = 10 * time.Second

// XMLCalendar implements Source using xmlcalendar.ru year data. The location
// is either an http(s) URL or a local file path; "{year}" in it is replaced
// with the requested year.
type XMLCalendar struct {
	location   string
	httpClient *http.Client
	logger     *zap.Logger
}

// xmlCalendarYear represents xmlcalendar.ru JSON structure
type xmlCalendarYear struct {
	Year      int                `json:"year"`
	Months    []xmlCalendarMonth `json:"months"`
	Statistic struct {
		Workdays int     `json:"workdays"`
		Holidays int     `json:"holidays"`
		Hours40  float64 `json:"hours40"`
	} `json:"statistic"`
	Transitions []xmlTransition `json:"transitions"`
}

type xmlCalendarMonth struct {
	Month int    `json:"month"`
	Days  string `json:"days"` // "1*,2,3+,4,8,9,..." where * = shortened, + = transferred
}

type xmlTransition struct {
	From string `json:"from"` // "MM.DD"
	To   string `json:"to"`   // "MM.DD"
}

// NewXMLCalendar creates a new XMLCalendar source
func NewXMLCalendar(location string, logger *zap.Logger) *XMLCalendar {
	return &XMLCalendar{
		location: location,
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger: logger,
	}
}

// Load fetches the year and classifies every day of it
func (x *XMLCalendar) Load(ctx context.Context, year int) ([]calendar.Day, error) {
	location := strings.ReplaceAll(x.location, "{year}", strconv.Itoa(year))

	body, err := x.read(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var yearData xmlCalendarYear
	if err := json.NewDecoder(body).Decode(&yearData); err != nil {
		return nil, fmt.Errorf("failed to parse xmlcalendar JSON: %w", err)
	}
	if yearData.Year != 0 && yearData.Year != year {
		return nil, fmt.Errorf("xmlcalendar data is for year %d, want %d", yearData.Year, year)
	}

	days, err := x.classify(year, &yearData)
	if err != nil {
		return nil, err
	}

	workdays := 0
	for _, d := range days {
		if d.IsWorkday() {
			workdays++
		}
	}
	if yearData.Statistic.Workdays > 0 && yearData.Statistic.Workdays != workdays {
		x.logger.Warn("xmlcalendar statistic disagrees with day lists",
			zap.Int("statistic_workdays", yearData.Statistic.Workdays),
			zap.Int("counted_workdays", workdays))
	}

	x.logger.Info("xmlcalendar data loaded",
		zap.String("location", location),
		zap.Int("year", year),
		zap.Int("months", len(yearData.Months)),
		zap.Int("workdays", workdays),
		zap.Int("transitions", len(yearData.Transitions)))

	return days, nil
}

func (x *XMLCalendar) read(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		file, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("failed to open xmlcalendar file: %w", err)
		}
		return file, nil
	}

	x.logger.Debug("Downloading xmlcalendar data", zap.String("url", location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch xmlcalendar data: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("xmlcalendar returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// classify expands the compact non-working day lists into a full year
func (x *XMLCalendar) classify(year int, yearData *xmlCalendarYear) ([]calendar.Day, error) {
	marked := make(map[string]calendar.DayType)

	for _, m := range yearData.Months {
		month, err := calendar.MonthFromInt(m.Month)
		if err != nil {
			return nil, fmt.Errorf("xmlcalendar month: %w", err)
		}

		for _, part := range strings.Split(m.Days, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			shortened := strings.HasSuffix(part, "*")
			dayStr := strings.TrimSuffix(strings.TrimSuffix(part, "*"), "+")

			day, err := strconv.Atoi(dayStr)
			if err != nil {
				x.logger.Warn("Failed to parse day number",
					zap.String("part", part),
					zap.Error(err))
				continue
			}
			if !dateutil.ValidDate(year, month.Time(), day) {
				return nil, fmt.Errorf("xmlcalendar lists %04d-%02d-%02d: %w", year, month, day, calendar.ErrInvalidDate)
			}

			date := dateutil.Date(year, month.Time(), day)
			if shortened {
				marked[dateKey(date)] = calendar.DayTypePreHoliday
			} else {
				marked[dateKey(date)] = nonWorkingType(date)
			}
		}
	}

	dates := dateutil.YearDays(year)
	days := make([]calendar.Day, 0, len(dates))
	for _, date := range dates {
		dayType, ok := marked[dateKey(date)]
		if !ok {
			dayType = calendar.DayTypeWorking
		}
		days = append(days, calendar.DayOf(date, dayType))
	}
	return days, nil
}
