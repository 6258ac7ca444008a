package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

const defaultCacheTTL = 24 * time.Hour

// IsDayOff implements Source using the isdayoff.ru bulk API
type IsDayOff struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	cache      map[int]*cachedYear
	cacheMu    sync.RWMutex
	cacheTTL   time.Duration
}

type cachedYear struct {
	days      []calendar.Day
	fetchedAt time.Time
}

// NewIsDayOff creates a new IsDayOff source
func NewIsDayOff(baseURL string, cacheTTL time.Duration, logger *zap.Logger) *IsDayOff {
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	return &IsDayOff{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:   logger,
		cache:    make(map[int]*cachedYear),
		cacheTTL: cacheTTL,
	}
}

// Load returns the classified year, from cache when fresh
func (c *IsDayOff) Load(ctx context.Context, year int) ([]calendar.Day, error) {
	c.cacheMu.RLock()
	if cached, ok := c.cache[year]; ok {
		if time.Since(cached.fetchedAt) < c.cacheTTL {
			c.cacheMu.RUnlock()
			c.logger.Debug("Using cached year", zap.Int("year", year))
			return copyDays(cached.days), nil
		}
	}
	c.cacheMu.RUnlock()

	days, err := c.fetchYear(ctx, year)
	if err != nil {
		return nil, err
	}

	c.cacheMu.Lock()
	c.cache[year] = &cachedYear{
		days:      days,
		fetchedAt: time.Now(),
	}
	c.cacheMu.Unlock()

	return copyDays(days), nil
}

// fetchYear fetches the entire year from isdayoff.ru bulk API
func (c *IsDayOff) fetchYear(ctx context.Context, year int) ([]calendar.Day, error) {
	// Build URL: https://isdayoff.ru/api/getdata?year=2025&pre=1
	url := fmt.Sprintf("%s/api/getdata?year=%d&pre=1", c.baseURL, year)

	c.logger.Debug("Fetching year from isdayoff.ru",
		zap.String("url", url),
		zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	days, err := parseBulkResponse(year, strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bulk response: %w", err)
	}

	c.logger.Info("Year fetched from isdayoff.ru",
		zap.Int("year", year),
		zap.Int("days", len(days)))

	return days, nil
}

// parseBulkResponse parses isdayoff.ru bulk response string, one code per day:
// 0 = working day
// 1 = non-working day (holiday/weekend)
// 2 = shortened pre-holiday day
// 4 = working day (special regime)
func parseBulkResponse(year int, data string) ([]calendar.Day, error) {
	dates := dateutil.YearDays(year)
	if len(data) != len(dates) {
		return nil, fmt.Errorf("bulk data length mismatch: expected %d, got %d", len(dates), len(data))
	}

	days := make([]calendar.Day, 0, len(dates))
	for i, code := range data {
		date := dates[i]

		var dayType calendar.DayType
		switch code {
		case '0', '4':
			dayType = calendar.DayTypeWorking
		case '1':
			dayType = nonWorkingType(date)
		case '2':
			dayType = calendar.DayTypePreHoliday
		default:
			return nil, fmt.Errorf("unknown code '%c' at position %d", code, i)
		}

		days = append(days, calendar.DayOf(date, dayType))
	}

	return days, nil
}

// ClearCache clears the cache
func (c *IsDayOff) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache = make(map[int]*cachedYear)
	c.logger.Info("Calendar cache cleared")
}

func copyDays(days []calendar.Day) []calendar.Day {
	out := make([]calendar.Day, len(days))
	copy(out, days)
	return out
}
