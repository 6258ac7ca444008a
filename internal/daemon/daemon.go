package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/internal/repository"
	"github.com/username/production-calendar/internal/source"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Daemon serves the calendar over HTTP and reloads it once a day
type Daemon struct {
	src    source.Source
	store  repository.DayRepository // optional
	year   int
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	scheduled   bool
	dailyHour   int // Hour to reload (0-23)
	dailyMinute int // Minute to reload (0-59)
	location    *time.Location

	calMu sync.RWMutex
	cal   *calendar.Calendar

	mu             sync.Mutex // Protect against concurrent reloads
	refreshRunning bool
	lastRunDate    string    // Last successful scheduled reload
	lastRunTime    time.Time // Last successful reload of any kind
}

// NewDaemon creates a daemon loading year from src. No daily reload is
// scheduled until Schedule is called.
func NewDaemon(src source.Source, year int, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		src:      src,
		year:     year,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		location: time.UTC,
	}
}

// Schedule enables the daily reload at hour:minute in loc
func (d *Daemon) Schedule(hour, minute int, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	d.scheduled = true
	d.dailyHour = hour
	d.dailyMinute = minute
	d.location = loc
}

// SetStore makes every successful reload also persist the year
func (d *Daemon) SetStore(store repository.DayRepository) {
	d.store = store
}

// Calendar returns the current calendar, nil before the first load
func (d *Daemon) Calendar() *calendar.Calendar {
	d.calMu.RLock()
	defer d.calMu.RUnlock()
	return d.cal
}

// Refresh loads the year from the source and swaps it in. On failure the
// previous calendar stays in place.
func (d *Daemon) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.refreshRunning {
		d.mu.Unlock()
		d.logger.Warn("Reload already running, skipping concurrent execution")
		return fmt.Errorf("reload already in progress")
	}
	d.refreshRunning = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.refreshRunning = false
		d.mu.Unlock()
	}()

	start := time.Now()
	cal, err := source.Load(ctx, d.src, d.year)
	if err != nil {
		return fmt.Errorf("failed to reload calendar: %w", err)
	}

	if d.store != nil {
		if err := d.store.SaveYear(ctx, d.year, cal.Days()); err != nil {
			d.logger.Warn("Failed to persist reloaded calendar", zap.Error(err))
		}
	}

	d.calMu.Lock()
	d.cal = cal
	d.calMu.Unlock()

	d.mu.Lock()
	d.lastRunTime = time.Now()
	d.mu.Unlock()

	d.logger.Info("Calendar loaded",
		zap.Int("year", d.year),
		zap.Int("days", cal.DayCount()),
		zap.Int("work_days", cal.WorkDayCount()),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// Run loads the calendar, serves handler on listen and reloads on schedule
// until Stop is called or SIGINT/SIGTERM arrives.
func (d *Daemon) Run(listen string, handler http.Handler) error {
	if err := d.Refresh(d.ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listen, err)
	}
	return d.serve(ln, handler)
}

func (d *Daemon) serve(ln net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	d.logger.Info("HTTP API listening", zap.String("addr", ln.Addr().String()))
	if d.scheduled {
		nextRun := d.calculateNextRun(time.Now())
		d.logger.Info("Next reload scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("wait_duration", time.Until(nextRun)))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Check every minute if it's time to reload
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			break loop

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			break loop

		case err := <-serveErr:
			runErr = fmt.Errorf("http server failed: %w", err)
			break loop

		case now := <-ticker.C:
			d.runScheduled(now)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to shut down http server: %w", err)
	}

	return runErr
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// runScheduled reloads when now is the scheduled minute and no reload has
// succeeded today
func (d *Daemon) runScheduled(now time.Time) {
	if !d.shouldRunAt(now) {
		return
	}

	today := now.In(d.location).Format("2006-01-02")
	d.mu.Lock()
	done := d.lastRunDate == today
	d.mu.Unlock()
	if done {
		d.logger.Debug("Already reloaded today, skipping")
		return
	}

	d.logger.Info("Starting scheduled reload", zap.Time("time", now))
	if err := d.Refresh(d.ctx); err != nil {
		d.logger.Error("Scheduled reload failed, keeping previous calendar", zap.Error(err))
		return
	}

	d.mu.Lock()
	d.lastRunDate = today
	d.mu.Unlock()

	nextRun := d.calculateNextRun(now)
	d.logger.Info("Next reload scheduled",
		zap.Time("next_run", nextRun),
		zap.Duration("wait_duration", nextRun.Sub(now)))
}

// calculateNextRun returns the next scheduled reload after now
func (d *Daemon) calculateNextRun(now time.Time) time.Time {
	local := now.In(d.location)

	today := time.Date(local.Year(), local.Month(), local.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, d.location)

	// If target time already passed today, schedule for tomorrow
	if !local.Before(today) {
		return today.AddDate(0, 0, 1)
	}

	return today
}

// shouldRunAt checks if the reload is due at the given time
func (d *Daemon) shouldRunAt(now time.Time) bool {
	if !d.scheduled {
		return false
	}
	local := now.In(d.location)
	return local.Hour() == d.dailyHour && local.Minute() == d.dailyMinute
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	lastRun := d.lastRunTime
	d.mu.Unlock()

	status := map[string]interface{}{
		"year":      d.year,
		"scheduled": d.scheduled,
		"loaded":    d.Calendar() != nil,
	}
	if !lastRun.IsZero() {
		status["last_reload"] = lastRun.Format(time.RFC3339)
	}
	if d.scheduled {
		status["next_reload"] = d.calculateNextRun(time.Now()).Format(time.RFC3339)
	}

	return status
}
