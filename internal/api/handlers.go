package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/internal/report"
	"github.com/username/production-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

// Provider returns the calendar to answer queries from. It may return nil
// while no calendar has been loaded yet.
type Provider interface {
	Calendar() *calendar.Calendar
}

// StatusReporter is implemented by providers that can describe their state
type StatusReporter interface {
	GetStatus() map[string]interface{}
}

// Static is a Provider over a fixed calendar
type Static struct {
	Cal *calendar.Calendar
}

// Calendar returns the fixed calendar
func (s Static) Calendar() *calendar.Calendar {
	return s.Cal
}

// Handler handles HTTP requests
type Handler struct {
	provider  Provider
	weekHours decimal.Decimal
	logger    *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(provider Provider, weekHours decimal.Decimal, logger *zap.Logger) *Handler {
	return &Handler{
		provider:  provider,
		weekHours: weekHours,
		logger:    logger,
	}
}

// GetCalendar returns the year overview.
// GET /api/calendar
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.calendar(w)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, CalendarDTO{
		Year:      cal.Year(),
		Days:      cal.DayCount(),
		WorkDays:  cal.WorkDayCount(),
		NormHours: report.NormHours(cal.Days(), h.weekHours).String(),
	})
}

// GetStatus reports whether a calendar is loaded and, for a daemon, its
// reload schedule.
// GET /api/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if reporter, ok := h.provider.(StatusReporter); ok {
		writeJSON(w, http.StatusOK, reporter.GetStatus())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"loaded": h.provider.Calendar() != nil,
	})
}

// GetDay returns the day record for a date together with its index.
// GET /api/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.calendar(w)
	if !ok {
		return
	}

	date, err := dateutil.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	index, err := cal.IndexOf(date)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}
	day, err := cal.GetDay(date)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}

	dto := toDayDTO(day)
	dto.Index = &index
	writeJSON(w, http.StatusOK, dto)
}

// ListMonthDays returns the days of a month, only work days with work=true.
// GET /api/months/{month}/days
func (h *Handler) ListMonthDays(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.calendar(w)
	if !ok {
		return
	}
	month, ok := parseMonthParam(w, r)
	if !ok {
		return
	}

	workOnly := false
	if v := r.URL.Query().Get("work"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid work flag", err)
			return
		}
		workOnly = b
	}

	days := cal.DaysInMonth(month)
	if workOnly {
		days = cal.WorkDaysInMonth(month)
	}

	writeJSON(w, http.StatusOK, toDayDTOs(days))
}

// CountWorkDays counts work days of a month, optionally up to and including
// (before=N) or strictly after (after=N) a day.
// GET /api/months/{month}/count
func (h *Handler) CountWorkDays(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.calendar(w)
	if !ok {
		return
	}
	month, ok := parseMonthParam(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	before, after := query.Get("before"), query.Get("after")

	dto := CountDTO{Month: month.String()}
	switch {
	case before != "" && after != "":
		writeError(w, http.StatusBadRequest, "Use either before or after, not both", nil)
		return

	case before != "":
		day, err := parseDayNumber(before)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid day", err)
			return
		}
		dto.Scope = "before"
		dto.Day = day.Int()
		dto.WorkDays = cal.CountWorkDaysInMonthBefore(month, day)

	case after != "":
		day, err := parseDayNumber(after)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid day", err)
			return
		}
		dto.Scope = "after"
		dto.Day = day.Int()
		dto.WorkDays = cal.CountWorkDaysInMonthAfter(month, day)

	default:
		dto.Scope = "month"
		dto.WorkDays = cal.CountWorkDaysInMonth(month)
	}

	writeJSON(w, http.StatusOK, dto)
}

// PreviousWorkDay returns the nearest work day strictly before a date.
// GET /api/months/{month}/previous-workday/{day}
func (h *Handler) PreviousWorkDay(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.calendar(w)
	if !ok {
		return
	}
	month, ok := parseMonthParam(w, r)
	if !ok {
		return
	}

	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid day", err)
		return
	}

	prev, err := cal.PreviousWorkDay(day, month)
	if err != nil {
		h.writeCalendarError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDayDTO(prev))
}

// MonthSummary returns the month summary with norm hours, split at day=N
// when given.
// GET /api/months/{month}/summary
func (h *Handler) MonthSummary(w http.ResponseWriter, r *http.Request) {
	cal, ok := h.calendar(w)
	if !ok {
		return
	}
	month, ok := parseMonthParam(w, r)
	if !ok {
		return
	}

	var asOf calendar.DayNumber
	if v := r.URL.Query().Get("day"); v != "" {
		day, err := parseDayNumber(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid day", err)
			return
		}
		asOf = day
	}

	writeJSON(w, http.StatusOK, report.Summarize(cal, month, asOf, h.weekHours).View())
}

func (h *Handler) calendar(w http.ResponseWriter) (*calendar.Calendar, bool) {
	cal := h.provider.Calendar()
	if cal == nil {
		writeError(w, http.StatusServiceUnavailable, "Calendar is not loaded yet", nil)
		return nil, false
	}
	return cal, true
}

func (h *Handler) writeCalendarError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calendar.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, calendar.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "Invalid date", err)
	default:
		h.logger.Error("Calendar query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func parseMonthParam(w http.ResponseWriter, r *http.Request) (calendar.Month, bool) {
	month, err := calendar.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return 0, false
	}
	return month, true
}

func parseDayNumber(s string) (calendar.DayNumber, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("day '%s' is not a number", s)
	}
	return calendar.NewDayNumber(n)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
