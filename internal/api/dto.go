package api

import (
	"github.com/username/production-calendar/internal/calendar"
)

// CalendarDTO describes the loaded year
type CalendarDTO struct {
	Year      int    `json:"year"`
	Days      int    `json:"days"`
	WorkDays  int    `json:"work_days"`
	NormHours string `json:"norm_hours"`
}

// DayDTO is one classified day
type DayDTO struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
	Type    string `json:"type"`
	Workday bool   `json:"workday"`
	Index   *int   `json:"index,omitempty"`
}

// CountDTO is a work day count within a month
type CountDTO struct {
	Month    string `json:"month"`
	Scope    string `json:"scope"` // month, before or after
	Day      int    `json:"day,omitempty"`
	WorkDays int    `json:"work_days"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toDayDTO(d calendar.Day) DayDTO {
	return DayDTO{
		Date:    d.Date.Format("2006-01-02"),
		Day:     d.Day.Int(),
		Month:   d.Month.Int(),
		Year:    d.Year,
		Type:    d.Type.String(),
		Workday: d.IsWorkday(),
	}
}

func toDayDTOs(days []calendar.Day) []DayDTO {
	dtos := make([]DayDTO, 0, len(days))
	for _, d := range days {
		dtos = append(dtos, toDayDTO(d))
	}
	return dtos
}
