package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// View is the serialized form of a Report
type View struct {
	Year      int         `json:"year" yaml:"year"`
	Days      int         `json:"days" yaml:"days"`
	WorkDays  int         `json:"work_days" yaml:"work_days"`
	WeekHours string      `json:"week_hours" yaml:"week_hours"`
	NormHours string      `json:"norm_hours" yaml:"norm_hours"`
	Months    []MonthView `json:"months" yaml:"months"`
}

// MonthView is the serialized form of a MonthSummary
type MonthView struct {
	Month          string `json:"month" yaml:"month"`
	Days           int    `json:"days" yaml:"days"`
	WorkDays       int    `json:"work_days" yaml:"work_days"`
	Weekends       int    `json:"weekends" yaml:"weekends"`
	PreHolidays    int    `json:"pre_holidays" yaml:"pre_holidays"`
	Holidays       int    `json:"holidays" yaml:"holidays"`
	AsOf           int    `json:"as_of,omitempty" yaml:"as_of,omitempty"`
	WorkDaysBefore *int   `json:"work_days_before,omitempty" yaml:"work_days_before,omitempty"`
	WorkDaysAfter  *int   `json:"work_days_after,omitempty" yaml:"work_days_after,omitempty"`
	NormHours      string `json:"norm_hours" yaml:"norm_hours"`
}

// View converts r for JSON and YAML output
func (r Report) View() View {
	v := View{
		Year:      r.Year,
		Days:      r.Days,
		WorkDays:  r.WorkDays,
		WeekHours: r.WeekHours.String(),
		NormHours: r.NormHours.String(),
		Months:    make([]MonthView, 0, len(r.Months)),
	}

	for _, m := range r.Months {
		v.Months = append(v.Months, m.View())
	}

	return v
}

// View converts m for JSON and YAML output
func (m MonthSummary) View() MonthView {
	mv := MonthView{
		Month:       m.Month.String(),
		Days:        m.Days,
		WorkDays:    m.WorkDays,
		Weekends:    m.Weekends,
		PreHolidays: m.PreHolidays,
		Holidays:    m.Holidays,
		NormHours:   m.NormHours.String(),
	}
	if m.AsOf > 0 {
		before, after := m.WorkDaysBefore, m.WorkDaysAfter
		mv.AsOf = m.AsOf.Int()
		mv.WorkDaysBefore = &before
		mv.WorkDaysAfter = &after
	}
	return mv
}

// Render writes r to w in the given format
func Render(w io.Writer, format string, r Report) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return renderTable(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.View())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.View()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func renderTable(w io.Writer, r Report) error {
	withSplit := len(r.Months) > 0 && r.Months[0].AsOf > 0

	header := fmt.Sprintf("%-10s %5s %5s %5s %5s %5s %8s", "Month", "Days", "Work", "Wknd", "Pre", "Hol", "Hours")
	if withSplit {
		header += fmt.Sprintf(" %6s %6s", "<=Day", ">Day")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Production calendar %d: %d days, %d work days, %s hours at %s h/week\n\n",
		r.Year, r.Days, r.WorkDays, r.NormHours.String(), r.WeekHours.String())
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, m := range r.Months {
		fmt.Fprintf(&b, "%-10s %5d %5d %5d %5d %5d %8s",
			m.Month, m.Days, m.WorkDays, m.Weekends, m.PreHolidays, m.Holidays, m.NormHours.StringFixed(1))
		if withSplit {
			fmt.Fprintf(&b, " %6d %6d", m.WorkDaysBefore, m.WorkDaysAfter)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
