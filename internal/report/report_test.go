package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/pkg/dateutil"
	"gopkg.in/yaml.v3"
)

func makeCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()

	var days []calendar.Day
	for _, date := range dateutil.YearDays(2024) {
		dayType := calendar.DayTypeWorking
		switch {
		case date.Month() == time.January && date.Day() < 9:
			dayType = calendar.DayTypeHoliday
		case dateutil.IsWeekend(date):
			dayType = calendar.DayTypeWeekend
		case date.Month() == time.February && date.Day() == 22:
			dayType = calendar.DayTypePreHoliday
		}
		days = append(days, calendar.DayOf(date, dayType))
	}

	cal, err := calendar.NewValidated(2024, days)
	if err != nil {
		t.Fatalf("NewValidated() error = %v", err)
	}
	return cal
}

func TestDayHours(t *testing.T) {
	tests := []struct {
		name      string
		dayType   calendar.DayType
		weekHours int64
		want      string
	}{
		{"Working 40h", calendar.DayTypeWorking, 40, "8"},
		{"Working 36h", calendar.DayTypeWorking, 36, "7.2"},
		{"Pre-holiday 40h", calendar.DayTypePreHoliday, 40, "7"},
		{"Pre-holiday 24h", calendar.DayTypePreHoliday, 24, "3.8"},
		{"Pre-holiday 4h", calendar.DayTypePreHoliday, 4, "0"},
		{"Weekend", calendar.DayTypeWeekend, 40, "0"},
		{"Holiday", calendar.DayTypeHoliday, 40, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DayHours(tt.dayType, decimal.NewFromInt(tt.weekHours))
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("DayHours(%v, %d) = %s, want %s", tt.dayType, tt.weekHours, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	cal := makeCalendar(t)

	s := Summarize(cal, calendar.January, 15, decimal.NewFromInt(40))

	if s.Days != 31 || s.WorkDays != 17 || s.Holidays != 8 || s.Weekends != 6 {
		t.Errorf("Summarize(January) = %+v", s)
	}
	if s.WorkDaysBefore != 5 {
		t.Errorf("WorkDaysBefore = %d, want 5", s.WorkDaysBefore)
	}
	if s.WorkDaysAfter != 12 {
		t.Errorf("WorkDaysAfter = %d, want 12", s.WorkDaysAfter)
	}
	if !s.NormHours.Equal(decimal.NewFromInt(136)) {
		t.Errorf("NormHours = %s, want 136", s.NormHours)
	}

	feb := Summarize(cal, calendar.February, 0, decimal.NewFromInt(40))
	if feb.PreHolidays != 1 {
		t.Errorf("February PreHolidays = %d, want 1", feb.PreHolidays)
	}
	// 21 work days, one of them shortened
	if !feb.NormHours.Equal(decimal.NewFromInt(21*8 - 1)) {
		t.Errorf("February NormHours = %s, want 167", feb.NormHours)
	}
	if feb.AsOf != 0 || feb.WorkDaysBefore != 0 || feb.WorkDaysAfter != 0 {
		t.Errorf("February split set without asOf: %+v", feb)
	}
}

func TestBuild_WholeYear(t *testing.T) {
	cal := makeCalendar(t)

	r := Build(cal, nil, 0, decimal.NewFromInt(40))

	if len(r.Months) != 12 {
		t.Fatalf("len(Months) = %d, want 12", len(r.Months))
	}

	workDays := 0
	norm := decimal.Zero
	for _, m := range r.Months {
		workDays += m.WorkDays
		norm = norm.Add(m.NormHours)
	}
	if workDays != r.WorkDays {
		t.Errorf("sum of month work days = %d, want %d", workDays, r.WorkDays)
	}
	if !norm.Equal(r.NormHours) {
		t.Errorf("sum of month norms = %s, want %s", norm, r.NormHours)
	}
}

func TestRender(t *testing.T) {
	cal := makeCalendar(t)
	r := Build(cal, []calendar.Month{calendar.January}, 15, decimal.NewFromInt(40))

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatTable, r); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "January") || !strings.Contains(out, "136.0") {
			t.Errorf("table output missing month row:\n%s", out)
		}
		if !strings.Contains(out, "<=Day") {
			t.Errorf("table output missing split columns:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatJSON, r); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		var got View
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("json.Unmarshal() error = %v", err)
		}
		if got.Year != 2024 || len(got.Months) != 1 {
			t.Fatalf("json report = %+v", got)
		}
		m := got.Months[0]
		if m.WorkDaysBefore == nil || *m.WorkDaysBefore != 5 || m.WorkDaysAfter == nil || *m.WorkDaysAfter != 12 {
			t.Errorf("json month = %+v", m)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, FormatYAML, r); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		var got View
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("yaml.Unmarshal() error = %v", err)
		}
		if got.Months[0].NormHours != "136" {
			t.Errorf("yaml norm_hours = %q, want 136", got.Months[0].NormHours)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := Render(&bytes.Buffer{}, "xml", r); err == nil {
			t.Error("Render(xml) expected error, got nil")
		}
	})
}
