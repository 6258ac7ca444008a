package calendar

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/username/production-calendar/pkg/dateutil"
)

// january2024Type marks Jan 1-8 as holidays and Saturdays/Sundays as weekends
func january2024Type(date time.Time) DayType {
	if date.Month() == time.January && date.Day() < 9 {
		return DayTypeHoliday
	}
	if dateutil.IsWeekend(date) {
		return DayTypeWeekend
	}
	return DayTypeWorking
}

func makeCalendar(t *testing.T) *Calendar {
	t.Helper()

	var days []Day
	for _, date := range dateutil.YearDays(2024) {
		days = append(days, NewDay(
			date,
			DayNumber(date.Day()),
			MonthFromTime(date.Month()),
			2024,
			january2024Type(date),
		))
	}

	cal, err := NewValidated(2024, days)
	if err != nil {
		t.Fatalf("NewValidated() error = %v", err)
	}
	return cal
}

func TestCalendar_Make(t *testing.T) {
	cal := makeCalendar(t)

	if cal.Year() != 2024 {
		t.Errorf("Year() = %d, want 2024", cal.Year())
	}
	if cal.DayCount() != 366 {
		t.Errorf("DayCount() = %d, want 366", cal.DayCount())
	}
}

func TestCalendar_DayCountCommonYear(t *testing.T) {
	var days []Day
	for _, date := range dateutil.YearDays(2023) {
		days = append(days, DayOf(date, DayTypeWorking))
	}

	cal := New(2023, days)
	if cal.DayCount() != 365 {
		t.Errorf("DayCount() = %d, want 365", cal.DayCount())
	}
}

func TestCalendar_IndexOf(t *testing.T) {
	cal := makeCalendar(t)

	index, err := cal.IndexOf(dateutil.Date(2024, time.January, 20))
	if err != nil {
		t.Fatalf("IndexOf() error = %v", err)
	}
	if index != 19 {
		t.Errorf("IndexOf(2024-01-20) = %d, want 19", index)
	}

	for i, date := range dateutil.YearDays(2024) {
		got, err := cal.IndexOf(date)
		if err != nil {
			t.Fatalf("IndexOf(%s) error = %v", date.Format("2006-01-02"), err)
		}
		if got != i {
			t.Errorf("IndexOf(%s) = %d, want %d", date.Format("2006-01-02"), got, i)
		}
	}
}

func TestCalendar_GetDay(t *testing.T) {
	cal := makeCalendar(t)

	// Clock time and location are ignored
	when := time.Date(2024, time.March, 8, 23, 30, 0, 0, time.FixedZone("MSK", 3*60*60))
	day, err := cal.GetDay(when)
	if err != nil {
		t.Fatalf("GetDay() error = %v", err)
	}
	if !dateutil.IsSameDay(day.Date, when) {
		t.Errorf("GetDay(%v).Date = %v", when, day.Date)
	}
	if day.Day != 8 || day.Month != March || day.Year != 2024 {
		t.Errorf("GetDay(%v) = %+v, want day 8 of March 2024", when, day)
	}
	if day.Type != DayTypeWorking {
		t.Errorf("GetDay(%v).Type = %v, want working", when, day.Type)
	}
}

func TestCalendar_NotFound(t *testing.T) {
	cal := makeCalendar(t)

	tests := []struct {
		name string
		date time.Time
	}{
		{"Previous year", dateutil.Date(2023, time.December, 31)},
		{"Next year", dateutil.Date(2025, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := cal.GetDay(tt.date); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetDay() error = %v, want ErrNotFound", err)
			}
			if _, err := cal.IndexOf(tt.date); !errors.Is(err, ErrNotFound) {
				t.Errorf("IndexOf() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestCalendar_GetDayFirstDuplicateWins(t *testing.T) {
	date := dateutil.Date(2024, time.May, 1)
	cal := New(2024, []Day{
		DayOf(date, DayTypeHoliday),
		DayOf(date, DayTypeWorking),
	})

	day, err := cal.GetDay(date)
	if err != nil {
		t.Fatalf("GetDay() error = %v", err)
	}
	if day.Type != DayTypeHoliday {
		t.Errorf("GetDay().Type = %v, want holiday (first match)", day.Type)
	}
}

func TestCalendar_PreviousWorkDay(t *testing.T) {
	cal := makeCalendar(t)

	tests := []struct {
		name    string
		day     int
		month   Month
		want    time.Time
		wantErr error
	}{
		{"Sunday steps back over weekend", 21, January, dateutil.Date(2024, time.January, 19), nil},
		{"Working day returns the day before", 10, January, dateutil.Date(2024, time.January, 9), nil},
		{"Monday returns Friday", 15, January, dateutil.Date(2024, time.January, 12), nil},
		{"Across month boundary", 1, February, dateutil.Date(2024, time.January, 31), nil},
		{"Only holidays before", 9, January, time.Time{}, ErrNotFound},
		{"First day of year", 1, January, time.Time{}, ErrNotFound},
		{"Impossible date", 30, February, time.Time{}, ErrInvalidDate},
		{"Day zero", 0, March, time.Time{}, ErrInvalidDate},
		{"Invalid month", 1, Month(13), time.Time{}, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := cal.PreviousWorkDay(tt.day, tt.month)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("PreviousWorkDay(%d, %v) error = %v, want %v", tt.day, tt.month, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("PreviousWorkDay(%d, %v) error = %v", tt.day, tt.month, err)
			}
			if !day.Date.Equal(tt.want) {
				t.Errorf("PreviousWorkDay(%d, %v) = %s, want %s",
					tt.day, tt.month, day.Date.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestCalendar_PreviousWorkDayTargetMissing(t *testing.T) {
	var days []Day
	for _, date := range dateutil.EachDay(dateutil.Date(2024, time.January, 1), dateutil.Date(2024, time.January, 31)) {
		days = append(days, DayOf(date, DayTypeWorking))
	}
	cal := New(2024, days)

	if _, err := cal.PreviousWorkDay(1, March); !errors.Is(err, ErrNotFound) {
		t.Errorf("PreviousWorkDay(1, March) error = %v, want ErrNotFound", err)
	}
}

func TestCalendar_PreviousWorkDayCountsPreHoliday(t *testing.T) {
	cal := New(2024, []Day{
		DayOf(dateutil.Date(2024, time.May, 7), DayTypePreHoliday),
		DayOf(dateutil.Date(2024, time.May, 8), DayTypeHoliday),
		DayOf(dateutil.Date(2024, time.May, 9), DayTypeHoliday),
		DayOf(dateutil.Date(2024, time.May, 10), DayTypeWorking),
	})

	day, err := cal.PreviousWorkDay(10, May)
	if err != nil {
		t.Fatalf("PreviousWorkDay() error = %v", err)
	}
	if day.Date.Day() != 7 || day.Type != DayTypePreHoliday {
		t.Errorf("PreviousWorkDay(10, May) = %v, want 2024-05-07 pre-holiday", day)
	}
}

func TestCalendar_PreviousWorkDayIsStrictlyEarlier(t *testing.T) {
	cal := makeCalendar(t)

	for _, date := range dateutil.YearDays(2024) {
		day, err := cal.PreviousWorkDay(date.Day(), MonthFromTime(date.Month()))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			t.Fatalf("PreviousWorkDay(%s) error = %v", date.Format("2006-01-02"), err)
		}
		if !day.Date.Before(date) {
			t.Errorf("PreviousWorkDay(%s) = %s, not earlier", date.Format("2006-01-02"), day.Date.Format("2006-01-02"))
		}
		if !day.IsWorkday() {
			t.Errorf("PreviousWorkDay(%s) = %v, not a work day", date.Format("2006-01-02"), day)
		}
		for _, between := range dateutil.EachDay(day.Date.AddDate(0, 0, 1), date.AddDate(0, 0, -1)) {
			d, _ := cal.GetDay(between)
			if d.IsWorkday() {
				t.Errorf("PreviousWorkDay(%s) skipped work day %s", date.Format("2006-01-02"), between.Format("2006-01-02"))
			}
		}
	}
}

func TestCalendar_WorkDaysInMonth(t *testing.T) {
	cal := makeCalendar(t)

	if got := cal.CountWorkDaysInMonth(January); got != 17 {
		t.Errorf("CountWorkDaysInMonth(January) = %d, want 17", got)
	}

	all := cal.DaysInMonth(January)
	if len(all) != 31 {
		t.Fatalf("len(DaysInMonth(January)) = %d, want 31", len(all))
	}
	for i, d := range all {
		if d.Day.Int() != i+1 {
			t.Errorf("DaysInMonth(January)[%d].Day = %d, want %d", i, d.Day, i+1)
		}
	}

	work := cal.WorkDaysInMonth(January)
	if len(work) != 17 {
		t.Fatalf("len(WorkDaysInMonth(January)) = %d, want 17", len(work))
	}
	if work[0].Date.Day() != 9 {
		t.Errorf("WorkDaysInMonth(January)[0] = %v, want 2024-01-09", work[0])
	}
	for i := 1; i < len(work); i++ {
		if !work[i-1].Date.Before(work[i].Date) {
			t.Errorf("WorkDaysInMonth(January) not in sequence order at %d", i)
		}
	}

	if got := len(cal.DaysInMonth(February)); got != 29 {
		t.Errorf("len(DaysInMonth(February)) = %d, want 29", got)
	}
}

func TestCalendar_CountWorkDaysInMonthBeforeAfter(t *testing.T) {
	cal := makeCalendar(t)

	if got := cal.CountWorkDaysInMonthBefore(January, 15); got != 5 {
		t.Errorf("CountWorkDaysInMonthBefore(January, 15) = %d, want 5", got)
	}
	if got := cal.CountWorkDaysInMonthAfter(January, 15); got != 12 {
		t.Errorf("CountWorkDaysInMonthAfter(January, 15) = %d, want 12", got)
	}
}

func TestCalendar_BeforeAfterPartition(t *testing.T) {
	cal := makeCalendar(t)

	for _, month := range Months {
		total := cal.CountWorkDaysInMonth(month)
		for n := 1; n <= 31; n++ {
			day, err := NewDayNumber(n)
			if err != nil {
				t.Fatalf("NewDayNumber(%d) error = %v", n, err)
			}
			before := cal.CountWorkDaysInMonthBefore(month, day)
			after := cal.CountWorkDaysInMonthAfter(month, day)
			if before+after != total {
				t.Errorf("%v day %d: before %d + after %d != %d", month, n, before, after, total)
			}
		}
	}
}

func TestCalendar_WorkDayCountIsSumOfMonths(t *testing.T) {
	cal := makeCalendar(t)

	sum := 0
	for _, month := range Months {
		sum += cal.CountWorkDaysInMonth(month)
	}
	if sum != cal.WorkDayCount() {
		t.Errorf("sum of months = %d, WorkDayCount() = %d", sum, cal.WorkDayCount())
	}
}

func TestCalendar_MonthStats(t *testing.T) {
	cal := makeCalendar(t)

	stats := cal.MonthStats(January)
	if stats.Days != 31 {
		t.Errorf("Days = %d, want 31", stats.Days)
	}
	if stats.Holidays != 8 {
		t.Errorf("Holidays = %d, want 8", stats.Holidays)
	}
	// Jan 6-7 are inside the holiday range
	if stats.Weekends != 6 {
		t.Errorf("Weekends = %d, want 6", stats.Weekends)
	}
	if stats.WorkDays() != cal.CountWorkDaysInMonth(January) {
		t.Errorf("WorkDays() = %d, want %d", stats.WorkDays(), cal.CountWorkDaysInMonth(January))
	}
}

func TestCalendar_IsolatedFromCaller(t *testing.T) {
	date := dateutil.Date(2024, time.June, 3)
	days := []Day{DayOf(date, DayTypeWorking)}
	cal := New(2024, days)

	days[0].Type = DayTypeHoliday
	got := cal.Days()
	got[0].Type = DayTypeWeekend

	day, _ := cal.GetDay(date)
	if day.Type != DayTypeWorking {
		t.Errorf("GetDay().Type = %v, want working", day.Type)
	}
}

func TestNewValidated(t *testing.T) {
	jan := func(d int, dayType DayType) Day {
		return DayOf(dateutil.Date(2024, time.January, d), dayType)
	}

	tests := []struct {
		name    string
		year    int
		days    []Day
		wantErr error
	}{
		{"Sorted", 2024, []Day{jan(1, DayTypeHoliday), jan(2, DayTypeWorking)}, nil},
		{"Empty", 2024, nil, nil},
		{"Unsorted", 2024, []Day{jan(2, DayTypeWorking), jan(1, DayTypeHoliday)}, ErrUnsorted},
		{"Duplicate", 2024, []Day{jan(1, DayTypeWorking), jan(1, DayTypeHoliday)}, ErrUnsorted},
		{"Wrong year", 2025, []Day{jan(1, DayTypeHoliday)}, ErrInconsistentDay},
		{
			"Day field disagrees with date",
			2024,
			[]Day{NewDay(dateutil.Date(2024, time.January, 1), 2, January, 2024, DayTypeWorking)},
			ErrInconsistentDay,
		},
		{
			"Month field disagrees with date",
			2024,
			[]Day{NewDay(dateutil.Date(2024, time.January, 1), 1, March, 2024, DayTypeWorking)},
			ErrInconsistentDay,
		},
		{"Unknown type", 2024, []Day{jan(1, DayType(0))}, ErrInconsistentDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := NewValidated(tt.year, tt.days)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewValidated() error = %v", err)
				}
				if cal.DayCount() != len(tt.days) {
					t.Errorf("DayCount() = %d, want %d", cal.DayCount(), len(tt.days))
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewValidated() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCalendar_ConcurrentReaders(t *testing.T) {
	cal := makeCalendar(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(month Month) {
			defer wg.Done()
			for n := 1; n <= 31; n++ {
				cal.CountWorkDaysInMonthBefore(month, DayNumber(n))
				cal.WorkDaysInMonth(month)
				_, _ = cal.PreviousWorkDay(n, month)
			}
		}(Months[i])
	}
	wg.Wait()

	if got := cal.CountWorkDaysInMonth(January); got != 17 {
		t.Errorf("CountWorkDaysInMonth(January) = %d after concurrent reads, want 17", got)
	}
}
