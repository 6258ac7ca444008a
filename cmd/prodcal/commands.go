package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/internal/config"
	"github.com/username/production-calendar/internal/report"
	"github.com/username/production-calendar/pkg/dateutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	workStyle    = lipgloss.NewStyle().Bold(true)
	nonWorkStyle = lipgloss.NewStyle().Faint(true)
)

// dayView is how a single day is printed
type dayView struct {
	Date    string `json:"date" yaml:"date"`
	Type    string `json:"type" yaml:"type"`
	Workday bool   `json:"workday" yaml:"workday"`
	Index   *int   `json:"index,omitempty" yaml:"index,omitempty"`
}

func toDayView(d calendar.Day) dayView {
	return dayView{
		Date:    d.Date.Format("2006-01-02"),
		Type:    d.Type.String(),
		Workday: d.IsWorkday(),
	}
}

func summaryCmd() *cobra.Command {
	var monthStr string
	var day int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Work days in a month, up to and after a day, with norm hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			month, err := resolveMonth(monthStr)
			if err != nil {
				return err
			}

			// Default split point: today, when today is in the requested month
			if !cmd.Flags().Changed("day") {
				today := dateutil.StartOfDay(time.Now())
				if today.Year() == a.cfg.Calendar.Year && calendar.MonthFromTime(today.Month()) == month {
					day = today.Day()
				}
			}

			var asOf calendar.DayNumber
			if day != 0 {
				asOf, err = calendar.NewDayNumber(day)
				if err != nil {
					return err
				}
			}

			cal, err := a.calendar(cmd.Context())
			if err != nil {
				return err
			}

			r := report.Build(cal, []calendar.Month{month}, asOf, a.weekHours)
			return report.Render(out, outputFormat, r)
		},
	}

	cmd.Flags().StringVarP(&monthStr, "month", "m", "", "Month number or name (default: current month)")
	cmd.Flags().IntVarP(&day, "day", "d", 0, "Split work days at this day (default: today in the current month, 0 to disable)")

	return cmd
}

func yearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "year",
		Short: "Summary of every month of the year",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			cal, err := a.calendar(cmd.Context())
			if err != nil {
				return err
			}

			return report.Render(out, outputFormat, report.Build(cal, nil, 0, a.weekHours))
		},
	}
}

func dayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day DATE",
		Short: "Classification and index of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			// A date names its own year
			if yearOverride == 0 {
				a.cfg.Calendar.Year = date.Year()
			}

			cal, err := a.calendar(cmd.Context())
			if err != nil {
				return err
			}

			index, err := cal.IndexOf(date)
			if err != nil {
				return err
			}
			d, err := cal.GetDay(date)
			if err != nil {
				return err
			}

			v := toDayView(d)
			v.Index = &index
			return writeValue(v, func(b *strings.Builder) {
				fmt.Fprintf(b, "%s  %s  (day %d of %d)\n", v.Date, styleDay(d), index+1, cal.DayCount())
			})
		},
	}
}

func prevCmd() *cobra.Command {
	var monthStr string
	var day int

	cmd := &cobra.Command{
		Use:   "prev",
		Short: "The work day closest before a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := resolveMonth(monthStr)
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			cal, err := a.calendar(cmd.Context())
			if err != nil {
				return err
			}

			d, err := cal.PreviousWorkDay(day, month)
			if err != nil {
				return err
			}

			v := toDayView(d)
			return writeValue(v, func(b *strings.Builder) {
				fmt.Fprintf(b, "%s  %s\n", v.Date, styleDay(d))
			})
		},
	}

	cmd.Flags().StringVarP(&monthStr, "month", "m", "", "Month number or name (default: current month)")
	cmd.Flags().IntVarP(&day, "day", "d", 0, "Day of month")
	cmd.MarkFlagRequired("day")

	return cmd
}

func monthCmd() *cobra.Command {
	var workOnly bool

	cmd := &cobra.Command{
		Use:   "month MONTH",
		Short: "List the days of a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := calendar.ParseMonth(args[0])
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			cal, err := a.calendar(cmd.Context())
			if err != nil {
				return err
			}

			days := cal.DaysInMonth(month)
			if workOnly {
				days = cal.WorkDaysInMonth(month)
			}

			views := make([]dayView, 0, len(days))
			for _, d := range days {
				views = append(views, toDayView(d))
			}

			return writeValue(views, func(b *strings.Builder) {
				fmt.Fprintf(b, "%s %d: %d day(s)\n", month, cal.Year(), len(days))
				for _, d := range days {
					fmt.Fprintf(b, "  %s %s  %s\n", d.Date.Format("2006-01-02"), d.Date.Format("Mon"), styleDay(d))
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&workOnly, "work-only", "w", false, "Only list work days")

	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the year from the configured source and store it in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			if a.repo == nil {
				return fmt.Errorf("storage.database is not configured")
			}
			if a.cfg.Calendar.Source == config.SourceDatabase {
				return fmt.Errorf("calendar.source is database, nothing to import from")
			}

			cal, err := a.calendar(cmd.Context())
			if err != nil {
				return err
			}

			if err := a.repo.SaveYear(cmd.Context(), cal.Year(), cal.Days()); err != nil {
				return err
			}

			logger.Info("Import completed",
				zap.Int("year", cal.Year()),
				zap.String("source", a.cfg.Calendar.Source),
				zap.String("database", a.cfg.Storage.Database))

			fmt.Fprintf(out, "Imported %d: %d days, %d work days\n", cal.Year(), cal.DayCount(), cal.WorkDayCount())
			return nil
		},
	}
}

func yearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List years stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			if a.repo == nil {
				return fmt.Errorf("storage.database is not configured")
			}

			years, err := a.repo.Years(cmd.Context())
			if err != nil {
				return err
			}

			return writeValue(years, func(b *strings.Builder) {
				if len(years) == 0 {
					b.WriteString("No years stored\n")
				}
				for _, y := range years {
					fmt.Fprintf(b, "%d\n", y)
				}
			})
		},
	}
}

// resolveMonth parses s, defaulting to the current month when empty
func resolveMonth(s string) (calendar.Month, error) {
	if s == "" {
		return calendar.MonthFromTime(time.Now().Month()), nil
	}
	return calendar.ParseMonth(s)
}

func styleDay(d calendar.Day) string {
	if d.IsWorkday() {
		return workStyle.Render(d.Type.String())
	}
	return nonWorkStyle.Render(d.Type.String())
}

// writeValue prints v in the selected output format; table uses the given
// plain-text rendering
func writeValue(v any, table func(b *strings.Builder)) error {
	switch strings.ToLower(outputFormat) {
	case "", report.FormatTable:
		var b strings.Builder
		table(&b)
		_, err := fmt.Fprint(out, b.String())
		return err
	case report.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case report.FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
	}
}
