package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Source type names
const (
	SourceRules       = "rules"
	SourceFile        = "file"
	SourceXMLCalendar = "xmlcalendar"
	SourceIsDayOff    = "isdayoff"
	SourceDatabase    = "database"
)

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Report   ReportConfig   `mapstructure:"report"`
	Log      LogConfig      `mapstructure:"log"`
}

// CalendarConfig selects where day classifications come from
type CalendarConfig struct {
	Year     int    `mapstructure:"year"`
	Source   string `mapstructure:"source"`   // rules, file, xmlcalendar, isdayoff or database
	Fallback string `mapstructure:"fallback"` // optional source used when the primary fails
	CacheTTL string `mapstructure:"cache_ttl"`

	File           string `mapstructure:"file"`            // for file type
	XMLCalendarURL string `mapstructure:"xmlcalendar_url"` // URL or path, {year} is substituted
	IsDayOffURL    string `mapstructure:"isdayoff_url"`

	// rules type
	Country        string   `mapstructure:"country"` // "us" or empty
	Holidays       []string `mapstructure:"holidays"`
	PreHolidays    []string `mapstructure:"pre_holidays"`
	AutoPreHoliday bool     `mapstructure:"auto_pre_holiday"`
}

// StorageConfig represents sqlite storage configuration
type StorageConfig struct {
	Database string `mapstructure:"database"`
}

// ServerConfig represents HTTP API configuration
type ServerConfig struct {
	Listen         string   `mapstructure:"listen"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RefreshTime    string   `mapstructure:"refresh_time"` // HH:MM, empty disables the daily reload
	Timezone       string   `mapstructure:"timezone"`
}

// ReportConfig represents report settings
type ReportConfig struct {
	WeekHours float64 `mapstructure:"week_hours"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file. A missing config file is not an error
// when configPath is empty; defaults and environment variables still apply.
func Load(configPath string) (*Config, error) {
	// Optional .env next to the binary
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.production-calendar")
		v.AddConfigPath("/etc/production-calendar")
	}

	// PRODCAL_CALENDAR_YEAR overrides calendar.year
	v.SetEnvPrefix("prodcal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.year", time.Now().Year())
	v.SetDefault("calendar.source", SourceRules)
	v.SetDefault("calendar.cache_ttl", "24h")
	v.SetDefault("calendar.xmlcalendar_url", "https://xmlcalendar.ru/data/ru/{year}/calendar.json")
	v.SetDefault("calendar.isdayoff_url", "https://isdayoff.ru")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("report.week_hours", 40)
	v.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Calendar.Year < 1 || c.Calendar.Year > 9999 {
		return fmt.Errorf("calendar.year must be between 1 and 9999, got %d", c.Calendar.Year)
	}

	if err := c.validateSource("calendar.source", c.Calendar.Source); err != nil {
		return err
	}
	if c.Calendar.Fallback != "" {
		if err := c.validateSource("calendar.fallback", c.Calendar.Fallback); err != nil {
			return err
		}
		if c.Calendar.Fallback == c.Calendar.Source {
			return fmt.Errorf("calendar.fallback must differ from calendar.source")
		}
	}

	if c.Report.WeekHours <= 0 || c.Report.WeekHours > 168 {
		return fmt.Errorf("report.week_hours must be between 0 and 168")
	}

	if _, _, _, err := c.Server.GetRefreshTime(); err != nil {
		return err
	}
	if _, err := c.Server.GetLocation(); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateSource(key, source string) error {
	switch source {
	case SourceRules:
	case SourceFile:
		if c.Calendar.File == "" {
			return fmt.Errorf("calendar.file is required for file source")
		}
	case SourceXMLCalendar:
		if c.Calendar.XMLCalendarURL == "" {
			return fmt.Errorf("calendar.xmlcalendar_url is required for xmlcalendar source")
		}
	case SourceIsDayOff:
		if c.Calendar.IsDayOffURL == "" {
			return fmt.Errorf("calendar.isdayoff_url is required for isdayoff source")
		}
	case SourceDatabase:
		if c.Storage.Database == "" {
			return fmt.Errorf("storage.database is required for database source")
		}
	default:
		return fmt.Errorf("%s must be one of rules, file, xmlcalendar, isdayoff, database; got '%s'", key, source)
	}
	return nil
}

// GetCacheTTL returns cache TTL duration
func (c *CalendarConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

// GetRefreshTime parses server.refresh_time. ok is false when the daily
// reload is disabled.
func (s *ServerConfig) GetRefreshTime() (hour, minute int, ok bool, err error) {
	if s.RefreshTime == "" {
		return 0, 0, false, nil
	}
	t, err := time.Parse("15:04", s.RefreshTime)
	if err != nil {
		return 0, 0, false, fmt.Errorf("server.refresh_time must be HH:MM, got '%s'", s.RefreshTime)
	}
	return t.Hour(), t.Minute(), true, nil
}

// GetLocation returns the timezone the daily reload is scheduled in
func (s *ServerConfig) GetLocation() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid server.timezone '%s': %w", s.Timezone, err)
	}
	return loc, nil
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Calendar.File = os.ExpandEnv(c.Calendar.File)
	c.Storage.Database = os.ExpandEnv(c.Storage.Database)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
