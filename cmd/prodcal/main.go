package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/username/production-calendar/internal/calendar"
	"github.com/username/production-calendar/internal/config"
	"github.com/username/production-calendar/internal/repository"
	"github.com/username/production-calendar/internal/source"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath   string
	yearOverride int
	outputFormat string
	logger       *zap.Logger
	out          io.Writer = os.Stdout
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "prodcal",
		Short:         "Production calendar queries",
		Long:          "Query a one-year production calendar: work days per month, day classification and the previous work day",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err != nil {
				initLogger("info") // Default console logger
				return
			}
			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err == nil {
					return
				}
			}
			initLogger(cfg.Log.Level)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().IntVarP(&yearOverride, "year", "y", 0, "Calendar year (overrides calendar.year)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(
		summaryCmd(),
		yearCmd(),
		dayCmd(),
		prevCmd(),
		monthCmd(),
		importCmd(),
		yearsCmd(),
		serveCmd(),
	)

	return rootCmd
}

// app holds what every command needs
type app struct {
	cfg       *config.Config
	src       source.Source
	repo      *repository.GormDayRepository // nil without storage.database
	weekHours decimal.Decimal
	close     func()
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if yearOverride != 0 {
		cfg.Calendar.Year = yearOverride
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	a := &app{
		cfg:       cfg,
		weekHours: decimal.NewFromFloat(cfg.Report.WeekHours),
		close:     func() {},
	}

	var stored source.Source
	if cfg.Storage.Database != "" {
		db, err := repository.Open(cfg.Storage.Database)
		if err != nil {
			return nil, err
		}
		a.close = func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}

		repo, err := repository.NewGormDayRepository(db, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		a.repo = repo
		stored = repository.NewSource(repo)
	}

	src, err := source.New(&cfg.Calendar, stored, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to build calendar source: %w", err)
	}
	a.src = src

	logger.Debug("Calendar source ready",
		zap.String("source", cfg.Calendar.Source),
		zap.String("fallback", cfg.Calendar.Fallback),
		zap.Int("year", cfg.Calendar.Year))

	return a, nil
}

func (a *app) calendar(ctx context.Context) (*calendar.Calendar, error) {
	return source.Load(ctx, a.src, a.cfg.Calendar.Year)
}

// initLogger builds the console logger. It writes to stderr so command
// output on stdout stays clean.
func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
