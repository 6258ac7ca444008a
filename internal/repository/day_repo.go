package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/username/production-calendar/internal/calendar"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DayRecord is a classified day as stored in the database
type DayRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Date      time.Time `gorm:"uniqueIndex"`
	Year      int       `gorm:"index:idx_year_month"`
	Month     int       `gorm:"index:idx_year_month"`
	Day       int
	DayType   int
	CreatedAt time.Time
}

// TableName keeps the table name stable
func (DayRecord) TableName() string {
	return "calendar_days"
}

// DayRepository persists classified years
type DayRepository interface {
	SaveYear(ctx context.Context, year int, days []calendar.Day) error
	LoadYear(ctx context.Context, year int) ([]calendar.Day, error)
	Years(ctx context.Context) ([]int, error)
}

// GormDayRepository implements DayRepository on gorm
type GormDayRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the sqlite database at path
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// NewGormDayRepository migrates the schema and returns the repository
func NewGormDayRepository(db *gorm.DB, log *zap.Logger) (*GormDayRepository, error) {
	if err := db.AutoMigrate(&DayRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate calendar_days: %w", err)
	}
	return &GormDayRepository{db: db, logger: log}, nil
}

// SaveYear replaces all stored days of year with days
func (r *GormDayRepository) SaveYear(ctx context.Context, year int, days []calendar.Day) error {
	records := make([]DayRecord, 0, len(days))
	for _, d := range days {
		if d.Year != year {
			return fmt.Errorf("day %s does not belong to %d: %w",
				d.Date.Format("2006-01-02"), year, calendar.ErrInconsistentDay)
		}
		records = append(records, DayRecord{
			Date:    d.Date.UTC(),
			Year:    d.Year,
			Month:   d.Month.Int(),
			Day:     d.Day.Int(),
			DayType: int(d.Type),
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("year = ?", year).Delete(&DayRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete year %d: %w", year, err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("failed to insert year %d: %w", year, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Year saved",
		zap.Int("year", year),
		zap.Int("days", len(records)))

	return nil
}

// LoadYear returns the stored days of year in date order
func (r *GormDayRepository) LoadYear(ctx context.Context, year int) ([]calendar.Day, error) {
	var records []DayRecord
	err := r.db.WithContext(ctx).
		Where("year = ?", year).
		Order("date").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load year %d: %w", year, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("year %d in database: %w", year, calendar.ErrNotFound)
	}

	days := make([]calendar.Day, 0, len(records))
	for _, rec := range records {
		days = append(days, calendar.NewDay(
			rec.Date.UTC(),
			calendar.DayNumber(rec.Day),
			calendar.Month(rec.Month),
			rec.Year,
			calendar.DayType(rec.DayType),
		))
	}
	return days, nil
}

// Years lists the stored years in ascending order
func (r *GormDayRepository) Years(ctx context.Context) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&DayRecord{}).
		Distinct().
		Order("year").
		Pluck("year", &years).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list years: %w", err)
	}
	return years, nil
}

// Source adapts a DayRepository to the source.Source interface
type Source struct {
	repo DayRepository
}

// NewSource creates a Source reading from repo
func NewSource(repo DayRepository) *Source {
	return &Source{repo: repo}
}

// Load returns the stored year
func (s *Source) Load(ctx context.Context, year int) ([]calendar.Day, error) {
	return s.repo.LoadYear(ctx, year)
}
