package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// ErrInvalidOwner reports an instructable without an existing instructor.
var ErrInvalidOwner = errors.New("instructable owner does not exist")

// Range selects occurrences starting in [From, To). The zero Range selects
// every date.
type Range struct {
	From time.Time
	To   time.Time
}

// Day returns the range covering the calendar day of d in loc.
func Day(d time.Time, loc *time.Location) Range {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return Range{From: start, To: start.AddDate(0, 0, 1)}
}

// IsZero reports whether the range is unbounded.
func (r Range) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Store persists instructors, instructables and their scheduled instances.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn. "sqlite:<path>" selects the embedded SQLite driver,
// anything else is handed to the PostgreSQL driver.
func Open(dsn string) (*Store, error) {
	var dialector gorm.Dialector
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		dialector = sqlite.Open(path)
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(db), nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or upgrades the schedule tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Instructor{}, &Instructable{}, &Instance{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateInstructor inserts an instructor and fills in its ID.
func (s *Store) CreateInstructor(ctx context.Context, instructor *Instructor) error {
	if err := s.db.WithContext(ctx).Create(instructor).Error; err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// CreateInstructable inserts an instructable together with its instances.
func (s *Store) CreateInstructable(ctx context.Context, instructable *Instructable) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners int64
		if err := tx.Model(&Instructor{}).Where("id = ?", instructable.UserID).Count(&owners).Error; err != nil {
			return fmt.Errorf("lookup owner: %w", err)
		}
		if owners == 0 {
			return fmt.Errorf("%w: user %d", ErrInvalidOwner, instructable.UserID)
		}
		if instructable.RepeatCount == 0 {
			instructable.RepeatCount = len(instructable.Instances)
		}
		if err := tx.Omit("Instructor").Create(instructable).Error; err != nil {
			return fmt.Errorf("create instructable: %w", err)
		}
		return nil
	})
}

// Occurrences lists scheduled instances within r ordered by start time,
// location and name.
func (s *Store) Occurrences(ctx context.Context, r Range) ([]Occurrence, error) {
	query := s.db.WithContext(ctx).
		Preload("Instructable").
		Preload("Instructable.Instructor").
		Order("start_time").
		Order("location")
	if !r.From.IsZero() {
		query = query.Where("start_time >= ?", r.From.UTC())
	}
	if !r.To.IsZero() {
		query = query.Where("start_time < ?", r.To.UTC())
	}

	var instances []Instance
	if err := query.Find(&instances).Error; err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}

	out := make([]Occurrence, 0, len(instances))
	for _, inst := range instances {
		out = append(out, occurrenceFrom(inst))
	}
	sortOccurrences(out)
	return out, nil
}

func sortOccurrences(items []Occurrence) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.Name < b.Name
	})
}
