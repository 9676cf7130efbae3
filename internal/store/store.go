// Package store keeps a history of validation runs in a SQL database via gorm.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ironsheep/flag-check-mcp/internal/service"
	"github.com/ironsheep/flag-check-mcp/internal/validate"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("validation record not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Record is one stored validation run.
type Record struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255" json:"name"`
	ImageSHA256 string    `gorm:"size:64;index" json:"image_sha256"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Passed      bool      `json:"passed"`
	ReportJSON  string    `gorm:"type:text" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name for gorm.
func (Record) TableName() string {
	return "validations"
}

// Report decodes the stored report.
func (r Record) Report() (validate.Report, error) {
	var rep validate.Report
	if err := json.Unmarshal([]byte(r.ReportJSON), &rep); err != nil {
		return rep, fmt.Errorf("decode report %s: %w", r.ID, err)
	}
	return rep, nil
}

// History is the gorm-backed validation log.
type History struct {
	db  *gorm.DB
	now func() time.Time
}

// New wraps an open, migrated database.
func New(db *gorm.DB) *History {
	return &History{db: db, now: time.Now}
}

// Open opens (or creates) a SQLite database at dsn and migrates it.
// Use ":memory:" for a throwaway database.
func Open(dsn string) (*History, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", dsn, err)
	}

	// SQLite serialises writers; one connection also keeps ":memory:" alive.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Record{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return New(db), nil
}

// Save stores an outcome under a new ID.
func (h *History) Save(ctx context.Context, name string, out *service.Outcome) (Record, error) {
	body, err := json.Marshal(out.Report)
	if err != nil {
		return Record{}, fmt.Errorf("encode report: %w", err)
	}

	rec := Record{
		ID:          uuid.NewString(),
		Name:        name,
		ImageSHA256: out.ImageSHA256,
		Width:       out.Width,
		Height:      out.Height,
		Passed:      out.Passed(),
		ReportJSON:  string(body),
		CreatedAt:   h.now().UTC(),
	}
	if err := h.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return Record{}, fmt.Errorf("save validation: %w", err)
	}
	return rec, nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (h *History) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	if err := h.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// List returns up to limit records, newest first.
func (h *History) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var recs []Record
	if err := h.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Close releases the underlying connection pool.
func (h *History) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
