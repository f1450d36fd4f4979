// Package jobs persists recurring maintenance schedules (console commands,
// restarts, backup triggers) and runs them on their interval.
package jobs

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Schedule actions. Backup execution itself is an external collaborator; the
// runner only triggers it through the hook it was constructed with.
const (
	ActionCommand = "command"
	ActionRestart = "restart"
	ActionBackup  = "backup"
)

var ErrNotFound = errors.New("schedule not found")

type ScheduleRecord struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"size:128;not null"`
	Action          string `gorm:"size:32;not null"`
	Payload         string `gorm:"size:255"` // command line for ActionCommand
	IntervalSeconds int64  `gorm:"not null"`
	Enabled         bool   `gorm:"default:true"`
	LastRunAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ScheduleRecord) TableName() string { return "schedules" }

func ValidAction(a string) bool {
	return a == ActionCommand || a == ActionRestart || a == ActionBackup
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) AutoMigrate() error { return s.db.AutoMigrate(&ScheduleRecord{}) }

func (s *Store) Create(ctx context.Context, rec *ScheduleRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *Store) List(ctx context.Context) ([]ScheduleRecord, error) {
	var out []ScheduleRecord
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&ScheduleRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetEnabled(ctx context.Context, id uint, enabled bool) error {
	res := s.db.WithContext(ctx).Model(&ScheduleRecord{}).Where("id = ?", id).
		Update("enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Due returns enabled schedules whose interval has elapsed since their last
// run (or that never ran).
func (s *Store) Due(ctx context.Context, now time.Time) ([]ScheduleRecord, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	due := make([]ScheduleRecord, 0, len(all))
	for _, rec := range all {
		if !rec.Enabled || rec.IntervalSeconds <= 0 {
			continue
		}
		if rec.LastRunAt == nil || now.Sub(*rec.LastRunAt) >= time.Duration(rec.IntervalSeconds)*time.Second {
			due = append(due, rec)
		}
	}
	return due, nil
}

func (s *Store) MarkRun(ctx context.Context, id uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&ScheduleRecord{}).Where("id = ?", id).
		Update("last_run_at", at).Error
}
