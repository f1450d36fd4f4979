package permission

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantRecord is one (user, feature) grant. One row per feature keeps level
// changes a single conditional upsert instead of a read-modify-write on an
// encoded blob; Set.Encode/Decode remains the exchange form for the API.
type GrantRecord struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"column:user_id;uniqueIndex:idx_user_feature;not null"`
	Feature   string `gorm:"column:feature;uniqueIndex:idx_user_feature;size:32;not null"`
	Level     int    `gorm:"column:level;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (GrantRecord) TableName() string { return "user_permissions" }

// Store persists per-user permission sets. The designated admin never has
// rows consulted here; callers check accounts.Store.IsAdmin first.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) AutoMigrate() error { return s.db.AutoMigrate(&GrantRecord{}) }

// Get returns the user's full set. Features without a stored grant come back
// as NONE; a user with no rows at all gets the zero set.
func (s *Store) Get(ctx context.Context, userID uint) (Set, error) {
	var recs []GrantRecord
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&recs).Error; err != nil {
		return Set{}, err
	}
	var set Set
	for _, r := range recs {
		f, ok := ParseFeature(r.Feature)
		if !ok {
			continue // grant written by a build with a wider catalogue
		}
		if r.Level >= int(LevelNone) && r.Level <= int(LevelFull) {
			set.Set(f, Level(r.Level))
		}
	}
	return set, nil
}

// SetLevel upserts one grant in a single statement.
func (s *Store) SetLevel(ctx context.Context, userID uint, f Feature, l Level) error {
	rec := GrantRecord{UserID: userID, Feature: f.String(), Level: int(l)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "feature"}},
		DoUpdates: clause.AssignmentColumns([]string{"level", "updated_at"}),
	}).Create(&rec).Error
}

// Allows reports whether the user's stored level for f clears min.
func (s *Store) Allows(ctx context.Context, userID uint, f Feature, min Level) (bool, error) {
	set, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Get(f).Allows(min), nil
}

// DeleteAll removes every grant of a user (used when the account is deleted).
func (s *Store) DeleteAll(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&GrantRecord{}).Error
}
