// Package session persists opaque bearer tokens. Possession of a token is the
// only credential; tokens never expire on their own and die only through
// Destroy, DestroyAll, or deletion of the owning account. That is a deliberate
// simplicity trade-off, not an oversight.
package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Session struct {
	Token      string `gorm:"primaryKey;size:64"`
	UserID     uint   `gorm:"index;not null"`
	Client     string `gorm:"size:255"` // originating client descriptor, e.g. user agent
	CreatedAt  time.Time
	LastUsedAt time.Time
}

func (Session) TableName() string { return "sessions" }

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) AutoMigrate() error { return s.db.AutoMigrate(&Session{}) }

// Create issues a fresh token for the user. Collisions across 48 random
// alphanumeric chars (>280 bits) are treated as negligible and not checked.
func (s *Store) Create(ctx context.Context, userID uint, client string) (string, error) {
	tok, err := NewToken(tokenLength)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	rec := Session{Token: tok, UserID: userID, Client: client, CreatedAt: now, LastUsedAt: now}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", err
	}
	return tok, nil
}

// Validate resolves a token to its owning user id and stamps last use.
func (s *Store) Validate(ctx context.Context, token string) (uint, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	var rec Session
	err := s.db.WithContext(ctx).First(&rec, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	// Best effort; a failed stamp must not fail the request.
	s.db.WithContext(ctx).Model(&Session{}).Where("token = ?", token).
		Update("last_used_at", time.Now().UTC())
	return rec.UserID, true, nil
}

func (s *Store) Destroy(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Delete(&Session{}, "token = ?", token).Error
}

// DestroyAll revokes every session of a user (admin revoke, account deletion).
func (s *Store) DestroyAll(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&Session{}).Error
}

func (s *Store) ListByUser(ctx context.Context, userID uint) ([]Session, error) {
	var out []Session
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&out).Error
	return out, err
}
