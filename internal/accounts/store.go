// Package accounts persists dashboard user accounts. The account with the
// lowest id is the designated admin; that is a derived property of the table,
// not a stored attribute, so deleting the current admin promotes the next
// lowest id.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrNotFound      = errors.New("account not found")
)

type Account struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `gorm:"size:255;not null"` // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Account) TableName() string { return "accounts" }

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) AutoMigrate() error { return s.db.AutoMigrate(&Account{}) }

func (s *Store) Create(ctx context.Context, username, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a := &Account{Username: username, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return a, nil
}

// Authenticate verifies username/password. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*Account, bool, error) {
	var a Account
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, false, nil
	}
	return &a, true, nil
}

func (s *Store) ByID(ctx context.Context, id uint) (*Account, error) {
	var a Account
	err := s.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) List(ctx context.Context) ([]Account, error) {
	var out []Account
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Account{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetPassword(ctx context.Context, id uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).
		Update("password_hash", string(hash))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdminID is the lowest account id. With no accounts it returns 0 and false.
func (s *Store) AdminID(ctx context.Context) (uint, bool, error) {
	var a Account
	err := s.db.WithContext(ctx).Order("id").First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return a.ID, true, nil
}

func (s *Store) IsAdmin(ctx context.Context, id uint) (bool, error) {
	admin, ok, err := s.AdminID(ctx)
	if err != nil || !ok {
		return false, err
	}
	return admin == id, nil
}

// isUniqueViolation catches the constraint text of drivers that do not map
// duplicates onto gorm.ErrDuplicatedKey (the pure-Go sqlite driver among them).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
