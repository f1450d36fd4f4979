package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/gnmyt/MCDash-sub000/internal/infra/persistence/gormdb"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := gormdb.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	s := NewStore(db)
	if err := s.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestCreateAndAuthenticate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, "steve", "hunter2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.PasswordHash == "hunter2" {
		t.Fatal("password stored in clear")
	}

	got, ok, err := s.Authenticate(ctx, "steve", "hunter2")
	if err != nil || !ok || got.ID != a.ID {
		t.Fatalf("authenticate = (%v, %v, %v)", got, ok, err)
	}
	if _, ok, _ := s.Authenticate(ctx, "steve", "wrong"); ok {
		t.Fatal("wrong password accepted")
	}
	if _, ok, _ := s.Authenticate(ctx, "ghost", "hunter2"); ok {
		t.Fatal("unknown user accepted")
	}
}

func TestDuplicateUsername(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, "steve", "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "steve", "b"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("want ErrUsernameTaken, got %v", err)
	}
}

func TestAdminIsLowestID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first, _ := s.Create(ctx, "first", "x")
	second, _ := s.Create(ctx, "second", "x")

	if ok, _ := s.IsAdmin(ctx, first.ID); !ok {
		t.Fatal("lowest id should be admin")
	}
	if ok, _ := s.IsAdmin(ctx, second.ID); ok {
		t.Fatal("second account must not be admin")
	}

	// Deleting the admin promotes the next lowest id. Documented coupling.
	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := s.IsAdmin(ctx, second.ID); !ok {
		t.Fatal("surviving lowest id should become admin")
	}
}

func TestSetPassword(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, "steve", "old")
	if err := s.SetPassword(ctx, a.ID, "new"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if _, ok, _ := s.Authenticate(ctx, "steve", "old"); ok {
		t.Fatal("old password still valid")
	}
	if _, ok, _ := s.Authenticate(ctx, "steve", "new"); !ok {
		t.Fatal("new password rejected")
	}
	if err := s.SetPassword(ctx, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
