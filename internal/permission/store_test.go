package permission

import (
	"context"
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

func TestGetDefaultsToNone(t *testing.T) {
	s := newStore(t)
	set, err := s.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, f := range Features {
		if set.Get(f) != LevelNone {
			t.Fatalf("%s should default to none", f)
		}
	}
}

func TestSetLevelUpsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.SetLevel(ctx, 1, FeatureConsole, LevelRead); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Same key again must update in place, not duplicate.
	if err := s.SetLevel(ctx, 1, FeatureConsole, LevelFull); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	set, _ := s.Get(ctx, 1)
	if set.Get(FeatureConsole) != LevelFull {
		t.Fatalf("console = %v, want full", set.Get(FeatureConsole))
	}

	var n int64
	s.db.Model(&GrantRecord{}).Where("user_id = ?", 1).Count(&n)
	if n != 1 {
		t.Fatalf("expected single row after upsert, got %d", n)
	}
}

func TestAllows(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_ = s.SetLevel(ctx, 2, FeatureBackups, LevelRead)

	if ok, _ := s.Allows(ctx, 2, FeatureBackups, LevelRead); !ok {
		t.Fatal("read grant should clear read requirement")
	}
	if ok, _ := s.Allows(ctx, 2, FeatureBackups, LevelFull); ok {
		t.Fatal("read grant must not clear full requirement")
	}
	if ok, _ := s.Allows(ctx, 2, FeatureConsole, LevelRead); ok {
		t.Fatal("ungranted feature must not be readable")
	}
}

func TestDeleteAll(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_ = s.SetLevel(ctx, 3, FeatureConsole, LevelFull)
	_ = s.SetLevel(ctx, 3, FeatureBackups, LevelFull)
	if err := s.DeleteAll(ctx, 3); err != nil {
		t.Fatalf("deleteAll: %v", err)
	}
	set, _ := s.Get(ctx, 3)
	if set != (Set{}) {
		t.Fatalf("grants survived deletion: %+v", set)
	}
}
