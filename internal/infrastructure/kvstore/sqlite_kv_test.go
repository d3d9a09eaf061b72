package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"pqms/internal/infrastructure/persistence/sqlite/model"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "kv.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.AppKV{}); err != nil {
		t.Fatalf("auto migrate app_kv: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSQLiteStoreSetGetDelete(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "system_settings", `{"language":"ja"}`, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, found, err := store.Get(ctx, "system_settings")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != `{"language":"ja"}` {
		t.Fatalf("Get() = %q, found=%v", value, found)
	}

	if err := store.Set(ctx, "system_settings", `{"language":"en"}`, 0); err != nil {
		t.Fatalf("Set(update) error = %v", err)
	}
	value, _, err = store.Get(ctx, "system_settings")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != `{"language":"en"}` {
		t.Fatalf("Get() after update = %q", value)
	}

	if err := store.Delete(ctx, "system_settings"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, found, err = store.Get(ctx, "system_settings")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if found {
		t.Fatalf("Get() expected found=false after delete")
	}
}

func TestSQLiteStoreSetIfAbsentKeepsFirstValue(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	wrote, err := store.SetIfAbsent(ctx, "seed", "first")
	if err != nil {
		t.Fatalf("SetIfAbsent() error = %v", err)
	}
	if !wrote {
		t.Fatalf("SetIfAbsent() expected first write")
	}

	wrote, err = store.SetIfAbsent(ctx, "seed", "second")
	if err != nil {
		t.Fatalf("SetIfAbsent(again) error = %v", err)
	}
	if wrote {
		t.Fatalf("SetIfAbsent(again) expected no write")
	}

	value, _, err := store.Get(ctx, "seed")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "first" {
		t.Fatalf("Get() = %q, want first", value)
	}
}

func TestSQLiteStoreRejectsEmptyKey(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, " ", "v", 0); err == nil {
		t.Fatalf("Set() expected error for empty key")
	}
	if _, _, err := store.Get(ctx, ""); err == nil {
		t.Fatalf("Get() expected error for empty key")
	}
	if _, err := store.SetIfAbsent(ctx, "", "v"); err == nil {
		t.Fatalf("SetIfAbsent() expected error for empty key")
	}
	if err := store.Delete(ctx, ""); err == nil {
		t.Fatalf("Delete() expected error for empty key")
	}
}
