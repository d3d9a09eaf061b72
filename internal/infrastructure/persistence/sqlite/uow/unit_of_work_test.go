package uow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/ports"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "uow.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Category{}); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	return db
}

func insertCategory(ctx context.Context, t *testing.T, name string) {
	t.Helper()

	tx, ok := ports.TxFromContext(ctx).(*gorm.DB)
	if !ok {
		t.Fatal("ctx carries no transaction")
	}
	if err := tx.Create(&model.Category{Name: name}).Error; err != nil {
		t.Fatalf("insert %q error = %v", name, err)
	}
}

func countCategories(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&model.Category{}).Count(&n).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	return n
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	u := NewUnitOfWork(db)
	boom := errors.New("boom")

	err := u.WithTx(context.Background(), func(ctx context.Context) error {
		insertCategory(ctx, t, "dimensions")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}
	if n := countCategories(t, db); n != 0 {
		t.Fatalf("categories = %d, want 0", n)
	}
}

func TestWithTxNestedFailureKeepsOuterWrites(t *testing.T) {
	db := openTestDB(t)
	u := NewUnitOfWork(db)

	err := u.WithTx(context.Background(), func(ctx context.Context) error {
		insertCategory(ctx, t, "outer")
		inner := u.WithTx(ctx, func(ctx context.Context) error {
			insertCategory(ctx, t, "inner")
			return errors.New("inner failed")
		})
		if inner == nil {
			t.Fatal("inner WithTx() error = nil, want error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	if n := countCategories(t, db); n != 1 {
		t.Fatalf("categories = %d, want 1", n)
	}
}
