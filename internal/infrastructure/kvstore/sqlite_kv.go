package kvstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pqms/internal/errs"
	"pqms/internal/infrastructure/persistence/sqlite/model"
	"pqms/internal/ports"
)

// SQLiteStore keeps singleton records in the app_kv table.
type SQLiteStore struct {
	db *gorm.DB
}

var _ ports.KeyValueStore = (*SQLiteStore)(nil)

func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	db, trimmedKey, err := s.prepare(ctx, key)
	if err != nil {
		return "", false, err
	}

	var row model.AppKV
	if err := db.Where("key = ?", trimmedKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query kv by key")
	}
	return row.Value, true, nil
}

// Set upserts the key. ttl is accepted for interface parity and ignored.
func (s *SQLiteStore) Set(ctx context.Context, key string, value string, _ time.Duration) error {
	db, trimmedKey, err := s.prepare(ctx, key)
	if err != nil {
		return err
	}

	row := model.AppKV{Key: trimmedKey, Value: value, UpdatedAt: time.Now().UTC()}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert kv key")
	}
	return nil
}

func (s *SQLiteStore) SetIfAbsent(ctx context.Context, key string, value string) (bool, error) {
	db, trimmedKey, err := s.prepare(ctx, key)
	if err != nil {
		return false, err
	}

	row := model.AppKV{Key: trimmedKey, Value: value, UpdatedAt: time.Now().UTC()}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert kv key")
	}
	return result.RowsAffected > 0, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	db, trimmedKey, err := s.prepare(ctx, key)
	if err != nil {
		return err
	}

	if err := db.Where("key = ?", trimmedKey).Delete(&model.AppKV{}).Error; err != nil {
		return errs.Wrap(err, "delete kv key")
	}
	return nil
}

func (s *SQLiteStore) prepare(ctx context.Context, key string) (*gorm.DB, string, error) {
	if ctx == nil {
		return nil, "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, "", errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return nil, "", errors.New("key is required")
	}

	tx, ok, err := ports.TxAs[*gorm.DB](ctx)
	if err != nil {
		return nil, "", err
	}
	if ok {
		return tx.WithContext(ctx), trimmedKey, nil
	}
	return s.db.WithContext(ctx), trimmedKey, nil
}
