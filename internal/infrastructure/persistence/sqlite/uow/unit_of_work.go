package uow

import (
	"context"

	"gorm.io/gorm"

	"pqms/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork with gorm.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithTx runs fn in a transaction. A ctx that already carries one gets a
// savepoint, so a failing inner unit rolls back only its own writes.
func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db := u.db
	current, ok, err := ports.TxAs[*gorm.DB](ctx)
	if err != nil {
		return err
	}
	if ok {
		db = current
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	})
}
