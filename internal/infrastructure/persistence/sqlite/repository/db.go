package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pqms/internal/errs"
	"pqms/internal/ports"
)

// conn resolves the active transaction from ctx, falling back to the root handle.
type conn struct {
	db *gorm.DB
}

func (c conn) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx, ok, err := ports.TxAs[*gorm.DB](ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return c.db.WithContext(ctx), nil
	}
	return tx.WithContext(ctx), nil
}

// inTx runs fn in the ambient transaction, or opens one when ctx carries none.
func (c conn) inTx(ctx context.Context, fn func(db *gorm.DB) error) error {
	if ports.TxFromContext(ctx) != nil {
		db, err := c.dbFromContext(ctx)
		if err != nil {
			return err
		}
		return fn(db)
	}
	return c.db.WithContext(ctx).Transaction(fn)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFoundf(format, args...)
	}
	return errs.Wrapf(err, "query "+format, args...)
}

func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(search))
	return "%" + escaped + "%"
}

// searchAny adds "(a LIKE ? OR b LIKE ? ...)" for a non-blank search term.
func searchAny(query *gorm.DB, search string, columns ...string) *gorm.DB {
	if strings.TrimSpace(search) == "" || len(columns) == 0 {
		return query
	}
	pattern := likePattern(search)
	clauses := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		clauses = append(clauses, col+` LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func encodeOptions(options []string) (datatypes.JSON, error) {
	if options == nil {
		options = []string{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, errs.Wrap(err, "encode options")
	}
	return datatypes.JSON(raw), nil
}

func decodeOptions(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}

func toDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(*t)
	return &d
}

func fromDate(d *datatypes.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Time(*d)
	return &t
}
