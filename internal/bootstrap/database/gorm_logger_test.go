package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pqms/internal/bootstrap/logging"
)

func captureContext(buf *bytes.Buffer) context.Context {
	l := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logging.WithLogger(context.Background(), l)
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	ctx := captureContext(&buf)

	l, err := newGormLogger("warn")
	if err != nil {
		t.Fatalf("newGormLogger() error = %v", err)
	}
	sql := func() (string, int64) { return "SELECT * FROM users WHERE id = 9", 0 }

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("record not found was logged: %s", buf.String())
	}

	l.Trace(ctx, time.Now(), sql, errors.New("disk I/O error"))
	out := buf.String()
	if !strings.Contains(out, "sql failed") || !strings.Contains(out, "component=gorm") {
		t.Fatalf("failure not logged through slog: %s", out)
	}
}

func TestGormLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	ctx := captureContext(&buf)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l, err := newGormLogger("warn")
	if err != nil {
		t.Fatalf("newGormLogger() error = %v", err)
	}
	l.Trace(ctx, time.Now(), sql, nil)
	if buf.Len() != 0 {
		t.Fatalf("fast query logged at warn: %s", buf.String())
	}

	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	if !strings.Contains(buf.String(), "slow sql") {
		t.Fatalf("slow query not logged: %s", buf.String())
	}

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), sql, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("silent logger wrote: %s", buf.String())
	}

	if _, err := newGormLogger("verbose"); err == nil {
		t.Fatalf("newGormLogger(verbose) expected error")
	}
}
