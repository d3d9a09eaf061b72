package database

import (
	"context"
	"path/filepath"
	"testing"

	"pqms/internal/bootstrap/config"
)

func TestWithPragmas(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "data/pqms.sqlite", want: "data/pqms.sqlite?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{in: "file:x.db?mode=rwc", want: "file:x.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{in: "x.db?_pragma=busy_timeout(100)", want: "x.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)"},
		{in: ":memory:", want: ":memory:"},
	}

	for _, tc := range cases {
		if got := withPragmas(tc.in); got != tc.want {
			t.Fatalf("withPragmas(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "pqms.sqlite")

	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB() error = %v", err)
	}
	defer sqlDB.Close()

	var fk int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("PRAGMA foreign_keys error = %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatal("Open() error = nil, want unsupported driver")
	}
}
