package config

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AppURL != "127.0.0.1:8080" {
		t.Errorf("expected default app url, got %s", cfg.AppURL)
	}
	if cfg.UpcomingHorizonDays != 7 {
		t.Errorf("expected horizon 7, got %d", cfg.UpcomingHorizonDays)
	}
	if cfg.RedisEnabled {
		t.Error("redis should be disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("JWT_TTL_HOURS", "2")

	cfg, err := load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AppURL != "127.0.0.1:9090" || cfg.RedisAddr != "cache:6379" {
		t.Errorf("unexpected addresses %s %s", cfg.AppURL, cfg.RedisAddr)
	}
	if !cfg.RedisEnabled || cfg.JWTTTLHours != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"missing secret": {},
		"short secret":   {"JWT_SECRET": "short"},
		"bad integer":    {"JWT_SECRET": "0123456789abcdef", "RATE_LIMIT_PER_MINUTE": "lots"},
		"zero rate":      {"JWT_SECRET": "0123456789abcdef", "RATE_LIMIT_PER_MINUTE": "0"},
		"bad boolean":    {"JWT_SECRET": "0123456789abcdef", "REDIS_ENABLED": "maybe"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestOpenDatabase_ForeignKeysOnEveryConnection(t *testing.T) {
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	var conns []*sql.Conn
	for i := 0; i < 2; i++ {
		conn, err := sqlDB.Conn(ctx)
		if err != nil {
			t.Fatalf("conn %d: %v", i, err)
		}
		conns = append(conns, conn)
	}

	for i, conn := range conns {
		var enabled int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("conn %d pragma: %v", i, err)
		}
		if enabled != 1 {
			t.Errorf("conn %d: expected foreign_keys=1, got %d", i, enabled)
		}
		_ = conn.Close()
	}
}

func TestWithForeignKeys(t *testing.T) {
	tests := map[string]string{
		"tasks.db":                        "tasks.db?_foreign_keys=1",
		"file:x?mode=memory&cache=shared": "file:x?mode=memory&cache=shared&_foreign_keys=1",
		"tasks.db?_fk=0":                  "tasks.db?_fk=0",
	}
	for in, want := range tests {
		if got := withForeignKeys(in); got != want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", in, got, want)
		}
	}
}
