package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
)

func TestNewOpensSQLiteAndPings(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn, MaxOpenConns: 1}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.DB() == nil {
		t.Fatal("expected gorm handle")
	}
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, nil); err == nil {
		t.Fatal("expected missing dsn error")
	}
}

func TestDialectorFor(t *testing.T) {
	if _, err := dialectorFor(config.DBConfig{Driver: "postgres", DSN: "postgres://x"}); err != nil {
		t.Fatalf("unexpected postgres error: %v", err)
	}
	if d, err := dialectorFor(config.DBConfig{DSN: "postgres://x"}); err != nil || d.Name() != "postgres" {
		t.Fatalf("expected postgres default, got %v %v", d, err)
	}
	d, err := dialectorFor(config.DBConfig{Driver: "SQLite", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("unexpected sqlite error: %v", err)
	}
	if d.Name() != "sqlite" {
		t.Fatalf("expected sqlite dialector, got %s", d.Name())
	}
	if _, err := dialectorFor(config.DBConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestQueryLoggerReportsSlowAndFailedQueries(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	ql := newQueryLogger(logg, 10*time.Millisecond)
	sql := func() (string, int64) { return "SELECT * FROM products", 3 }

	ql.Trace(context.Background(), time.Now(), sql, nil)
	if buf.Len() != 0 {
		t.Fatalf("fast queries should not log at warn level, got %s", buf.String())
	}

	ql.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	if !strings.Contains(buf.String(), "db.query_slow") {
		t.Fatalf("expected slow query log, got %s", buf.String())
	}

	buf.Reset()
	ql.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("record not found should be silent, got %s", buf.String())
	}

	ql.Trace(context.Background(), time.Now(), sql, errors.New("relation does not exist"))
	if !strings.Contains(buf.String(), "db.query_failed") {
		t.Fatalf("expected failed query log, got %s", buf.String())
	}

	buf.Reset()
	ql.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now().Add(-time.Second), sql, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("silent mode should not log, got %s", buf.String())
	}
}
