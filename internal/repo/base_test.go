package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.DB(nil) != db {
		t.Fatalf("expected raw connection without a context")
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	if withCtx == nil || withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to be bound")
	}
}

func TestNewestFirst(t *testing.T) {
	db := newTestDB(t).Session(&gorm.Session{DryRun: true})

	stmt := NewestFirst(db.Model(&models.Order{}), nil).Find(&[]models.Order{}).Statement
	sql := stmt.SQL.String()
	if !strings.Contains(sql, "ORDER BY created_at DESC, id DESC") {
		t.Fatalf("missing ordering in %q", sql)
	}
	if strings.Contains(sql, "WHERE") {
		t.Fatalf("first page should not filter, got %q", sql)
	}

	cursor := &pagination.Cursor{CreatedAt: time.Now(), ID: uuid.New()}
	stmt = NewestFirst(db.Model(&models.Order{}), cursor).Find(&[]models.Order{}).Statement
	sql = stmt.SQL.String()
	if !strings.Contains(sql, "(created_at, id) < (") {
		t.Fatalf("missing keyset condition in %q", sql)
	}
	if len(stmt.Vars) != 2 {
		t.Fatalf("expected cursor vars bound, got %v", stmt.Vars)
	}
}
