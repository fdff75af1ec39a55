package migrate

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
)

func TestEmbeddedMigrationsValidate(t *testing.T) {
	if err := ValidateFS(MigrationsFS, EmbeddedDir); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestEmbeddedMigrationsCreateStorefrontSchema(t *testing.T) {
	var all strings.Builder
	err := fs.WalkDir(MigrationsFS, EmbeddedDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(MigrationsFS, p)
		if err != nil {
			return err
		}
		all.Write(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk migrations: %v", err)
	}

	content := all.String()
	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS cart_items",
		"CONSTRAINT cart_items_user_product_key UNIQUE (user_id, product_id)",
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"idx_orders_checkout_session",
		"CREATE TABLE IF NOT EXISTS subscriptions",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCreateSQLMigrationThenValidate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Product Tags!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_product_tags.sql") {
		t.Fatalf("unexpected sanitized filename %s", filepath.Base(path))
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("freshly created migration should validate: %v", err)
	}

	if _, err := CreateSQLMigration(dir, "add product tags"); err == nil {
		t.Fatal("expected duplicate migration name to be rejected")
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up"), 0o644); err != nil {
		t.Fatalf("write bad migration: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail validation")
	}
}

type failingSource struct{ called bool }

func (f *failingSource) SQL() (*sql.DB, error) {
	f.called = true
	return nil, errors.New("no pool")
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	src := &failingSource{}
	if err := MaybeRunDev(context.Background(), config.AppConfig{Env: "prod", AutoMigrate: true}, nil, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := MaybeRunDev(context.Background(), config.AppConfig{Env: "dev"}, nil, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.called {
		t.Fatal("pool should not be touched when auto-migrate is off")
	}
	if err := MaybeRunDev(context.Background(), config.AppConfig{Env: "dev", AutoMigrate: true}, nil, src); err == nil {
		t.Fatal("expected pool error to surface")
	}
}

func TestValidateRejectsBadAnnotations(t *testing.T) {
	cases := map[string]string{
		"down first":   "-- +goose Down\nDROP TABLE x;\n-- +goose Up\nCREATE TABLE x();\n",
		"unterminated": "-- +goose Up\n-- +goose StatementBegin\nCREATE TABLE x();\n-- +goose Down\nDROP TABLE x;\n",
		"stray end":    "-- +goose Up\n-- +goose StatementEnd\n-- +goose Down\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			file := filepath.Join(dir, "20260301000000_broken.sql")
			if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
				t.Fatalf("write migration: %v", err)
			}
			if err := ValidateDir(dir); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
