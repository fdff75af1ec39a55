package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
)

// SQLSource hands out the *sql.DB behind a pooled client.
type SQLSource interface {
	SQL() (*sql.DB, error)
}

// MaybeRunDev brings a dev database up to the embedded schema on boot when
// SHOPHUB_AUTO_MIGRATE is set. Other environments run cmd/migrate instead.
func MaybeRunDev(ctx context.Context, app config.AppConfig, logg *logger.Logger, src SQLSource) error {
	if !app.IsDev() || !app.AutoMigrate {
		return nil
	}
	sqlDB, err := src.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if err := Embedded().prepare(); err != nil {
		return err
	}
	before, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, EmbeddedDir); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	after, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"from_version": before,
		"to_version":   after,
	}), "migrate.dev_autorun")
	return nil
}
