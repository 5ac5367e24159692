package app

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"

	"go-ems/internal/leave"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrate creates the leave table through gorm and applies the raw SQL files
// for tables written without gorm. Every statement is idempotent.
func migrate(ctx context.Context, gormDB *gorm.DB, sqlDB *sql.DB) error {
	if err := gormDB.WithContext(ctx).AutoMigrate(&leave.Leave{}); err != nil {
		return fmt.Errorf("automigrate leave: %w", err)
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		if _, err := sqlDB.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		zap.L().Named("app.migrate").Info("migration applied", zap.String("file", name))
	}
	return nil
}
