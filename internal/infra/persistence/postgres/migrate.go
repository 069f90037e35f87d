package postgres

import (
	"fmt"
	"log/slog"

	"kicks/config"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RunMigrations applies pending schema migrations from the configured
// directory. It reuses the GORM pool's underlying sql.DB so startup holds a
// single set of credentials. A no-op when migrations are disabled.
func RunMigrations(db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Migrations == nil || !cfg.Migrations.Enabled {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB for migrations")
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, "could not create migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cfg.Migrations.Path),
		"postgres",
		driver,
	)
	if err != nil {
		return errors.Wrap(err, "could not create migrate instance")
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema up to date", slog.String("path", cfg.Migrations.Path))

			return nil
		}

		return errors.Wrap(err, "failed to apply migrations")
	}

	logger.Info("schema migrations applied", slog.String("path", cfg.Migrations.Path))

	return nil
}
