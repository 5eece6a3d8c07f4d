package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"league-app-go/internal/repository/relational"
	"league-app-go/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migrationLogger struct {
	log logger.Logger
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf("db.migrate: "+format, v...))
}

func (l migrationLogger) Verbose() bool {
	return false
}

// Migrate brings the schema up to date. Postgres runs the embedded SQL
// migrations; sqlite is created from the gorm models.
func Migrate(gormDB *gorm.DB, log logger.Logger) error {
	if gormDB.Dialector.Name() == "sqlite" {
		if err := gormDB.AutoMigrate(relational.Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("db.migrate: sqlite schema ready")
		return nil
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	m.Log = migrationLogger{log: log}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("db.migrate: no new migrations to apply")
		return nil
	}
	if err != nil {
		version, dirty, _ := m.Version()
		log.Error("db.migrate: failed", "error", err, "version", version, "dirty", dirty)
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.Info("db.migrate: applied migrations", "version", version)
	return nil
}
