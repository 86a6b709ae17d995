package infra

import (
	"errors"
	"fmt"

	"github.com/amirasaad/ledger/infra/repository/account"
	"github.com/amirasaad/ledger/infra/repository/token"
	"github.com/amirasaad/ledger/infra/repository/user"
	"github.com/amirasaad/ledger/internal/migrations"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date. Postgres runs the embedded SQL
// migrations; SQLite, used for development and tests, is auto-migrated
// from the GORM models.
func Migrate(db *gorm.DB, driver string) error {
	if driver == config.DriverSQLite {
		return db.AutoMigrate(&user.User{}, &account.Account{}, &token.Token{})
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	dbDriver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("migrate: postgres driver: %w", err)
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migrate: source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	// m.Close would close sqlDB, which is still owned by GORM.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}
