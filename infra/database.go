package infra

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/ledger/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the database described by cnf. appEnv selects the
// GORM log level.
//
// SQLite is limited to a single open connection: it has no row locks, so
// transactions are serialized on that connection instead.
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
) (*gorm.DB, error) {
	if cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	var dialector gorm.Dialector
	switch cnf.Driver {
	case config.DriverPostgres, "":
		dialector = postgres.Open(cnf.Url)
	case config.DriverSQLite:
		dialector = sqlite.Open(cnf.Url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cnf.Driver)
	}

	var logMode logger.LogLevel
	if appEnv == "development" {
		logMode = logger.Info
	} else {
		logMode = logger.Silent
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	if cnf.Driver == config.DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		if err := connection.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
		return connection, nil
	}

	maxOpen := cnf.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return connection, nil
}
