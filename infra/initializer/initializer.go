// Package initializer builds the process-wide dependencies from configuration.
package initializer

import (
	"fmt"

	"github.com/amirasaad/ledger/infra"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	logger := setupLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}

	if cfg.DB.Migrate {
		logger.Info("Running migrations", "driver", cfg.DB.Driver)
		if err := infra.Migrate(db, cfg.DB.Driver); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return &app.Deps{
		Uow:    infra.NewGormUoW(db, cfg.DB.QueryTimeout),
		Logger: logger,
	}, nil
}
