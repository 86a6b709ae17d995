package app

import (
	"log/slog"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/pkg/service/auth"
)

// Deps contains the infrastructure the services are built from.
type Deps struct {
	Uow    repository.UnitOfWork
	Logger *slog.Logger
}

type App struct {
	Deps           *Deps
	Config         *config.App
	AuthService    *auth.Service
	AccountService *account.Service
}

func New(deps *Deps, cfg *config.App) *App {
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.AuthService = auth.New(cfg.Auth.Jwt, deps.Logger)
	app.AccountService = account.NewService(
		deps.Uow,
		app.AuthService,
		cfg.Auth.BcryptCost,
		deps.Logger,
	)
	return app
}
