package repository

import (
	"context"

	"github.com/amirasaad/ledger/pkg/domain"
)

// AccountRepository defines the interface for account data access operations.
//
// The ForUpdate variants take a row lock that lasts until the surrounding
// transaction ends. Lookups report domain.ErrNotFound for missing rows.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	// GetOwned returns the account only if userID owns it.
	GetOwned(ctx context.Context, id, userID int64) (*domain.Account, error)
	GetOwnedForUpdate(ctx context.Context, id, userID int64) (*domain.Account, error)
	// GetForUpdate locks any account regardless of owner.
	GetForUpdate(ctx context.Context, id int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, id, balance int64) error
	DeleteAll(ctx context.Context) error
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	DeleteAll(ctx context.Context) error
}

// TokenRepository stores a row per issued token.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	// ListByUser exists for inspecting the tokens issued to a user; the
	// service never reads tokens back.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Token, error)
	DeleteAll(ctx context.Context) error
}
