package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/amirasaad/ledger/infra/repository/account"
	"github.com/amirasaad/ledger/infra/repository/token"
	"github.com/amirasaad/ledger/infra/repository/user"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Repositories handed out inside Do share the transaction; outside Do they
// run directly against the pool.
type UoW struct {
	db      *gorm.DB
	tx      *gorm.DB
	timeout time.Duration
}

// NewGormUoW returns a UoW over db. Each Do call gets at most timeout to
// finish; zero disables the limit.
func NewGormUoW(db *gorm.DB, timeout time.Duration) *UoW {
	return &UoW{db: db, timeout: timeout}
}

// Do runs fn in a transaction. Errors returned by fn pass through unchanged
// (repositories already map them); failures to begin or commit are reported
// as domain.ErrStorage.
func (u *UoW) Do(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	var fnErr error
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(ctx, &UoW{db: u.db, tx: tx, timeout: u.timeout})
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return account.New(u.session()), nil
}

func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return user.New(u.session()), nil
}

func (u *UoW) TokenRepository() (repository.TokenRepository, error) {
	return token.New(u.session()), nil
}
