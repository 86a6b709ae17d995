package repository

import (
	"context"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Do runs fn inside a single transaction. Repositories obtained from the
// UnitOfWork passed to fn share that transaction; if fn returns an error
// every write is rolled back. The context handed to fn carries the
// transaction deadline and should be passed to repository calls.
//
// Example usage:
//
//	err := uow.Do(ctx, func(ctx context.Context, uow UnitOfWork) error {
//		repo, err := uow.AccountRepository()
//		if err != nil {
//			return err
//		}
//		return repo.UpdateBalance(ctx, id, balance)
//	})
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	UserRepository() (UserRepository, error)
	TokenRepository() (TokenRepository, error)
}
