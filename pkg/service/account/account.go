// Package account holds the balance-affecting business logic: opening
// accounts, deposits, withdrawals, transfers and balance reads, plus login
// with auto-registration and the full reset.
//
// Every operation runs as a single unit of work. Read-modify-write paths lock
// the rows they touch, so concurrent callers never lose an update and a
// balance never goes negative.
package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/amirasaad/ledger/pkg/service/auth"
)

// TokenIssuer signs login tokens.
type TokenIssuer interface {
	Issue(identity auth.Identity) (*auth.IssuedToken, error)
}

// Service provides account operations and login.
type Service struct {
	uow        repository.UnitOfWork
	tokens     TokenIssuer
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(
	uow repository.UnitOfWork,
	tokens TokenIssuer,
	bcryptCost int,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:        uow,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// WithdrawResult is the outcome of a successful withdrawal.
type WithdrawResult struct {
	Withdrawn  int64
	NewBalance int64
}

// CreateAccount opens an account for userID with a non-negative opening balance.
func (s *Service) CreateAccount(
	ctx context.Context,
	userID, initialBalance int64,
) (a *domain.Account, err error) {
	logger := s.logger.With("userID", userID, "initialBalance", initialBalance)
	logger.Info("CreateAccount started")

	a, err = domain.NewAccount(userID, initialBalance)
	if err != nil {
		logger.Error("CreateAccount failed: domain error", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, a)
	})
	if err != nil {
		logger.Error("CreateAccount failed", "error", err)
		return nil, err
	}
	logger.Info("CreateAccount successful", "accountID", a.ID)
	return a, nil
}

// GetBalance returns the balance of an account owned by userID.
func (s *Service) GetBalance(
	ctx context.Context,
	userID, accountID int64,
) (balance int64, err error) {
	err = s.uow.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := repo.GetOwned(ctx, accountID, userID)
		if err != nil {
			return accountNotFound(err, domain.ErrAccountNotFound)
		}
		balance = a.Balance
		return nil
	})
	if err != nil {
		s.logger.Debug("GetBalance failed", "userID", userID, "accountID", accountID, "error", err)
		return 0, err
	}
	return balance, nil
}

// Deposit credits amount to an account owned by userID and returns the new balance.
func (s *Service) Deposit(
	ctx context.Context,
	userID, accountID, amount int64,
) (newBalance int64, err error) {
	logger := s.logger.With("userID", userID, "accountID", accountID, "amount", amount)
	logger.Info("Deposit started")

	if err = domain.ValidateAmount(amount); err != nil {
		logger.Error("Deposit failed: invalid amount", "error", err)
		return 0, err
	}
	err = s.uow.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := repo.GetOwnedForUpdate(ctx, accountID, userID)
		if err != nil {
			return accountNotFound(err, domain.ErrAccountNotFound)
		}
		if err := a.Credit(amount); err != nil {
			return err
		}
		if err := repo.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		newBalance = a.Balance
		return nil
	})
	if err != nil {
		logger.Error("Deposit failed", "error", err)
		return 0, err
	}
	logger.Info("Deposit successful", "newBalance", newBalance)
	return newBalance, nil
}

// Withdraw debits amount from an account owned by userID.
func (s *Service) Withdraw(
	ctx context.Context,
	userID, accountID, amount int64,
) (res *WithdrawResult, err error) {
	logger := s.logger.With("userID", userID, "accountID", accountID, "amount", amount)
	logger.Info("Withdraw started")

	if err = domain.ValidateAmount(amount); err != nil {
		logger.Error("Withdraw failed: invalid amount", "error", err)
		return nil, err
	}
	err = s.uow.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := repo.GetOwnedForUpdate(ctx, accountID, userID)
		if err != nil {
			return accountNotFound(err, domain.ErrAccountNotFound)
		}
		if err := a.Debit(amount); err != nil {
			return err
		}
		if err := repo.UpdateBalance(ctx, a.ID, a.Balance); err != nil {
			return err
		}
		res = &WithdrawResult{Withdrawn: amount, NewBalance: a.Balance}
		return nil
	})
	if err != nil {
		logger.Error("Withdraw failed", "error", err)
		return nil, err
	}
	logger.Info("Withdraw successful", "newBalance", res.NewBalance)
	return res, nil
}

// ResetDatabase deletes all tokens, accounts and users in one transaction.
// Tokens already handed out keep verifying until they expire.
func (s *Service) ResetDatabase(ctx context.Context) error {
	s.logger.Warn("ResetDatabase started")
	err := s.uow.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		tokens, err := uow.TokenRepository()
		if err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if err := tokens.DeleteAll(ctx); err != nil {
			return err
		}
		if err := accounts.DeleteAll(ctx); err != nil {
			return err
		}
		return users.DeleteAll(ctx)
	})
	if err != nil {
		s.logger.Error("ResetDatabase failed", "error", err)
		return err
	}
	s.logger.Warn("ResetDatabase successful")
	return nil
}

// accountNotFound replaces a repository not-found with the given domain error.
func accountNotFound(err, notFound error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return notFound
	}
	return err
}
