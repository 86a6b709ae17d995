package account

import (
	"context"
	"errors"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/repository"
)

// TransferResult carries both balances after a successful transfer.
type TransferResult struct {
	SourceNewBalance      int64
	DestinationNewBalance int64
}

// Transfer moves amount from an account owned by userID to any other account.
//
// Both rows are locked in ascending id order so that opposing transfers
// cannot deadlock. Failures are reported in this order: source missing,
// insufficient funds, destination missing. Nothing is written unless both
// sides succeed.
func (s *Service) Transfer(
	ctx context.Context,
	userID, sourceID, destinationID, amount int64,
) (res *TransferResult, err error) {
	logger := s.logger.With(
		"userID", userID,
		"sourceAccountID", sourceID,
		"destinationAccountID", destinationID,
		"amount", amount,
	)
	logger.Info("Transfer started")

	if err = domain.ValidateAmount(amount); err != nil {
		logger.Error("Transfer failed: invalid amount", "error", err)
		return nil, err
	}
	if sourceID == destinationID {
		logger.Error("Transfer failed", "error", domain.ErrSameAccountTransfer)
		return nil, domain.ErrSameAccountTransfer
	}

	err = s.uow.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		src, dst, err := lockPair(ctx, repo, userID, sourceID, destinationID)
		if err != nil {
			return err
		}
		if src == nil {
			return domain.ErrSourceAccountNotFound
		}
		if err := src.Debit(amount); err != nil {
			return err
		}
		if dst == nil {
			return domain.ErrDestinationAccountNotFound
		}
		if err := dst.Credit(amount); err != nil {
			return err
		}
		if err := repo.UpdateBalance(ctx, src.ID, src.Balance); err != nil {
			return err
		}
		if err := repo.UpdateBalance(ctx, dst.ID, dst.Balance); err != nil {
			return err
		}
		res = &TransferResult{
			SourceNewBalance:      src.Balance,
			DestinationNewBalance: dst.Balance,
		}
		return nil
	})
	if err != nil {
		logger.Error("Transfer failed", "error", err)
		return nil, err
	}
	logger.Info("Transfer successful",
		"sourceNewBalance", res.SourceNewBalance,
		"destinationNewBalance", res.DestinationNewBalance,
	)
	return res, nil
}

// lockPair locks the source (owner-scoped) and destination rows, lower id
// first. A missing row comes back nil rather than as an error.
func lockPair(
	ctx context.Context,
	repo repository.AccountRepository,
	userID, sourceID, destinationID int64,
) (src, dst *domain.Account, err error) {
	lockSource := func() (err error) {
		src, err = repo.GetOwnedForUpdate(ctx, sourceID, userID)
		return missingIsNil(err)
	}
	lockDestination := func() (err error) {
		dst, err = repo.GetForUpdate(ctx, destinationID)
		return missingIsNil(err)
	}

	steps := []func() error{lockSource, lockDestination}
	if destinationID < sourceID {
		steps[0], steps[1] = steps[1], steps[0]
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, nil, err
		}
	}
	return src, dst, nil
}

func missingIsNil(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
