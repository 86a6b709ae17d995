package domain

import (
	"math"
	"time"
)

// Account is a balance holder owned by exactly one user.
//
// Invariants:
//   - Balance is never negative.
//   - UserID never changes after creation.
//
// Balances are integer minor units. Mutations go through Credit and Debit so
// the invariants hold before anything reaches the store.
type Account struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAccount returns an unsaved account for userID with the given opening balance.
func NewAccount(userID, initialBalance int64) (*Account, error) {
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}
	return &Account{
		UserID:  userID,
		Balance: initialBalance,
	}, nil
}

// ValidateAmount reports ErrInvalidAmount unless amount is strictly positive.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if a.Balance > math.MaxInt64-amount {
		return ErrDepositAmountExceedsMaxSafeInt
	}
	a.Balance += amount
	return nil
}

// Debit removes amount from the balance. The balance is left untouched on error.
func (a *Account) Debit(amount int64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if a.Balance < amount {
		return ErrInsufficientFunds
	}
	a.Balance -= amount
	return nil
}
