package account

import (
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
)

// Amounts are integers in minor units (e.g. cents). Ids and amounts are
// pointers so that only an absent field fails validation; an explicit 0 is
// passed on to the service.

// CreateAccountRequest represents the request body for opening an account.
type CreateAccountRequest struct {
	Amount *int64 `json:"amount" validate:"required"`
}

// DepositRequest represents the request body for depositing funds into an account.
type DepositRequest struct {
	Account *int64 `json:"account" validate:"required"`
	Amount  *int64 `json:"amount" validate:"required"`
}

// WithdrawRequest represents the request body for withdrawing funds from an account.
type WithdrawRequest struct {
	Account *int64 `json:"account" validate:"required"`
	Amount  *int64 `json:"amount" validate:"required"`
}

// TransferRequest represents the request body for transferring funds between accounts.
type TransferRequest struct {
	SourceAccountID      *int64 `json:"sourceAccountId" validate:"required"`
	DestinationAccountID *int64 `json:"destinationAccountId" validate:"required"`
	Amount               *int64 `json:"amount" validate:"required"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// BalanceResponse is the current balance of an account.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// DepositResponse acknowledges a deposit with the resulting balance.
type DepositResponse struct {
	Message    string `json:"message"`
	NewBalance int64  `json:"newBalance"`
}

// WithdrawResponse reports the amount withdrawn and the resulting balance.
type WithdrawResponse struct {
	Withdrawn  int64 `json:"withdrawn"`
	NewBalance int64 `json:"newBalance"`
}

// TransferResponse carries both balances after a transfer.
type TransferResponse struct {
	SourceNewBalance      int64 `json:"sourceNewBalance"`
	DestinationNewBalance int64 `json:"destinationNewBalance"`
}

// ToAccountResponse maps a domain account to its API shape.
func ToAccountResponse(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}
