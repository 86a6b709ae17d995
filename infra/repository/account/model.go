package account

import (
	"time"

	"github.com/amirasaad/ledger/infra/repository/user"
	"github.com/amirasaad/ledger/pkg/domain"
)

// Account represents an account record in the database.
type Account struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	UserID    int64 `gorm:"not null;index"`
	Balance   int64 `gorm:"not null;default:0;check:chk_accounts_balance_non_negative,balance >= 0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User *user.User `gorm:"constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

func mapDomainToModel(a *domain.Account) Account {
	return Account{
		ID:      a.ID,
		UserID:  a.UserID,
		Balance: a.Balance,
	}
}

func mapModelToDomain(m *Account) *domain.Account {
	return &domain.Account{
		ID:        m.ID,
		UserID:    m.UserID,
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
