package account

import (
	"context"

	infrarepo "github.com/amirasaad/ledger/infra/repository"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// New creates an account repository bound to db, which may be a transaction.
func New(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a and fills in its generated ID and timestamps.
func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	m := mapDomainToModel(a)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	a.ID = m.ID
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *accountRepository) GetOwned(ctx context.Context, id, userID int64) (*domain.Account, error) {
	return r.first(r.db.WithContext(ctx), "id = ? AND user_id = ?", id, userID)
}

func (r *accountRepository) GetOwnedForUpdate(ctx context.Context, id, userID int64) (*domain.Account, error) {
	return r.first(r.locking(ctx), "id = ? AND user_id = ?", id, userID)
}

func (r *accountRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	return r.first(r.locking(ctx), "id = ?", id)
}

// UpdateBalance overwrites the stored balance of account id.
func (r *accountRepository) UpdateBalance(ctx context.Context, id, balance int64) error {
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", id).
		Update("balance", balance)
	if res.Error != nil {
		return infrarepo.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAll removes every account.
func (r *accountRepository) DeleteAll(ctx context.Context) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).
			Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&Account{}).Error
	})
}

// locking returns a session whose SELECTs take a row lock (FOR UPDATE).
// SQLite has no row locks and its dialect drops the clause.
func (r *accountRepository) locking(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *accountRepository) first(db *gorm.DB, query string, args ...any) (*domain.Account, error) {
	var m Account
	if err := db.Where(query, args...).First(&m).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}
