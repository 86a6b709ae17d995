package token

import (
	"context"

	infrarepo "github.com/amirasaad/ledger/infra/repository"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/repository"
	"gorm.io/gorm"
)

type tokenRepository struct {
	db *gorm.DB
}

func New(db *gorm.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, t *domain.Token) error {
	m := Token{
		UserID:    t.UserID,
		Token:     t.Token,
		IssuedAt:  t.IssuedAt,
		ExpiresAt: t.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	t.ID = m.ID
	return nil
}

// ListByUser returns the tokens issued to userID, oldest first.
func (r *tokenRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Token, error) {
	var rows []Token
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*domain.Token, 0, len(rows))
	for i := range rows {
		out = append(out, &domain.Token{
			ID:        rows[i].ID,
			UserID:    rows[i].UserID,
			Token:     rows[i].Token,
			IssuedAt:  rows[i].IssuedAt,
			ExpiresAt: rows[i].ExpiresAt,
		})
	}
	return out, nil
}

func (r *tokenRepository) DeleteAll(ctx context.Context) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).
			Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&Token{}).Error
	})
}
