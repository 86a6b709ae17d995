package user

import (
	"context"

	infrarepo "github.com/amirasaad/ledger/infra/repository"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func New(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create inserts u. A taken username yields domain.ErrAlreadyExists.
func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	m := User{
		Username: u.Username,
		Password: u.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *userRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*domain.User, error) {
	var m User
	if err := r.db.WithContext(
		ctx,
	).Where("username = ?", username).First(&m).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *userRepository) DeleteAll(ctx context.Context) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).
			Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&User{}).Error
	})
}
