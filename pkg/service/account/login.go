package account

import (
	"context"
	"errors"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/amirasaad/ledger/pkg/service/auth"
)

// Login verifies the credentials of an existing user, or registers username
// when it has never been seen, and returns a freshly issued token.
//
// The new user row (if any) and the token row are written in one
// transaction. Password hashing happens outside it.
func (s *Service) Login(
	ctx context.Context,
	username, password string,
) (token string, err error) {
	log := s.logger.With("username", username)
	log.Debug("Login called")

	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	var existing *domain.User
	err = s.uow.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		existing, err = users.GetByUsername(ctx, username)
		if errors.Is(err, domain.ErrNotFound) {
			existing = nil
			return nil
		}
		return err
	})
	if err != nil {
		log.Error("Login failed: user lookup", "error", err)
		return "", err
	}

	u := existing
	if u != nil {
		if !u.CheckPassword(password) {
			log.Warn("Login failed", "error", domain.ErrInvalidCredentials)
			return "", domain.ErrInvalidCredentials
		}
	} else {
		u, err = domain.NewUser(username, password, s.bcryptCost)
		if err != nil {
			log.Error("Login failed: registering user", "error", err)
			return "", err
		}
	}

	err = s.uow.Do(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if existing == nil {
			users, err := uow.UserRepository()
			if err != nil {
				return err
			}
			if err := users.Create(ctx, u); err != nil {
				return err
			}
		}
		issued, err := s.tokens.Issue(auth.Identity{UserID: u.ID, Username: u.Username})
		if err != nil {
			return err
		}
		tokens, err := uow.TokenRepository()
		if err != nil {
			return err
		}
		if err := tokens.Create(ctx, &domain.Token{
			UserID:    u.ID,
			Token:     issued.Token,
			IssuedAt:  issued.IssuedAt,
			ExpiresAt: issued.ExpiresAt,
		}); err != nil {
			return err
		}
		token = issued.Token
		return nil
	})
	if err != nil {
		log.Error("Login failed", "error", err)
		return "", err
	}
	if existing == nil {
		log.Info("Registered new user", "userID", u.ID)
	}
	log.Info("Login successful", "userID", u.ID)
	return token, nil
}
