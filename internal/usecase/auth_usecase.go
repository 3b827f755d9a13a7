package usecase

import (
	"context"
	"errors"
	"time"

	"go-studybuddy-backend/internal/domain"
)

type authUsecase struct {
	userRepo domain.UserRepository
}

func NewAuthUsecase(userRepo domain.UserRepository) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo}
}

// EnsureUserExists syncs the identity provider user into the local users
// table on first authenticated request. Idempotent.
func (u *authUsecase) EnsureUserExists(ctx context.Context, user *domain.User) error {
	existing, err := u.userRepo.GetByUID(ctx, user.UID)
	if existing != nil && err == nil {
		return nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return u.userRepo.Create(ctx, user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, uid string) (*domain.User, error) {
	return u.userRepo.GetByUID(ctx, uid)
}
