package auth

import (
	"context"
	"time"

	"housie/internal/domain"
)

type UserRepositoryInterface interface {
	// Create inserts the user and their default preferences in one transaction.
	Create(ctx context.Context, u *domain.User, locale string) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type TokenRepositoryInterface interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	// Rotate spends the token with oldHash and stores next in its family.
	Rotate(ctx context.Context, oldHash string, next *domain.RefreshToken, now time.Time) error
	RevokeByHash(ctx context.Context, hash string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error
	TrimActive(ctx context.Context, userID int64, keep int, now time.Time) error
}

type ResetRepositoryInterface interface {
	Create(ctx context.Context, r *domain.PasswordReset) error
	// Consume marks the reset used and returns its user.
	Consume(ctx context.Context, hash string, now time.Time) (int64, error)
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
	TTL() time.Duration
}

// ResetSender delivers password reset codes. Implemented by notification.
type ResetSender interface {
	SendPasswordReset(ctx context.Context, user *domain.User, token, locale string) error
}
