package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"housie/internal/database"
	"housie/internal/domain"
	"housie/internal/pkg/i18n"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User, locale string) error {
	if !i18n.IsSupported(locale) {
		locale = i18n.Default
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		prefs := domain.DefaultPreferences(u.ID)
		prefs.Locale = locale
		return tx.Create(&prefs).Error
	})
	if database.IsUniqueViolation(err) {
		return ErrEmailAlreadyExists
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Rotate marks the current token used and stores next in the same family.
// Presenting a token that was already spent revokes the whole family; the
// revocation is committed before ErrRefreshTokenReused is returned.
func (r *TokenRepository) Rotate(ctx context.Context, oldHash string, next *domain.RefreshToken, now time.Time) error {
	reused := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.RefreshToken
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_hash = ?", oldHash).
			First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}

		if current.IsExpired(now) {
			return ErrInvalidRefreshToken
		}

		if current.IsRevoked() {
			if err := tx.Model(&domain.RefreshToken{}).Where("id = ?", current.ID).
				Update("reuse_detected_at", now).Error; err != nil {
				return err
			}
			if err := tx.Model(&domain.RefreshToken{}).
				Where("family_id = ? AND revoked_at IS NULL", current.FamilyID).
				Update("revoked_at", now).Error; err != nil {
				return err
			}
			reused = true
			return nil
		}

		if err := tx.Model(&domain.RefreshToken{}).Where("id = ?", current.ID).
			Updates(map[string]any{"used_at": now, "revoked_at": now}).Error; err != nil {
			return err
		}

		rotatedFrom := current.ID
		next.UserID = current.UserID
		next.FamilyID = current.FamilyID
		next.RotatedFrom = &rotatedFrom
		return tx.Create(next).Error
	})
	if err != nil {
		return err
	}
	if reused {
		return ErrRefreshTokenReused
	}
	return nil
}

func (r *TokenRepository) RevokeByHash(ctx context.Context, hash string, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", now).Error
}

func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

// TrimActive keeps the newest keep live tokens of a user and revokes the rest.
func (r *TokenRepository) TrimActive(ctx context.Context, userID int64, keep int, now time.Time) error {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Order("created_at DESC, id DESC").
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) <= keep {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id IN ?", ids[keep:]).
		Update("revoked_at", now).Error
}

// DeleteExpired removes refresh tokens past expiry or revoked before cutoff,
// and spent or expired password resets.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now, revokedBefore time.Time) (int64, error) {
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("expires_at < ? OR revoked_at < ?", now, revokedBefore).Delete(&domain.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected

		res = tx.Where("expires_at < ? OR used_at IS NOT NULL", now).Delete(&domain.PasswordReset{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected
		return nil
	})
	return total, err
}

type ResetRepository struct {
	db *gorm.DB
}

func NewResetRepository(db *gorm.DB) *ResetRepository {
	return &ResetRepository{db: db}
}

func (r *ResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

func (r *ResetRepository) Consume(ctx context.Context, hash string, now time.Time) (int64, error) {
	var userID int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset domain.PasswordReset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_hash = ?", hash).
			First(&reset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		if reset.UsedAt != nil || !now.Before(reset.ExpiresAt) {
			return ErrInvalidResetToken
		}
		if err := tx.Model(&domain.PasswordReset{}).Where("id = ?", reset.ID).
			Update("used_at", now).Error; err != nil {
			return err
		}
		userID = reset.UserID
		return nil
	})
	return userID, err
}
