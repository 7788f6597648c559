package domain

import "time"

// RefreshToken stores refresh tokens for users.
//
// Only the SHA-256 hash (with pepper) is stored. Tokens rotate on every
// refresh; tokens issued from one sign-in share a FamilyID so reuse of a
// rotated token can revoke the whole chain.
type RefreshToken struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	UserID int64 `json:"user_id" gorm:"index;not null"`

	TokenHash string `json:"-" gorm:"size:64;uniqueIndex;not null"`
	FamilyID  string `json:"-" gorm:"size:36;index;not null"`

	RotatedFrom *int64 `json:"-"`

	UserAgent *string `json:"-" gorm:"size:512"`
	IP        *string `json:"-" gorm:"size:64"`

	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at" gorm:"index;not null"`
	UsedAt          *time.Time `json:"-"`
	RevokedAt       *time.Time `json:"revoked_at" gorm:"index"`
	ReuseDetectedAt *time.Time `json:"-"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil || t.UsedAt != nil
}

// PasswordReset is a single-use reset token, stored hashed.
type PasswordReset struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	UserID    int64      `json:"user_id" gorm:"index;not null"`
	TokenHash string     `json:"-" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (PasswordReset) TableName() string { return "password_resets" }
