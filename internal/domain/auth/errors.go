package auth

import "errors"

var (
	ErrPasswordMismatch    = errors.New("passwords don't match")
	ErrInvalidRole         = errors.New("role must be customer or cleaner")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenReused  = errors.New("refresh token reuse detected")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
)
