package auth

import "housie/internal/domain"

type SignUpRequest struct {
	FullName        string          `json:"full_name" validate:"required,min=2,max=255"`
	Email           string          `json:"email" validate:"required,email,max=255"`
	PhoneNumber     string          `json:"phone_number" validate:"omitempty,phone"`
	Password        string          `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string          `json:"confirm_password" validate:"required"`
	Role            domain.UserRole `json:"user_role" validate:"required,oneof=customer cleaner"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// ClientMeta is recorded on refresh tokens for the session list.
type ClientMeta struct {
	UserAgent string
	IP        string
	Locale    string
}

type Session struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
}
