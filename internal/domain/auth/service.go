package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"housie/internal/domain"
	"housie/internal/metrics"
)

// maxActiveSessions bounds live refresh tokens per user; older ones are revoked.
const maxActiveSessions = 10

// Service contains all business logic for authentication
type Service struct {
	users              UserRepositoryInterface
	tokens             TokenRepositoryInterface
	resets             ResetRepositoryInterface
	jwt                jwtService
	sender             ResetSender
	refreshTokenPepper string
	refreshTTL         time.Duration
	resetTTL           time.Duration
	now                func() time.Time
}

func NewService(
	users UserRepositoryInterface,
	tokens TokenRepositoryInterface,
	resets ResetRepositoryInterface,
	jwt jwtService,
	sender ResetSender,
	refreshTokenPepper string,
	refreshTTL time.Duration,
	resetTTL time.Duration,
) *Service {
	return &Service{
		users:              users,
		tokens:             tokens,
		resets:             resets,
		jwt:                jwt,
		sender:             sender,
		refreshTokenPepper: refreshTokenPepper,
		refreshTTL:         refreshTTL,
		resetTTL:           resetTTL,
		now:                time.Now,
	}
}

// SignUp creates the account and opens a session. A confirmation that does
// not match is rejected before anything touches storage.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest, meta ClientMeta) (*Session, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}

	email := domain.NormalizeEmail(req.Email)
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Role:         req.Role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user, meta.Locale); err != nil {
		return nil, err
	}

	log.Printf("auth: signup user_id=%d role=%s", user.ID, user.Role)
	return s.openSession(ctx, user, meta)
}

func (s *Service) SignIn(ctx context.Context, req SignInRequest, meta ClientMeta) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user, meta)
}

// SignOut revokes the refresh token. Unknown or already revoked tokens are not an error.
func (s *Service) SignOut(ctx context.Context, refreshRaw string) error {
	return s.tokens.RevokeByHash(ctx, hashTokenWithPepper(refreshRaw, s.refreshTokenPepper), s.now())
}

func (s *Service) Refresh(ctx context.Context, refreshRaw string, meta ClientMeta) (*Session, error) {
	now := s.now()
	newRaw, newHash, err := generateOpaqueToken(s.refreshTokenPepper)
	if err != nil {
		return nil, err
	}

	next := &domain.RefreshToken{
		TokenHash: newHash,
		ExpiresAt: now.Add(s.refreshTTL),
		UserAgent: nullableString(meta.UserAgent),
		IP:        nullableString(meta.IP),
	}
	if err := s.tokens.Rotate(ctx, hashTokenWithPepper(refreshRaw, s.refreshTokenPepper), next, now); err != nil {
		if errors.Is(err, ErrRefreshTokenReused) {
			log.Printf("auth: refresh token reuse detected, family revoked ip=%s", meta.IP)
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, next.UserID)
	if err != nil {
		return nil, err
	}

	access, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return s.session(user, access, newRaw), nil
}

// GetSession returns the signed-in user.
func (s *Service) GetSession(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// RequestPasswordReset issues a single-use code. Unknown emails succeed
// silently so the endpoint cannot be used to probe for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email, locale string) error {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	raw, hash, err := generateOpaqueToken(s.refreshTokenPepper)
	if err != nil {
		return err
	}
	if err := s.resets.Create(ctx, &domain.PasswordReset{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(s.resetTTL),
	}); err != nil {
		return err
	}

	if s.sender != nil {
		if err := s.sender.SendPasswordReset(ctx, user, raw, locale); err != nil {
			log.Printf("auth: password reset dispatch failed user_id=%d err=%v", user.ID, err)
			metrics.NotificationFailures.WithLabelValues("password_reset").Inc()
		}
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	now := s.now()
	userID, err := s.resets.Consume(ctx, hashTokenWithPepper(req.Token, s.refreshTokenPepper), now)
	if err != nil {
		return err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, userID, now)
}

func (s *Service) openSession(ctx context.Context, user *domain.User, meta ClientMeta) (*Session, error) {
	access, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	raw, hash, err := generateOpaqueToken(s.refreshTokenPepper)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		FamilyID:  uuid.NewString(),
		ExpiresAt: now.Add(s.refreshTTL),
		UserAgent: nullableString(meta.UserAgent),
		IP:        nullableString(meta.IP),
	}); err != nil {
		return nil, err
	}

	if err := s.tokens.TrimActive(ctx, user.ID, maxActiveSessions, now); err != nil {
		log.Printf("auth: trim sessions failed user_id=%d err=%v", user.ID, err)
	}

	return s.session(user, access, raw), nil
}

func (s *Service) session(user *domain.User, access, refresh string) *Session {
	return &Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwt.TTL().Seconds()),
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateOpaqueToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	hash = hashTokenWithPepper(raw, pepper)
	return raw, hash, nil
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}

func nullableString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
