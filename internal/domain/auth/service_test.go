package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"housie/internal/domain"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User, locale string) error {
	args := m.Called(ctx, u, locale)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, t *domain.RefreshToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTokenRepo) Rotate(ctx context.Context, oldHash string, next *domain.RefreshToken, now time.Time) error {
	args := m.Called(ctx, oldHash, next, now)
	return args.Error(0)
}

func (m *mockTokenRepo) RevokeByHash(ctx context.Context, hash string, now time.Time) error {
	args := m.Called(ctx, hash, now)
	return args.Error(0)
}

func (m *mockTokenRepo) RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error {
	args := m.Called(ctx, userID, now)
	return args.Error(0)
}

func (m *mockTokenRepo) TrimActive(ctx context.Context, userID int64, keep int, now time.Time) error {
	args := m.Called(ctx, userID, keep, now)
	return args.Error(0)
}

type mockResetRepo struct {
	mock.Mock
}

func (m *mockResetRepo) Create(ctx context.Context, r *domain.PasswordReset) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockResetRepo) Consume(ctx context.Context, hash string, now time.Time) (int64, error) {
	args := m.Called(ctx, hash, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func (m *mockJWTService) TTL() time.Duration {
	return 15 * time.Minute
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendPasswordReset(ctx context.Context, user *domain.User, token, locale string) error {
	args := m.Called(ctx, user, token, locale)
	return args.Error(0)
}

type mocks struct {
	users  *mockUserRepo
	tokens *mockTokenRepo
	resets *mockResetRepo
	jwt    *mockJWTService
	sender *mockSender
}

func newMockedService() (*Service, *mocks) {
	m := &mocks{
		users:  new(mockUserRepo),
		tokens: new(mockTokenRepo),
		resets: new(mockResetRepo),
		jwt:    new(mockJWTService),
		sender: new(mockSender),
	}
	svc := NewService(m.users, m.tokens, m.resets, m.jwt, m.sender, "pepper", 7*24*time.Hour, time.Hour)
	return svc, m
}

func validSignUp() SignUpRequest {
	return SignUpRequest{
		FullName:        "Marie Tremblay",
		Email:           " Marie@Example.com ",
		PhoneNumber:     "+1 514 555 0100",
		Password:        "motdepasse1",
		ConfirmPassword: "motdepasse1",
		Role:            domain.RoleCleaner,
	}
}

func TestService_SignUp_PasswordMismatchNeverTouchesStorage(t *testing.T) {
	svc, m := newMockedService()

	req := validSignUp()
	req.ConfirmPassword = "something-else"

	session, err := svc.SignUp(context.Background(), req, ClientMeta{})

	assert.Nil(t, session)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	m.users.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	m.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.jwt.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestService_SignUp_Success(t *testing.T) {
	svc, m := newMockedService()

	m.users.On("ExistsByEmail", mock.Anything, "marie@example.com").Return(false, nil)
	m.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User"), "fr").
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 7
		}).
		Return(nil)
	m.jwt.On("GenerateToken", int64(7), "cleaner").Return("access-token", nil)
	m.tokens.On("Create", mock.Anything, mock.MatchedBy(func(t *domain.RefreshToken) bool {
		return t.UserID == 7 && t.FamilyID != "" && len(t.TokenHash) == 64
	})).Return(nil)
	m.tokens.On("TrimActive", mock.Anything, int64(7), maxActiveSessions, mock.Anything).Return(nil)

	session, err := svc.SignUp(context.Background(), validSignUp(), ClientMeta{Locale: "fr", UserAgent: "test"})
	require.NoError(t, err)

	assert.Equal(t, "access-token", session.AccessToken)
	assert.Len(t, session.RefreshToken, 64)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, int64(900), session.ExpiresIn)
	assert.Equal(t, "marie@example.com", session.User.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(session.User.PasswordHash), []byte("motdepasse1")))

	m.users.AssertExpectations(t)
	m.tokens.AssertExpectations(t)
	m.jwt.AssertExpectations(t)
}

func TestService_SignUp_EmailTaken(t *testing.T) {
	svc, m := newMockedService()
	m.users.On("ExistsByEmail", mock.Anything, "marie@example.com").Return(true, nil)

	_, err := svc.SignUp(context.Background(), validSignUp(), ClientMeta{})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SignUp_InvalidRole(t *testing.T) {
	svc, m := newMockedService()
	req := validSignUp()
	req.Role = "admin"

	_, err := svc.SignUp(context.Background(), req, ClientMeta{})

	assert.ErrorIs(t, err, ErrInvalidRole)
	m.users.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
}

func TestService_SignIn_WrongPassword(t *testing.T) {
	svc, m := newMockedService()
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	m.users.On("GetByEmail", mock.Anything, "marie@example.com").
		Return(&domain.User{ID: 7, Email: "marie@example.com", PasswordHash: string(hash), Role: domain.RoleCleaner}, nil)

	_, err := svc.SignIn(context.Background(), SignInRequest{Email: "marie@example.com", Password: "wrong"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	m.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_SignIn_UnknownEmail(t *testing.T) {
	svc, m := newMockedService()
	m.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)

	_, err := svc.SignIn(context.Background(), SignInRequest{Email: "ghost@example.com", Password: "x"}, ClientMeta{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	svc, m := newMockedService()
	m.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)

	err := svc.RequestPasswordReset(context.Background(), "ghost@example.com", "en")

	assert.NoError(t, err)
	m.resets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.sender.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RequestPasswordReset_DispatchFailureIsSwallowed(t *testing.T) {
	svc, m := newMockedService()
	user := &domain.User{ID: 3, Email: "paul@example.com"}
	m.users.On("GetByEmail", mock.Anything, "paul@example.com").Return(user, nil)
	m.resets.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.PasswordReset) bool {
		return r.UserID == 3 && r.ExpiresAt.After(time.Now())
	})).Return(nil)
	m.sender.On("SendPasswordReset", mock.Anything, user, mock.AnythingOfType("string"), "fr").
		Return(errors.New("function timeout"))

	err := svc.RequestPasswordReset(context.Background(), "paul@example.com", "fr")

	assert.NoError(t, err)
	m.resets.AssertExpectations(t)
	m.sender.AssertExpectations(t)
}

func TestService_ResetPassword_MismatchFirst(t *testing.T) {
	svc, m := newMockedService()

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: "t", Password: "abcdefgh", ConfirmPassword: "abcdefgx"})

	assert.ErrorIs(t, err, ErrPasswordMismatch)
	m.resets.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ResetPassword_RevokesSessions(t *testing.T) {
	svc, m := newMockedService()
	m.resets.On("Consume", mock.Anything, hashTokenWithPepper("code", "pepper"), mock.Anything).Return(int64(3), nil)
	m.users.On("UpdatePassword", mock.Anything, int64(3), mock.AnythingOfType("string")).Return(nil)
	m.tokens.On("RevokeAllForUser", mock.Anything, int64(3), mock.Anything).Return(nil)

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: "code", Password: "newpassword", ConfirmPassword: "newpassword"})

	require.NoError(t, err)
	m.users.AssertExpectations(t)
	m.tokens.AssertExpectations(t)
}
