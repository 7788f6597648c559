package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"housie/internal/middleware"
	"housie/internal/pkg/i18n"
	"housie/internal/pkg/response"
	"housie/internal/pkg/validator"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SignUp godoc
// @Summary Create an account
// @Description Creates a customer or cleaner account and opens a session.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Sign-up form"
// @Success 201 {object} response.Response{data=Session}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /auth/signup [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.service.SignUp(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, session)
}

// SignIn godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} response.Response{data=Session}
// @Failure 401 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /auth/signin [post]
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.service.SignIn(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// SignOut godoc
// @Summary Revoke a refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response
// @Router /auth/signout [post]
func (h *Handler) SignOut(c *gin.Context) {
	var req RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.service.SignOut(c.Request.Context(), req.RefreshToken); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Signed out"})
}

// Refresh godoc
// @Summary Rotate the refresh token
// @Description Each refresh token works once. Presenting a spent token revokes every token of that sign-in.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} response.Response{data=Session}
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.service.Refresh(c.Request.Context(), req.RefreshToken, clientMeta(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// GetSession godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=domain.User}
// @Failure 401 {object} response.Response
// @Router /auth/session [get]
func (h *Handler) GetSession(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", i18n.T(middleware.LocaleFrom(c), i18n.MsgUnauthorized))
		return
	}

	user, err := h.service.GetSession(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// RequestPasswordReset godoc
// @Summary Send a password reset code
// @Description Always succeeds so that registered emails cannot be discovered.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Email"
// @Success 202 {object} response.Response
// @Router /auth/password/reset-request [post]
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email, middleware.LocaleFrom(c)); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"message": "If the email is registered, a reset code was sent"})
}

// ResetPassword godoc
// @Summary Set a new password with a reset code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset code and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /auth/password/reset [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password updated"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	locale := middleware.LocaleFrom(c)

	switch {
	case errors.Is(err, ErrPasswordMismatch):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "PASSWORD_MISMATCH",
			i18n.T(locale, i18n.MsgPasswordMismatch), map[string]string{"confirm_password": "eqfield"})
	case errors.Is(err, ErrInvalidRole):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_ROLE", err.Error())
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, ErrInvalidRefreshToken):
		response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired")
	case errors.Is(err, ErrRefreshTokenReused):
		response.Error(c, http.StatusUnauthorized, "REFRESH_TOKEN_REUSED", "Session revoked, please sign in again")
	case errors.Is(err, ErrInvalidResetToken):
		response.Error(c, http.StatusBadRequest, "INVALID_RESET_TOKEN", "Reset code is invalid or expired")
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", i18n.T(locale, i18n.MsgInternalError))
	}
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(middleware.LocaleFrom(c), i18n.MsgValidationFailed), errs)
		return false
	}
	return true
}

func clientMeta(c *gin.Context) ClientMeta {
	return ClientMeta{
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
		Locale:    middleware.LocaleFrom(c),
	}
}
