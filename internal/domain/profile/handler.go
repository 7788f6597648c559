package profile

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"housie/internal/pkg/i18n"
	"housie/internal/middleware"
	"housie/internal/pkg/response"
	"housie/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetProfile godoc
// @Summary Get my profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=ProfileView}
// @Failure 401 {object} response.Response
// @Router /profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	view, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// UpdateProfile godoc
// @Summary Update my base profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} response.Response{data=domain.User}
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// GetCleanerProfile godoc
// @Summary Get my cleaner profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=domain.CleanerProfile}
// @Failure 404 {object} response.Response
// @Router /profile/cleaner [get]
func (h *Handler) GetCleanerProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	p, err := h.service.GetCleanerProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// SaveCleanerProfile godoc
// @Summary Create or replace my cleaner profile
// @Description The address is geocoded when latitude and longitude are omitted.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CleanerProfileRequest true "Cleaner profile"
// @Success 200 {object} response.Response{data=domain.CleanerProfile}
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /profile/cleaner [put]
func (h *Handler) SaveCleanerProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CleanerProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	p, err := h.service.SaveCleanerProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// GetCustomerProfile godoc
// @Summary Get my customer profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=domain.CustomerProfile}
// @Failure 404 {object} response.Response
// @Router /profile/customer [get]
func (h *Handler) GetCustomerProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	p, err := h.service.GetCustomerProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// SaveCustomerProfile godoc
// @Summary Create or replace my customer profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CustomerProfileRequest true "Customer profile"
// @Success 200 {object} response.Response{data=domain.CustomerProfile}
// @Failure 403 {object} response.Response
// @Router /profile/customer [put]
func (h *Handler) SaveCustomerProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CustomerProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	p, err := h.service.SaveCustomerProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// GetCleaner godoc
// @Summary Public cleaner profile
// @Tags Catalog
// @Produce json
// @Param id path int true "Cleaner user ID"
// @Success 200 {object} response.Response{data=domain.Cleaner}
// @Failure 404 {object} response.Response
// @Router /cleaners/{id} [get]
func (h *Handler) GetCleaner(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid cleaner ID")
		return
	}

	cleaner, err := h.service.GetCleaner(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cleaner)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, ErrCleanerNotFound):
		response.Error(c, http.StatusNotFound, "CLEANER_NOT_FOUND", "Cleaner not found")
	case errors.Is(err, ErrProfileNotFound):
		response.Error(c, http.StatusNotFound, "PROFILE_NOT_FOUND", "Profile not created yet")
	case errors.Is(err, ErrRoleMismatch):
		response.Error(c, http.StatusForbidden, "ROLE_MISMATCH", "This profile does not match your role")
	case errors.Is(err, ErrUnknownService):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(middleware.LocaleFrom(c), i18n.MsgValidationFailed), map[string]string{"services": "unknown"})
	case errors.Is(err, ErrInvalidLocation):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(middleware.LocaleFrom(c), i18n.MsgValidationFailed), map[string]string{"latitude": "range", "longitude": "range"})
	case errors.Is(err, ErrNothingToUpdate):
		response.Error(c, http.StatusBadRequest, "NOTHING_TO_UPDATE", "No fields to update")
	default:
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
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

func mustUserID(c *gin.Context) (int64, bool) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return 0, false
	}
	return userID, true
}
