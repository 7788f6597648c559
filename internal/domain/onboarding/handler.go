package onboarding

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"housie/internal/domain/catalog"
	"housie/internal/domain/profile"
	"housie/internal/middleware"
	"housie/internal/pkg/i18n"
	"housie/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type startRequest struct {
	Flow Flow `json:"flow"`
}

type stepRequest struct {
	Step Step           `json:"step"`
	Data map[string]any `json:"data"`
}

// Start godoc
// @Summary Open an onboarding wizard
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param request body startRequest true "find or pro"
// @Success 201 {object} response.Response{data=Session}
// @Failure 400 {object} response.Response
// @Router /onboarding [post]
func (h *Handler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	sess, err := h.service.Start(c.Request.Context(), req.Flow)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, sess)
}

// Get godoc
// @Summary Current wizard state
// @Tags Onboarding
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Response{data=Session}
// @Failure 404 {object} response.Response
// @Router /onboarding/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	sess, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, sess)
}

// GoToStep godoc
// @Summary Move the wizard one step
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body stepRequest true "Target step and data collected on the current one"
// @Success 200 {object} response.Response{data=Session}
// @Failure 422 {object} response.Response
// @Router /onboarding/{id}/step [post]
func (h *Handler) GoToStep(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	sess, err := h.service.GoToStep(c.Request.Context(), c.Param("id"), req.Step, req.Data)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, sess)
}

// Skip godoc
// @Summary Close the wizard without saving
// @Tags Onboarding
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /onboarding/{id}/skip [post]
func (h *Handler) Skip(c *gin.Context) {
	if err := h.service.Skip(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"closed": true})
}

// Complete godoc
// @Summary Finish the wizard
// @Description The find flow returns search results; the pro flow saves the signed-in cleaner's profile.
// @Tags Onboarding
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Response{data=CompleteResult}
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /onboarding/{id}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	result, err := h.service.Complete(c.Request.Context(), c.Param("id"), c.GetInt64("user_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func handleError(c *gin.Context, err error) {
	locale := middleware.LocaleFrom(c)

	var missing *MissingDataError
	var invalid *InvalidDataError
	switch {
	case errors.As(err, &missing):
		details := make(map[string]string, len(missing.Keys))
		for _, k := range missing.Keys {
			details[k] = "required"
		}
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgMissingField, missing.Keys[0]), details)
	case errors.As(err, &invalid):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgValidationFailed), invalid.Fields)
	case errors.Is(err, ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error())
	case errors.Is(err, ErrTooManySessions):
		response.Error(c, http.StatusServiceUnavailable, "SESSIONS_EXHAUSTED", err.Error())
	case errors.Is(err, ErrUnknownFlow), errors.Is(err, ErrUnknownStep), errors.Is(err, ErrStepNotAdjacent):
		response.Error(c, http.StatusBadRequest, "INVALID_STEP", err.Error())
	case errors.Is(err, ErrNotFinished):
		response.Error(c, http.StatusConflict, "WIZARD_NOT_FINISHED", err.Error())
	case errors.Is(err, ErrAuthRequired):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	case errors.Is(err, profile.ErrRoleMismatch):
		response.Error(c, http.StatusForbidden, "ROLE_MISMATCH", "Only cleaners can publish a provider profile")
	case errors.Is(err, catalog.ErrUnknownCategory):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgValidationFailed), map[string]string{"service": "unknown"})
	case errors.Is(err, catalog.ErrInvalidLocation), errors.Is(err, profile.ErrInvalidLocation):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgValidationFailed), map[string]string{"lat": "range", "lng": "range"})
	case errors.Is(err, profile.ErrUnknownService):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgValidationFailed), map[string]string{"services": "unknown"})
	default:
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
}
