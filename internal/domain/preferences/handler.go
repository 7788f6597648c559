package preferences

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"housie/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/preferences", h.Get)
	r.PUT("/preferences", h.Update)
}

// Get godoc
// @Summary My display preferences
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=domain.UserPreferences}
// @Router /preferences [get]
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	p, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// Update godoc
// @Summary Change display preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateRequest true "Fields to change"
// @Success 200 {object} response.Response{data=domain.UserPreferences}
// @Failure 422 {object} response.Response
// @Router /preferences [put]
func (h *Handler) Update(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	p, err := h.service.Update(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTheme), errors.Is(err, ErrInvalidIntensity), errors.Is(err, ErrInvalidLocale):
			response.Error(c, http.StatusUnprocessableEntity, "INVALID_PREFERENCE", err.Error())
		default:
			response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		}
		return
	}

	response.Success(c, http.StatusOK, p)
}
