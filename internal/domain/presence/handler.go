package presence

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"housie/internal/domain"
	"housie/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Heartbeat godoc
// @Summary Refresh my online status
// @Tags Presence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /presence/heartbeat [post]
func (h *Handler) Heartbeat(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.service.Heartbeat(c.Request.Context(), userID); err != nil {
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"is_online": true})
}

// Offline godoc
// @Summary Mark me offline
// @Tags Presence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /presence/offline [post]
func (h *Handler) Offline(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	if err := h.service.Offline(c.Request.Context(), userID); err != nil {
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"is_online": false})
}

// GetPresence godoc
// @Summary Presence for a batch of users
// @Tags Presence
// @Produce json
// @Security BearerAuth
// @Param user_ids query string true "Comma-separated user IDs"
// @Success 200 {object} response.Response{data=[]domain.UserPresence}
// @Failure 400 {object} response.Response
// @Router /presence [get]
func (h *Handler) GetPresence(c *gin.Context) {
	ids, err := parseIDs(c.Query("user_ids"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_USER_IDS", "user_ids must be comma-separated integers")
		return
	}

	snapshot, err := h.service.GetPresence(c.Request.Context(), ids)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoUserIDs), errors.Is(err, ErrTooManyUserIDs):
			response.Error(c, http.StatusBadRequest, "INVALID_USER_IDS", err.Error())
		default:
			response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		}
		return
	}

	out := make([]domain.UserPresence, 0, len(ids))
	for _, id := range ids {
		out = append(out, snapshot[id])
	}
	response.Success(c, http.StatusOK, out)
}

// parseIDs keeps the first occurrence of each id.
func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	seen := map[int64]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New("invalid id")
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
