package geo

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"housie/internal/pkg/response"
)

type Handler struct {
	geocoder Geocoder
}

func NewHandler(geocoder Geocoder) *Handler {
	return &Handler{geocoder: geocoder}
}

// Geocode godoc
// @Summary Geocode a free-text location
// @Description Proxies the configured geocoder so provider keys stay on the server.
// @Tags Geo
// @Produce json
// @Param q query string true "Address or city"
// @Success 200 {object} response.Response{data=Location}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /geocode [get]
func (h *Handler) Geocode(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error(c, http.StatusBadRequest, "QUERY_REQUIRED", "Query parameter q is required")
		return
	}

	loc, err := h.geocoder.Geocode(c.Request.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "LOCATION_NOT_FOUND", "Location not found")
		case errors.Is(err, ErrUnavailable):
			log.Printf("geocode: provider=%s query=%q err=%v", h.geocoder.Name(), q, err)
			response.Error(c, http.StatusBadGateway, "GEOCODER_UNAVAILABLE", "Geocoding service unavailable")
		default:
			response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		}
		return
	}

	response.Success(c, http.StatusOK, loc)
}
