package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"housie/internal/middleware"
	"housie/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetCategories godoc
// @Summary Service category tree
// @Description Names are returned in the negotiated locale (?lang=fr or Accept-Language).
// @Tags Catalog
// @Produce json
// @Param lang query string false "en or fr"
// @Success 200 {object} response.Response{data=[]CategoryView}
// @Router /categories [get]
func (h *Handler) GetCategories(c *gin.Context) {
	response.Success(c, http.StatusOK, h.service.Taxonomy().Tree(middleware.LocaleFrom(c)))
}

// SearchCleaners godoc
// @Summary Browse and search cleaners
// @Tags Catalog
// @Produce json
// @Param q query string false "Free text over name, bio, city and services"
// @Param category query string false "Category slug; descendants match too"
// @Param lat query number false "Latitude"
// @Param lng query number false "Longitude"
// @Param use_my_location query bool false "Use the default coordinate when the browser shares none"
// @Param location query string false "Free-text location, geocoded"
// @Param radius_km query number false "Search radius in km"
// @Success 200 {object} response.Response{data=SearchResult}
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /cleaners [get]
func (h *Handler) SearchCleaners(c *gin.Context) {
	q := SearchQuery{
		Text:     strings.TrimSpace(c.Query("q")),
		Category: strings.TrimSpace(c.Query("category")),
		Location: c.Query("location"),
	}

	var ok bool
	if q.Lat, ok = parseFloatQuery(c, "lat"); !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_LAT", "lat must be a number")
		return
	}
	if q.Lng, ok = parseFloatQuery(c, "lng"); !ok {
		response.Error(c, http.StatusBadRequest, "INVALID_LNG", "lng must be a number")
		return
	}
	if raw := c.Query("radius_km"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > 500 {
			response.Error(c, http.StatusBadRequest, "INVALID_RADIUS", "radius_km must be between 0 and 500")
			return
		}
		q.RadiusKM = v
	}
	q.UseMyLocation, _ = strconv.ParseBool(c.Query("use_my_location"))

	result, err := h.service.SearchCleaners(c.Request.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownCategory):
			response.Error(c, http.StatusBadRequest, "UNKNOWN_CATEGORY", "Unknown category")
		case errors.Is(err, ErrInvalidLocation):
			response.Error(c, http.StatusBadRequest, "INVALID_LOCATION", err.Error())
		default:
			response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

func parseFloatQuery(c *gin.Context, key string) (*float64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
