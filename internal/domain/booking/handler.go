package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"housie/internal/domain"
	"housie/internal/middleware"
	"housie/internal/pkg/i18n"
	"housie/internal/pkg/response"
	"housie/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateBooking godoc
// @Summary Request a booking
// @Description Creates a pending booking with an estimated price and notifies the cleaner.
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookingRequest true "Booking"
// @Success 201 {object} response.Response{data=domain.Booking}
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(middleware.LocaleFrom(c), i18n.MsgValidationFailed), errs)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, b)
}

// ListBookings godoc
// @Summary My bookings
// @Description Customers see the bookings they made; cleaners see bookings addressed to them.
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.Booking}
// @Router /bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	list, err := h.service.ListBookings(c.Request.Context(), userID, domain.UserRole(c.GetString("role")))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, list)
}

// GetBooking godoc
// @Summary Get one booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response{data=domain.Booking}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings/{id} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), userID, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

// EstimatePrice godoc
// @Summary Price quote
// @Tags Bookings
// @Produce json
// @Param service_type query string true "Service type slug"
// @Param hours query number false "Hours of work; defaults to the typical duration"
// @Success 200 {object} response.Response{data=Estimate}
// @Failure 400 {object} response.Response
// @Router /pricing/estimate [get]
func (h *Handler) EstimatePrice(c *gin.Context) {
	var hours float64
	if raw := c.Query("hours"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_HOURS", "hours must be a number")
			return
		}
		hours = v
	}

	est, err := h.service.EstimatePrice(c.Request.Context(), c.Query("service_type"), hours)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, est)
}

func handleError(c *gin.Context, err error) {
	locale := middleware.LocaleFrom(c)

	var missing *MissingFieldError
	switch {
	case errors.As(err, &missing):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgMissingField, missing.Field), map[string]string{missing.Field: "required"})
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrDateInPast):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgValidationFailed), map[string]string{"booking_date": err.Error()})
	case errors.Is(err, ErrInvalidTime):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgValidationFailed), map[string]string{"booking_time": err.Error()})
	case errors.Is(err, ErrInvalidPhone):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgValidationFailed), map[string]string{"phone": "phone"})
	case errors.Is(err, ErrUnknownService):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(locale, i18n.MsgValidationFailed), map[string]string{"service_type": "unknown"})
	case errors.Is(err, ErrServiceTypeNeeded), errors.Is(err, ErrInvalidHours):
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
	case errors.Is(err, ErrNotCustomer):
		response.Error(c, http.StatusForbidden, "NOT_CUSTOMER", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.Is(err, ErrCleanerNotFound):
		response.Error(c, http.StatusNotFound, "CLEANER_NOT_FOUND", "Cleaner not found")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
}

func mustUserID(c *gin.Context) (int64, bool) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return 0, false
	}
	return userID, true
}
