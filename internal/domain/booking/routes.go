package booking

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/pricing/estimate", h.EstimatePrice)
}

func RegisterProtectedRoutes(r *gin.RouterGroup, h *Handler) {
	b := r.Group("/bookings")
	{
		b.POST("", h.CreateBooking)
		b.GET("", h.ListBookings)
		b.GET("/:id", h.GetBooking)
	}
}
