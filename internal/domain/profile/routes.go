package profile

import (
	"github.com/gin-gonic/gin"

	"housie/internal/domain"
	"housie/internal/middleware"
)

func RegisterPublicRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/cleaners/:id", handler.GetCleaner)
}

func RegisterProtectedRoutes(r *gin.RouterGroup, handler *Handler) {
	p := r.Group("/profile")
	{
		p.GET("", handler.GetProfile)
		p.PUT("", handler.UpdateProfile)
		p.GET("/cleaner", handler.GetCleanerProfile)
		p.PUT("/cleaner", middleware.CleanerOnly(), handler.SaveCleanerProfile)
		p.GET("/customer", handler.GetCustomerProfile)
		p.PUT("/customer", middleware.RequireRole(string(domain.RoleCustomer)), handler.SaveCustomerProfile)
	}
}
