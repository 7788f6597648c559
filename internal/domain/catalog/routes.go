package catalog

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/categories", handler.GetCategories)
	r.GET("/cleaners", handler.SearchCleaners)
}
