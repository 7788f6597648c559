package presence

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	p := r.Group("/presence")
	{
		p.GET("", handler.GetPresence)
		p.POST("/heartbeat", handler.Heartbeat)
		p.POST("/offline", handler.Offline)
	}
}
