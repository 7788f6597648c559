package chat

import "github.com/gin-gonic/gin"

// RegisterRoutes registers all chat routes under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	convs := r.Group("/conversations")
	{
		convs.GET("", h.ListConversations)
		convs.POST("", h.StartConversation)

		convs.GET("/:id/messages", h.GetMessages)
		convs.POST("/:id/messages", h.SendMessage)
		convs.POST("/:id/read", h.MarkAsRead)
	}
}
