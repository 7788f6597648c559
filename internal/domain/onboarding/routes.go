package onboarding

import "github.com/gin-gonic/gin"

// RegisterRoutes expects a group with optional auth: the wizard is open to
// anonymous visitors, and completing the pro flow reads the signed-in user.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	o := r.Group("/onboarding")
	{
		o.POST("", h.Start)
		o.GET("/:id", h.Get)
		o.POST("/:id/step", h.GoToStep)
		o.POST("/:id/skip", h.Skip)
		o.POST("/:id/complete", h.Complete)
	}
}
