package auth

import "github.com/gin-gonic/gin"

func RegisterPublicRoutes(v1 *gin.RouterGroup, handler *Handler) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", handler.SignUp)
		authGroup.POST("/signin", handler.SignIn)
		authGroup.POST("/signout", handler.SignOut)
		authGroup.POST("/refresh", handler.Refresh)
		authGroup.POST("/password/reset-request", handler.RequestPasswordReset)
		authGroup.POST("/password/reset", handler.ResetPassword)
	}
}

func RegisterProtectedRoutes(protected *gin.RouterGroup, handler *Handler) {
	protected.GET("/auth/session", handler.GetSession)
}
