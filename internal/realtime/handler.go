package realtime

import (
	"log"
	"net/http"
	"slices"

	"housie/internal/pkg/jwt"
	"housie/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type TokenValidator interface {
	ValidateToken(tokenStr string) (*jwt.Claims, error)
}

type Handler struct {
	hub      *Hub
	tokens   TokenValidator
	upgrader websocket.Upgrader
}

// NewHandler accepts sockets from the given origins. An empty list allows
// any origin, which is only meant for local development.
func NewHandler(hub *Hub, tokens TokenValidator, allowedOrigins []string) *Handler {
	return &Handler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/realtime", h.Connect)
}

// Connect godoc
// @Summary Open the realtime change feed
// @Description Browsers cannot set headers on websocket upgrades, so the access token travels as ?token=.
// @Tags Realtime
// @Param token query string true "Access token"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} response.Response
// @Router /realtime [get]
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "TOKEN_REQUIRED", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("realtime: upgrade failed user_id=%d err=%v", claims.UserID, err)
		return
	}

	h.hub.ServeWS(conn, claims.UserID)
}
