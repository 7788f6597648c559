package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"housie/internal/middleware"
	"housie/internal/pkg/i18n"
	"housie/internal/pkg/response"
	"housie/internal/pkg/validator"
)

// Handler handles HTTP requests for the chat domain
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListConversations godoc
// @Summary List my conversations
// @Description Newest activity first, with last message preview and unread count.
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=[]ConversationSummary}
// @Router /conversations [get]
func (h *Handler) ListConversations(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	convs, err := h.service.LoadConversations(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, convs)
}

// StartConversation godoc
// @Summary Message a user for the first time
// @Description Reuses the existing conversation between the pair when there is one.
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body StartConversationRequest true "Recipient and first message"
// @Success 201 {object} response.Response{data=StartResult}
// @Failure 422 {object} response.Response
// @Router /conversations [post]
func (h *Handler) StartConversation(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req StartConversationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.service.StartConversation(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.Success(c, status, result)
}

// GetMessages godoc
// @Summary Messages of a conversation, oldest first
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} response.Response{data=[]domain.ChatMessage}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /conversations/{id}/messages [get]
func (h *Handler) GetMessages(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	msgs, err := h.service.LoadMessages(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, msgs)
}

// SendMessage godoc
// @Summary Send a message
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param body body SendMessageRequest true "Message"
// @Success 201 {object} response.Response{data=domain.ChatMessage}
// @Failure 422 {object} response.Response
// @Router /conversations/{id}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, msg)
}

// MarkAsRead godoc
// @Summary Mark the other party's messages as read
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} response.Response{data=ReadResult}
// @Router /conversations/{id}/read [post]
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	result, err := h.service.MarkMessagesAsRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func handleError(c *gin.Context, err error) {
	switch {
	case IsClientError(err):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(middleware.LocaleFrom(c), i18n.MsgValidationFailed), map[string]string{"content": err.Error()})
	case errors.Is(err, ErrConversationNotFound):
		response.Error(c, http.StatusNotFound, "CONVERSATION_NOT_FOUND", "Conversation not found")
	case errors.Is(err, ErrNotParticipant):
		response.Error(c, http.StatusForbidden, "NOT_PARTICIPANT", err.Error())
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, ErrCannotChatSelf):
		response.Error(c, http.StatusBadRequest, "CANNOT_CHAT_SELF", err.Error())
	case errors.Is(err, ErrRolePair):
		response.Error(c, http.StatusBadRequest, "INVALID_PARTICIPANTS", err.Error())
	default:
		response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			i18n.T(middleware.LocaleFrom(c), i18n.MsgValidationFailed), errs)
		return false
	}
	return true
}

func mustUserID(c *gin.Context) (int64, bool) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return 0, false
	}
	return userID, true
}
