package chat

import (
	"time"

	"housie/internal/domain"
)

type SendMessageRequest struct {
	Content     string             `json:"content" validate:"required"`
	MessageType domain.MessageType `json:"message_type"`
}

type StartConversationRequest struct {
	RecipientID int64              `json:"recipient_id" validate:"required,gt=0"`
	Content     string             `json:"content" validate:"required"`
	MessageType domain.MessageType `json:"message_type"`
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	domain.Conversation
	CounterpartID   int64               `json:"counterpart_id"`
	CounterpartName string              `json:"counterpart_name"`
	LastMessage     *domain.ChatMessage `json:"last_message,omitempty"`
	UnreadCount     int64               `json:"unread_count"`
}

type StartResult struct {
	Conversation *domain.Conversation `json:"conversation"`
	Message      *domain.ChatMessage  `json:"message"`
	Created      bool                 `json:"created"`
}

type ReadResult struct {
	Updated int64     `json:"updated"`
	ReadAt  time.Time `json:"read_at"`
}
