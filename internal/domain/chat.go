package domain

import "time"

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

func (t MessageType) Valid() bool {
	return t == MessageTypeText || t == MessageTypeImage
}

// Conversation pairs exactly one customer with one cleaner. It is created
// implicitly by the first message between them.
type Conversation struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	CustomerID    int64     `json:"customer_id" gorm:"not null;uniqueIndex:idx_conversation_pair"`
	CleanerID     int64     `json:"cleaner_id" gorm:"not null;uniqueIndex:idx_conversation_pair;index"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) HasParticipant(userID int64) bool {
	return c.CustomerID == userID || c.CleanerID == userID
}

func (c *Conversation) Counterpart(userID int64) int64 {
	if c.CustomerID == userID {
		return c.CleanerID
	}
	return c.CustomerID
}

// ChatMessage is immutable once written, except for is_read going false to true.
type ChatMessage struct {
	ID             string      `json:"id" gorm:"primaryKey;size:36"`
	ConversationID string      `json:"conversation_id" gorm:"size:36;not null;index:idx_messages_conversation_created,priority:1"`
	SenderID       int64       `json:"sender_id" gorm:"not null;index"`
	Content        string      `json:"content" gorm:"type:text;not null"`
	MessageType    MessageType `json:"message_type" gorm:"size:16;not null;default:text"`
	IsRead         bool        `json:"is_read" gorm:"not null;default:false"`
	CreatedAt      time.Time   `json:"created_at" gorm:"index:idx_messages_conversation_created,priority:2"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
