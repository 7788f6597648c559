package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"housie/internal/domain"
)

// Repository handles all DB operations for the chat domain
type Repository interface {
	// Conversations
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	FindConversation(ctx context.Context, customerID, cleanerID int64) (*domain.Conversation, error)
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error)

	// Messages
	CreateMessage(ctx context.Context, msg *domain.ChatMessage) error
	ListMessages(ctx context.Context, conversationID string) ([]domain.ChatMessage, error)
	LastMessages(ctx context.Context, conversationIDs []string) (map[string]domain.ChatMessage, error)
	UnreadCounts(ctx context.Context, userID int64, conversationIDs []string) (map[string]int64, error)
	MarkRead(ctx context.Context, conversationID string, readerID int64, now time.Time) (int64, error)

	// Users
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UserNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	return &conv, err
}

// FindConversation returns nil, nil when the pair has never talked.
func (r *repository) FindConversation(ctx context.Context, customerID, cleanerID int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND cleaner_id = ?", customerID, cleanerID).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &conv, err
}

func (r *repository) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *repository) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ? OR cleaner_id = ?", userID, userID).
		Order("last_message_at DESC").
		Order("id").
		Find(&convs).Error
	return convs, err
}

// CreateMessage inserts the message and bumps last_message_at in one transaction.
func (r *repository) CreateMessage(ctx context.Context, msg *domain.ChatMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", msg.CreatedAt).Error
	})
}

func (r *repository) ListMessages(ctx context.Context, conversationID string) ([]domain.ChatMessage, error) {
	var msgs []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id").
		Find(&msgs).Error
	return msgs, err
}

func (r *repository) LastMessages(ctx context.Context, conversationIDs []string) (map[string]domain.ChatMessage, error) {
	out := make(map[string]domain.ChatMessage, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}

	var msgs []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id IN ?", conversationIDs).
		Where("created_at = (SELECT MAX(m2.created_at) FROM chat_messages m2 WHERE m2.conversation_id = chat_messages.conversation_id)").
		Order("created_at DESC, id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	// messages sharing the latest timestamp: the first row wins
	for _, m := range msgs {
		if _, ok := out[m.ConversationID]; !ok {
			out[m.ConversationID] = m
		}
	}
	return out, nil
}

func (r *repository) UnreadCounts(ctx context.Context, userID int64, conversationIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		ConversationID string
		N              int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Select("conversation_id, COUNT(*) AS n").
		Where("conversation_id IN ? AND sender_id <> ? AND is_read = ?", conversationIDs, userID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ConversationID] = row.N
	}
	return out, nil
}

// MarkRead only touches unread messages the reader did not send.
func (r *repository) MarkRead(ctx context.Context, conversationID string, readerID int64, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]any{"is_read": true, "updated_at": now})
	return res.RowsAffected, res.Error
}

func (r *repository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &u, err
}

func (r *repository) UserNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []domain.User
	if err := r.db.WithContext(ctx).Select("id", "full_name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.FullName
	}
	return out, nil
}
