package chat

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"housie/internal/database"
	"housie/internal/domain"
	"housie/internal/metrics"
	"housie/internal/pkg/validator"
	"housie/internal/realtime"
)

const (
	maxContentLength = 4000
	loadTimeout      = 10 * time.Second
)

// MessageNotifier is implemented by the notification service.
type MessageNotifier interface {
	NotifyNewMessage(ctx context.Context, recipientID int64, senderName, conversationID string) error
}

// Service handles chat business logic
type Service struct {
	repo      Repository
	publisher realtime.Publisher
	notifier  MessageNotifier
	now       func() time.Time

	// coalesces identical conversation-list loads fired by bursts of change events
	loads singleflight.Group
}

func NewService(repo Repository, publisher realtime.Publisher, notifier MessageNotifier) *Service {
	return &Service{repo: repo, publisher: publisher, notifier: notifier, now: time.Now}
}

// ---- Conversation list ----

// LoadConversations returns every conversation of the user, newest activity
// first. Callers share the result of concurrent loads and must not mutate it.
// The shared load outlives any single caller; each caller stops waiting when
// its own ctx is done.
func (s *Service) LoadConversations(ctx context.Context, userID int64) ([]ConversationSummary, error) {
	ch := s.loads.DoChan(strconv.FormatInt(userID, 10), func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.loadConversations(loadCtx, userID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]ConversationSummary), nil
	}
}

func (s *Service) loadConversations(ctx context.Context, userID int64) ([]ConversationSummary, error) {
	convs, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(convs))
	counterparts := make([]int64, len(convs))
	for i := range convs {
		ids[i] = convs[i].ID
		counterparts[i] = convs[i].Counterpart(userID)
	}

	last, err := s.repo.LastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCounts(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.UserNames(ctx, counterparts)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationSummary, len(convs))
	for i, conv := range convs {
		sum := ConversationSummary{
			Conversation:    conv,
			CounterpartID:   counterparts[i],
			CounterpartName: names[counterparts[i]],
			UnreadCount:     unread[conv.ID],
		}
		if m, ok := last[conv.ID]; ok {
			sum.LastMessage = &m
		}
		out[i] = sum
	}
	return out, nil
}

// ---- Thread ----

func (s *Service) LoadMessages(ctx context.Context, userID int64, conversationID string) ([]domain.ChatMessage, error) {
	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, conversationID)
}

func (s *Service) SendMessage(ctx context.Context, userID int64, conversationID string, req SendMessageRequest) (*domain.ChatMessage, error) {
	content, typ, err := normalizeMessage(req.Content, req.MessageType)
	if err != nil {
		return nil, err
	}

	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, conv, userID, content, typ)
}

// StartConversation finds or creates the customer/cleaner conversation and
// sends the first message into it.
func (s *Service) StartConversation(ctx context.Context, userID int64, req StartConversationRequest) (*StartResult, error) {
	if userID == req.RecipientID {
		return nil, ErrCannotChatSelf
	}
	content, typ, err := normalizeMessage(req.Content, req.MessageType)
	if err != nil {
		return nil, err
	}

	sender, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.repo.GetUser(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}

	var customerID, cleanerID int64
	switch {
	case sender.Role == domain.RoleCustomer && recipient.Role == domain.RoleCleaner:
		customerID, cleanerID = sender.ID, recipient.ID
	case sender.Role == domain.RoleCleaner && recipient.Role == domain.RoleCustomer:
		customerID, cleanerID = recipient.ID, sender.ID
	default:
		return nil, ErrRolePair
	}

	conv, created, err := s.findOrCreate(ctx, customerID, cleanerID)
	if err != nil {
		return nil, err
	}

	msg, err := s.send(ctx, conv, userID, content, typ)
	if err != nil {
		return nil, err
	}
	conv.LastMessageAt = msg.CreatedAt
	return &StartResult{Conversation: conv, Message: msg, Created: created}, nil
}

// MarkMessagesAsRead flags the other party's unread messages as read.
func (s *Service) MarkMessagesAsRead(ctx context.Context, userID int64, conversationID string) (*ReadResult, error) {
	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	n, err := s.repo.MarkRead(ctx, conversationID, userID, now)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		s.publish(ctx, realtime.NewChange(realtime.TableConversations, realtime.EventUpdate, conv, conv.CustomerID, conv.CleanerID))
	}
	return &ReadResult{Updated: n, ReadAt: now}, nil
}

func (s *Service) findOrCreate(ctx context.Context, customerID, cleanerID int64) (*domain.Conversation, bool, error) {
	conv, err := s.repo.FindConversation(ctx, customerID, cleanerID)
	if err != nil || conv != nil {
		return conv, false, err
	}

	now := s.now()
	conv = &domain.Conversation{
		ID:            uuid.New().String(),
		CustomerID:    customerID,
		CleanerID:     cleanerID,
		LastMessageAt: now,
		CreatedAt:     now,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		// lost a race with the other participant
		if database.IsUniqueViolation(err) {
			existing, findErr := s.repo.FindConversation(ctx, customerID, cleanerID)
			if findErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	s.publish(ctx, realtime.NewChange(realtime.TableConversations, realtime.EventInsert, conv, customerID, cleanerID))
	return conv, true, nil
}

func (s *Service) send(ctx context.Context, conv *domain.Conversation, senderID int64, content string, typ domain.MessageType) (*domain.ChatMessage, error) {
	now := s.now()
	msg := &domain.ChatMessage{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    typ,
		IsRead:         false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	bumped := *conv
	bumped.LastMessageAt = now
	s.publish(ctx, realtime.NewChange(realtime.TableChatMessages, realtime.EventInsert, msg, conv.CustomerID, conv.CleanerID))
	s.publish(ctx, realtime.NewChange(realtime.TableConversations, realtime.EventUpdate, bumped, conv.CustomerID, conv.CleanerID))

	s.notify(ctx, conv.Counterpart(senderID), senderID, conv.ID)
	return msg, nil
}

func (s *Service) notify(ctx context.Context, recipientID, senderID int64, conversationID string) {
	if s.notifier == nil {
		return
	}

	senderName := ""
	if sender, err := s.repo.GetUser(ctx, senderID); err == nil {
		senderName = sender.FullName
	}
	if err := s.notifier.NotifyNewMessage(ctx, recipientID, senderName, conversationID); err != nil {
		metrics.NotificationFailures.WithLabelValues("new_message").Inc()
		log.Printf("chat: new message notification failed conversation_id=%s recipient_id=%d err=%v", conversationID, recipientID, err)
	}
}

func (s *Service) participantConversation(ctx context.Context, userID int64, conversationID string) (*domain.Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

func (s *Service) publish(ctx context.Context, ch realtime.Change) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ch); err != nil {
		log.Printf("chat: publish failed table=%s type=%s err=%v", ch.Table, ch.Type, err)
	}
}

func normalizeMessage(content string, typ domain.MessageType) (string, domain.MessageType, error) {
	content = strings.TrimSpace(content)
	if typ == "" {
		typ = domain.MessageTypeText
	}

	switch {
	case content == "":
		return "", "", ErrEmptyContent
	case !typ.Valid():
		return "", "", ErrInvalidMessageType
	case utf8.RuneCountInString(content) > maxContentLength:
		return "", "", ErrContentTooLong
	case typ == domain.MessageTypeImage && !validator.IsHTTPURL(content):
		return "", "", ErrInvalidImageURL
	}
	return content, typ, nil
}

// IsClientError reports whether err is caused by the request rather than the server.
func IsClientError(err error) bool {
	for _, target := range []error{ErrEmptyContent, ErrInvalidMessageType, ErrInvalidImageURL, ErrContentTooLong} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
