package notification

import (
	"context"
	"errors"
	"fmt"
	"log"

	"housie/internal/domain"
	"housie/internal/pkg/i18n"
	"housie/internal/realtime"
)

const (
	eventBookingCreated = "booking-notification"
	eventPasswordReset  = "password-reset"
)

type Service struct {
	repo      *NotificationRepository
	publisher realtime.Publisher
	invoker   Invoker
}

func NewService(repo *NotificationRepository, publisher realtime.Publisher, invoker Invoker) *Service {
	return &Service{repo: repo, publisher: publisher, invoker: invoker}
}

type ListResult struct {
	Notifications []domain.Notification `json:"notifications"`
	Unread        int64                 `json:"unread"`
}

func (s *Service) List(ctx context.Context, userID int64, limit int) (*ListResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListResult{Notifications: list, Unread: unread}, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// NotifyBookingCreated tells the cleaner about a new request: an in-app row,
// a realtime push and the external function. Every leg is attempted; the
// joined error reports whichever failed.
func (s *Service) NotifyBookingCreated(ctx context.Context, b *domain.Booking, customerName string) error {
	locale, err := s.repo.LocaleFor(ctx, b.CleanerID)
	if err != nil {
		locale = i18n.Default
	}

	n := &domain.Notification{
		UserID: b.CleanerID,
		Type:   domain.NotifBookingCreated,
		Title:  i18n.T(locale, i18n.MsgBookingCreated),
		Body:   i18n.T(locale, i18n.MsgBookingCreatedBody, customerName, b.ServiceType, b.BookingDate, b.BookingTime),
		Data: map[string]any{
			"booking_id":  b.ID,
			"customer_id": b.CustomerID,
		},
	}

	var errs []error
	if err := s.store(ctx, n); err != nil {
		errs = append(errs, fmt.Errorf("store notification: %w", err))
	}

	if err := s.invoker.Invoke(ctx, eventBookingCreated, map[string]any{
		"booking_id":      b.ID,
		"cleaner_id":      b.CleanerID,
		"customer_id":     b.CustomerID,
		"customer_name":   customerName,
		"service_type":    b.ServiceType,
		"booking_date":    b.BookingDate,
		"booking_time":    b.BookingTime,
		"estimated_price": b.EstimatedPrice,
		"title":           n.Title,
		"body":            n.Body,
		"locale":          locale,
	}); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// NotifyNewMessage stores an in-app notification for the recipient of a chat message.
func (s *Service) NotifyNewMessage(ctx context.Context, recipientID int64, senderName, conversationID string) error {
	locale, err := s.repo.LocaleFor(ctx, recipientID)
	if err != nil {
		locale = i18n.Default
	}

	return s.store(ctx, &domain.Notification{
		UserID: recipientID,
		Type:   domain.NotifNewMessage,
		Title:  i18n.T(locale, i18n.MsgNewMessage, senderName),
		Data:   map[string]any{"conversation_id": conversationID},
	})
}

// SendPasswordReset hands the reset code to the external function.
func (s *Service) SendPasswordReset(ctx context.Context, user *domain.User, token, locale string) error {
	if !i18n.IsSupported(locale) {
		locale = i18n.Default
	}
	return s.invoker.Invoke(ctx, eventPasswordReset, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.FullName,
		"title":   i18n.T(locale, i18n.MsgPasswordReset),
		"body":    i18n.T(locale, i18n.MsgPasswordResetBody, token),
		"locale":  locale,
	})
}

func (s *Service) store(ctx context.Context, n *domain.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, realtime.NewChange(realtime.TableNotifications, realtime.EventInsert, n, n.UserID)); err != nil {
			log.Printf("notification: publish failed id=%d err=%v", n.ID, err)
		}
	}
	return nil
}
