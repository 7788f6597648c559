package booking

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"housie/internal/domain"
	"housie/internal/metrics"
	"housie/internal/pkg/validator"
	"housie/internal/realtime"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, b *domain.Booking, customerName string) error
}

// CategoryChecker reports whether a service type exists. Optional.
type CategoryChecker interface {
	Has(slug string) bool
}

type Service struct {
	repo       BookingRepository
	pricer     *Pricer
	categories CategoryChecker
	notifier   NotificationSender
	publisher  realtime.Publisher
	now        func() time.Time
}

func NewService(repo BookingRepository, pricer *Pricer, categories CategoryChecker, notifier NotificationSender, publisher realtime.Publisher) *Service {
	return &Service{
		repo:       repo,
		pricer:     pricer,
		categories: categories,
		notifier:   notifier,
		publisher:  publisher,
		now:        time.Now,
	}
}

// CreateBooking inserts one pending booking. Required fields are checked in
// form order and the first missing one is reported. The notification is
// best-effort: its failure never undoes or flags the booking.
func (s *Service) CreateBooking(ctx context.Context, customerID int64, req CreateBookingRequest) (*domain.Booking, error) {
	req = trimRequest(req)
	if err := checkRequired(req); err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation(dateLayout, req.BookingDate, time.Local)
	if err != nil {
		return nil, ErrInvalidDate
	}
	now := s.now()
	if date.Before(truncateDay(now)) {
		return nil, ErrDateInPast
	}
	if _, err := time.Parse(timeLayout, req.BookingTime); err != nil {
		return nil, ErrInvalidTime
	}
	if !validator.Var(req.Phone, "phone") {
		return nil, ErrInvalidPhone
	}
	if s.categories != nil && !s.categories.Has(req.ServiceType) {
		return nil, ErrUnknownService
	}

	customer, err := s.repo.GetUser(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.Role != domain.RoleCustomer {
		return nil, ErrNotCustomer
	}
	cleaner, err := s.repo.GetUser(ctx, req.CleanerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrCleanerNotFound
		}
		return nil, err
	}
	if cleaner.Role != domain.RoleCleaner {
		return nil, ErrCleanerNotFound
	}

	est := s.pricer.Estimate(ctx, req.ServiceType, 0)
	b := &domain.Booking{
		CustomerID:        customerID,
		CleanerID:         req.CleanerID,
		ServiceType:       req.ServiceType,
		BookingDate:       req.BookingDate,
		BookingTime:       req.BookingTime,
		Address:           req.Address,
		Phone:             req.Phone,
		Notes:             req.Notes,
		EstimatedPrice:    est.Price,
		EstimatedDuration: est.DurationHours,
		Status:            domain.BookingPending,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, realtime.NewChange(realtime.TableBookings, realtime.EventInsert, b, b.CustomerID, b.CleanerID)); err != nil {
			log.Printf("booking: publish failed booking_id=%d err=%v", b.ID, err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyBookingCreated(ctx, b, customer.FullName); err != nil {
			metrics.NotificationFailures.WithLabelValues("booking_created").Inc()
			log.Printf("booking: notification failed booking_id=%d cleaner_id=%d err=%v", b.ID, b.CleanerID, err)
		}
	}
	return b, nil
}

// ListBookings returns the caller's bookings: made by a customer, or
// addressed to a cleaner. An empty role is resolved from the user row.
func (s *Service) ListBookings(ctx context.Context, userID int64, role domain.UserRole) ([]domain.Booking, error) {
	if role == "" {
		u, err := s.repo.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		role = u.Role
	}

	if role == domain.RoleCleaner {
		return s.repo.ListForCleaner(ctx, userID)
	}
	return s.repo.ListForCustomer(ctx, userID)
}

func (s *Service) GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != userID && b.CleanerID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) EstimatePrice(ctx context.Context, serviceType string, hours float64) (*Estimate, error) {
	serviceType = strings.TrimSpace(serviceType)
	if serviceType == "" {
		return nil, ErrServiceTypeNeeded
	}
	if hours < 0 || hours > 24 {
		return nil, ErrInvalidHours
	}
	if s.categories != nil && !s.categories.Has(serviceType) {
		return nil, ErrUnknownService
	}
	est := s.pricer.Estimate(ctx, serviceType, hours)
	return &est, nil
}

func checkRequired(req CreateBookingRequest) error {
	fields := []struct {
		name  string
		empty bool
	}{
		{"service_type", req.ServiceType == ""},
		{"booking_date", req.BookingDate == ""},
		{"booking_time", req.BookingTime == ""},
		{"address", req.Address == ""},
		{"phone", req.Phone == ""},
		{"cleaner_id", req.CleanerID <= 0},
	}
	for _, f := range fields {
		if f.empty {
			return &MissingFieldError{Field: f.name}
		}
	}
	return nil
}

func trimRequest(req CreateBookingRequest) CreateBookingRequest {
	req.ServiceType = strings.TrimSpace(req.ServiceType)
	req.BookingDate = strings.TrimSpace(req.BookingDate)
	req.BookingTime = strings.TrimSpace(req.BookingTime)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Notes = strings.TrimSpace(req.Notes)
	return req
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
