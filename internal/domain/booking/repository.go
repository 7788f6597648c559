package booking

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"housie/internal/domain"
)

// BookingRepository defines the interface for booking operations
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListForCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error)
	ListForCleaner(ctx context.Context, cleanerID int64) ([]domain.Booking, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetServicePrice(ctx context.Context, serviceType string) (*domain.ServicePrice, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) ListForCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	return r.list(ctx, "customer_id = ?", customerID)
}

func (r *bookingRepository) ListForCleaner(ctx context.Context, cleanerID int64) ([]domain.Booking, error) {
	return r.list(ctx, "cleaner_id = ?", cleanerID)
}

func (r *bookingRepository) list(ctx context.Context, where string, id int64) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where(where, id).
		Order("booking_date DESC, booking_time DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *bookingRepository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetServicePrice returns nil, nil when no override exists.
func (r *bookingRepository) GetServicePrice(ctx context.Context, serviceType string) (*domain.ServicePrice, error) {
	var sp domain.ServicePrice
	err := r.db.WithContext(ctx).Where("service_type = ?", serviceType).First(&sp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}
