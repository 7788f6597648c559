package domain

import "time"

type BookingStatus string

// Bookings only ever enter this state; confirmation is out of scope.
const BookingPending BookingStatus = "pending"

type Booking struct {
	ID                int64         `json:"id" gorm:"primaryKey"`
	CustomerID        int64         `json:"customer_id" gorm:"not null;index"`
	CleanerID         int64         `json:"cleaner_id" gorm:"not null;index"`
	ServiceType       string        `json:"service_type" gorm:"size:64;not null"`
	BookingDate       string        `json:"booking_date" gorm:"size:10;not null"`
	BookingTime       string        `json:"booking_time" gorm:"size:5;not null"`
	Address           string        `json:"address" gorm:"size:255;not null"`
	Phone             string        `json:"phone" gorm:"size:32;not null"`
	Notes             string        `json:"notes,omitempty" gorm:"type:text"`
	EstimatedPrice    float64       `json:"estimated_price"`
	EstimatedDuration float64       `json:"estimated_duration"`
	Status            BookingStatus `json:"status" gorm:"size:16;not null;default:pending;index"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// ServicePrice overrides the built-in price table for one service type.
type ServicePrice struct {
	ServiceType   string    `json:"service_type" gorm:"primaryKey;size:64"`
	BasePrice     float64   `json:"base_price"`
	HourlyRate    float64   `json:"hourly_rate"`
	DurationHours float64   `json:"duration_hours"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (ServicePrice) TableName() string { return "service_prices" }
