package domain

import "time"

type NotificationType string

const (
	NotifBookingCreated NotificationType = "booking_created"
	NotifNewMessage     NotificationType = "new_message"
	NotifPasswordReset  NotificationType = "password_reset"
)

type Notification struct {
	ID        int64            `json:"id" gorm:"primaryKey"`
	UserID    int64            `json:"user_id" gorm:"not null;index"`
	Type      NotificationType `json:"type" gorm:"size:32;not null"`
	Title     string           `json:"title" gorm:"size:255;not null"`
	Body      string           `json:"body,omitempty" gorm:"type:text"`
	IsRead    bool             `json:"is_read" gorm:"not null;default:false"`
	Data      map[string]any   `json:"data,omitempty" gorm:"type:text;serializer:json"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
