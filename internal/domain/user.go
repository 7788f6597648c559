package domain

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleCleaner  UserRole = "cleaner"
)

func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleCleaner
}

// User is the profile row created at sign-up. Users are never hard-deleted.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	FullName     string    `json:"full_name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PhoneNumber  string    `json:"phone_number,omitempty" gorm:"size:32"`
	Role         UserRole  `json:"user_role" gorm:"column:user_role;size:16;index;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	ServiceArea  *string   `json:"service_area,omitempty" gorm:"size:255"`
	HourlyRate   *float64  `json:"hourly_rate,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
