package domain

import "time"

// CleanerProfile extends a cleaner's User row 1:1.
type CleanerProfile struct {
	UserID          int64     `json:"user_id" db:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Bio             string    `json:"bio" db:"bio" gorm:"type:text"`
	Address         string    `json:"address" db:"address" gorm:"size:255"`
	City            string    `json:"city" db:"city" gorm:"size:128;index"`
	Latitude        *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude       *float64  `json:"longitude,omitempty" db:"longitude"`
	ServiceRadiusKM float64   `json:"service_radius_km" db:"service_radius_km"`
	HourlyRate      *float64  `json:"hourly_rate,omitempty" db:"hourly_rate"`
	Services        []string  `json:"services" db:"-" gorm:"type:text;serializer:json"`
	YearsExperience int       `json:"years_experience" db:"years_experience"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

func (CleanerProfile) TableName() string { return "cleaner_profiles" }

func (p *CleanerProfile) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// CustomerProfile extends a customer's User row 1:1.
type CustomerProfile struct {
	UserID            int64     `json:"user_id" db:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Address           string    `json:"address" db:"address" gorm:"size:255"`
	City              string    `json:"city" db:"city" gorm:"size:128"`
	Latitude          *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude         *float64  `json:"longitude,omitempty" db:"longitude"`
	PreferredServices []string  `json:"preferred_services" db:"-" gorm:"type:text;serializer:json"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

func (CustomerProfile) TableName() string { return "customer_profiles" }

// Cleaner is the joined view used by browse and search.
type Cleaner struct {
	User    User            `json:"user"`
	Profile *CleanerProfile `json:"profile,omitempty"`
}
