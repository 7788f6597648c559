package profile

import "housie/internal/domain"

type UpdateProfileRequest struct {
	FullName    *string  `json:"full_name" validate:"omitempty,min=2,max=255"`
	PhoneNumber *string  `json:"phone_number" validate:"omitempty,phone"`
	ServiceArea *string  `json:"service_area" validate:"omitempty,max=255"`
	HourlyRate  *float64 `json:"hourly_rate" validate:"omitempty,gte=0,lte=1000"`
}

type CleanerProfileRequest struct {
	Bio             string   `json:"bio" validate:"max=2000"`
	Address         string   `json:"address" validate:"max=255"`
	City            string   `json:"city" validate:"required,max=128"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	ServiceRadiusKM float64  `json:"service_radius_km" validate:"gte=0,lte=200"`
	HourlyRate      *float64 `json:"hourly_rate" validate:"omitempty,gte=0,lte=1000"`
	Services        []string `json:"services" validate:"max=20"`
	YearsExperience int      `json:"years_experience" validate:"gte=0,lte=80"`
}

type CustomerProfileRequest struct {
	Address           string   `json:"address" validate:"max=255"`
	City              string   `json:"city" validate:"max=128"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	PreferredServices []string `json:"preferred_services" validate:"max=20"`
}

// ProfileView is the caller's profile with whichever extension row exists.
type ProfileView struct {
	User     *domain.User            `json:"user"`
	Cleaner  *domain.CleanerProfile  `json:"cleaner_profile,omitempty"`
	Customer *domain.CustomerProfile `json:"customer_profile,omitempty"`
}
