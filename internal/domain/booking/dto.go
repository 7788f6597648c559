package booking

type CreateBookingRequest struct {
	CleanerID   int64  `json:"cleaner_id"`
	ServiceType string `json:"service_type"`
	BookingDate string `json:"booking_date"`
	BookingTime string `json:"booking_time"`
	Address     string `json:"address" validate:"max=255"`
	Phone       string `json:"phone" validate:"max=32"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// Estimate is a price quote for one service type.
type Estimate struct {
	ServiceType   string  `json:"service_type"`
	Price         float64 `json:"estimated_price"`
	DurationHours float64 `json:"estimated_duration"`
	Source        string  `json:"source"`
}
