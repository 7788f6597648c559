package booking

import "errors"

var (
	ErrNotFound          = errors.New("booking not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNotCustomer       = errors.New("only customers can book")
	ErrCleanerNotFound   = errors.New("cleaner not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidDate       = errors.New("booking_date must be YYYY-MM-DD")
	ErrDateInPast        = errors.New("booking_date is in the past")
	ErrInvalidTime       = errors.New("booking_time must be HH:MM")
	ErrInvalidPhone      = errors.New("phone is not a valid phone number")
	ErrInvalidHours      = errors.New("hours must be between 0 and 24")
	ErrServiceTypeNeeded = errors.New("service_type is required")
	ErrUnknownService    = errors.New("unknown service_type")
)

// MissingFieldError names the first required field left empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}
