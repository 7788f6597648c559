package profile

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCleanerNotFound = errors.New("cleaner not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrRoleMismatch    = errors.New("profile type does not match user role")
	ErrUnknownService  = errors.New("unknown service category")
	ErrInvalidLocation = errors.New("latitude and longitude must be provided together and be in range")
	ErrNothingToUpdate = errors.New("no fields to update")
)
