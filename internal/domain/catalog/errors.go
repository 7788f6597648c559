package catalog

import "errors"

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidLocation = errors.New("lat and lng must be provided together and be in range")
)
