package notification

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrFunctionFailed       = errors.New("notification function failed")
)
