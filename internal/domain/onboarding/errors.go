package onboarding

import (
	"errors"
	"strings"
)

var (
	ErrSessionNotFound = errors.New("onboarding session not found or expired")
	ErrUnknownFlow     = errors.New("flow must be find or pro")
	ErrUnknownStep     = errors.New("step is not part of this flow")
	ErrStepNotAdjacent = errors.New("the wizard only moves one step at a time")
	ErrNotFinished     = errors.New("the wizard is not on its last step")
	ErrAuthRequired    = errors.New("sign in as a cleaner to publish your profile")
	ErrTooManySessions = errors.New("too many onboarding sessions in progress, try again later")
)

// MissingDataError is returned when leaving a step whose keys are unset.
type MissingDataError struct {
	Step Step
	Keys []string
}

func (e *MissingDataError) Error() string {
	return "step " + string(e.Step) + " needs: " + strings.Join(e.Keys, ", ")
}

// InvalidDataError carries field errors found when the collected data is
// turned into a profile.
type InvalidDataError struct {
	Fields map[string]string
}

func (e *InvalidDataError) Error() string {
	return "onboarding data is invalid"
}
