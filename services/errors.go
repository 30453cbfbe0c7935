package services

import (
	"errors"
	"fmt"

	"job-tracker-system/models"
)

// ErrNotFound is returned when a record does not exist or is not owned by
// the acting user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("record not found")

// ErrUnknownStatus is returned for a status value outside the enum
var ErrUnknownStatus = errors.New("unknown application status")

// ValidationError reports malformed caller input (missing field, value out
// of range). Kept distinct from infrastructure failures so the request
// layer can map it to a 4xx.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string) error { return &ValidationError{Msg: msg} }

// InvalidTransitionError reports a status change the transition table does
// not permit. The engine never coerces an illegal transition; callers map
// this to a client-visible error.
type InvalidTransitionError struct {
	From models.ApplicationStatus
	To   models.ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}
