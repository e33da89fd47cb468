package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrForbidden       = errors.New("caller is not a participant of this booking")
)

// Validation-class failures: the request itself is unacceptable.
var (
	ErrUnknownStatus    = errors.New("unknown booking status")
	ErrUnknownAction    = errors.New("unknown action")
	ErrEvidenceRequired = errors.New("evidence picture is required for this action")
	ErrEvidenceNotFound = errors.New("evidence picture has not been uploaded")
	ErrInvalidCharge    = errors.New("charge amount must be zero or positive")
	ErrUnsupportedMedia = errors.New("evidence must be a jpeg, png or gif picture")
)

// Stale-state failures: the booking moved on since the action list was resolved.
var (
	ErrActionNotPermitted = errors.New("action is not permitted for the booking's current status")
	ErrActionDisabled     = errors.New("action is not available yet")
	ErrStaleState         = errors.New("booking status changed concurrently")
)

var (
	ErrSubmissionInFlight = errors.New("a submission for this action is already in flight")
	ErrHistoryDrift       = errors.New("booking status does not match its history")
)

// ErrorClass tells the presentation layer how to surface a failed action.
type ErrorClass string

const (
	ErrorClassValidation ErrorClass = "validation"
	ErrorClassTransient  ErrorClass = "transient"
)

// RemoteError is a failure reported by the booking service to a client.
type RemoteError struct {
	Class   ErrorClass
	Code    string
	Message string
	Stale   bool
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Class, e.Message)
}

// IsValidation reports whether err is a client-class (destructive) failure.
func IsValidation(err error) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Class == ErrorClassValidation
	}
	return errors.Is(err, ErrEvidenceRequired) ||
		errors.Is(err, ErrEvidenceNotFound) ||
		errors.Is(err, ErrInvalidCharge) ||
		errors.Is(err, ErrUnsupportedMedia) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrActionDisabled) ||
		errors.Is(err, ErrActionNotPermitted) ||
		errors.Is(err, ErrStaleState)
}

// IsStale reports whether err means the caller must refetch before acting again.
func IsStale(err error) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Stale
	}
	return errors.Is(err, ErrStaleState) || errors.Is(err, ErrActionNotPermitted)
}
