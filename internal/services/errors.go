package services

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrForbidden              = errors.New("forbidden")

	ErrSessionNotFound    = errors.New("session not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrClassTypeNotFound  = errors.New("class type not found")
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrUserNotFound       = errors.New("user not found")

	// ErrAlreadyBooked and ErrSessionFull both map to 409 but must stay
	// distinguishable so clients can tell "you already hold a spot" from
	// "the class is full".
	ErrAlreadyBooked = errors.New("already booked")
	ErrSessionFull   = errors.New("session full")

	ErrNoUsablePass = errors.New("no usable pass")

	ErrClassTypeInUse     = errors.New("class type has sessions")
	ErrInstructorInUse    = errors.New("instructor has sessions")
	ErrSessionHasBookings = errors.New("session has bookings")
)
