package model

import "errors"

var (
	// ErrRegistrationNotFound indicates that the requested registration does not exist.
	ErrRegistrationNotFound = errors.New("registration not found")
	// ErrAlreadyRegistered indicates an active registration already exists
	// for this subject and activity.
	ErrAlreadyRegistered = errors.New("subject already registered for this activity")
	// ErrSubjectBanned indicates the subject is banned from this activity
	// and may not register.
	ErrSubjectBanned = errors.New("subject is banned from this activity")
	// ErrInvalidState indicates the registration is not in a state that
	// permits the requested transition.
	ErrInvalidState = errors.New("registration state does not permit this operation")
	// ErrInvalidToken indicates the presented check-in or check-out token
	// does not match.
	ErrInvalidToken = errors.New("presented token is invalid")
	// ErrWindowClosed indicates the current time is outside the activity's
	// start/end window, so presence scans are rejected.
	ErrWindowClosed = errors.New("activity window is closed")
)
