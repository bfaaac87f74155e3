package model

import "errors"

var (
	// ErrActivityNotFound indicates that the requested activity does not exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrCapacityExhausted indicates that the activity has no free slots left.
	// Expected and user-facing; not a retryable condition.
	ErrCapacityExhausted = errors.New("activity capacity exhausted")
	// ErrReleaseUnderflow indicates a release without a matching reserve.
	// This is a bug (double release), not a user error: the operation is
	// rejected and must be logged, the counter stays consistent.
	ErrReleaseUnderflow = errors.New("slot release without matching reserve")
	// ErrInvalidCapacity indicates a capacity value that is not a positive integer.
	ErrInvalidCapacity = errors.New("capacity must be a positive integer")
	// ErrCapacityBelowRegistered indicates a capacity edit below the current
	// number of active registrations.
	ErrCapacityBelowRegistered = errors.New("capacity cannot be set below current registrations")
	// ErrInvalidTimeWindow indicates that the activity ends before it starts.
	ErrInvalidTimeWindow = errors.New("end time must be after start time")
)
