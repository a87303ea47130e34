package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyOwnerID is returned when an entity is missing its owner.
	ErrEmptyOwnerID = errors.New("owner ID cannot be empty")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptySessionToken is returned when an account has no session credential.
	ErrEmptySessionToken = errors.New("session token cannot be empty")

	// ErrInvalidUseCount is returned when an account's use count is negative
	// or its cap is not positive.
	ErrInvalidUseCount = errors.New("invalid use count")

	// ErrEmptyPrompt is returned when a generation prompt is empty.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptyRemoteID is returned when a task has no provider-side identifier.
	ErrEmptyRemoteID = errors.New("remote task ID cannot be empty")

	// ErrInvalidStatus is returned when a task status is not one of the
	// known variants.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidTransition is returned when a task status update would move
	// a task backwards or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorized is returned when an operation is not permitted for
	// the requesting owner.
	ErrUnauthorized = errors.New("unauthorized operation")
)
