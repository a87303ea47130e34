package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped with fmt.Errorf and %w
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrQuotaExceeded indicates the account has no remaining generation
	// uses and cannot accept another job.
	// API layer should map this to HTTP 429 Too Many Requests.
	ErrQuotaExceeded = errors.New("account generation quota exceeded")

	// ErrTaskNotCompleted indicates a save was requested for a task that
	// has not reached the completed status, or completed without a result.
	// API layer should map this to HTTP 409 Conflict.
	ErrTaskNotCompleted = errors.New("task has no completed result to save")

	// ErrUnsupportedUpload indicates an upload was empty or not one of the
	// accepted image types.
	// API layer should map this to HTTP 400 Bad Request.
	ErrUnsupportedUpload = errors.New("unsupported upload")
)
