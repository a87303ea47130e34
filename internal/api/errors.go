package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mgnegypt/nano-image/internal/api/shared"
	"github.com/mgnegypt/nano-image/internal/provision"
	"github.com/mgnegypt/nano-image/internal/service"
	"github.com/mgnegypt/nano-image/internal/service/auth"
	"github.com/mgnegypt/nano-image/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors; store.ErrNotFound covers accounts, tasks,
	// artifacts and uploads
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrRemoteIDExists),
		errors.Is(err, service.ErrTaskNotCompleted):
		return http.StatusConflict

	// Quota errors
	case errors.Is(err, service.ErrQuotaExceeded):
		return http.StatusTooManyRequests

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrUnsupportedUpload):
		return http.StatusBadRequest

	// Provisioning runs against two external systems; their failures are
	// upstream problems, not ours
	case errors.Is(err, provision.ErrNoDomainAvailable),
		errors.Is(err, provision.ErrSessionExtractionFailed):
		return http.StatusBadGateway
	case errors.Is(err, provision.ErrVerificationTimeout):
		return http.StatusGatewayTimeout

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this resource"

	case errors.Is(err, store.ErrAccountNotFound):
		return "Account not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrUploadNotFound):
		return "Upload not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrRemoteIDExists):
		return "Task already exists"

	case errors.Is(err, service.ErrTaskNotCompleted):
		return "Task has no completed result to save"

	case errors.Is(err, service.ErrQuotaExceeded):
		return "Account generation quota exceeded"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, service.ErrUnsupportedUpload):
		return "Upload must be a non-empty png, jpeg or webp image"

	case errors.Is(err, provision.ErrNoDomainAvailable):
		return "No mailbox domain available"

	case errors.Is(err, provision.ErrVerificationTimeout):
		return "Timed out waiting for verification email"

	case errors.Is(err, provision.ErrSessionExtractionFailed):
		return "Provider did not establish a session"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes a sanitized error response for err. An empty
// userMessage falls back to the safe message for the error type.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), userMessage, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'GenerateRequest.Prompt' Error:Field
		// validation for 'Prompt' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "invalid identifier"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
