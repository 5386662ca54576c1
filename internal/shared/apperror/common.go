package apperror

import "net/http"

var (
	ErrNotFound = New(CodeNotFound, "Resource not found", http.StatusNotFound)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(CodeInternalError, "An unexpected error occurred", http.StatusInternalServerError)

	ErrUnauthorized = New(CodeUnauthorized, "Authentication is required", http.StatusUnauthorized)

	ErrInvalidInput = New(CodeInvalidInput, "The provided input is invalid", http.StatusBadRequest)

	ErrRateLimitedIP = New(CodeRateLimited, "Too many requests from this IP", http.StatusTooManyRequests)

	ErrRateLimitedUser = New(CodeRateLimited, "Too many requests from this user", http.StatusTooManyRequests)

	// ErrRequestInFlight is returned while a request with the same
	// Idempotency-Key has not finished yet.
	ErrRequestInFlight = New(
		CodeProcessing,
		"Request with this Idempotency-Key is still being processed",
		http.StatusConflict,
	)
)
