package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeValidation is used when request body validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall through to the prefix rules in GetHTTPStatus.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeConflict:   http.StatusConflict,
	ErrCodeValidation: http.StatusBadRequest,

	// Lookup failures
	"ACCOUNT_NOT_FOUND": http.StatusNotFound,
	"ENTRY_NOT_FOUND":   http.StatusNotFound,

	// At-most-once and state conflicts -> 409 Conflict
	"ALREADY_RECORDED":     http.StatusConflict,
	"ALREADY_REVERSED":     http.StatusConflict,
	"ALREADY_PAID":         http.StatusConflict,
	"HAS_PAYMENTS":         http.StatusConflict,
	"ACTIVE_CONFIG_EXISTS": http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"UNBALANCED_ENTRY": http.StatusUnprocessableEntity,
	"INVALID_STATE":    http.StatusUnprocessableEntity,
	"TRIP_DELETED":     http.StatusUnprocessableEntity,
	"EXCEEDS_BALANCE":  http.StatusUnprocessableEntity,
	"INSTALLMENT_PAID": http.StatusUnprocessableEntity,

	// Upstream failures
	"FETCH_FAILED": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unlisted codes map by prefix: DUPLICATE_* to 409, INVALID_* to 400,
// *_NOT_FOUND to 404. Anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
