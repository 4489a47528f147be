package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
)

// Resource and concurrency error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// errorCodeHTTPStatus maps domain and transport error codes to HTTP status
// codes. Codes produced during cart validation map to 422 because the request
// was well-formed but cannot be recorded against the effective catalog.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	"INVALID_INPUT":   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	"SHIFT_ALREADY_OPEN":       http.StatusConflict,

	"INVALID_ITEM_TYPE":  http.StatusBadRequest,
	"ITEM_NOT_TRACKABLE": http.StatusUnprocessableEntity,

	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"DOMAIN_RULE":        http.StatusUnprocessableEntity,
	"NO_OPEN_SHIFT":      http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
	"PAYMENT_MISMATCH":   http.StatusUnprocessableEntity,

	// Cart validation outcomes from sale recording
	"EMPTY_CART":                    http.StatusUnprocessableEntity,
	"PRODUCT_NOT_FOUND":             http.StatusUnprocessableEntity,
	"PRODUCT_NOT_OFFERED":           http.StatusUnprocessableEntity,
	"PRODUCT_NOT_AVAILABLE":         http.StatusUnprocessableEntity,
	"UNEXPECTED_SELECTIONS":         http.StatusUnprocessableEntity,
	"UNKNOWN_SELECTION_GROUP":       http.StatusUnprocessableEntity,
	"SELECTION_COUNT_OUT_OF_BOUNDS": http.StatusUnprocessableEntity,
	"OPTION_NOT_FOUND":              http.StatusUnprocessableEntity,
	"OPTION_OUTSIDE_SET":            http.StatusUnprocessableEntity,
	"OPTION_NOT_AVAILABLE":          http.StatusUnprocessableEntity,
	"OPTION_NOT_ALLOWED":            http.StatusUnprocessableEntity,
	"EXTRA_NOT_FOUND":               http.StatusUnprocessableEntity,
	"EXTRA_NOT_AVAILABLE":           http.StatusUnprocessableEntity,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 so new domain codes fail loudly instead of
// leaking as misleading client errors.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
