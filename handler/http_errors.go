package handler

import (
	"fmt"
	"net/http"
)

// HTTPError is an error carrying an HTTP status code and a stable machine
// key. The key ends up in the JSON error body; clients switch on it instead
// of parsing messages.
type HTTPError struct {
	Code    int    // HTTP status code
	Key     string // Stable error key (e.g. "not_found", "unauthorized")
	Message string // Optional user-facing text; status text when empty
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Key
}

// WithMessage returns a copy carrying user-facing text for the response
// body. Use it when the generic status text is not actionable enough.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

// Wrap attaches cause to the HTTP error. Logs keep the underlying detail
// while the response body exposes only the status, key, and message.
func (e HTTPError) Wrap(cause error) error {
	return fmt.Errorf("%w: %w", e, cause)
}

var (
	ErrBadRequest            = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized          = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden             = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound              = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrConflict              = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	ErrRequestTimeout        = HTTPError{Code: http.StatusRequestTimeout, Key: "request_timeout"}
	ErrUnprocessableEntity   = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrTooManyRequests       = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
	ErrInternalServerError   = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrServiceUnavailable    = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
	ErrGatewayTimeout        = HTTPError{Code: http.StatusGatewayTimeout, Key: "gateway_timeout"}
	ErrRequestEntityTooLarge = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large"}
)

// NewHTTPError creates a custom HTTP error with the given status code and key.
//
// Example:
//
//	err := handler.NewHTTPError(http.StatusPaymentRequired, "plan_limit_reached")
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}
