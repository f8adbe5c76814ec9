package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to API clients.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeInvalidCursor = "INVALID_CURSOR"
	CodeNotFound      = "NOT_FOUND"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeRateLimit     = "RATE_LIMIT_ERROR"
	CodeDatabase      = "DATABASE_ERROR"
	CodeUnknown       = "UNKNOWN_ERROR"
)

// AppContextError carries the clean-architecture layer, component and
// operation an error was raised in, together with the wrapped cause.
type AppContextError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Layer     string         `json:"layer,omitempty"`
	Component string         `json:"component,omitempty"`
	Operation string         `json:"operation,omitempty"`
	Cause     error          `json:"-"`
	Context   map[string]any `json:"context,omitempty"`
}

func (e *AppContextError) Error() string {
	var prefix string
	if e.Layer != "" && e.Component != "" && e.Operation != "" {
		prefix = fmt.Sprintf("[%s:%s:%s] ", e.Layer, e.Component, e.Operation)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %s (caused by: %v)", prefix, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s%s: %s", prefix, e.Code, e.Message)
}

func (e *AppContextError) Unwrap() error {
	return e.Cause
}

// HTTPStatusCode maps the error code to a response status.
func (e *AppContextError) HTTPStatusCode() int {
	switch e.Code {
	case CodeValidation, CodeInvalidCursor:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HTTPContextResponse is the JSON body written for failed requests. Layer
// details stay in the logs.
type HTTPContextResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (e *AppContextError) ToHTTPResponse() HTTPContextResponse {
	return HTTPContextResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

func NewAppContextError(
	code, message, layer, component, operation string,
	cause error,
	context map[string]any,
) *AppContextError {
	if context == nil {
		context = make(map[string]any)
	}

	return &AppContextError{
		Code:      code,
		Message:   message,
		Layer:     layer,
		Component: component,
		Operation: operation,
		Cause:     cause,
		Context:   context,
	}
}

// AsAppContextError returns err as an *AppContextError, converting unknown
// errors into UNKNOWN_ERROR so handlers have a single shape to render.
func AsAppContextError(err error) *AppContextError {
	var appErr *AppContextError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidCursor):
		return NewAppContextError(CodeInvalidCursor, "invalid pagination parameter", "", "", "", err, nil)
	case errors.Is(err, ErrInvalidInput):
		return NewAppContextError(CodeValidation, "invalid input", "", "", "", err, nil)
	case errors.Is(err, ErrNotificationNotFound):
		return NewAppContextError(CodeNotFound, "notification not found", "", "", "", err, nil)
	case errors.Is(err, ErrUnauthorized):
		return NewAppContextError(CodeUnauthorized, "authentication required", "", "", "", err, nil)
	case errors.Is(err, ErrDatabaseUnavailable):
		return NewAppContextError(CodeDatabase, "database unavailable", "", "", "", err, nil)
	default:
		return NewAppContextError(CodeUnknown, "internal server error", "", "", "", err, nil)
	}
}
