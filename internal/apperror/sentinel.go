package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidCursor        = errors.New("malformed cursor")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrDatabaseUnavailable  = errors.New("database unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotificationNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidCursor)
}

func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabaseUnavailable)
}

// NewInvalidInputError wraps ErrInvalidInput with the offending field.
func NewInvalidInputError(layer, component, operation, message string, context map[string]any) *AppContextError {
	return NewAppContextError(
		CodeValidation,
		message,
		layer,
		component,
		operation,
		fmt.Errorf("%w", ErrInvalidInput),
		context,
	)
}

// NewInvalidCursorError wraps ErrInvalidCursor. The message is the one clients
// see, so it does not say which part of the token was wrong.
func NewInvalidCursorError(layer, component, operation string) *AppContextError {
	return NewAppContextError(
		CodeInvalidCursor,
		"invalid pagination parameter",
		layer,
		component,
		operation,
		fmt.Errorf("%w", ErrInvalidCursor),
		nil,
	)
}

func NewNotificationNotFoundError(layer, component, operation string, context map[string]any) *AppContextError {
	return NewAppContextError(
		CodeNotFound,
		"notification not found",
		layer,
		component,
		operation,
		fmt.Errorf("%w", ErrNotificationNotFound),
		context,
	)
}

func NewUnauthorizedError(layer, component, operation string, cause error) *AppContextError {
	var wrapped error
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", ErrUnauthorized, cause)
	} else {
		wrapped = fmt.Errorf("%w", ErrUnauthorized)
	}
	return NewAppContextError(CodeUnauthorized, "authentication required", layer, component, operation, wrapped, nil)
}

// NewDatabaseUnavailableError keeps both the sentinel and the driver error in
// the chain.
func NewDatabaseUnavailableError(layer, component, operation string, cause error, context map[string]any) *AppContextError {
	var wrapped error
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", ErrDatabaseUnavailable, cause)
	} else {
		wrapped = fmt.Errorf("%w", ErrDatabaseUnavailable)
	}

	return NewAppContextError(
		CodeDatabase,
		"database unavailable",
		layer,
		component,
		operation,
		wrapped,
		context,
	)
}
