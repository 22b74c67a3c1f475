package serverutils

import "github.com/gofiber/fiber/v2"

// AppError carries an HTTP status alongside a safe, client-facing message.
// Services return these; the error handler middleware maps them to responses.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: fiber.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: fiber.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Message: message}
}

// NewUpstreamError wraps failures from external providers. The original
// error stays in the logs; only the generic message reaches the client.
func NewUpstreamError(message string) *AppError {
	return &AppError{Code: fiber.StatusInternalServerError, Message: message}
}
