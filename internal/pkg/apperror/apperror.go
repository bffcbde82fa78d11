package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Code identifies a domain failure class. Codes are stable wire values.
type Code string

const (
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeDuplicateEmail     Code = "DUPLICATE_EMAIL"
	CodeNotFound           Code = "NOT_FOUND"
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodeTeardownFailed     Code = "TEARDOWN_FAILED"
	CodeValidation         Code = "VALIDATION_FAILED"
	CodeUnavailable        Code = "UNAVAILABLE"
)

// AppError is a typed, expected domain outcome. Storage/connectivity
// failures are wrapped with CodeUnavailable so the gateway can report a
// server-side error; everything else maps to a 4xx.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Unavailable wraps a storage or connectivity failure.
func Unavailable(op string, err error) *AppError {
	return &AppError{Code: CodeUnavailable, Message: op, Err: err}
}

// CodeOf extracts the code from an error chain. Unknown errors report
// CodeUnavailable so callers never treat them as domain outcomes.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnavailable
}

func IsCode(err error, code Code) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

// HTTPStatus maps the taxonomy to wire status. NotOwner is normalized to
// NotFound before it ever reaches this point, so a 404 never leaks whether
// the record exists under another owner.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidCredentials, CodeInvalidToken, CodeTokenExpired:
		return fiber.StatusUnauthorized
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeDuplicateEmail, CodeInvalidTransition:
		return fiber.StatusConflict
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
