package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeEmptySubmission    = "EMPTY_SUBMISSION"
	CodeInvalidKitchenType = "INVALID_KITCHEN_TYPE"

	CodeNotFound             = "NOT_FOUND"
	CodeOrderNotFound        = "ORDER_NOT_FOUND"
	CodeOrderItemNotFound    = "ORDER_ITEM_NOT_FOUND"
	CodeTableNotFound        = "TABLE_NOT_FOUND"
	CodeKitchenNotFound      = "KITCHEN_NOT_FOUND"
	CodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	CodeMenuItemNotFound     = "MENU_ITEM_NOT_FOUND"
	CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"

	CodeConflict             = "CONFLICT"
	CodeDuplicateTable       = "DUPLICATE_TABLE"
	CodeDuplicateKitchenBind = "DUPLICATE_KITCHEN_BINDING"
	CodeTableUnavailable     = "TABLE_UNAVAILABLE"
	CodeTableConflict        = "TABLE_CONFLICT"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeKitchenAmbiguous     = "KITCHEN_AMBIGUOUS"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternal             = "INTERNAL_ERROR"
)

const genericInternalDescription = "Internal server error"

// Error is the single error type that crosses the request boundary with a
// stable code.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(status int, code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Status: status}
}

func Validation(code, format string, args ...any) *Error {
	if code == "" {
		code = CodeValidation
	}
	return New(http.StatusBadRequest, code, format, args...)
}

func NotFound(code, format string, args ...any) *Error {
	if code == "" {
		code = CodeNotFound
	}
	return New(http.StatusNotFound, code, format, args...)
}

func Conflict(code, format string, args ...any) *Error {
	if code == "" {
		code = CodeConflict
	}
	return New(http.StatusConflict, code, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, CodeForbidden, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, format, args...)
}

// Internal keeps the cause for the server log; Message is safe to show.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: genericInternalDescription, Status: http.StatusInternalServerError, Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidTransition = &Error{Code: CodeInvalidTransition}
	ErrOrderNotFound     = &Error{Code: CodeOrderNotFound}
	ErrKitchenNotFound   = &Error{Code: CodeKitchenNotFound}
	ErrForbidden         = &Error{Code: CodeForbidden}
)
