// Package errors provides custom error types for the JBC News services.
// Service-layer code returns AppError so that HTTP handlers and chat bots
// can render a safe message without leaking internal details.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
	retryable  bool
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Retryable reports whether repeating the same operation may succeed.
func (e *AppError) Retryable() bool { return e.retryable }

// Is matches AppErrors by code so wrapped copies compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
		retryable:  sentinel.retryable,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
		retryable:  sentinel.retryable,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrInvalidAPIKey      = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrPipelineDisabled   = &AppError{Code: "PIPELINE_NOT_CONFIGURED", Message: "Pipeline endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail    = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "This username is already taken", StatusCode: http.StatusConflict}
	ErrAlreadyStaff      = &AppError{Code: "ALREADY_STAFF", Message: "User already has a staff profile", StatusCode: http.StatusConflict}
	ErrStaffIDConflict   = &AppError{Code: "STAFF_ID_CONFLICT", Message: "Could not allocate a staff id, please retry", StatusCode: http.StatusConflict, retryable: true}
)

// Chat session errors.
var (
	ErrSessionNotFound  = &AppError{Code: "SESSION_NOT_FOUND", Message: "Chat session not found", StatusCode: http.StatusNotFound}
	ErrAccountNotLinked = &AppError{Code: "ACCOUNT_NOT_LINKED", Message: "This chat is not linked to an account", StatusCode: http.StatusForbidden}
)

// Reference data errors.
var (
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCountryNotFound  = &AppError{Code: "COUNTRY_NOT_FOUND", Message: "Country not found", StatusCode: http.StatusNotFound}
)

// News errors.
var (
	ErrNewsNotFound  = &AppError{Code: "NEWS_NOT_FOUND", Message: "News article not found", StatusCode: http.StatusNotFound}
	ErrDuplicateNews = &AppError{Code: "DUPLICATE_NEWS", Message: "This article already exists", StatusCode: http.StatusConflict}
	ErrBotDisabled   = &AppError{Code: "NEWS_BOT_DISABLED", Message: "The article was marked as breaking but the news bot is not running", StatusCode: http.StatusServiceUnavailable}
)

// Support ticket errors.
var (
	ErrTicketNotFound   = &AppError{Code: "TICKET_NOT_FOUND", Message: "Support ticket not found", StatusCode: http.StatusNotFound}
	ErrTicketIDConflict = &AppError{Code: "TICKET_ID_CONFLICT", Message: "Could not create the ticket, please try again", StatusCode: http.StatusConflict, retryable: true}
	ErrTicketClosed     = &AppError{Code: "TICKET_CLOSED", Message: "This ticket is closed", StatusCode: http.StatusConflict}
	ErrInvalidStatus    = &AppError{Code: "INVALID_TICKET_STATUS", Message: "Unsupported ticket status", StatusCode: http.StatusBadRequest}
)
