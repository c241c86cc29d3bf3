package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrUnauthorized       = errors.New("not authorized")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Course errors
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAlreadyRegistered  = errors.New("already registered for this course")
	ErrAlreadyAssigned    = errors.New("lecturer already assigned to this course")
)

// Password reset errors
var (
	ErrInvalidResetCode = errors.New("invalid or expired reset code")
	ErrResetNotVerified = errors.New("reset code has not been verified")
)

// Relay errors
var (
	ErrUploadFailed   = errors.New("file upload failed")
	ErrDeliveryFailed = errors.New("email delivery failed")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a new custom error for invalid input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewInvalidFieldError marks a format failure of one field (e.g. ErrInvalidEmail)
// as a validation error.
func NewInvalidFieldError(field error, message string) error {
	return &CustomError{
		Err:     errors.Join(ErrValidationFailed, field),
		Message: message,
	}
}

// NewAuthError creates a new custom error for failed authentication with a message
func NewAuthError(message string) error {
	return &CustomError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// NewUploadError wraps a storage failure
func NewUploadError(cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrUploadFailed, cause),
		Message: "file upload failed",
	}
}

// NewDeliveryError wraps a mail transport failure
func NewDeliveryError(cause error) error {
	return &CustomError{
		Err:     errors.Join(ErrDeliveryFailed, cause),
		Message: "email could not be sent",
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}
