package middleware

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/edutech/internal/app/models/dto"
	"github.com/yigit/edutech/internal/pkg/validation"
)

// RegisterValidators adds the custom binding rule to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	if err := v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return validation.IsStrongPassword(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register strongpassword rule: %w", err)
	}
	return nil
}

// HandleValidationError converts a binding error into an error detail. The
// first failing field becomes the message; all of them go into details.
func HandleValidationError(err error) *dto.ErrorDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fe.Field()] = formatValidationError(fe)
	}
	first := validationErrors[0]
	return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, formatValidationError(first)).
		WithField(first.Field()).
		WithDetails(fields)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "len":
		return e.Field() + " must be exactly " + e.Param() + " characters"
	case "numeric":
		return e.Field() + " must contain only digits"
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "strongpassword":
		return fmt.Sprintf("%s must be %d-%d characters and contain a digit, a lowercase and an uppercase letter",
			e.Field(), validation.PasswordMinLength, validation.PasswordMaxLength)
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
