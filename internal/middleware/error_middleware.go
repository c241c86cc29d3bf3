package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/edutech/internal/app/models/dto"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/logger"
)

// errorMessage prefers the message carried by a CustomError
func errorMessage(err error, fallback string) string {
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		return customErr.Message
	}
	return fallback
}

func abortWithError(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	switch {
	// Validation
	case errors.Is(err, apperrors.ErrInvalidEmail):
		abortWithError(c, http.StatusBadRequest, dto.ErrorCodeInvalidEmail, errorMessage(err, "Invalid email"))
	case errors.Is(err, apperrors.ErrInvalidPassword):
		abortWithError(c, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, errorMessage(err, "Invalid password"))
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		abortWithError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, errorMessage(err, "Validation failed"))

	// Conflicts
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		abortWithError(c, http.StatusBadRequest, dto.ErrorCodeResourceAlreadyExists, errorMessage(err, "Email already exists"))
	case apperrors.Is(err, apperrors.ErrConflict, apperrors.ErrAlreadyRegistered, apperrors.ErrAlreadyAssigned):
		abortWithError(c, http.StatusBadRequest, dto.ErrorCodeConflict, errorMessage(err, "Conflict"))

	// Not found
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrUserNotFound, apperrors.ErrCourseNotFound, apperrors.ErrAssignmentNotFound):
		abortWithError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, errorMessage(err, "Resource not found"))

	// Authentication
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, errorMessage(err, "Invalid credentials"))
	case errors.Is(err, apperrors.ErrTokenExpired):
		abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Not authorized, please login")
	case errors.Is(err, apperrors.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, errorMessage(err, "Not authorized"))

	// Authorization
	case errors.Is(err, apperrors.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, dto.ErrorCodeForbidden, errorMessage(err, "Permission denied"))

	// Relays
	case errors.Is(err, apperrors.ErrUploadFailed):
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Upload relay failure")
		abortWithError(c, http.StatusInternalServerError, dto.ErrorCodeUploadFailed, "File upload failed")
	case errors.Is(err, apperrors.ErrDeliveryFailed):
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Mail relay failure")
		abortWithError(c, http.StatusInternalServerError, dto.ErrorCodeExternalServiceError, "Email could not be sent")

	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		abortWithError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// HandleSignUpError answers format failures on the bootstrap sign-up route
// with 403, everything else as HandleAPIError does.
func HandleSignUpError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrValidationFailed) {
		abortWithError(c, http.StatusForbidden, dto.ErrorCodeValidationFailed, errorMessage(err, "Validation failed"))
		return
	}
	HandleAPIError(c, err)
}
