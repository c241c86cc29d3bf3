// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/middleware"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/filestorage"
)

// parseIDParam reads a positive int64 path parameter
func parseIDParam(ctx *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

// readFormFile loads an optional multipart file into memory. A missing
// field yields (nil, nil). Empty files and files over maxBytes are rejected
// before anything is read.
func readFormFile(ctx *gin.Context, field string, maxBytes int64) (*filestorage.File, error) {
	header, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid %s upload", field))
	}

	switch {
	case header.Size == 0:
		return nil, apperrors.NewValidationError(fmt.Sprintf("Uploaded %s is empty", field))
	case maxBytes > 0 && header.Size > maxBytes:
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Uploaded %s exceeds the %d byte limit", field, maxBytes))
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("error reading uploaded file: %w", err)
	}

	return &filestorage.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// requireUser returns the principal set by the cookie guard
func requireUser(ctx *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenNotFound)
		return nil, false
	}
	return user, true
}
