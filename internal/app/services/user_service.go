package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/app/models/dto"
	"github.com/yigit/edutech/internal/app/repositories"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/filestorage"
)

// UserService serves profile reads and updates
type UserService struct {
	userRepo    repositories.IUserRepository
	fileStorage filestorage.FileStorage
	logger      zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.IUserRepository,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// GetUser returns the public projection of a user
func (s *UserService) GetUser(ctx context.Context, userID int64) (*dto.PublicUser, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := dto.NewPublicUser(user)
	return &public, nil
}

// ListUsers returns every user without credentials
func (s *UserService) ListUsers(ctx context.Context) ([]dto.PublicUser, error) {
	users, err := s.userRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return dto.NewPublicUsers(users), nil
}

// ListLecturers returns users with the lecturer role
func (s *UserService) ListLecturers(ctx context.Context) ([]dto.PublicUser, error) {
	role := models.RoleLecturer
	users, err := s.userRepo.List(ctx, &role)
	if err != nil {
		return nil, err
	}
	return dto.NewPublicUsers(users), nil
}

// UpdateProfile overwrites the profile fields and, when photo is given,
// replaces the profile photo with the uploaded one.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest, photo *filestorage.File) (*dto.PublicUser, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Fullname); name != "" {
		user.Fullname = name
	}
	user.Title = req.Title
	user.Semester = req.Semester
	user.Department = req.Department
	user.DOB = req.DOB

	if photo != nil {
		if !strings.HasPrefix(photo.ContentType, "image/") {
			return nil, apperrors.NewValidationError("Profile photo must be an image")
		}
		photo.Folder = filestorage.FolderProfilePhotos
		url, err := s.fileStorage.Upload(ctx, *photo)
		if errors.Is(err, filestorage.ErrEmptyFile) {
			return nil, apperrors.NewValidationError("Profile photo is empty")
		}
		if err != nil {
			s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to upload profile photo")
			return nil, apperrors.NewUploadError(err)
		}
		user.Photo = url
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	s.logger.Info().Int64("userID", userID).Msg("Profile updated")
	public := dto.NewPublicUser(user)
	return &public, nil
}
