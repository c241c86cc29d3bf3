package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/app/models/dto"
	"github.com/yigit/edutech/internal/app/repositories"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/auth"
	"github.com/yigit/edutech/internal/pkg/email"
	"github.com/yigit/edutech/internal/pkg/validation"
)

// AuthService owns account creation, credential checks and the password
// reset flow.
type AuthService struct {
	userRepo     repositories.IUserRepository
	jwtService   *auth.JWTService
	emailService email.EmailService
	logger       zerolog.Logger
	now          func() time.Time
	newResetCode func() (string, error)
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		emailService: emailService,
		logger:       logger,
		now:          time.Now,
		newResetCode: generateResetCode,
	}
}

// generateResetCode returns 4 random decimal digits
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func validateAccountInput(fullname, emailAddr, password string) error {
	if !validation.IsValidName(fullname) {
		return apperrors.NewValidationError(fmt.Sprintf(
			"Full name must be between %d and %d characters", validation.NameMinLength, validation.NameMaxLength))
	}
	if !validation.IsValidEmail(emailAddr) {
		return apperrors.NewInvalidFieldError(apperrors.ErrInvalidEmail, "Please enter a valid email address")
	}
	if !validation.IsStrongPassword(password) {
		return apperrors.NewInvalidFieldError(apperrors.ErrInvalidPassword, passwordRuleMessage)
	}
	return nil
}

var passwordRuleMessage = fmt.Sprintf(
	"Password must be %d-%d characters and contain at least one digit, one lowercase and one uppercase letter",
	validation.PasswordMinLength, validation.PasswordMaxLength)

// CreateAccount validates the input, stores a salted hash and returns the
// public projection of the new user. role defaults to student.
func (s *AuthService) CreateAccount(ctx context.Context, req *dto.RegisterRequest) (*dto.PublicUser, error) {
	fullname := strings.TrimSpace(req.Fullname)
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	if err := validateAccountInput(fullname, emailAddr, req.Password); err != nil {
		return nil, err
	}

	role := models.RoleStudent
	if req.Role != "" {
		role = models.RoleType(req.Role)
		if !role.Valid() {
			return nil, apperrors.NewValidationError("Role must be one of student, lecturer or admin")
		}
	}

	_, err := s.userRepo.FindByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "Email has already been registered")
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}

	user := &models.User{
		Fullname: fullname,
		Email:    emailAddr,
		Role:     role,
		IsAdmin:  role == models.RoleAdmin,
		Photo:    models.DefaultUserPhoto,
		Courses:  []int64{},
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "Email has already been registered")
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("Account created")
	public := dto.NewPublicUser(user)
	return &public, nil
}

// VerifyCredentials returns the user matching email when password is correct
func (s *AuthService) VerifyCredentials(ctx context.Context, emailAddr, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUserNotFound, "User not found, please sign up")
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
	}
	return user, nil
}

// SignIn verifies the credentials and issues an identity token
func (s *AuthService) SignIn(ctx context.Context, emailAddr, password string) (*dto.AuthResponse, error) {
	user, err := s.VerifyCredentials(ctx, emailAddr, password)
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{User: dto.NewPublicUser(user), Token: token}, nil
}

// IssueToken signs an identity token for userID
func (s *AuthService) IssueToken(userID int64) (string, error) {
	token, err := s.jwtService.GenerateToken(userID)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}

// TokenTTL is the lifetime of issued tokens, used for the cookie expiry
func (s *AuthService) TokenTTL() time.Duration {
	return s.jwtService.TokenTTL()
}

// ChangePassword replaces the hash once oldPassword has been confirmed
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(oldPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Old password is incorrect")
	}
	if !validation.IsStrongPassword(newPassword) {
		return apperrors.NewInvalidFieldError(apperrors.ErrInvalidPassword, passwordRuleMessage)
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.userRepo.SaveCredentials(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Msg("Password changed")
	return nil
}

// IssueResetCode stores a fresh 4-digit code valid for one hour and mails it
// to the account owner.
func (s *AuthService) IssueResetCode(ctx context.Context, emailAddr string) error {
	user, err := s.findForReset(ctx, emailAddr)
	if err != nil {
		return err
	}

	code, err := s.newResetCode()
	if err != nil {
		return err
	}
	user.RequestReset(code, s.now())

	if err := s.userRepo.SaveCredentials(ctx, user); err != nil {
		return err
	}

	if err := s.emailService.SendPasswordResetCode(ctx, user.Email, user.Fullname, code); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send password reset code")
		return apperrors.NewDeliveryError(err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Password reset code issued")
	return nil
}

// VerifyResetCode consumes a reset code. A matching, unexpired code moves
// the account to the verified state and cannot be used again.
func (s *AuthService) VerifyResetCode(ctx context.Context, emailAddr, code string) error {
	user, err := s.findForReset(ctx, emailAddr)
	if err != nil {
		return err
	}

	if !user.VerifyResetCode(strings.TrimSpace(code), s.now()) {
		return apperrors.NewCustomError(
			errors.Join(apperrors.ErrValidationFailed, apperrors.ErrInvalidResetCode),
			"Invalid or expired reset code")
	}

	return s.userRepo.SaveCredentials(ctx, user)
}

// ResetPassword sets a new password for an account whose reset code has
// been verified, then clears all reset state.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, newPassword string) error {
	if len(newPassword) < validation.ResetPasswordMinLength {
		return apperrors.NewInvalidFieldError(apperrors.ErrInvalidPassword,
			fmt.Sprintf("Password must be at least %d characters", validation.ResetPasswordMinLength))
	}
	if len(newPassword) > validation.ResetPasswordMaxLength {
		return apperrors.NewInvalidFieldError(apperrors.ErrInvalidPassword,
			fmt.Sprintf("Password must be at most %d bytes", validation.ResetPasswordMaxLength))
	}

	user, err := s.findForReset(ctx, emailAddr)
	if err != nil {
		return err
	}

	if !user.CanResetPassword(s.now()) {
		return apperrors.NewCustomError(
			errors.Join(apperrors.ErrValidationFailed, apperrors.ErrResetNotVerified),
			"Reset code has not been verified or has expired")
	}

	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	user.ClearReset()

	if err := s.userRepo.SaveCredentials(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Password reset completed")
	return nil
}

func (s *AuthService) findForReset(ctx context.Context, emailAddr string) (*models.User, error) {
	if strings.TrimSpace(emailAddr) == "" {
		return nil, apperrors.NewValidationError("Please add email")
	}
	user, err := s.userRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUserNotFound, "No account with that email address exists")
		}
		return nil, err
	}
	return user, nil
}
