package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/edutech/internal/app/models/dto"
	"github.com/yigit/edutech/internal/app/services"
	"github.com/yigit/edutech/internal/middleware"
	"github.com/yigit/edutech/internal/pkg/apperrors"
)

// UserController handles account and profile operations
type UserController struct {
	authService    *services.AuthService
	userService    *services.UserService
	authMiddleware *middleware.AuthMiddleware
	secureCookie   bool
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewUserController creates a new user controller
func NewUserController(
	authService *services.AuthService,
	userService *services.UserService,
	authMiddleware *middleware.AuthMiddleware,
	secureCookie bool,
	maxUploadBytes int64,
	logger zerolog.Logger,
) *UserController {
	return &UserController{
		authService:    authService,
		userService:    userService,
		authMiddleware: authMiddleware,
		secureCookie:   secureCookie,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Register creates an account and signs it in
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account details"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid input or email already registered"
// @Router /user/register [post]
func (c *UserController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	user, err := c.authService.CreateAccount(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	token, err := c.authService.IssueToken(user.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", user.ID).Str("role", user.Role).Msg("User registered")
	middleware.SetTokenCookie(ctx, token, c.authService.TokenTTL(), c.secureCookie)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.AuthResponse{User: *user, Token: token}, "User registered successfully"))
}

// Login verifies credentials and sets the token cookie
// @Summary User login
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /user/login [post]
func (c *UserController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	resp, err := c.authService.SignIn(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	middleware.SetTokenCookie(ctx, resp.Token, c.authService.TokenTTL(), c.secureCookie)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Login successful"))
}

// Logout expires the token cookie
// @Summary Logout
// @Tags users
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /user/logout [get]
func (c *UserController) Logout(ctx *gin.Context) {
	middleware.ClearTokenCookie(ctx, c.secureCookie)
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Successfully logged out"})
}

// LoggedIn answers true or false without rejecting the request
// @Summary Login status
// @Tags users
// @Produce json
// @Success 200 {boolean} bool
// @Router /user/loggedin [get]
func (c *UserController) LoggedIn(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.authMiddleware.IsAuthenticated(ctx))
}

// GetUser returns the caller's public profile
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PublicUser}
// @Failure 401 {object} dto.ErrorResponse
// @Router /user/getuser [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	principal, ok := requireUser(ctx)
	if !ok {
		return
	}

	user, err := c.userService.GetUser(ctx.Request.Context(), principal.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, ""))
}

// GetUsers lists every account
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.PublicUser}
// @Router /user/getusers [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	users, err := c.userService.ListUsers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users, ""))
}

// GetLecturers lists accounts with the lecturer role
// @Summary List lecturers
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.PublicUser}
// @Router /user/getlecturers [get]
func (c *UserController) GetLecturers(ctx *gin.Context) {
	lecturers, err := c.userService.ListLecturers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lecturers, ""))
}

// UpdateUser overwrites the profile fields and optionally the photo
// @Summary Update profile
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param fullname formData string false "Full name"
// @Param title formData string false "Title"
// @Param semester formData string false "Semester"
// @Param department formData string false "Department"
// @Param dob formData string false "Date of birth"
// @Param photo formData file false "Profile photo"
// @Success 200 {object} dto.APIResponse{data=dto.PublicUser}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Upload failed"
// @Router /user/updateuser [patch]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	principal, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	photo, err := readFormFile(ctx, "photo", c.maxUploadBytes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), principal.ID, &req, photo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "Profile updated successfully"))
}

// ChangePassword replaces the caller's password after checking the old one
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse "Old password is incorrect"
// @Router /user/changepassword [patch]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	principal, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), principal.ID, req.OldPassword, req.Password); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Password changed successfully"})
}

// ForgotPassword emails a reset code
// @Summary Request a password reset code
// @Tags users
// @Produce json
// @Param email path string true "Account email"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Email could not be sent"
// @Router /user/forgotpassword/{email} [post]
func (c *UserController) ForgotPassword(ctx *gin.Context) {
	if err := c.authService.IssueResetCode(ctx.Request.Context(), ctx.Param("email")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Reset code sent to your email"})
}

// ResetEmailSent verifies the emailed reset code
// @Summary Verify a password reset code
// @Tags users
// @Accept json
// @Produce json
// @Param email path string true "Account email"
// @Param request body dto.VerifyResetCodeRequest true "Reset code"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired code"
// @Router /user/resetemailsent/{email} [post]
func (c *UserController) ResetEmailSent(ctx *gin.Context) {
	var req dto.VerifyResetCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	if err := c.authService.VerifyResetCode(ctx.Request.Context(), ctx.Param("email"), req.Code); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Code verified, you can now reset your password"})
}

// ResetPassword sets a new password after a verified code
// @Summary Reset password
// @Tags users
// @Accept json
// @Produce json
// @Param email path string true "Account email"
// @Param request body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse "Code not verified or password too short"
// @Router /user/resetpassword/{email} [put]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("New password is required"))
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), ctx.Param("email"), req.NewPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Password reset successfully"})
}
