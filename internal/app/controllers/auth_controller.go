package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/edutech/internal/app/models/dto"
	"github.com/yigit/edutech/internal/app/services"
	"github.com/yigit/edutech/internal/middleware"
)

// AuthController serves the /auth sign-up and sign-in flow used by the
// frontend bootstrap.
type AuthController struct {
	authService    *services.AuthService
	authMiddleware *middleware.AuthMiddleware
	secureCookie   bool
	logger         zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, authMiddleware *middleware.AuthMiddleware, secureCookie bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:    authService,
		authMiddleware: authMiddleware,
		secureCookie:   secureCookie,
		logger:         logger,
	}
}

// SignUp creates a student account
// @Summary Sign up
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Account details"
// @Success 201 {object} dto.SignUpResponse
// @Failure 400 {object} dto.ErrorResponse "Email already registered"
// @Failure 403 {object} dto.ErrorResponse "Invalid email or password format"
// @Router /auth/sign-up [post]
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req dto.SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid sign-up request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	user, err := c.authService.CreateAccount(ctx.Request.Context(), &dto.RegisterRequest{
		Fullname: req.Fullname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.HandleSignUpError(ctx, err)
		return
	}

	c.logger.Info().Int64("userID", user.ID).Msg("Account created")
	ctx.JSON(http.StatusCreated, dto.SignUpResponse{
		Success:  true,
		Fullname: user.Fullname,
		Email:    user.Email,
	})
}

// SignIn verifies credentials and sets the token cookie
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Credentials"
// @Success 200 {object} dto.SignInResponse
// @Failure 401 {object} dto.ErrorResponse "Wrong password"
// @Failure 404 {object} dto.ErrorResponse "Unknown email"
// @Router /auth/sign-in [post]
func (c *AuthController) SignIn(ctx *gin.Context) {
	var req dto.SignInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.HandleValidationError(err)))
		return
	}

	resp, err := c.authService.SignIn(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Sign-in failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	middleware.SetTokenCookie(ctx, resp.Token, c.authService.TokenTTL(), c.secureCookie)
	ctx.JSON(http.StatusOK, dto.SignInResponse{
		Success:  true,
		Fullname: resp.User.Fullname,
		Email:    resp.User.Email,
		Token:    resp.Token,
	})
}

// AuthStatus reports whether the caller holds a valid token cookie
// @Summary Authentication status
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthStatusResponse
// @Router /auth/auth-status [get]
func (c *AuthController) AuthStatus(ctx *gin.Context) {
	if c.authMiddleware.IsAuthenticated(ctx) {
		ctx.JSON(http.StatusOK, dto.AuthStatusResponse{Authenticated: true, Message: "User is authenticated"})
		return
	}
	ctx.JSON(http.StatusOK, dto.AuthStatusResponse{Authenticated: false, Message: "User is not authenticated"})
}

// SignOut expires the token cookie
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/sign-out [post]
func (c *AuthController) SignOut(ctx *gin.Context) {
	middleware.ClearTokenCookie(ctx, c.secureCookie)
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Signed out successfully"})
}
