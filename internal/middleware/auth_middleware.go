package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/edutech/internal/app/models"
	"github.com/yigit/edutech/internal/app/repositories"
	"github.com/yigit/edutech/internal/pkg/apperrors"
	"github.com/yigit/edutech/internal/pkg/auth"
)

// TokenCookieName is the HTTP-only cookie holding the identity token
const TokenCookieName = "token"

// Context keys set by CookieAuth
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "userID"
)

// AuthMiddleware for authentication
type AuthMiddleware struct {
	jwtService *auth.JWTService
	userRepo   repositories.IUserRepository
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, userRepo repositories.IUserRepository, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// CookieAuth rejects requests without a valid token cookie and exposes the
// resolved user to downstream handlers.
func (m *AuthMiddleware) CookieAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(TokenCookieName)
		if err != nil || tokenString == "" {
			HandleAPIError(c, apperrors.ErrTokenNotFound)
			return
		}

		userID, err := m.jwtService.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				HandleAPIError(c, apperrors.ErrTokenExpired)
			} else {
				HandleAPIError(c, apperrors.ErrTokenInvalid)
			}
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				m.logger.Warn().Int64("userID", userID).Msg("Token refers to a missing user")
				HandleAPIError(c, apperrors.NewAuthError("User not found, please login"))
				return
			}
			HandleAPIError(c, err)
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// IsAuthenticated reports whether the request carries a valid token cookie.
// It never aborts the request.
func (m *AuthMiddleware) IsAuthenticated(c *gin.Context) bool {
	tokenString, err := c.Cookie(TokenCookieName)
	if err != nil || tokenString == "" {
		return false
	}
	_, err = m.jwtService.VerifyToken(tokenString)
	return err == nil
}

// CurrentUser returns the principal attached by CookieAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// SetTokenCookie writes the identity cookie. SameSite=None lets the
// frontend call the API cross-site.
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteNoneMode,
	})
}

// ClearTokenCookie overwrites the identity cookie with an expired one
func ClearTokenCookie(c *gin.Context, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteNoneMode,
	})
}
