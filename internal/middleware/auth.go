package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainUser "auth-service/internal/domain/user"
	appErrors "auth-service/pkg/errors"
	"auth-service/pkg/token"
	"auth-service/pkg/utils"
)

const currentUserKey = "currentUser"

// bearerToken extracts the token from the Authorization header, or "" when
// the header is absent or malformed.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// resolveUser decodes a bearer token of the expected type and loads the
// subject from the store.
func resolveUser(c *gin.Context, codec *token.Codec, users domainUser.Repository, expectedType string) (*domainUser.User, error) {
	raw := bearerToken(c)
	if raw == "" {
		return nil, appErrors.ErrInvalidToken
	}

	claims, err := codec.Decode(raw, expectedType)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, err
	}

	return users.GetByID(c.Request.Context(), userID)
}

// AuthMiddleware resolves a Bearer access token into the requesting user
// and stores it in the context. Any failure in the chain is a 401; the
// deleted-but-still-token-holding case included.
func AuthMiddleware(codec *token.Codec, users domainUser.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, codec, users, token.TypeAccess)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, authFailureMessage(err))
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// authFailureMessage keeps the wrong-type case distinguishable; every other
// failure collapses into a generic message.
func authFailureMessage(err error) string {
	if errors.Is(err, appErrors.ErrWrongTokenType) {
		return "Wrong token type"
	}
	return "Invalid or expired token"
}

// RefreshTokenMiddleware is the refresh-endpoint variant: it expects a
// refresh token and additionally re-checks is_active. Verification is not
// re-checked here.
func RefreshTokenMiddleware(codec *token.Codec, users domainUser.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, codec, users, token.TypeRefresh)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, authFailureMessage(err))
			c.Abort()
			return
		}

		if !user.IsActive {
			utils.ErrorResponse(c, http.StatusForbidden, "User account is inactive")
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves an identity when a valid access token is
// present and stays silent otherwise. It never aborts the request.
func OptionalAuthMiddleware(codec *token.Codec, users domainUser.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveUser(c, codec, users, token.TypeAccess); err == nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

// ActiveUserMiddleware gates on is_active. Runs after AuthMiddleware.
func ActiveUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		if !user.IsActive {
			utils.ErrorResponse(c, http.StatusForbidden, "User account is inactive")
			c.Abort()
			return
		}

		c.Next()
	}
}

// VerifiedUserMiddleware gates on is_verified. Runs after
// ActiveUserMiddleware.
func VerifiedUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		if !user.IsVerified {
			utils.ErrorResponse(c, http.StatusForbidden, "Email address is not verified")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser retrieves the authenticated user stored by the auth
// middleware, if any.
func CurrentUser(c *gin.Context) (*domainUser.User, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}

	user, ok := value.(*domainUser.User)
	return user, ok
}
