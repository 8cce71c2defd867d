package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"subhub/internal/logger"
	"subhub/internal/services"
	"subhub/pkg/utils"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "Role"
)

// Authenticator resolves a bearer token to the calling account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
}

func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		principal, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrAccountInactive):
				utils.RespondError(c, http.StatusUnauthorized, "Account is deactivated")
			case errors.Is(err, utils.ErrUnauthorized):
				utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			default:
				utils.HandleServiceError(c, err)
			}
			c.Abort()
			return
		}

		// Pass user information to the next handler
		c.Set(UserIDKey, principal.UserID)
		c.Set(RoleKey, string(principal.Role))
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, principal.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RoleMiddleware(requiredRole string) gin.HandlerFunc {

	return func(c *gin.Context) {
		role := c.GetString(RoleKey)

		if role != requiredRole {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUserID returns the id stored by JWTAuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
