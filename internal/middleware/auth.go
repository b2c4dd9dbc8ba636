package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rentalhub/internal/domain"
	jwtsvc "rentalhub/internal/pkg/jwt"
	"rentalhub/internal/pkg/response"
)

// OptionalAuth parses a Bearer token when one is present and stores the
// identity in the gin context. It never aborts: anonymous requests pass
// through with no identity set. A malformed token is still a hard 401 so
// callers cannot silently fall back to guest access.
func OptionalAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header")
			c.Abort()
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireAuth rejects requests that carry no identity. Meant to run after
// OptionalAuth on routes that need a logged-in caller.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetInt64("user_id") == 0 {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFromContext assembles the identity set by OptionalAuth. The zero
// Actor means an anonymous caller.
func ActorFromContext(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID: c.GetInt64("user_id"),
		Role:   domain.UserRole(c.GetString("role")),
	}
}
