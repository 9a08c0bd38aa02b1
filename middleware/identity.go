package middleware

import (
	"net/http"
	"strings"

	"github.com/Pushkar2103/parkezy-new/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by IdentityMiddleware.
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// IdentityMiddleware trusts a bearer token issued by the identity service and
// places the caller's id and role in the request context.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONErrorCode(c, http.StatusUnauthorized, "unauthenticated", "Missing or invalid Authorization header", "")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		identity, err := utils.ExtractIdentity(tokenString)
		if err != nil {
			zap.L().Debug("Token rejected", zap.Error(err), zap.String("ip", getClientIP(c)))
			utils.JSONErrorCode(c, http.StatusUnauthorized, "unauthenticated", "Invalid token", "")
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextRole, identity.Role)
		c.Next()
	}
}

// RequireRole rejects callers whose token carries a different role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			utils.JSONErrorCode(c, http.StatusForbidden, "forbidden", "This action requires the "+role+" role", "")
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated user id, empty when the route is unauthenticated.
func CallerID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
