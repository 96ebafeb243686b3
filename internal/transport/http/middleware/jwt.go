package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"faqdesk/internal/model"
	"faqdesk/internal/pkg/jwtutil"
	"faqdesk/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
)

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to the listed roles; it assumes AuthJWT
// already ran.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRoleKey)
		roleStr, ok := role.(string)
		if !ok || !allowed[roleStr] {
			response.Error(c, 403, response.CodeForbidden, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireEditor admits admins and editors, the two roles allowed to mutate
// the knowledge base.
func RequireEditor() gin.HandlerFunc {
	return RequireRole(model.RoleAdmin, model.RoleEditor)
}

// RequireAdmin admits admins only.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(model.RoleAdmin)
}
