package handler

import (
	"github.com/gin-gonic/gin"

	"faqdesk/internal/transport/http/middleware"
)

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := raw.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}

// getActorFromContext returns the username for activity-log attribution.
func getActorFromContext(c *gin.Context) string {
	raw, exists := c.Get(middleware.ContextUsernameKey)
	if !exists {
		return "anonymous"
	}
	username, ok := raw.(string)
	if !ok || username == "" {
		return "anonymous"
	}
	return username
}
